// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import "errors"

// Errors are sentinel values wrapped with fmt.Errorf("%w: ...") at the
// call site so callers can errors.Is against them without parsing
// messages. Secret material MUST NOT be interpolated into any message
// built around these sentinels.
var (
	ErrKeyGeneration    = errors.New("crypto: key generation failed")
	ErrSigning          = errors.New("crypto: signing failed")
	ErrVerification     = errors.New("crypto: verification failed")
	ErrEncapsulation    = errors.New("crypto: encapsulation failed")
	ErrDecapsulation    = errors.New("crypto: decapsulation failed")
	ErrInvalidAlgorithm = errors.New("crypto: invalid or unknown algorithm tag")
	ErrSerialization    = errors.New("crypto: serialization failed")
	ErrInvalidKeyFormat = errors.New("crypto: invalid key format")
	ErrInvalidSigFormat = errors.New("crypto: invalid signature format")
	ErrNotImplemented   = errors.New("crypto: not implemented")
)
