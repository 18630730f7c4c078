// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package blockchain

import "encoding/json"

// jsonMarshalStable turns a value into its canonical byte
// representation for signed transaction bytes and the per-transaction
// AI-scoring size check. ComputeHash and SerializedSize call
// json.Marshal directly, which produces the same bytes. encoding/json
// already marshals struct fields in declaration order, which is stable
// enough for this package's deterministic-hash requirement.
func jsonMarshalStable(v any) ([]byte, error) {
	return json.Marshal(v)
}
