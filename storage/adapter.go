// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage implements the node's hybrid storage adapter:
// collection CRUD for opaque JSON documents plus content-addressed
// blob put/get, behind a pluggable Adapter interface with in-process
// and distributed implementations.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Standard collections bootstrapped by every adapter on Initialize.
const (
	CollectionBlocks       = "blocks"
	CollectionTransactions = "transactions"
	CollectionPeers        = "peers"
	CollectionSystem       = "system"
)

var standardCollections = []string{
	CollectionBlocks, CollectionTransactions, CollectionPeers, CollectionSystem,
}

// ErrNotInitialized is returned by every operation on an adapter that
// has not been Initialize'd, or that has since been Shutdown.
var ErrNotInitialized = errors.New("storage: adapter not initialized")

// ErrUnknownCollection names a collection outside the four standard
// collections. Neither Local nor Distributed returns it: both create a
// collection on its first write, and reads of a collection that does
// not exist yet return no documents.
var ErrUnknownCollection = errors.New("storage: unknown collection")

// Document is an opaque JSON document addressed by a stable id within
// its collection. The adapter owns no schema: Body is passed through
// verbatim.
type Document struct {
	ID   string          `json:"id"`
	Body json.RawMessage `json:"body"`
}

// StorageStats reports document counts for the blocks, transactions
// and peers collections plus blob/document totals and the adapter's
// replica factor.
type StorageStats struct {
	Blocks          int       `json:"blocks"`
	Transactions    int       `json:"transactions"`
	Peers           int       `json:"peers"`
	Size            int64     `json:"size"`
	LastUpdate      time.Time `json:"last_update"`
	BlobObjects     int       `json:"blob_objects"`
	DocumentObjects int       `json:"document_objects"`
	ReplicaFactor   int       `json:"replica_factor"`
}

// Adapter is the pluggable storage contract. All methods accept a
// context so callers can cancel outstanding storage I/O;
// implementations MUST treat the context as a suspension point and
// never hold a lock across it.
type Adapter interface {
	Initialize(ctx context.Context, nodeID string) error
	Shutdown(ctx context.Context) error
	Stats(ctx context.Context) (StorageStats, error)

	StoreDocument(ctx context.Context, collection string, doc Document) (id string, err error)
	GetDocument(ctx context.Context, collection, id string) (*Document, error)
	QueryDocuments(ctx context.Context, collection string, filter map[string]any) ([]Document, error)

	StoreBlob(ctx context.Context, data []byte) (cid string, err error)
	RetrieveBlob(ctx context.Context, cid string) ([]byte, error)
}

// matchesFilter implements equality-on-present-fields semantics: a
// field present in filter must equal the decoded document's same
// field; fields absent from filter are wildcards.
func matchesFilter(body json.RawMessage, filter map[string]any) bool {
	if len(filter) == 0 {
		return true
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return false
	}
	for k, want := range filter {
		got, ok := decoded[k]
		if !ok {
			return false
		}
		if !equalJSONValue(got, want) {
			return false
		}
	}
	return true
}

func equalJSONValue(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}
