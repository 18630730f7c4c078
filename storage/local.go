// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Local is the in-process backend: suitable for tests and single-node
// operation, with no external dependency. Reads take a read lock,
// writes take a write lock.
type Local struct {
	mu          sync.RWMutex
	initialized bool
	nodeID      string
	collections map[string]map[string]Document
	blobs       map[string][]byte
}

// NewLocal returns an uninitialized in-process adapter.
func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Initialize(_ context.Context, nodeID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.initialized {
		return nil // idempotent
	}
	l.nodeID = nodeID
	l.collections = make(map[string]map[string]Document, len(standardCollections))
	for _, c := range standardCollections {
		l.collections[c] = make(map[string]Document)
	}
	l.blobs = make(map[string][]byte)
	l.initialized = true
	return nil
}

func (l *Local) Shutdown(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initialized = false
	return nil
}

func (l *Local) Stats(_ context.Context) (StorageStats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.initialized {
		return StorageStats{}, ErrNotInitialized
	}
	var size int64
	for _, b := range l.blobs {
		size += int64(len(b))
	}
	for _, docs := range l.collections {
		for _, d := range docs {
			size += int64(len(d.Body))
		}
	}
	return StorageStats{
		Blocks:          len(l.collections[CollectionBlocks]),
		Transactions:    len(l.collections[CollectionTransactions]),
		Peers:           len(l.collections[CollectionPeers]),
		Size:            size,
		LastUpdate:      time.Now(),
		BlobObjects:     len(l.blobs),
		DocumentObjects: l.documentCountLocked(),
		ReplicaFactor:   1,
	}, nil
}

func (l *Local) documentCountLocked() int {
	n := 0
	for _, docs := range l.collections {
		n += len(docs)
	}
	return n
}

func (l *Local) StoreDocument(_ context.Context, collection string, doc Document) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return "", ErrNotInitialized
	}
	docs, ok := l.collections[collection]
	if !ok {
		docs = make(map[string]Document)
		l.collections[collection] = docs
	}
	if doc.ID == "" {
		doc.ID = newID()
	}
	docs[doc.ID] = doc
	return doc.ID, nil
}

func (l *Local) GetDocument(_ context.Context, collection, id string) (*Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.initialized {
		return nil, ErrNotInitialized
	}
	docs, ok := l.collections[collection]
	if !ok {
		return nil, nil
	}
	d, ok := docs[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (l *Local) QueryDocuments(_ context.Context, collection string, filter map[string]any) ([]Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.initialized {
		return nil, ErrNotInitialized
	}
	docs, ok := l.collections[collection]
	if !ok {
		return nil, nil
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if matchesFilter(d.Body, filter) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (l *Local) StoreBlob(_ context.Context, data []byte) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return "", ErrNotInitialized
	}
	cid := contentID(data)
	l.blobs[cid] = append([]byte(nil), data...)
	return cid, nil
}

func (l *Local) RetrieveBlob(_ context.Context, cid string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.initialized {
		return nil, ErrNotInitialized
	}
	b, ok := l.blobs[cid]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

func newID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
