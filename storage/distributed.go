// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"sync"
	"time"
)

// collectionLog is an append-only log of documents for one collection
// with a map index for point lookups. Writes to a single collection
// are serialized by its own mutex; different collections make progress
// independently, and blob writes use a separate lock so they proceed
// in parallel with document writes.
type collectionLog struct {
	mu    sync.Mutex
	index map[string]Document
	log   []Document
}

// Distributed is the in-process backend laid out like a distributed
// store: blobs go to a content-addressed store (contentID, same hashing
// as Local so behavior is observably identical to a caller); documents
// go to a per-collection append-log keyed index. It keeps a single
// in-memory copy of everything; the replica factor it is built with is
// only reported via Stats and does not cause any copying.
type Distributed struct {
	mu          sync.RWMutex
	initialized bool
	nodeID      string

	collMu sync.RWMutex
	colls  map[string]*collectionLog

	blobMu sync.RWMutex
	blobs  map[string][]byte

	replicaFactor int
}

// NewDistributed returns an uninitialized distributed adapter.
// replicaFactor is surfaced via Stats as a proxy for cross-node
// replication health; it does not perform any network I/O.
func NewDistributed(replicaFactor int) *Distributed {
	if replicaFactor < 1 {
		replicaFactor = 1
	}
	return &Distributed{replicaFactor: replicaFactor}
}

func (d *Distributed) Initialize(_ context.Context, nodeID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}
	d.nodeID = nodeID
	d.colls = make(map[string]*collectionLog, len(standardCollections))
	for _, c := range standardCollections {
		d.colls[c] = &collectionLog{index: make(map[string]Document)}
	}
	d.blobs = make(map[string][]byte)
	d.initialized = true
	return nil
}

func (d *Distributed) Shutdown(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = false
	return nil
}

func (d *Distributed) checkInitialized() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (d *Distributed) collectionLocked(name string) *collectionLog {
	d.collMu.Lock()
	defer d.collMu.Unlock()
	c, ok := d.colls[name]
	if !ok {
		c = &collectionLog{index: make(map[string]Document)}
		d.colls[name] = c
	}
	return c
}

func (d *Distributed) Stats(_ context.Context) (StorageStats, error) {
	if err := d.checkInitialized(); err != nil {
		return StorageStats{}, err
	}
	d.collMu.RLock()
	blocks := len(d.colls[CollectionBlocks].index)
	txs := len(d.colls[CollectionTransactions].index)
	peers := len(d.colls[CollectionPeers].index)
	var docCount int
	var size int64
	for _, c := range d.colls {
		c.mu.Lock()
		docCount += len(c.index)
		for _, doc := range c.index {
			size += int64(len(doc.Body))
		}
		c.mu.Unlock()
	}
	d.collMu.RUnlock()

	d.blobMu.RLock()
	blobCount := len(d.blobs)
	for _, b := range d.blobs {
		size += int64(len(b))
	}
	d.blobMu.RUnlock()

	return StorageStats{
		Blocks:          blocks,
		Transactions:    txs,
		Peers:           peers,
		Size:            size,
		LastUpdate:      time.Now(),
		BlobObjects:     blobCount,
		DocumentObjects: docCount,
		ReplicaFactor:   d.replicaFactor,
	}, nil
}

func (d *Distributed) StoreDocument(_ context.Context, collection string, doc Document) (string, error) {
	if err := d.checkInitialized(); err != nil {
		return "", err
	}
	c := d.collectionLocked(collection)
	c.mu.Lock()
	defer c.mu.Unlock()
	if doc.ID == "" {
		doc.ID = newID()
	}
	c.index[doc.ID] = doc
	c.log = append(c.log, doc)
	return doc.ID, nil
}

func (d *Distributed) GetDocument(_ context.Context, collection, id string) (*Document, error) {
	if err := d.checkInitialized(); err != nil {
		return nil, err
	}
	c := d.collectionLocked(collection)
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.index[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (d *Distributed) QueryDocuments(_ context.Context, collection string, filter map[string]any) ([]Document, error) {
	if err := d.checkInitialized(); err != nil {
		return nil, err
	}
	c := d.collectionLocked(collection)
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Document, 0, len(c.index))
	for _, doc := range c.index {
		if matchesFilter(doc.Body, filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (d *Distributed) StoreBlob(_ context.Context, data []byte) (string, error) {
	if err := d.checkInitialized(); err != nil {
		return "", err
	}
	cid := contentID(data)
	d.blobMu.Lock()
	d.blobs[cid] = append([]byte(nil), data...)
	d.blobMu.Unlock()
	return cid, nil
}

func (d *Distributed) RetrieveBlob(_ context.Context, cid string) ([]byte, error) {
	if err := d.checkInitialized(); err != nil {
		return nil, err
	}
	d.blobMu.RLock()
	b, ok := d.blobs[cid]
	d.blobMu.RUnlock()
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}
