// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func adapters() map[string]Adapter {
	return map[string]Adapter{
		"local":       NewLocal(),
		"distributed": NewDistributed(3),
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	for name, a := range adapters() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, a.Initialize(ctx, "node-1"))
			require.NoError(t, a.Initialize(ctx, "node-1"))
			_, err := a.Stats(ctx)
			require.NoError(t, err)
		})
	}
}

func TestShutdownThenOperationsFail(t *testing.T) {
	for name, a := range adapters() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, a.Initialize(ctx, "node-1"))
			require.NoError(t, a.Shutdown(ctx))

			_, err := a.StoreDocument(ctx, CollectionBlocks, Document{Body: json.RawMessage(`{}`)})
			require.ErrorIs(t, err, ErrNotInitialized)
		})
	}
}

func TestContentAddressStable(t *testing.T) {
	for name, a := range adapters() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, a.Initialize(ctx, "node-1"))

			data := []byte("identical payload")
			cid1, err := a.StoreBlob(ctx, data)
			require.NoError(t, err)
			cid2, err := a.StoreBlob(ctx, data)
			require.NoError(t, err)
			require.Equal(t, cid1, cid2)

			got, err := a.RetrieveBlob(ctx, cid1)
			require.NoError(t, err)
			require.Equal(t, data, got)
		})
	}
}

func TestStandardCollectionsBootstrap(t *testing.T) {
	for name, a := range adapters() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, a.Initialize(ctx, "node-1"))

			for _, c := range standardCollections {
				docs, err := a.QueryDocuments(ctx, c, nil)
				require.NoError(t, err)
				require.Empty(t, docs)
			}
		})
	}
}

func TestQueryFilterWildcardOnMissingFields(t *testing.T) {
	a := NewLocal()
	ctx := context.Background()
	require.NoError(t, a.Initialize(ctx, "node-1"))

	id, err := a.StoreDocument(ctx, CollectionTransactions, Document{
		Body: json.RawMessage(`{"sender":"aa","amount":100}`),
	})
	require.NoError(t, err)

	docs, err := a.QueryDocuments(ctx, CollectionTransactions, map[string]any{"sender": "aa"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, id, docs[0].ID)

	docs, err = a.QueryDocuments(ctx, CollectionTransactions, map[string]any{"sender": "bb"})
	require.NoError(t, err)
	require.Empty(t, docs)
}
