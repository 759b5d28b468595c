package upsell

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffinity_Record(t *testing.T) {
	ctx := context.Background()
	store := newMemKV()
	a := NewAffinity(store, 0)

	for range 4 {
		_, err := a.Record(ctx, "LID1")
		require.NoError(t, err)
	}

	counts, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"LID1": 4}, counts)

	var raw map[string]int
	require.NoError(t, store.Get(ctx, "upsell:click_affinity", &raw))
	assert.Equal(t, map[string]int{"LID1": 4}, raw)
}

func TestAffinity_Record_empty_sku(t *testing.T) {
	ctx := context.Background()
	store := newMemKV()
	a := NewAffinity(store, 0)

	n, err := a.Record(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Zero(t, store.Len(), "nothing persisted")
}

func TestAffinity_Load_missing(t *testing.T) {
	counts, err := NewAffinity(newMemKV(), 0).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestAffinity_keeps_top_entries(t *testing.T) {
	ctx := context.Background()
	a := NewAffinity(newMemKV(), 3)

	for sku, n := range map[string]int{"A": 5, "B": 3, "C": 3, "D": 1} {
		for range n {
			_, err := a.Record(ctx, sku)
			require.NoError(t, err)
		}
	}

	counts, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, 3)
	assert.Equal(t, 5, counts["A"])
	assert.NotContains(t, counts, "D")
}

func TestAffinity_default_limit(t *testing.T) {
	ctx := context.Background()
	a := NewAffinity(newMemKV(), 0)

	for i := range DefaultAffinityLimit + 10 {
		_, err := a.Record(ctx, fmt.Sprintf("SKU%03d", i))
		require.NoError(t, err)
	}

	counts, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, DefaultAffinityLimit)
	assert.Contains(t, counts, "SKU000", "ties keep the lowest SKUs")
}

func TestAffinity_store_failure(t *testing.T) {
	store := newMemKV()
	store.err = assert.AnError
	a := NewAffinity(store, 0)

	_, err := a.Record(context.Background(), "LID1")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestTopN(t *testing.T) {
	got := topN(map[string]int{"b": 2, "a": 2, "c": 9, "d": 1}, 2)
	assert.Equal(t, map[string]int{"c": 9, "a": 2}, got)
}

func TestAffinity_in_memory(t *testing.T) {
	ctx := context.Background()
	a := NewAffinity(nil, 0)

	counts, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	n, err := a.Record(ctx, "LID1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	counts, err = a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"LID1": 1}, counts)

	require.NoError(t, a.Reset(ctx))
	counts, err = a.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
