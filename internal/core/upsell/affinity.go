package upsell

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/whimsicalfrog/frogshop/internal/core/kv"
)

const (
	// AffinityNamespace and AffinityKey form the stored key
	// "upsell:click_affinity".
	AffinityNamespace = "upsell"
	AffinityKey       = "click_affinity"

	// DefaultAffinityLimit is how many SKUs the map retains.
	DefaultAffinityLimit = 50
)

// Affinity is the persisted per-SKU click counter. The whole map is read
// and written back on every update.
type Affinity struct {
	mu    sync.Mutex
	store *kv.Value[map[string]int]
	mem   map[string]int
	limit int
}

// NewAffinity creates an affinity map stored in store. A nil store keeps
// the counts in memory only.
func NewAffinity(store kv.KV, limit int) *Affinity {
	if limit <= 0 {
		limit = DefaultAffinityLimit
	}
	a := &Affinity{limit: limit}
	if store != nil {
		a.store = kv.Bind[map[string]int](store, kv.Key(AffinityNamespace, AffinityKey))
	}
	return a
}

// Load returns the current counts. A missing key is an empty map.
func (a *Affinity) Load(ctx context.Context) (map[string]int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadLocked(ctx)
}

func (a *Affinity) loadLocked(ctx context.Context) (map[string]int, error) {
	if a.store == nil {
		return maps.Clone(a.mem), nil
	}
	counts, _, err := a.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load click affinity: %w", err)
	}
	if counts == nil {
		counts = make(map[string]int)
	}
	return counts, nil
}

// Record increments the count of sku, trims the map to the top entries by
// count and persists it. It returns the new count, which is 0 when the SKU
// did not survive trimming. An empty sku is ignored.
func (a *Affinity) Record(ctx context.Context, sku string) (int, error) {
	if sku == "" {
		return 0, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	counts, err := a.loadLocked(ctx)
	if err != nil {
		return 0, err
	}
	if counts == nil {
		counts = make(map[string]int)
	}
	counts[sku]++
	counts = topN(counts, a.limit)

	if a.store == nil {
		a.mem = counts
		return counts[sku], nil
	}
	if err := a.store.Save(ctx, counts); err != nil {
		return 0, fmt.Errorf("save click affinity: %w", err)
	}
	return counts[sku], nil
}

// Reset removes all counts.
func (a *Affinity) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store == nil {
		a.mem = nil
		return nil
	}
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("reset click affinity: %w", err)
	}
	return nil
}

// topN keeps the n highest counts, breaking ties by SKU.
func topN(counts map[string]int, n int) map[string]int {
	if len(counts) <= n {
		return counts
	}

	skus := make([]string, 0, len(counts))
	for sku := range counts {
		skus = append(skus, sku)
	}
	slices.SortFunc(skus, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	out := make(map[string]int, n)
	for _, sku := range skus[:n] {
		out[sku] = counts[sku]
	}
	return out
}
