// Package cart holds the working cart of the storefront console and persists
// it in the key-value store.
package cart

import (
	"context"
	"fmt"
	"slices"

	"github.com/whimsicalfrog/frogshop/internal/core/kv"
	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
)

const (
	Namespace = "cart"
	ItemsKey  = "items"
)

// Cart is an ordered set of items keyed by SKU.
type Cart struct {
	items []upsell.CartItem
}

// New returns a cart holding items, dropping blank and repeated SKUs.
func New(items ...upsell.CartItem) *Cart {
	c := &Cart{}
	for _, it := range items {
		c.Add(it)
	}
	return c
}

// Add appends item. It returns false if the SKU is blank or already present.
func (c *Cart) Add(item upsell.CartItem) bool {
	if item.SKU == "" || c.Has(item.SKU) {
		return false
	}
	c.items = append(c.items, item)
	return true
}

// Remove drops the item with sku and returns it.
func (c *Cart) Remove(sku string) (upsell.CartItem, bool) {
	i := slices.IndexFunc(c.items, func(it upsell.CartItem) bool { return it.SKU == sku })
	if i < 0 {
		return upsell.CartItem{}, false
	}
	item := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	return item, true
}

// Has reports whether sku is in the cart.
func (c *Cart) Has(sku string) bool {
	return slices.ContainsFunc(c.items, func(it upsell.CartItem) bool { return it.SKU == sku })
}

// Items returns a copy of the items in insertion order.
func (c *Cart) Items() []upsell.CartItem {
	return slices.Clone(c.items)
}

// SKUs returns the item SKUs in insertion order.
func (c *Cart) SKUs() []string {
	out := make([]string, len(c.items))
	for i, it := range c.items {
		out[i] = it.SKU
	}
	return out
}

// Len returns the number of items.
func (c *Cart) Len() int { return len(c.items) }

// Total returns the sum of item prices.
func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.items {
		total += it.Price
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() { c.items = nil }

// ItemFromProduct converts a catalog product into a cart line.
func ItemFromProduct(p upsell.Product) upsell.CartItem {
	return upsell.CartItem{SKU: p.SKU, Name: p.Name, Price: p.Price, Category: p.Category}
}

// Store persists a cart as one JSON document.
type Store struct {
	items *kv.Value[[]upsell.CartItem]
}

// NewStore returns a Store over store.
func NewStore(store kv.KV) *Store {
	return &Store{items: kv.Bind[[]upsell.CartItem](store, kv.Key(Namespace, ItemsKey))}
}

// Load returns the saved cart, or an empty one if nothing was saved.
func (s *Store) Load(ctx context.Context) (*Cart, error) {
	items, _, err := s.items.Load(ctx)
	if err != nil {
		return New(), fmt.Errorf("load cart: %w", err)
	}
	return New(items...), nil
}

// Save replaces the saved cart.
func (s *Store) Save(ctx context.Context, c *Cart) error {
	if c.Len() == 0 {
		return s.Clear(ctx)
	}
	if err := s.items.Save(ctx, c.Items()); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Clear removes the saved cart.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.items.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
