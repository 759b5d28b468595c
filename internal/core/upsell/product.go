// Package upsell recommends add-on products for a cart. Candidates come from
// a keyword search fan-out and are ranked by an additive heuristic score.
package upsell

import "context"

// Product is a searchable catalog product.
type Product struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
	Image    string  `json:"image,omitempty"`
}

// CartItem is a product the shopper already has.
type CartItem struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

// Recommendation is a ranked candidate and the score that placed it.
type Recommendation struct {
	Product
	Score int `json:"score"`
}

// Searcher runs one catalog search.
type Searcher interface {
	Search(ctx context.Context, term string) ([]Product, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, term string) ([]Product, error)

func (f SearcherFunc) Search(ctx context.Context, term string) ([]Product, error) {
	return f(ctx, term)
}
