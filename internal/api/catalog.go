package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
)

// DefaultSearchLimit is the page size of one keyword search.
const DefaultSearchLimit = 12

// Price decodes from a JSON number, a numeric string or null.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*p = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
		if s == "" {
			*p = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("price %q: %w", s, err)
		}
		*p = Price(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Price(f)
	return nil
}

// productJSON is the wire shape of a product.
type productJSON struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Price    Price  `json:"price"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

func (p productJSON) product() upsell.Product {
	return upsell.Product{
		SKU:      strings.TrimSpace(p.SKU),
		Name:     p.Name,
		Price:    float64(p.Price),
		Category: p.Category,
		Image:    p.Image,
	}
}

// productList accepts either a bare array or an object wrapping one.
type productList []productJSON

func (l *productList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, (*[]productJSON)(l))
	}
	var wrapped struct {
		Products []productJSON `json:"products"`
		Results  []productJSON `json:"results"`
		Items    []productJSON `json:"items"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	switch {
	case wrapped.Products != nil:
		*l = wrapped.Products
	case wrapped.Results != nil:
		*l = wrapped.Results
	default:
		*l = wrapped.Items
	}
	return nil
}

// Catalog is the product side of the API.
type Catalog struct {
	client *Client
	limit  int
}

var _ upsell.Searcher = (*Catalog)(nil)

// NewCatalog creates a catalog returning at most limit results per search.
func NewCatalog(client *Client, limit int) *Catalog {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &Catalog{client: client, limit: limit}
}

// Search returns products matching term.
func (c *Catalog) Search(ctx context.Context, term string) ([]upsell.Product, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("limit", strconv.Itoa(c.limit))

	var list productList
	if err := c.client.Get(ctx, "/api/search", params, &list); err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}

	out := make([]upsell.Product, 0, len(list))
	for _, p := range list {
		out = append(out, p.product())
	}
	return out, nil
}

// Product looks up one product by SKU.
func (c *Catalog) Product(ctx context.Context, sku string) (upsell.Product, error) {
	params := url.Values{}
	params.Set("sku", sku)

	var p productJSON
	if err := c.client.Get(ctx, "/api/products", params, &p); err != nil {
		return upsell.Product{}, fmt.Errorf("product %q: %w", sku, err)
	}
	if p.SKU == "" {
		p.SKU = sku
	}
	return p.product(), nil
}

// Cart resolves SKUs into cart items, in order.
func (c *Catalog) Cart(ctx context.Context, skus []string) ([]upsell.CartItem, error) {
	items := make([]upsell.CartItem, 0, len(skus))
	for _, sku := range skus {
		p, err := c.Product(ctx, sku)
		if err != nil {
			return nil, err
		}
		items = append(items, upsell.CartItem{SKU: p.SKU, Name: p.Name, Price: p.Price, Category: p.Category})
	}
	return items, nil
}
