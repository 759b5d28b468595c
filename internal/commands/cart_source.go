package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
	"github.com/whimsicalfrog/frogshop/pkg/iojson"
)

// CartResolver turns SKUs into cart items.
type CartResolver interface {
	Cart(ctx context.Context, skus []string) ([]upsell.CartItem, error)
}

// cartSource is the SKU list / JSON file pair shared by commands that take a
// cart on the command line.
type cartSource struct {
	skus []string
	file iojson.FileReader[[]upsell.CartItem]
}

func (s *cartSource) flags(name, usage string) []cli.Flag {
	file := s.file.Flag()
	file.Usage = "JSON cart file, a list of {sku, name, price, category} (- reads stdin)"
	file.Local = true
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        name,
			Usage:       usage,
			Local:       true,
			Destination: &s.skus,
		},
		file,
	}
}

// items returns the cart given on the command line. ok is false when
// neither SKUs nor a file were given.
func (s *cartSource) items(ctx context.Context, resolver CartResolver, stdin io.Reader) (items []upsell.CartItem, ok bool, err error) {
	switch {
	case len(s.skus) > 0:
		items, err = resolver.Cart(ctx, s.skus)
		if err != nil {
			return nil, true, fmt.Errorf("resolve cart: %w", err)
		}
		return items, true, nil
	case s.file.Provided():
		items, err = s.file.Read(stdin)
		if err != nil {
			return nil, true, fmt.Errorf("read cart: %w", err)
		}
		return items, true, nil
	default:
		return nil, false, nil
	}
}
