package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/whimsicalfrog/frogshop/internal/shop"
)

type ClickCmd struct {
	flags *Flags
	app   *shop.App
}

// NewClickCmd creates a new click command
func NewClickCmd(flags *Flags, app *shop.App) *ClickCmd {
	return &ClickCmd{flags: flags, app: app}
}

// Register adds the click command to the application
func (cmd *ClickCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "click",
		Usage:     "Record interest in a product",
		UsageText: "frogshop click <sku>...",
		Description: `Counts a click on each SKU, the same as selecting a suggestion in the console.

Clicked products rank higher in later suggestions.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *ClickCmd) run(ctx context.Context, c *cli.Command) error {
	skus := c.Args().Slice()
	if len(skus) == 0 {
		return fmt.Errorf("at least one SKU is required")
	}

	out := notices(c, cmd.app.Logger)
	for _, sku := range skus {
		sku = strings.TrimSpace(sku)
		if sku == "" {
			continue
		}
		if err := cmd.app.Upsells.RecordClick(ctx, sku); err != nil {
			return fmt.Errorf("record click %q: %w", sku, err)
		}
		out.Successf("We'll suggest more like %s", sku)
	}
	return nil
}
