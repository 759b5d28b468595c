package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/whimsicalfrog/frogshop/internal/core/styles"
	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
	"github.com/whimsicalfrog/frogshop/internal/shop"
	"github.com/whimsicalfrog/frogshop/pkg/iojson"
)

const (
	formatTable    = "table"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

type UpsellCmd struct {
	flags *Flags
	app   *shop.App

	// flags
	cart    cartSource
	exclude []string
	format  string
	pick    bool
}

// NewUpsellCmd creates a new upsell command
func NewUpsellCmd(flags *Flags, app *shop.App) *UpsellCmd {
	return &UpsellCmd{flags: flags, app: app}
}

// Register adds the upsell command to the application
func (cmd *UpsellCmd) Register(app *cli.Command) *cli.Command {
	flags := cmd.cart.flags("sku", "SKU in the cart (repeatable)")
	flags = append(flags,
		&cli.StringSliceFlag{
			Name:        "exclude",
			Usage:       "SKU to leave out of the suggestions (repeatable)",
			Destination: &cmd.exclude,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "output format (table, json, markdown); defaults to table on a terminal and json otherwise",
			Destination: &cmd.format,
		},
		&cli.BoolFlag{
			Name:        "pick",
			Usage:       "choose a suggestion interactively and remember the interest",
			Destination: &cmd.pick,
		},
	)

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "upsell",
		Usage:     "Suggest add-on products for a cart",
		UsageText: "frogshop upsell [--sku SKU]... [-f cart.json] [--format table|json|markdown] [--pick]",
		Description: `Ranks catalog products that pair well with the cart.

The cart comes from --sku, from --file, or from the cart saved by the console.
JSON output is one recommendation per line.`,
		Flags:  flags,
		Action: cmd.run,
	})

	return app
}

func (cmd *UpsellCmd) run(ctx context.Context, c *cli.Command) error {
	format, err := cmd.outputFormat(c)
	if err != nil {
		return err
	}

	items, err := cmd.cartItems(ctx, c)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		notices(c, cmd.app.Logger).Warnf("Cart is empty; pass --sku or --file")
		return nil
	}

	recs := cmd.app.Upsells.GetUpsells(ctx, items, cmd.exclude)

	if cmd.pick {
		return cmd.runPick(ctx, c, recs)
	}

	out := stdout(c)
	switch format {
	case formatJSON:
		return iojson.WriteLines(out, recs)
	case formatMarkdown:
		render := styles.RenderPlainMarkdown
		if isTerminal(out) {
			render = styles.RenderMarkdown
		}
		_, err := fmt.Fprintln(out, render(upsellMarkdown(items, recs), 80))
		return err
	default:
		if len(recs) == 0 {
			notices(c, cmd.app.Logger).Infof("No suggestions for this cart")
			return nil
		}
		return writeUpsellTable(out, recs)
	}
}

func (cmd *UpsellCmd) outputFormat(c *cli.Command) (string, error) {
	switch cmd.format {
	case "":
		if isTerminal(stdout(c)) {
			return formatTable, nil
		}
		return formatJSON, nil
	case formatTable, formatJSON, formatMarkdown:
		return cmd.format, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or markdown)", cmd.format)
	}
}

func (cmd *UpsellCmd) cartItems(ctx context.Context, c *cli.Command) ([]upsell.CartItem, error) {
	items, ok, err := cmd.cart.items(ctx, cmd.app.Catalog, stdin(c))
	if err != nil || ok {
		return items, err
	}

	saved, err := cmd.app.Carts.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return saved.Items(), nil
}

func (cmd *UpsellCmd) runPick(ctx context.Context, c *cli.Command, recs []upsell.Recommendation) error {
	out := notices(c, cmd.app.Logger)
	if len(recs) == 0 {
		out.Infof("No suggestions for this cart")
		return nil
	}

	options := make([]huh.Option[string], len(recs))
	for i, r := range recs {
		options[i] = huh.NewOption(fmt.Sprintf("%s  $%.2f", r.Name, r.Price), r.SKU)
	}

	var sku string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("You might also like").
				Description("We'll suggest more like your pick").
				Options(options...).
				Value(&sku),
		),
	).WithTheme(styles.FormTheme()).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("form: %w", err)
	}

	if err := cmd.app.Upsells.RecordClick(ctx, sku); err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	out.Successf("We'll suggest more like %s", sku)
	return nil
}

func writeUpsellTable(out io.Writer, recs []upsell.Recommendation) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SKU\tNAME\tPRICE\tSCORE")
	for _, r := range recs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t$%.2f\t%d\n", r.SKU, r.Name, r.Price, r.Score)
	}
	return w.Flush()
}

func upsellMarkdown(items []upsell.CartItem, recs []upsell.Recommendation) string {
	var b strings.Builder
	b.WriteString("## Your cart\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "- %s `%s` $%.2f\n", it.Name, it.SKU, it.Price)
	}

	b.WriteString("\n## You might also like\n\n")
	if len(recs) == 0 {
		b.WriteString("_No suggestions for this cart._\n")
		return b.String()
	}
	b.WriteString("| Product | SKU | Price | Score |\n|---|---|---|---|\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "| %s | `%s` | $%.2f | %d |\n", r.Name, r.SKU, r.Price, r.Score)
	}
	return b.String()
}
