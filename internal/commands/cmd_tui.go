package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/whimsicalfrog/frogshop/internal/shop"
	"github.com/whimsicalfrog/frogshop/internal/tui"
	"github.com/whimsicalfrog/frogshop/pkg/clock"
	"github.com/whimsicalfrog/frogshop/pkg/logutils"
)

type TuiCmd struct {
	flags *Flags
	app   *shop.App

	cart cartSource
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *shop.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Flags returns the TUI flags for registration on the root command.
func (cmd *TuiCmd) Flags() []cli.Flag {
	return cmd.cart.flags("cart", "start with these SKUs in the cart, replacing the saved cart")
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, c *cli.Command) error {
	initial, _, err := cmd.cart.items(ctx, cmd.app.Catalog, stdin(c))
	if err != nil {
		return err
	}

	deps := tui.Deps{
		Upsells:  cmd.app.Upsells,
		Products: cmd.app.Catalog,
		Carts:    cmd.app.Carts,
		History:  cmd.app.History,
		Toasts:   cmd.app.Toasts,
		Clock:    clock.Real{},
		Logger:   logutils.Component(cmd.app.Logger, "tui"),
		Metrics:  cmd.app.Metrics,
	}
	opts := tui.Options{
		CloseDuration: cmd.app.Config.Modal.CloseDuration,
		InitialCart:   initial,
	}

	p := tea.NewProgram(
		tui.New(ctx, deps, opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
