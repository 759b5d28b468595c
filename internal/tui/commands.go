package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/whimsicalfrog/frogshop/internal/core/cart"
	"github.com/whimsicalfrog/frogshop/internal/core/modal"
	"github.com/whimsicalfrog/frogshop/internal/core/notify"
	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
)

// Upseller produces recommendations and records interest in them.
type Upseller interface {
	GetUpsells(ctx context.Context, items []upsell.CartItem, excluded []string) []upsell.Recommendation
	RecordClick(ctx context.Context, sku string) error
}

// ProductLookup resolves a SKU to a catalog product.
type ProductLookup interface {
	Product(ctx context.Context, sku string) (upsell.Product, error)
}

// CartStore persists the working cart.
type CartStore interface {
	Load(ctx context.Context) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
}

// HistoryLister returns previously shown notifications, newest first.
type HistoryLister interface {
	History(ctx context.Context) ([]notify.Notification, error)
}

type cartLoadedMsg struct {
	cart *cart.Cart
	err  error
}

type upsellsLoadedMsg struct {
	seq  int
	recs []upsell.Recommendation
}

type clickRecordedMsg struct {
	product upsell.Product
	err     error
}

type productLookedUpMsg struct {
	sku     string
	product upsell.Product
	err     error
}

type cartSavedMsg struct {
	err error
}

type historyLoadedMsg struct {
	items []notify.Notification
	err   error
}

// confirmPurpose says what a settled confirmation should do.
type confirmPurpose int

const (
	confirmAdd confirmPurpose = iota
	confirmClear
	confirmAddBySKU
	confirmHistory
)

type confirmResultMsg struct {
	purpose confirmPurpose
	product upsell.Product
	result  modal.Result
	err     error
}

// cartRestoreMsg re-adds an item removed from the cart; it is sent by the
// undo action of the removal toast.
type cartRestoreMsg struct {
	item upsell.CartItem
}

// cartUndoAddMsg drops an item added to the cart.
type cartUndoAddMsg struct {
	sku string
}

func loadCartCmd(ctx context.Context, store CartStore) tea.Cmd {
	return func() tea.Msg {
		c, err := store.Load(ctx)
		return cartLoadedMsg{cart: c, err: err}
	}
}

func saveCartCmd(ctx context.Context, store CartStore, c *cart.Cart) tea.Cmd {
	if store == nil {
		return nil
	}
	snapshot := cart.New(c.Items()...)
	return func() tea.Msg {
		return cartSavedMsg{err: store.Save(ctx, snapshot)}
	}
}

func fetchUpsellsCmd(ctx context.Context, engine Upseller, seq int, items []upsell.CartItem) tea.Cmd {
	return func() tea.Msg {
		return upsellsLoadedMsg{seq: seq, recs: engine.GetUpsells(ctx, items, nil)}
	}
}

func recordClickCmd(ctx context.Context, engine Upseller, p upsell.Product) tea.Cmd {
	return func() tea.Msg {
		return clickRecordedMsg{product: p, err: engine.RecordClick(ctx, p.SKU)}
	}
}

func lookupProductCmd(ctx context.Context, products ProductLookup, sku string) tea.Cmd {
	return func() tea.Msg {
		p, err := products.Product(ctx, sku)
		return productLookedUpMsg{sku: sku, product: p, err: err}
	}
}

func loadHistoryCmd(ctx context.Context, history HistoryLister) tea.Cmd {
	return func() tea.Msg {
		items, err := history.History(ctx)
		return historyLoadedMsg{items: items, err: err}
	}
}

// awaitConfirmCmd blocks until p settles and reports the outcome.
func awaitConfirmCmd(ctx context.Context, p *modal.Pending, purpose confirmPurpose, product upsell.Product) tea.Cmd {
	return func() tea.Msg {
		r, err := p.Wait(ctx)
		return confirmResultMsg{purpose: purpose, product: product, result: r, err: err}
	}
}
