// Package tui implements the frogshop storefront console: the working cart,
// live upsell suggestions, toast notifications and confirmation dialogs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/whimsicalfrog/frogshop/internal/core/cart"
	"github.com/whimsicalfrog/frogshop/internal/core/modal"
	"github.com/whimsicalfrog/frogshop/internal/core/notify"
	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
	"github.com/whimsicalfrog/frogshop/internal/metrics"
	"github.com/whimsicalfrog/frogshop/pkg/clock"
)

// Deps are the collaborators of the console. Products, Carts and History are
// optional; the features that need them report themselves unavailable.
type Deps struct {
	Upsells  Upseller
	Products ProductLookup
	Carts    CartStore
	History  HistoryLister
	Toasts   *notify.Manager
	Clock    clock.Clock
	Logger   zerolog.Logger
	Metrics  *metrics.Manager
}

// Options tune the console.
type Options struct {
	// CloseDuration is the modal close animation window.
	CloseDuration time.Duration
	// InitialCart, when non-empty, replaces the saved cart at startup.
	InitialCart []upsell.CartItem
}

// Model is the bubbletea model of the console.
type Model struct {
	ctx    context.Context
	deps   Deps
	opts   Options
	logger zerolog.Logger

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model

	screen  *Screen
	coord   *modal.Coordinator
	confirm *modal.Confirmation
	toasts  *notify.Manager
	bridge  *bridge

	cart        *cart.Cart
	recs        []upsell.Recommendation
	cartCursor  int
	upsellIdx   int
	upsellSeq   int
	loading     bool
	fullHelp    bool
	confirmBody string

	width    int
	height   int
	quitting bool
}

// New builds the console model.
func New(ctx context.Context, deps Deps, opts Options) Model {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Toasts == nil {
		deps.Toasts = notify.NewManager(notify.WithClock(deps.Clock), notify.WithLogger(deps.Logger))
	}
	logger := deps.Logger.With().Str("component", "tui").Logger()

	b := newBridge()
	screen := NewScreen(func() { b.send(screenChangedMsg{}) })

	coordOpts := []modal.Option{
		modal.WithClock(deps.Clock),
		modal.WithLogger(logger),
		modal.WithMetrics(deps.Metrics),
	}
	if opts.CloseDuration > 0 {
		coordOpts = append(coordOpts, modal.WithCloseDuration(opts.CloseDuration))
	}
	coord := modal.NewCoordinator(screen, coordOpts...)

	deps.Toasts.Subscribe(func(ev notify.Event) { b.send(notifyEventMsg(ev)) })

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))

	return Model{
		ctx:     ctx,
		deps:    deps,
		opts:    opts,
		logger:  logger,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		input:   newPromptInput(),
		screen:  screen,
		coord:   coord,
		confirm: modal.NewConfirmation(coord),
		toasts:  deps.Toasts,
		bridge:  b,
		cart:    cart.New(),
	}
}

// Init starts listening for background events and loads the cart.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.bridge.wait()}
	switch {
	case len(m.opts.InitialCart) > 0:
		items := m.opts.InitialCart
		cmds = append(cmds, func() tea.Msg {
			return cartLoadedMsg{cart: cart.New(items...)}
		})
	case m.deps.Carts != nil:
		cmds = append(cmds, loadCartCmd(m.ctx, m.deps.Carts))
	default:
		cmds = append(cmds, func() tea.Msg { return cartLoadedMsg{cart: cart.New()} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	// Bridged from timer goroutines
	case notifyEventMsg, screenChangedMsg:
		return m, m.bridge.wait()
	case cartRestoreMsg:
		var cmd tea.Cmd
		m, cmd = m.addItem(msg.item, false)
		return m, tea.Batch(cmd, m.bridge.wait())
	case cartUndoAddMsg:
		var cmd tea.Cmd
		m, cmd = m.removeItem(msg.sku, false)
		return m, tea.Batch(cmd, m.bridge.wait())

	// Data loaded
	case cartLoadedMsg:
		return m.handleCartLoaded(msg)
	case upsellsLoadedMsg:
		return m.handleUpsellsLoaded(msg)
	case clickRecordedMsg:
		return m.handleClickRecorded(msg)
	case productLookedUpMsg:
		return m.handleProductLookedUp(msg)
	case cartSavedMsg:
		if msg.err != nil {
			m.logger.Error().Err(msg.err).Msg("save cart")
			m.showToast(notify.KindError, "Could not save your cart", notify.Options{})
		}
		return m, nil
	case historyLoadedMsg:
		return m.handleHistoryLoaded(msg)
	case confirmResultMsg:
		return m.handleConfirmResult(msg)

	// Input
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m Model) showToast(kind notify.Kind, message string, opts notify.Options) int64 {
	id, _ := m.toasts.Show(message, kind, opts)
	return id
}

// handleKey routes key presses to the open dialog first.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		return m.quit()
	}
	if m.confirm.IsOpen() {
		return m.handleConfirmKey(msg, keyStr)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "tab", "shift+tab", "esc", "enter":
		m.confirm.HandleKey(keyStr)
		return m, m.syncInputFocus()
	case "left", "right":
		if m.screen.ActiveElement() != modal.ConfirmInput {
			dir := "tab"
			if keyStr == "left" {
				dir = "shift+tab"
			}
			m.confirm.HandleKey(dir)
			return m, m.syncInputFocus()
		}
	}

	if m.confirm.Options().Mode == modal.ModePrompt && m.screen.ActiveElement() == modal.ConfirmInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.confirm.SetInput(m.input.Value())
		return m, cmd
	}
	return m, nil
}

// syncInputFocus mirrors the dialog focus onto the text input cursor.
func (m *Model) syncInputFocus() tea.Cmd {
	if m.confirm.IsOpen() && m.screen.ActiveElement() == modal.ConfirmInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.fullHelp = !m.fullHelp
		m.help.ShowAll = m.fullHelp
		return m, nil
	case key.Matches(msg, m.keys.SwitchPanel):
		m.screen.CyclePanels()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1), nil
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1), nil
	case key.Matches(msg, m.keys.Refresh):
		return m.refreshUpsells()
	case key.Matches(msg, m.keys.Dismiss):
		if live := m.toasts.Live(); len(live) > 0 {
			m.toasts.Remove(live[len(live)-1].ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.DismissAll):
		m.toasts.RemoveAll()
		return m, nil
	case key.Matches(msg, m.keys.ToastAction):
		m.activateNewestAction()
		return m, nil
	case key.Matches(msg, m.keys.History):
		if m.deps.History == nil {
			m.showToast(notify.KindWarning, "Notification history is unavailable", notify.Options{})
			return m, nil
		}
		return m, loadHistoryCmd(m.ctx, m.deps.History)
	case key.Matches(msg, m.keys.AddBySKU):
		if m.deps.Products == nil {
			m.showToast(notify.KindWarning, "Catalog lookup is unavailable", notify.Options{})
			return m, nil
		}
		return m.showConfirm(confirmAddBySKU, upsell.Product{}, modal.ConfirmOptions{
			Title:        "Add by SKU",
			Message:      "Enter the SKU of the product to add.",
			Mode:         modal.ModePrompt,
			ConfirmLabel: "Add",
			Placeholder:  "SKU",
		}, "")
	case key.Matches(msg, m.keys.ClearCart):
		if m.cart.Len() == 0 {
			m.showToast(notify.KindInfo, "Your cart is already empty", notify.Options{})
			return m, nil
		}
		return m.showConfirm(confirmClear, upsell.Product{}, modal.ConfirmOptions{
			Title:        "Clear cart",
			Message:      fmt.Sprintf("Remove all %d items from your cart?", m.cart.Len()),
			ConfirmLabel: "Clear",
		}, "")
	}

	if m.screen.Focused(ElemUpsells) {
		rec, ok := m.selectedRecommendation()
		if !ok {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Select):
			return m, recordClickCmd(m.ctx, m.deps.Upsells, rec.Product)
		case key.Matches(msg, m.keys.Add):
			return m.showConfirm(confirmAdd, rec.Product, modal.ConfirmOptions{
				Title:        "Add to cart",
				Message:      fmt.Sprintf("Add %s (%s) to your cart?", rec.Name, formatPrice(rec.Price)),
				ConfirmLabel: "Add",
			}, "")
		}
	}

	if m.screen.Focused(ElemCart) && key.Matches(msg, m.keys.Remove) {
		items := m.cart.Items()
		if m.cartCursor < len(items) {
			return m.removeItem(items[m.cartCursor].SKU, true)
		}
	}

	return m, nil
}

// activateNewestAction runs the first action of the newest toast that has
// one.
func (m Model) activateNewestAction() {
	live := m.toasts.Live()
	for i := len(live) - 1; i >= 0; i-- {
		n := live[i]
		if len(n.Actions) > 0 && n.State != notify.StateLeaving {
			m.toasts.ActivateAction(n.ID, 0)
			return
		}
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if m.screen.ScrollLocked() {
			return m, nil
		}
		delta := 1
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		return m.moveCursor(delta), nil

	case tea.MouseButtonLeft:
		if m.confirm.IsOpen() {
			_, box := m.modalLayout()
			if !box.contains(msg.X, msg.Y) {
				m.confirm.Activate(modal.ConfirmBackdrop)
			}
			return m, m.syncInputFocus()
		}
		l := m.layout()
		for _, b := range l.toastBoxes {
			if b.contains(msg.X, msg.Y-l.toastTop) {
				m.toasts.Activate(b.id)
				break
			}
		}
	}
	return m, nil
}

func (m Model) moveCursor(delta int) Model {
	if m.screen.ScrollLocked() {
		return m
	}
	if m.screen.Focused(ElemUpsells) {
		m.upsellIdx = clamp(m.upsellIdx+delta, 0, len(m.recs)-1)
	} else {
		m.cartCursor = clamp(m.cartCursor+delta, 0, m.cart.Len()-1)
	}
	return m
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func (m Model) selectedRecommendation() (upsell.Recommendation, bool) {
	if m.upsellIdx < 0 || m.upsellIdx >= len(m.recs) {
		return upsell.Recommendation{}, false
	}
	return m.recs[m.upsellIdx], true
}

// showConfirm opens the dialog and waits for it to settle in the
// background. body, when set, replaces the plain message.
func (m Model) showConfirm(purpose confirmPurpose, p upsell.Product, opts modal.ConfirmOptions, body string) (tea.Model, tea.Cmd) {
	m.confirmBody = body
	m.input.Reset()
	m.input.Placeholder = opts.Placeholder
	m.input.SetValue(opts.DefaultValue)

	pending := m.confirm.Show(opts)
	cmd := m.syncInputFocus()
	return m, tea.Batch(cmd, awaitConfirmCmd(m.ctx, pending, purpose, p))
}

func (m Model) handleConfirmResult(msg confirmResultMsg) (tea.Model, tea.Cmd) {
	m.input.Blur()
	if msg.err != nil {
		return m, nil
	}

	switch msg.purpose {
	case confirmAdd:
		if msg.result.Confirmed {
			return m.addItem(cart.ItemFromProduct(msg.product), true)
		}
	case confirmClear:
		if msg.result.Confirmed {
			m.cart.Clear()
			m.cartCursor = 0
			m.showToast(notify.KindSuccess, "Cart cleared", notify.Options{})
			var refresh tea.Cmd
			m, refresh = m.refreshUpsells()
			return m, tea.Batch(saveCartCmd(m.ctx, m.deps.Carts, m.cart), refresh)
		}
	case confirmAddBySKU:
		if !msg.result.Confirmed || msg.result.Value == nil {
			return m, nil
		}
		sku := strings.TrimSpace(*msg.result.Value)
		if sku == "" {
			m.showToast(notify.KindValidation, "Enter a SKU to add", notify.Options{})
			return m, nil
		}
		if m.cart.Has(sku) {
			m.showToast(notify.KindInfo, sku+" is already in your cart", notify.Options{})
			return m, nil
		}
		return m, lookupProductCmd(m.ctx, m.deps.Products, sku)
	}
	return m, nil
}

// addItem puts item in the cart. With undo set the success toast carries an
// Undo action.
func (m Model) addItem(item upsell.CartItem, undo bool) (Model, tea.Cmd) {
	if !m.cart.Add(item) {
		m.showToast(notify.KindInfo, item.Name+" is already in your cart", notify.Options{})
		return m, nil
	}

	opts := notify.Options{Title: "Added to cart"}
	if undo {
		b, sku := m.bridge, item.SKU
		opts.Actions = []notify.Action{{
			Label:      "Undo",
			OnActivate: func(notify.ActionContext) { b.send(cartUndoAddMsg{sku: sku}) },
		}}
	}
	m.showToast(notify.KindSuccess, item.Name, opts)

	m, refresh := m.refreshUpsells()
	return m, tea.Batch(saveCartCmd(m.ctx, m.deps.Carts, m.cart), refresh)
}

// removeItem drops sku from the cart. With undo set the toast carries an
// Undo action restoring it.
func (m Model) removeItem(sku string, undo bool) (Model, tea.Cmd) {
	item, ok := m.cart.Remove(sku)
	if !ok {
		return m, nil
	}
	m.cartCursor = clamp(m.cartCursor, 0, m.cart.Len()-1)

	opts := notify.Options{Title: "Removed from cart"}
	if undo {
		b := m.bridge
		opts.Actions = []notify.Action{{
			Label:      "Undo",
			OnActivate: func(notify.ActionContext) { b.send(cartRestoreMsg{item: item}) },
		}}
	}
	m.showToast(notify.KindInfo, item.Name, opts)

	m, refresh := m.refreshUpsells()
	return m, tea.Batch(saveCartCmd(m.ctx, m.deps.Carts, m.cart), refresh)
}

// refreshUpsells starts a new recommendation fetch. Results of earlier
// fetches that arrive later are dropped.
func (m Model) refreshUpsells() (Model, tea.Cmd) {
	m.upsellSeq++
	if m.cart.Len() == 0 || m.deps.Upsells == nil {
		m.recs = nil
		m.upsellIdx = 0
		m.loading = false
		return m, nil
	}
	m.loading = true
	return m, tea.Batch(
		fetchUpsellsCmd(m.ctx, m.deps.Upsells, m.upsellSeq, m.cart.Items()),
		m.spinner.Tick,
	)
}

func (m Model) handleCartLoaded(msg cartLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Msg("load saved cart")
		m.showToast(notify.KindWarning, "Could not load your saved cart", notify.Options{})
	}
	if msg.cart != nil {
		m.cart = msg.cart
	}
	m.cartCursor = 0

	m, refresh := m.refreshUpsells()
	if len(m.opts.InitialCart) > 0 {
		return m, tea.Batch(saveCartCmd(m.ctx, m.deps.Carts, m.cart), refresh)
	}
	return m, refresh
}

func (m Model) handleUpsellsLoaded(msg upsellsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.upsellSeq {
		return m, nil
	}
	m.loading = false
	m.recs = msg.recs
	m.upsellIdx = clamp(m.upsellIdx, 0, len(m.recs)-1)
	return m, nil
}

func (m Model) handleClickRecorded(msg clickRecordedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Str("sku", msg.product.SKU).Msg("record click")
		m.showToast(notify.KindError, "Could not remember your interest", notify.Options{})
		return m, nil
	}
	m.showToast(notify.KindInfo, "We'll suggest more like "+msg.product.Name, notify.Options{})
	return m.refreshUpsells()
}

func (m Model) handleProductLookedUp(msg productLookedUpMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Str("sku", msg.sku).Msg("product lookup")
		m.showToast(notify.KindError, "No product found for "+msg.sku, notify.Options{})
		return m, nil
	}
	return m.addItem(cart.ItemFromProduct(msg.product), true)
}

func (m Model) handleHistoryLoaded(msg historyLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Msg("load notification history")
		m.showToast(notify.KindError, "Could not load notification history", notify.Options{})
		return m, nil
	}

	body := historyMarkdown(msg.items, historyLimit)
	return m.showConfirm(confirmHistory, upsell.Product{}, modal.ConfirmOptions{
		Title: "Recent notifications",
		Mode:  modal.ModeAlert,
	}, renderMarkdownBody(body))
}
