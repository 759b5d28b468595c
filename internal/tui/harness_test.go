package tui

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/whimsicalfrog/frogshop/internal/core/cart"
	"github.com/whimsicalfrog/frogshop/internal/core/notify"
	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
	"github.com/whimsicalfrog/frogshop/pkg/clock"
	"github.com/whimsicalfrog/frogshop/pkg/tuitest"
)

const cmdTimeout = 100 * time.Millisecond

var (
	tumbler = upsell.CartItem{SKU: "TUM1", Name: "Frog Tumbler", Price: 20, Category: "Drinkware"}
	lid     = upsell.Product{SKU: "LID1", Name: "Tumbler Lid", Price: 5, Category: "Accessories"}
	straw   = upsell.Product{SKU: "STR1", Name: "Straw Pack", Price: 4, Category: "Accessories"}
)

type fakeUpsells struct {
	mu     sync.Mutex
	recs   []upsell.Recommendation
	clicks []string
	carts  [][]upsell.CartItem
	err    error
}

func (f *fakeUpsells) GetUpsells(_ context.Context, items []upsell.CartItem, _ []string) []upsell.Recommendation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts = append(f.carts, items)
	var out []upsell.Recommendation
	for _, r := range f.recs {
		if !cart.New(items...).Has(r.SKU) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeUpsells) RecordClick(_ context.Context, sku string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.clicks = append(f.clicks, sku)
	return nil
}

type fakeProducts map[string]upsell.Product

func (f fakeProducts) Product(_ context.Context, sku string) (upsell.Product, error) {
	p, ok := f[sku]
	if !ok {
		return upsell.Product{}, errors.New("not found")
	}
	return p, nil
}

type memCarts struct {
	mu    sync.Mutex
	saved *cart.Cart
	saves int
}

func (s *memCarts) Load(context.Context) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return cart.New(), nil
	}
	return cart.New(s.saved.Items()...), nil
}

func (s *memCarts) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = cart.New(c.Items()...)
	s.saves++
	return nil
}

func (s *memCarts) SKUs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return nil
	}
	return s.saved.SKUs()
}

type fakeHistory []notify.Notification

func (f fakeHistory) History(context.Context) ([]notify.Notification, error) {
	return f, nil
}

// harness drives a Model the way the bubbletea runtime would: commands run
// on goroutines and their messages are fed back into Update. Commands that
// block past cmdTimeout stay pending and are collected on later rounds.
type harness struct {
	t       *testing.T
	m       Model
	clock   *clock.Fake
	toasts  *notify.Manager
	upsells *fakeUpsells
	carts   *memCarts

	bridgeWait uintptr
	pending    []chan tea.Msg
}

func newHarness(t *testing.T, deps Deps, opts Options) *harness {
	t.Helper()
	fake := clock.NewFake(time.Unix(1_700_000_000, 0))
	if deps.Upsells == nil {
		deps.Upsells = &fakeUpsells{recs: []upsell.Recommendation{
			{Product: lid, Score: 5},
			{Product: straw, Score: 4},
		}}
	}
	if deps.Carts == nil {
		deps.Carts = &memCarts{}
	}
	deps.Clock = fake
	deps.Logger = zerolog.Nop()
	deps.Toasts = notify.NewManager(notify.WithClock(fake))

	h := &harness{
		t:      t,
		m:      New(context.Background(), deps, opts),
		clock:  fake,
		toasts: deps.Toasts,
	}
	h.upsells, _ = deps.Upsells.(*fakeUpsells)
	h.carts, _ = deps.Carts.(*memCarts)
	h.bridgeWait = reflect.ValueOf(h.m.bridge.wait()).Pointer()

	h.update(tuitest.WindowSize(100, 30))
	h.run(h.m.Init())
	return h
}

func (h *harness) update(msg tea.Msg) {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	h.run(cmd)
}

func (h *harness) press(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.update(tuitest.Key(k))
	}
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	for _, msg := range tuitest.Type(s) {
		h.update(msg)
	}
}

// advance moves the fake clock and delivers bridged messages.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	h.clock.Advance(d)
	h.drainBridge()
}

// drainBridge feeds queued background messages into Update.
func (h *harness) drainBridge() {
	h.t.Helper()
	for {
		select {
		case msg := <-h.m.bridge.ch:
			h.update(msg)
		default:
			return
		}
	}
}

func (h *harness) launch(cmd tea.Cmd) {
	if cmd == nil || reflect.ValueOf(cmd).Pointer() == h.bridgeWait {
		return
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	h.pending = append(h.pending, ch)
}

// collect gathers every message produced before the deadline, expanding
// batches as they resolve.
func (h *harness) collect() []tea.Msg {
	var msgs []tea.Msg
	deadline := time.After(cmdTimeout)
	for len(h.pending) > 0 {
		current := h.pending
		h.pending = nil
		progressed := false
		for _, ch := range current {
			select {
			case msg := <-ch:
				progressed = true
				if batch, ok := msg.(tea.BatchMsg); ok {
					for _, c := range batch {
						h.launch(c)
					}
					continue
				}
				msgs = append(msgs, msg)
			default:
				h.pending = append(h.pending, ch)
			}
		}
		if !progressed {
			select {
			case <-deadline:
				return msgs
			case <-time.After(time.Millisecond):
			}
		}
	}
	return msgs
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	h.launch(cmd)
	for round := 0; round < 10; round++ {
		msgs := h.collect()
		if len(msgs) == 0 {
			return
		}
		for _, msg := range msgs {
			if _, ok := msg.(spinner.TickMsg); ok {
				continue
			}
			next, c := h.m.Update(msg)
			h.m = next.(Model)
			h.launch(c)
		}
	}
}

func (h *harness) view() string {
	return tuitest.StripANSI(h.m.View())
}

func (h *harness) toastMessages() []string {
	var out []string
	for _, n := range h.toasts.Live() {
		out = append(out, n.Message)
	}
	return out
}
