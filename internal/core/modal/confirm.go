package modal

import (
	"context"
	"sync"
)

// Mode selects the buttons and result shape of a Confirmation.
type Mode string

const (
	ModeConfirm Mode = "confirm"
	ModeAlert   Mode = "alert"
	ModePrompt  Mode = "prompt"
)

// ConfirmationKey is the coordinator key of the shared confirmation modal.
const ConfirmationKey = "confirmation"

// Elements of the confirmation modal.
const (
	ConfirmBackdrop Element = "confirmation:backdrop"
	ConfirmInput    Element = "confirmation:input"
	ConfirmCancel   Element = "confirmation:cancel"
	ConfirmOK       Element = "confirmation:confirm"
)

// ConfirmOptions configure one Show call.
type ConfirmOptions struct {
	Title        string
	Message      string
	Mode         Mode
	ConfirmLabel string
	CancelLabel  string
	Placeholder  string
	DefaultValue string
	// CancelValue is the prompt result on cancel; nil unless set.
	CancelValue *string
}

func (o ConfirmOptions) withDefaults() ConfirmOptions {
	if o.Mode == "" {
		o.Mode = ModeConfirm
	}
	if o.ConfirmLabel == "" {
		switch o.Mode {
		case ModeAlert, ModePrompt:
			o.ConfirmLabel = "OK"
		default:
			o.ConfirmLabel = "Confirm"
		}
	}
	if o.CancelLabel == "" {
		o.CancelLabel = "Cancel"
	}
	return o
}

// Result is the settled outcome of a confirmation.
type Result struct {
	// Confirmed is the user's choice in confirm mode and always true in
	// alert mode.
	Confirmed bool
	// Value is the prompt input on confirm, or CancelValue on cancel.
	Value *string
}

// Pending is a confirmation that settles exactly once.
type Pending struct {
	once   sync.Once
	done   chan struct{}
	result Result
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) settle(r Result) bool {
	settled := false
	p.once.Do(func() {
		p.result = r
		close(p.done)
		settled = true
	})
	return settled
}

// Done is closed when the confirmation settles.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the outcome and whether it has settled.
func (p *Pending) Result() (Result, bool) {
	select {
	case <-p.done:
		return p.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the confirmation settles or ctx ends.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Confirmation is the shared confirm/alert/prompt dialog.
type Confirmation struct {
	coord *Coordinator

	mu      sync.Mutex
	opts    ConfirmOptions
	input   string
	pending *Pending
}

// NewConfirmation creates the dialog. The underlying modal is created lazily
// on the first Show.
func NewConfirmation(coord *Coordinator) *Confirmation {
	return &Confirmation{coord: coord}
}

func (c *Confirmation) modal() *Modal {
	return c.coord.Modal(ConfirmationKey, Options{
		Backdrop:   ConfirmBackdrop,
		Focusables: c.focusables,
		OnDismiss:  c.dismissed,
	})
}

func (c *Confirmation) focusables() []Element {
	c.mu.Lock()
	mode := c.opts.Mode
	c.mu.Unlock()

	switch mode {
	case ModeAlert:
		return []Element{ConfirmOK}
	case ModePrompt:
		return []Element{ConfirmInput, ConfirmCancel, ConfirmOK}
	default:
		return []Element{ConfirmCancel, ConfirmOK}
	}
}

func cancelResult(opts ConfirmOptions) Result {
	switch opts.Mode {
	case ModeAlert:
		return Result{Confirmed: true}
	case ModePrompt:
		return Result{Value: opts.CancelValue}
	default:
		return Result{}
	}
}

// Show opens the dialog. A request still pending from an earlier Show is
// settled as cancelled first.
func (c *Confirmation) Show(opts ConfirmOptions) *Pending {
	opts = opts.withDefaults()
	p := newPending()

	c.mu.Lock()
	prev, prevOpts := c.pending, c.opts
	c.opts = opts
	c.input = opts.DefaultValue
	c.pending = p
	c.mu.Unlock()

	if prev != nil {
		prev.settle(cancelResult(prevOpts))
	}

	m := c.modal()
	if m.State() == StateClosing {
		m.finishClose()
	}
	if !m.Open() {
		// Already open with the previous content; move focus to the new one.
		if els := c.focusables(); len(els) > 0 {
			c.coord.doc.Focus(els[0])
		}
	}
	return p
}

func (c *Confirmation) take() (*Pending, ConfirmOptions, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pending
	c.pending = nil
	return p, c.opts, c.input
}

// Confirm settles the pending request positively and closes the dialog.
func (c *Confirmation) Confirm() {
	p, opts, input := c.take()
	if p == nil {
		return
	}
	r := Result{Confirmed: true}
	if opts.Mode == ModePrompt {
		r.Value = &input
	}
	p.settle(r)
	c.modal().Close()
}

// Cancel settles the pending request as cancelled and closes the dialog.
func (c *Confirmation) Cancel() {
	p, opts, _ := c.take()
	if p != nil {
		p.settle(cancelResult(opts))
	}
	c.modal().Close()
}

// dismissed covers Escape and backdrop closes.
func (c *Confirmation) dismissed() {
	p, opts, _ := c.take()
	if p != nil {
		p.settle(cancelResult(opts))
	}
}

// SetInput replaces the prompt text.
func (c *Confirmation) SetInput(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = s
}

// Input returns the prompt text.
func (c *Confirmation) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Options returns the options of the current or last request.
func (c *Confirmation) Options() ConfirmOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// IsOpen reports whether the dialog is showing.
func (c *Confirmation) IsOpen() bool {
	m, err := c.coord.Lookup(ConfirmationKey)
	return err == nil && m.IsOpen()
}

// HandleKey routes a key press while the dialog is open. Enter activates the
// focused button, with the input treated as OK.
func (c *Confirmation) HandleKey(key string) bool {
	m := c.modal()
	if m.State() != StateOpen {
		return false
	}
	if key == "enter" {
		return c.Activate(c.coord.doc.ActiveElement())
	}
	return m.HandleKey(key)
}

// Activate handles a click or Enter on el.
func (c *Confirmation) Activate(el Element) bool {
	switch el {
	case ConfirmOK, ConfirmInput:
		c.Confirm()
		return true
	case ConfirmCancel:
		c.Cancel()
		return true
	default:
		return c.modal().HandleClick(el)
	}
}
