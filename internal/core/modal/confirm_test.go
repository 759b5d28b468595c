package modal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settled(t *testing.T, p *Pending) Result {
	t.Helper()
	r, ok := p.Result()
	require.True(t, ok, "pending should be settled")
	return r
}

func TestConfirmation_confirm_mode(t *testing.T) {
	tests := []struct {
		name   string
		act    func(c *Confirmation)
		expect bool
	}{
		{"confirm button", func(c *Confirmation) { c.Activate(ConfirmOK) }, true},
		{"cancel button", func(c *Confirmation) { c.Activate(ConfirmCancel) }, false},
		{"escape", func(c *Confirmation) { c.HandleKey(KeyEscape) }, false},
		{"backdrop", func(c *Confirmation) { c.Activate(ConfirmBackdrop) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord, fake := newTestCoordinator(t, newFakeDoc())
			c := NewConfirmation(coord)

			p := c.Show(ConfirmOptions{Title: "Remove item?", Mode: ModeConfirm})
			assert.True(t, c.IsOpen())

			tt.act(c)
			fake.Advance(DefaultCloseDuration)

			assert.Equal(t, tt.expect, settled(t, p).Confirmed)
			assert.False(t, c.IsOpen())
			assert.False(t, coord.ScrollLocked())
		})
	}
}

func TestConfirmation_alert_always_true(t *testing.T) {
	coord, _ := newTestCoordinator(t, newFakeDoc())
	c := NewConfirmation(coord)

	p := c.Show(ConfirmOptions{Mode: ModeAlert, Message: "Saved"})
	assert.Equal(t, "OK", c.Options().ConfirmLabel)
	c.HandleKey(KeyEscape)

	assert.True(t, settled(t, p).Confirmed)
}

func TestConfirmation_prompt(t *testing.T) {
	cancelValue := "(none)"

	tests := []struct {
		name  string
		opts  ConfirmOptions
		act   func(c *Confirmation)
		value *string
	}{
		{
			name:  "ok returns typed text",
			act:   func(c *Confirmation) { c.SetInput("frog mug"); c.Activate(ConfirmOK) },
			value: strPtr("frog mug"),
		},
		{
			name:  "enter in input returns typed text",
			act:   func(c *Confirmation) { c.SetInput(""); c.HandleKey("enter") },
			value: strPtr(""),
		},
		{
			name: "escape returns nil",
			act:  func(c *Confirmation) { c.SetInput("ignored"); c.HandleKey(KeyEscape) },
		},
		{
			name: "backdrop returns nil",
			act:  func(c *Confirmation) { c.Activate(ConfirmBackdrop) },
		},
		{
			name: "cancel returns nil",
			act:  func(c *Confirmation) { c.Activate(ConfirmCancel) },
		},
		{
			name:  "cancel returns custom cancel value",
			opts:  ConfirmOptions{CancelValue: &cancelValue},
			act:   func(c *Confirmation) { c.HandleKey(KeyEscape) },
			value: &cancelValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newFakeDoc()
			coord, _ := newTestCoordinator(t, doc)
			c := NewConfirmation(coord)

			opts := tt.opts
			opts.Mode = ModePrompt
			p := c.Show(opts)
			assert.Equal(t, ConfirmInput, doc.active, "prompt focuses the input")

			tt.act(c)

			r := settled(t, p)
			if tt.value == nil {
				assert.Nil(t, r.Value)
				assert.False(t, r.Confirmed)
			} else {
				require.NotNil(t, r.Value)
				assert.Equal(t, *tt.value, *r.Value)
			}
		})
	}
}

func TestConfirmation_settles_exactly_once(t *testing.T) {
	coord, fake := newTestCoordinator(t, newFakeDoc())
	c := NewConfirmation(coord)

	p := c.Show(ConfirmOptions{Mode: ModePrompt})
	c.SetInput("first")
	c.Confirm()
	c.Cancel()
	c.HandleKey(KeyEscape)
	c.Activate(ConfirmBackdrop)
	fake.Advance(time.Second)

	r := settled(t, p)
	require.NotNil(t, r.Value)
	assert.Equal(t, "first", *r.Value)
}

func TestConfirmation_new_show_cancels_previous(t *testing.T) {
	coord, _ := newTestCoordinator(t, newFakeDoc())
	c := NewConfirmation(coord)

	first := c.Show(ConfirmOptions{Mode: ModeConfirm})
	second := c.Show(ConfirmOptions{Mode: ModeConfirm})

	assert.False(t, settled(t, first).Confirmed)
	_, ok := second.Result()
	assert.False(t, ok)

	c.Confirm()
	assert.True(t, settled(t, second).Confirmed)
}

func TestConfirmation_show_while_closing_reopens(t *testing.T) {
	coord, _ := newTestCoordinator(t, newFakeDoc())
	c := NewConfirmation(coord)

	c.Show(ConfirmOptions{})
	c.Confirm()

	p := c.Show(ConfirmOptions{Mode: ModeAlert})
	assert.True(t, c.IsOpen())
	assert.True(t, coord.ScrollLocked())

	c.Confirm()
	assert.True(t, settled(t, p).Confirmed)
}

func TestConfirmation_focus_trap_and_enter_on_cancel(t *testing.T) {
	doc := newFakeDoc()
	coord, _ := newTestCoordinator(t, doc)
	c := NewConfirmation(coord)

	p := c.Show(ConfirmOptions{Mode: ModeConfirm})
	assert.Equal(t, ConfirmCancel, doc.active)

	c.HandleKey(KeyTab)
	assert.Equal(t, ConfirmOK, doc.active)
	c.HandleKey(KeyTab)
	assert.Equal(t, ConfirmCancel, doc.active)

	c.HandleKey("enter")
	assert.False(t, settled(t, p).Confirmed)
}

func TestPending_Wait(t *testing.T) {
	coord, _ := newTestCoordinator(t, newFakeDoc())
	c := NewConfirmation(coord)

	p := c.Show(ConfirmOptions{})
	go c.Confirm()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, r.Confirmed)
}

func TestPending_Wait_context_cancelled(t *testing.T) {
	coord, _ := newTestCoordinator(t, newFakeDoc())
	p := NewConfirmation(coord).Show(ConfirmOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func strPtr(s string) *string { return &s }
