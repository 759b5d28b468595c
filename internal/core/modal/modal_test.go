package modal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestModal_state_machine(t *testing.T) {
	doc := newFakeDoc("login:email", "login:submit")
	c, fake := newTestCoordinator(t, doc)

	closed := 0
	m := c.Modal("login", Options{
		Focusables: elements("login:email", "login:submit"),
		OnClosed:   func() { closed++ },
	})
	assert.Equal(t, StateClosed, m.State())

	assert.True(t, m.Open())
	assert.Equal(t, StateOpen, m.State())
	assert.Equal(t, Element("login:email"), doc.active, "focus moves into the modal")

	assert.False(t, m.Open(), "already open")

	assert.True(t, m.Close())
	assert.Equal(t, StateClosing, m.State())
	assert.False(t, m.Close(), "already closing")

	fake.Advance(DefaultCloseDuration)
	assert.Equal(t, StateClosed, m.State())
	assert.Equal(t, 1, closed)
}

func TestModal_restores_focus(t *testing.T) {
	doc := newFakeDoc("cart:checkout", "modal:ok")
	c, fake := newTestCoordinator(t, doc)
	doc.active = "cart:checkout"

	m := c.Modal("confirm", Options{Focusables: elements("modal:ok")})
	m.Open()
	m.Close()
	fake.Advance(DefaultCloseDuration)

	assert.Equal(t, Element("cart:checkout"), doc.active)
}

func TestModal_restores_focus_to_body_when_detached(t *testing.T) {
	doc := newFakeDoc("cart:row-3", "modal:ok")
	c, fake := newTestCoordinator(t, doc)
	doc.active = "cart:row-3"

	m := c.Modal("remove-item", Options{Focusables: elements("modal:ok")})
	m.Open()
	delete(doc.attached, "cart:row-3")
	m.Close()
	fake.Advance(DefaultCloseDuration)

	assert.Equal(t, testBody, doc.active)
}

func TestModal_focus_trap_wraps(t *testing.T) {
	doc := newFakeDoc()
	c, _ := newTestCoordinator(t, doc)

	m := c.Modal("checkout", Options{Focusables: elements("a", "b", "c")})
	m.Open()

	var order []Element
	for range 4 {
		m.HandleKey(KeyTab)
		order = append(order, doc.active)
	}
	assert.Equal(t, []Element{"b", "c", "a", "b"}, order)

	order = nil
	for range 3 {
		m.HandleKey(KeyShiftTab)
		order = append(order, doc.active)
	}
	assert.Equal(t, []Element{"a", "c", "b"}, order)
}

func TestModal_focus_trap_recovers_from_outside_focus(t *testing.T) {
	doc := newFakeDoc()
	c, _ := newTestCoordinator(t, doc)

	m := c.Modal("checkout", Options{Focusables: elements("a", "b")})
	m.Open()
	doc.active = "somewhere-else"

	m.HandleKey(KeyTab)
	assert.Equal(t, Element("a"), doc.active)

	doc.active = "somewhere-else"
	m.HandleKey(KeyShiftTab)
	assert.Equal(t, Element("b"), doc.active)
}

func TestModal_escape_closes(t *testing.T) {
	c, _ := newTestCoordinator(t, newFakeDoc())
	m := c.Modal("help", Options{})
	m.Open()

	assert.True(t, m.HandleKey(KeyEscape))
	assert.Equal(t, StateClosing, m.State())
	assert.False(t, m.HandleKey("x"), "keys are ignored while closing")
}

func TestModal_HandleKey_unhandled(t *testing.T) {
	c, _ := newTestCoordinator(t, newFakeDoc())
	m := c.Modal("help", Options{})

	assert.False(t, m.HandleKey(KeyEscape), "closed modals ignore keys")

	m.Open()
	assert.False(t, m.HandleKey("q"))
}

func TestModal_backdrop_click(t *testing.T) {
	c, _ := newTestCoordinator(t, newFakeDoc())
	m := c.Modal("product", Options{Backdrop: "product:overlay"})
	m.Open()

	assert.False(t, m.HandleClick("product:overlay:image"), "descendant clicks do not close")
	assert.Equal(t, StateOpen, m.State())

	assert.True(t, m.HandleClick("product:overlay"))
	assert.Equal(t, StateClosing, m.State())
}

func TestModal_without_backdrop_ignores_clicks(t *testing.T) {
	c, _ := newTestCoordinator(t, newFakeDoc())
	m := c.Modal("sticky", Options{})
	m.Open()

	assert.False(t, m.HandleClick(NoElement))
	assert.Equal(t, StateOpen, m.State())
}

func TestModal_zero_close_duration_closes_synchronously(t *testing.T) {
	doc := newFakeDoc()
	c, _ := newTestCoordinator(t, doc)
	zero := time.Duration(0)

	m := c.Modal("instant", Options{CloseDuration: &zero})
	m.Open()
	m.Close()

	assert.Equal(t, StateClosed, m.State())
	assert.False(t, doc.locked)
}

func TestModal_OnDismiss_runs_once_per_close(t *testing.T) {
	c, fake := newTestCoordinator(t, newFakeDoc())

	dismissed := 0
	m := c.Modal("x", Options{OnDismiss: func() { dismissed++ }, Backdrop: "x:bg"})
	m.Open()
	m.HandleKey(KeyEscape)
	m.HandleClick("x:bg")
	m.Close()
	fake.Advance(DefaultCloseDuration)

	assert.Equal(t, 1, dismissed)
}
