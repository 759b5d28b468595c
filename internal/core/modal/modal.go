package modal

import (
	"fmt"
	"sync"
	"time"

	"github.com/whimsicalfrog/frogshop/pkg/clock"
)

// State is the lifecycle state of one modal instance.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options describe a modal's content and hooks.
type Options struct {
	// Backdrop is the overlay element; a click on exactly this element closes
	// the modal.
	Backdrop Element
	// Focusables returns the focus order inside the modal. It is evaluated on
	// every open and every Tab so content may change between opens.
	Focusables func() []Element
	// CloseDuration overrides the coordinator default when non-nil.
	CloseDuration *time.Duration
	// OnDismiss runs when a close starts, whatever triggered it.
	OnDismiss func()
	// OnClosed runs after the modal reached StateClosed and focus was
	// restored.
	OnClosed func()
}

// Modal is one cached overlay instance identified by key.
type Modal struct {
	key   string
	coord *Coordinator
	opts  Options

	mu                sync.Mutex
	state             State
	previouslyFocused Element
	closeTimer        clock.Timer
}

// Key returns the modal key.
func (m *Modal) Key() string { return m.key }

// State returns the current lifecycle state.
func (m *Modal) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsOpen reports whether the modal is opening or open.
func (m *Modal) IsOpen() bool {
	s := m.State()
	return s == StateOpening || s == StateOpen
}

func (m *Modal) focusables() []Element {
	if m.opts.Focusables == nil {
		return nil
	}
	return m.opts.Focusables()
}

// Open captures the focused element, locks scrolling and moves focus into the
// modal. It returns false when the modal is not closed.
func (m *Modal) Open() bool {
	doc := m.coord.doc

	m.mu.Lock()
	if m.state != StateClosed {
		m.mu.Unlock()
		return false
	}
	m.state = StateOpening
	m.previouslyFocused = doc.ActiveElement()
	m.mu.Unlock()

	m.coord.markOpen(m.key)

	if els := m.focusables(); len(els) > 0 {
		doc.Focus(els[0])
	}

	m.mu.Lock()
	if m.state == StateOpening {
		m.state = StateOpen
	}
	m.mu.Unlock()

	m.coord.logger.Debug().Str("modal", m.key).Msg("modal opened")
	return true
}

// Close starts the close animation. After the close window the modal is
// closed, focus is restored and the shared scroll lock is recomputed. It
// returns false when the modal is not opening or open, so repeated triggers
// are harmless.
func (m *Modal) Close() bool {
	m.mu.Lock()
	if m.state != StateOpening && m.state != StateOpen {
		m.mu.Unlock()
		return false
	}
	m.state = StateClosing
	d := *m.opts.CloseDuration
	m.mu.Unlock()

	if m.opts.OnDismiss != nil {
		m.opts.OnDismiss()
	}

	if d <= 0 {
		m.finishClose()
		return true
	}

	timer := m.coord.clock.AfterFunc(d, m.finishClose)
	m.mu.Lock()
	m.closeTimer = timer
	m.mu.Unlock()
	return true
}

// finishClose completes a pending close immediately. It does nothing unless
// the modal is closing.
func (m *Modal) finishClose() {
	m.mu.Lock()
	if m.state != StateClosing {
		m.mu.Unlock()
		return
	}
	if m.closeTimer != nil {
		m.closeTimer.Stop()
		m.closeTimer = nil
	}
	m.state = StateClosed
	prev := m.previouslyFocused
	m.previouslyFocused = NoElement
	m.mu.Unlock()

	doc := m.coord.doc
	if prev != NoElement && doc.Contains(prev) {
		doc.Focus(prev)
	} else {
		doc.Focus(doc.Body())
	}

	m.coord.markClosed(m.key)
	m.coord.logger.Debug().Str("modal", m.key).Msg("modal closed")

	if m.opts.OnClosed != nil {
		m.opts.OnClosed()
	}
}

// HandleKey applies the keyboard contract of an open modal: Tab and
// Shift+Tab cycle focus within the modal, Escape closes it. It reports
// whether the key was consumed.
func (m *Modal) HandleKey(key string) bool {
	if m.State() != StateOpen {
		return false
	}

	switch key {
	case KeyEscape:
		m.Close()
		return true
	case KeyTab, KeyShiftTab:
		m.cycleFocus(key == KeyShiftTab)
		return true
	default:
		return false
	}
}

func (m *Modal) cycleFocus(backward bool) {
	els := m.focusables()
	if len(els) == 0 {
		return
	}

	doc := m.coord.doc
	active := doc.ActiveElement()
	idx := -1
	for i, el := range els {
		if el == active {
			idx = i
			break
		}
	}

	last := len(els) - 1
	var next int
	switch {
	case backward && idx <= 0:
		next = last
	case backward:
		next = idx - 1
	case idx == -1 || idx == last:
		next = 0
	default:
		next = idx + 1
	}
	doc.Focus(els[next])
}

// HandleClick closes the modal when target is exactly its backdrop. Clicks on
// descendants of the backdrop are ignored.
func (m *Modal) HandleClick(target Element) bool {
	if m.State() != StateOpen || m.opts.Backdrop == NoElement || target != m.opts.Backdrop {
		return false
	}
	return m.Close()
}
