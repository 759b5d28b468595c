package tui

import (
	"slices"
	"sync"

	"github.com/whimsicalfrog/frogshop/internal/core/modal"
)

// Focusable panels of the main screen.
const (
	ElemCart    modal.Element = "cart"
	ElemUpsells modal.Element = "upsells"
	ElemBody    modal.Element = "body"
)

// Screen is the terminal document the modal coordinator drives. It tracks
// which widget holds focus, which widgets are attached, and whether the
// background lists may scroll. Timer callbacks reach it from other
// goroutines, so every method locks.
type Screen struct {
	mu           sync.Mutex
	active       modal.Element
	attached     map[modal.Element]bool
	scrollLocked bool
	onChange     func()
}

var _ modal.Document = (*Screen)(nil)

// NewScreen returns a screen with the main panels and the confirmation
// dialog attached and the cart focused. onChange, when set, runs after every
// focus or scroll-lock change.
func NewScreen(onChange func()) *Screen {
	return &Screen{
		active: ElemCart,
		attached: map[modal.Element]bool{
			ElemBody:              true,
			ElemCart:              true,
			ElemUpsells:           true,
			modal.ConfirmBackdrop: true,
			modal.ConfirmInput:    true,
			modal.ConfirmCancel:   true,
			modal.ConfirmOK:       true,
		},
		onChange: onChange,
	}
}

// Attach marks elements as present in the widget tree.
func (s *Screen) Attach(els ...modal.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, el := range els {
		s.attached[el] = true
	}
}

// Detach removes elements from the widget tree.
func (s *Screen) Detach(els ...modal.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, el := range els {
		delete(s.attached, el)
	}
}

func (s *Screen) ActiveElement() modal.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Screen) Focus(el modal.Element) {
	s.mu.Lock()
	s.active = el
	s.mu.Unlock()
	s.changed()
}

func (s *Screen) Contains(el modal.Element) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached[el]
}

func (s *Screen) Body() modal.Element { return ElemBody }

func (s *Screen) SetScrollLocked(locked bool) {
	s.mu.Lock()
	s.scrollLocked = locked
	s.mu.Unlock()
	s.changed()
}

// ScrollLocked reports whether the background lists are frozen.
func (s *Screen) ScrollLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollLocked
}

// Focused reports whether el holds focus.
func (s *Screen) Focused(el modal.Element) bool {
	return s.ActiveElement() == el
}

// CyclePanels moves focus between the main panels. Focus anywhere else,
// including the body, lands on the cart.
func (s *Screen) CyclePanels() {
	panels := []modal.Element{ElemCart, ElemUpsells}
	i := slices.Index(panels, s.ActiveElement())
	s.Focus(panels[(i+1)%len(panels)])
}

func (s *Screen) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
