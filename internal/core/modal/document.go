// Package modal coordinates overlay dialogs: per-modal open/close state
// machines, focus capture and trapping, and the document-wide scroll lock.
package modal

// Element identifies a focusable node in the host document.
type Element string

// NoElement is the zero Element.
const NoElement Element = ""

// Document is the host environment a modal lives in.
type Document interface {
	// ActiveElement returns the element that currently has focus.
	ActiveElement() Element
	// Focus moves focus to el.
	Focus(el Element)
	// Contains reports whether el is still attached to the document.
	Contains(el Element) bool
	// Body is the fallback focus target.
	Body() Element
	// SetScrollLocked applies or removes the background scroll marker.
	SetScrollLocked(locked bool)
}

// Keys understood by HandleKey. They match the terminal key names used by the
// console.
const (
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
	KeyEscape   = "esc"
)
