package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the main screen bindings. Keys pressed while a modal is open
// go to the modal instead.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	SwitchPanel key.Binding
	Select      key.Binding
	Add         key.Binding
	AddBySKU    key.Binding
	Remove      key.Binding
	ClearCart   key.Binding
	Refresh     key.Binding
	Dismiss     key.Binding
	DismissAll  key.Binding
	ToastAction key.Binding
	History     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		SwitchPanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch panel"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "interested"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add to cart"),
		),
		AddBySKU: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "add by sku"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		ClearCart: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear cart"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss toast"),
		),
		DismissAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "dismiss all"),
		),
		ToastAction: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "toast action"),
		),
		History: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "history"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchPanel, k.Select, k.Add, k.Remove, k.Dismiss, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.SwitchPanel, k.Refresh},
		{k.Select, k.Add, k.AddBySKU, k.Remove, k.ClearCart},
		{k.Dismiss, k.DismissAll, k.ToastAction, k.History},
		{k.Help, k.Quit},
	}
}
