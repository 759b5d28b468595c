// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"sort"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "lily-pad"

var themes = map[string]Palette{
	"lily-pad": {
		Primary:    lipgloss.Color("#87b94a"),
		Secondary:  lipgloss.Color("#6fc2b5"),
		Foreground: lipgloss.Color("#e6efd9"),
		Muted:      lipgloss.Color("#6b7a5c"),
		Background: lipgloss.Color("#1b2316"),
		Surface:    lipgloss.Color("#34432a"),
		Success:    lipgloss.Color("#a6d96a"),
		Warning:    lipgloss.Color("#e8b04b"),
		Error:      lipgloss.Color("#e06c5f"),
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	HeaderStyle  lipgloss.Style
	MutedStyle   lipgloss.Style
	DividerStyle lipgloss.Style

	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style
	ModalInputStyle          lipgloss.Style

	ToastSuccessStyle    lipgloss.Style
	ToastErrorStyle      lipgloss.Style
	ToastWarningStyle    lipgloss.Style
	ToastInfoStyle       lipgloss.Style
	ToastValidationStyle lipgloss.Style
	ToastLeavingStyle    lipgloss.Style
	ToastTitleStyle      lipgloss.Style
	ToastActionStyle     lipgloss.Style

	PanelStyle         lipgloss.Style
	PanelTitleStyle    lipgloss.Style
	ItemSelectedStyle  lipgloss.Style
	ItemNormalStyle    lipgloss.Style
	PriceStyle         lipgloss.Style
	ScoreStyle         lipgloss.Style
	ScrollLockedStyle  lipgloss.Style
	StatusBarStyle     lipgloss.Style
	StatusBarKeyStyle  lipgloss.Style
	StatusBarDescStyle lipgloss.Style
)

func toastStyle(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(CurrentPalette.Foreground).
		Padding(0, 1)
}

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Surface)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Foreground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(p.Surface).
		Foreground(p.Muted)
	ModalButtonSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(p.Primary).
		Foreground(p.Background).
		Bold(true)
	ModalInputStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(p.Muted)

	ToastSuccessStyle = toastStyle(p.Success)
	ToastErrorStyle = toastStyle(p.Error)
	ToastWarningStyle = toastStyle(p.Warning)
	ToastInfoStyle = toastStyle(p.Primary)
	ToastValidationStyle = toastStyle(p.Warning)
	ToastLeavingStyle = toastStyle(p.Surface).Foreground(p.Muted)
	ToastTitleStyle = lipgloss.NewStyle().Bold(true)
	ToastActionStyle = lipgloss.NewStyle().Foreground(p.Secondary).Underline(true)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface).
		Padding(0, 1)
	PanelTitleStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	ItemSelectedStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	ItemNormalStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	PriceStyle = lipgloss.NewStyle().Foreground(p.Success)
	ScoreStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	ScrollLockedStyle = lipgloss.NewStyle().Foreground(p.Muted).Faint(true)
	StatusBarStyle = lipgloss.NewStyle().Foreground(p.Muted)
	StatusBarKeyStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	StatusBarDescStyle = lipgloss.NewStyle().Foreground(p.Muted)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func colorPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorPtr(CurrentPalette.Foreground)
	primary := colorPtr(CurrentPalette.Primary)
	secondary := colorPtr(CurrentPalette.Secondary)
	muted := colorPtr(CurrentPalette.Muted)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg
	cfg.Heading.Color = primary
	cfg.H1.Color = primary
	cfg.H2.Color = primary
	cfg.H3.Color = primary
	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted
	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary
	cfg.Code.Color = secondary
	cfg.Table.Color = fg

	return cfg
}
