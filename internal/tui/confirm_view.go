package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/whimsicalfrog/frogshop/internal/core/modal"
	"github.com/whimsicalfrog/frogshop/internal/core/styles"
)

const confirmWidth = 56

func newPromptInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 64
	ti.Width = confirmWidth - 8
	return ti
}

func renderButton(label string, focused bool) string {
	if focused {
		return styles.ModalButtonSelectedStyle.Render(label)
	}
	return styles.ModalButtonStyle.Render(label)
}

// renderConfirm draws the confirmation dialog box for opts. body replaces
// the plain message when set.
func renderConfirm(opts modal.ConfirmOptions, focused modal.Element, input textinput.Model, body string) string {
	parts := []string{}
	if opts.Title != "" {
		parts = append(parts, styles.ModalTitleStyle.Render(opts.Title), "")
	}
	if body == "" {
		body = lipgloss.NewStyle().Width(confirmWidth - 6).Render(opts.Message)
	}
	if body != "" {
		parts = append(parts, body)
	}

	if opts.Mode == modal.ModePrompt {
		parts = append(parts, "", styles.ModalInputStyle.Render(input.View()))
	}

	var buttons string
	ok := renderButton(opts.ConfirmLabel, focused == modal.ConfirmOK)
	if opts.Mode == modal.ModeAlert {
		buttons = ok
	} else {
		cancel := renderButton(opts.CancelLabel, focused == modal.ConfirmCancel)
		buttons = lipgloss.JoinHorizontal(lipgloss.Center, cancel, "  ", ok)
	}
	parts = append(parts, lipgloss.NewStyle().MarginTop(1).Render(buttons))
	parts = append(parts, styles.ModalHelpStyle.Render("tab focus  enter select  esc cancel"))

	return styles.ModalStyle.Width(confirmWidth).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// rect is a screen rectangle.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// placeModal centers box on a width by height backdrop and returns where the
// box landed. Everything outside that rectangle is backdrop.
func placeModal(box string, width, height int) (string, rect) {
	w, h := lipgloss.Width(box), lipgloss.Height(box)
	r := rect{
		x: max((width-w)/2, 0),
		y: max((height-h)/2, 0),
		w: w,
		h: h,
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box), r
}
