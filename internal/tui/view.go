package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/whimsicalfrog/frogshop/internal/core/notify"
	"github.com/whimsicalfrog/frogshop/internal/core/styles"
	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
)

const historyLimit = 10

func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

// screenLayout is one frame of the main screen, split so mouse handling can
// find the toast stack without re-rendering.
type screenLayout struct {
	header     string
	body       string
	toasts     string
	footer     string
	toastTop   int
	toastBoxes []toastBox
}

func (l screenLayout) String() string {
	parts := []string{l.header, l.body}
	if l.toasts != "" {
		parts = append(parts, l.toasts)
	}
	parts = append(parts, l.footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// View renders the console.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}
	if m.confirm.IsOpen() {
		view, _ := m.modalLayout()
		return view
	}
	return m.layout().String()
}

func (m Model) modalLayout() (string, rect) {
	box := renderConfirm(m.confirm.Options(), m.screen.ActiveElement(), m.input, m.confirmBody)
	return placeModal(box, m.width, m.height)
}

func (m Model) layout() screenLayout {
	var l screenLayout

	l.header = m.renderHeader()
	l.footer = m.help.View(m.keys)
	headerH, footerH := lipgloss.Height(l.header), lipgloss.Height(l.footer)

	l.toasts, l.toastBoxes = layoutToasts(m.toasts.Live(), m.width, max(m.height/2, 0))
	toastH := 0
	if l.toasts != "" {
		toastH = lipgloss.Height(l.toasts)
	}

	bodyH := max(m.height-headerH-footerH-toastH, 3)
	l.body = m.renderBody(bodyH)
	l.toastTop = headerH + lipgloss.Height(l.body)
	return l
}

func (m Model) renderHeader() string {
	title := styles.HeaderStyle.Render(styles.IconFrog + " WhimsicalFrog")
	status := fmt.Sprintf("%s %d items · %s", styles.IconCart, m.cart.Len(), formatPrice(m.cart.Total()))
	if m.screen.ScrollLocked() {
		status += " · " + styles.ScrollLockedStyle.Render("scroll locked")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", styles.MutedStyle.Render(status))
}

func (m Model) renderBody(height int) string {
	cartW := m.width / 2
	upsellW := m.width - cartW

	left := m.renderPanel("Cart", m.cartRows(), m.cartCursor, m.screen.Focused(ElemCart), cartW, height)
	right := m.renderPanel(styles.IconGift+" You might also like", m.upsellRows(), m.upsellIdx, m.screen.Focused(ElemUpsells), upsellW, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) cartRows() []string {
	items := m.cart.Items()
	if len(items) == 0 {
		return []string{styles.MutedStyle.Render("Your cart is empty. Press n to add a product.")}
	}
	rows := make([]string, len(items))
	for i, it := range items {
		rows[i] = it.Name + "  " + styles.PriceStyle.Render(formatPrice(it.Price))
	}
	return rows
}

func (m Model) upsellRows() []string {
	if m.loading && len(m.recs) == 0 {
		return []string{m.spinner.View() + " finding add-ons…"}
	}
	if len(m.recs) == 0 {
		return []string{styles.MutedStyle.Render("No suggestions yet.")}
	}
	rows := make([]string, len(m.recs))
	for i, r := range m.recs {
		rows[i] = recommendationRow(r)
	}
	return rows
}

func recommendationRow(r upsell.Recommendation) string {
	return r.Name + "  " +
		styles.PriceStyle.Render(formatPrice(r.Price)) + "  " +
		styles.ScoreStyle.Render(fmt.Sprintf("+%d", r.Score))
}

// renderPanel draws a bordered list, scrolled so the cursor stays visible.
func (m Model) renderPanel(title string, rows []string, cursor int, focused bool, width, height int) string {
	style := styles.PanelStyle
	if focused {
		style = style.BorderForeground(styles.CurrentPalette.Primary)
	}

	// border and title take three rows
	visible := max(height-3, 1)
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(rows))

	lines := []string{styles.PanelTitleStyle.Render(title)}
	for i := start; i < end; i++ {
		row := rows[i]
		if focused && i == cursor {
			row = styles.ItemSelectedStyle.Render("› ") + row
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}

	return style.
		Width(max(width-2, 10)).
		Height(max(height-2, 1)).
		Render(strings.Join(lines, "\n"))
}

// historyMarkdown lists up to limit notifications as markdown.
func historyMarkdown(items []notify.Notification, limit int) string {
	if len(items) == 0 {
		return "_No notifications yet._"
	}
	var b strings.Builder
	for i, n := range items {
		if i == limit {
			fmt.Fprintf(&b, "\n_and %d more_\n", len(items)-limit)
			break
		}
		fmt.Fprintf(&b, "- **%s** %s", n.Kind, n.Message)
		if n.Title != "" {
			fmt.Fprintf(&b, " (%s)", n.Title)
		}
		fmt.Fprintf(&b, " · %s\n", n.CreatedAt.Format("15:04:05"))
	}
	return b.String()
}

func renderMarkdownBody(md string) string {
	return styles.RenderMarkdown(md, confirmWidth-6)
}
