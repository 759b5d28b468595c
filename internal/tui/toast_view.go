package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/whimsicalfrog/frogshop/internal/core/notify"
	"github.com/whimsicalfrog/frogshop/internal/core/styles"
)

const toastWidth = 44

// toastBox is the screen rectangle of one rendered toast, used to route
// clicks back to the notification.
type toastBox struct {
	id         int64
	x, y, w, h int
}

func (b toastBox) contains(x, y int) bool {
	return x >= b.x && x < b.x+b.w && y >= b.y && y < b.y+b.h
}

func renderToast(n notify.Notification) string {
	style := notify.KindStyle(n.Kind)
	if n.State == notify.StateLeaving {
		style = styles.ToastLeavingStyle
	}

	var b strings.Builder
	if n.Title != "" {
		b.WriteString(styles.ToastTitleStyle.Render(n.Title))
		b.WriteString("\n")
	}
	b.WriteString(notify.Icon(n.Kind) + " " + n.Message)

	if len(n.Actions) > 0 {
		labels := make([]string, 0, len(n.Actions))
		for i, a := range n.Actions {
			label := a.Label
			if a.Icon != "" {
				label = a.Icon + " " + label
			}
			if i == 0 {
				label = "[u] " + label
			}
			labels = append(labels, styles.ToastActionStyle.Render(label))
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(labels, "  "))
	}

	content := b.String()
	if n.State == notify.StateEntering {
		content = lipgloss.NewStyle().Faint(true).Render(content)
	}
	return style.Width(toastWidth).Render(content)
}

// layoutToasts stacks live notifications oldest on top, newest at the
// bottom, right-aligned within width. Oldest toasts that do not fit in
// maxHeight are left out. Boxes are relative to the top-left of the returned
// block.
func layoutToasts(live []notify.Notification, width, maxHeight int) (string, []toastBox) {
	if len(live) == 0 || maxHeight <= 0 {
		return "", nil
	}

	rendered := make([]string, len(live))
	for i, n := range live {
		rendered[i] = renderToast(n)
	}

	first, height := len(rendered), 0
	for i := len(rendered) - 1; i >= 0; i-- {
		h := lipgloss.Height(rendered[i])
		if height+h > maxHeight {
			break
		}
		height += h
		first = i
	}
	if first == len(rendered) {
		return "", nil
	}

	var (
		boxes []toastBox
		y     int
	)
	for i := first; i < len(rendered); i++ {
		w, h := lipgloss.Width(rendered[i]), lipgloss.Height(rendered[i])
		boxes = append(boxes, toastBox{
			id: live[i].ID,
			x:  max(width-w, 0),
			y:  y,
			w:  w,
			h:  h,
		})
		y += h
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, rendered[first:]...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack), boxes
}
