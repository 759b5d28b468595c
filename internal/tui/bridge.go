package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/whimsicalfrog/frogshop/internal/core/notify"
)

const bridgeBuffer = 64

// notifyEventMsg carries a notification lifecycle change into the program.
type notifyEventMsg notify.Event

// screenChangedMsg reports a focus or scroll-lock change made off the
// update loop, e.g. by a modal close timer.
type screenChangedMsg struct{}

// bridge forwards messages produced on timer goroutines to the update loop.
// Sends never block; when the buffer is full the message is dropped, which
// only costs a redraw because views read live state.
type bridge struct {
	ch chan tea.Msg
}

func newBridge() *bridge {
	return &bridge{ch: make(chan tea.Msg, bridgeBuffer)}
}

func (b *bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
	}
}

// wait returns a command that delivers the next bridged message. The model
// re-issues it after every delivery.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.ch
	}
}

// pending reports how many messages are queued.
func (b *bridge) pending() int {
	return len(b.ch)
}
