// Package notify defines transient storefront notifications, their lifecycle
// state machine, and the manager that schedules their dismissal.
package notify

import (
	"context"
	"errors"
	"time"
)

// Kind is the visual category of a notification.
type Kind string

const (
	KindSuccess    Kind = "success"
	KindError      Kind = "error"
	KindWarning    Kind = "warning"
	KindInfo       Kind = "info"
	KindValidation Kind = "validation"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo, KindValidation:
		return true
	default:
		return false
	}
}

var (
	// ErrNoSink is returned by a Dispatcher when every sink failed.
	ErrNoSink = errors.New("no notification sink accepted the message")

	// ErrInvalidTransition is returned when a state change would move a
	// notification backwards.
	ErrInvalidTransition = errors.New("invalid notification state transition")
)

// ActionContext is passed to an action callback.
type ActionContext struct {
	ID int64
	// CloseToast removes the notification that owns the action.
	CloseToast func()
}

// Action is a labelled button rendered inside a notification.
type Action struct {
	Label      string
	Icon       string
	OnActivate func(ActionContext)
}

// Options tune a single Show call. Zero values select the defaults.
type Options struct {
	Title string
	// Duration is the time before auto-dismissal. Zero selects the manager
	// default, so it cannot mean "stay"; use AutoHide or Persistent for
	// that. Ignored when Persistent.
	Duration   time.Duration
	Persistent bool
	Actions    []Action
	AutoHide   *bool // nil means true
}

func (o Options) autoHide() bool {
	return o.AutoHide == nil || *o.AutoHide
}

// Notification is one transient message.
type Notification struct {
	ID         int64
	Message    string
	Kind       Kind
	Title      string
	Persistent bool
	Duration   time.Duration
	Actions    []Action
	State      State
	CreatedAt  time.Time
}

// Store persists the history of shown notifications.
type Store interface {
	Save(ctx context.Context, n Notification) (int64, error)
	List(ctx context.Context) ([]Notification, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
