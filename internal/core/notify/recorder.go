package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Recorder persists every notification to a Store when it enters. Failures
// are logged and never reach the caller of Show.
type Recorder struct {
	store  Store
	logger zerolog.Logger
}

// NewRecorder creates a recorder backed by store.
func NewRecorder(store Store, logger zerolog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Attach subscribes the recorder to m.
func (r *Recorder) Attach(m *Manager) {
	m.Subscribe(r.Handle)
}

// Handle is a Subscriber.
func (r *Recorder) Handle(ev Event) {
	if ev.Type != EventEntered || r.store == nil {
		return
	}
	if _, err := r.store.Save(context.Background(), ev.Notification); err != nil {
		r.logger.Error().Err(err).Str("message", ev.Notification.Message).Msg("failed to persist notification")
	}
}

// History returns all persisted notifications, newest first.
func (r *Recorder) History(ctx context.Context) ([]Notification, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.List(ctx)
}
