package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/whimsicalfrog/frogshop/internal/core/notify"
	"github.com/whimsicalfrog/frogshop/internal/data/db"
)

// HistoryLimit caps how many notifications List returns.
const HistoryLimit = 500

// NotifyStore implements notify.Store on the notifications table.
type NotifyStore struct {
	db *db.DB
}

var _ notify.Store = (*NotifyStore)(nil)

// NewNotifyStore creates a SQLite-backed notification history.
func NewNotifyStore(db *db.DB) *NotifyStore {
	return &NotifyStore{db: db}
}

// Save appends n to the history and returns the row id.
func (s *NotifyStore) Save(ctx context.Context, n notify.Notification) (int64, error) {
	id, err := s.db.Queries().InsertNotification(ctx, db.InsertNotificationParams{
		Kind:       string(n.Kind),
		Title:      n.Title,
		Message:    n.Message,
		Persistent: n.Persistent,
		CreatedAt:  n.CreatedAt.UnixNano(),
	})
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

// List returns the most recent notifications, newest first.
func (s *NotifyStore) List(ctx context.Context) ([]notify.Notification, error) {
	rows, err := s.db.Queries().ListNotifications(ctx, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]notify.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, notify.Notification{
			ID:         row.ID,
			Kind:       notify.Kind(row.Kind),
			Title:      row.Title,
			Message:    row.Message,
			Persistent: row.Persistent,
			State:      notify.StateRemoved,
			CreatedAt:  time.Unix(0, row.CreatedAt),
		})
	}
	return out, nil
}

// Clear deletes the whole history.
func (s *NotifyStore) Clear(ctx context.Context) error {
	if err := s.db.Queries().DeleteAllNotifications(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// Count returns the number of stored notifications.
func (s *NotifyStore) Count(ctx context.Context) (int64, error) {
	n, err := s.db.Queries().CountNotifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}
