package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/whimsicalfrog/frogshop/internal/metrics"
	"github.com/whimsicalfrog/frogshop/pkg/clock"
)

const (
	DefaultDuration      = 5 * time.Second
	DefaultEnterDuration = 10 * time.Millisecond
	DefaultExitDuration  = 400 * time.Millisecond
	DefaultMaxVisible    = 5
)

// EventType identifies a lifecycle change.
type EventType int

const (
	EventEntered EventType = iota
	EventVisible
	EventLeaving
	EventRemoved
)

// Event describes a lifecycle change of one notification.
type Event struct {
	Type         EventType
	Notification Notification
}

// Subscriber is invoked for every lifecycle event, outside the manager lock.
type Subscriber func(Event)

// Config holds the transition timings of the manager.
type Config struct {
	DefaultDuration time.Duration
	EnterDuration   time.Duration
	ExitDuration    time.Duration
	MaxVisible      int
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		DefaultDuration: DefaultDuration,
		EnterDuration:   DefaultEnterDuration,
		ExitDuration:    DefaultExitDuration,
		MaxVisible:      DefaultMaxVisible,
	}
}

type entry struct {
	n            Notification
	enterTimer   clock.Timer
	dismissTimer clock.Timer
	exitTimer    clock.Timer
}

func (e *entry) stopPending() {
	if e.enterTimer != nil {
		e.enterTimer.Stop()
		e.enterTimer = nil
	}
	if e.dismissTimer != nil {
		e.dismissTimer.Stop()
		e.dismissTimer = nil
	}
}

// Manager is the live notification store. It assigns ids, drives the
// entering -> visible -> leaving -> removed state machine on its clock, and
// publishes every transition to subscribers.
type Manager struct {
	mu          sync.Mutex
	clock       clock.Clock
	logger      zerolog.Logger
	metrics     *metrics.Manager
	cfg         Config
	nextID      int64
	entries     map[int64]*entry
	order       []int64
	subscribers []Subscriber
}

var _ Sink = (*Manager)(nil)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock sets the clock used for all timers.
func WithClock(c clock.Clock) ManagerOption {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics sets the metrics manager.
func WithMetrics(mm *metrics.Manager) ManagerOption {
	return func(m *Manager) { m.metrics = mm }
}

// WithConfig overrides the transition timings. Zero fields keep defaults.
func WithConfig(cfg Config) ManagerOption {
	return func(m *Manager) {
		if cfg.DefaultDuration > 0 {
			m.cfg.DefaultDuration = cfg.DefaultDuration
		}
		if cfg.EnterDuration > 0 {
			m.cfg.EnterDuration = cfg.EnterDuration
		}
		if cfg.ExitDuration > 0 {
			m.cfg.ExitDuration = cfg.ExitDuration
		}
		if cfg.MaxVisible > 0 {
			m.cfg.MaxVisible = cfg.MaxVisible
		}
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		clock:   clock.Real{},
		logger:  zerolog.Nop(),
		cfg:     DefaultConfig(),
		entries: make(map[int64]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers fn for every subsequent lifecycle event.
func (m *Manager) Subscribe(fn Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Show creates a notification and schedules its entrance and, unless it is
// persistent, its auto-dismissal. Unknown kinds are shown as info. The error
// is always nil; it exists to satisfy Sink.
func (m *Manager) Show(message string, kind Kind, opts Options) (int64, error) {
	if !kind.IsValid() {
		kind = KindInfo
	}

	m.mu.Lock()
	m.nextID++
	id := m.nextID

	duration := opts.Duration
	if duration == 0 {
		duration = m.cfg.DefaultDuration
	}

	e := &entry{n: Notification{
		ID:         id,
		Message:    message,
		Kind:       kind,
		Title:      opts.Title,
		Persistent: opts.Persistent,
		Duration:   duration,
		Actions:    opts.Actions,
		State:      StateEntering,
		CreatedAt:  m.clock.Now(),
	}}
	m.entries[id] = e
	m.order = append(m.order, id)

	e.enterTimer = m.clock.AfterFunc(m.cfg.EnterDuration, func() { m.markVisible(id) })
	if !opts.Persistent && opts.autoHide() && duration > 0 {
		e.dismissTimer = m.clock.AfterFunc(duration, func() { m.Remove(id) })
	}

	overflow := m.overflowLocked()
	snapshot := e.n
	live := len(m.entries)
	m.mu.Unlock()

	m.metrics.NotificationShown(string(kind))
	m.metrics.SetNotificationsLive(live)
	m.logger.Debug().Int64("id", id).Str("kind", string(kind)).Msg("notification shown")
	m.emit(Event{Type: EventEntered, Notification: snapshot})

	for _, old := range overflow {
		m.Remove(old)
	}

	return id, nil
}

// overflowLocked returns the oldest ids that exceed MaxVisible among
// notifications that are not already leaving.
func (m *Manager) overflowLocked() []int64 {
	var active []int64
	for _, id := range m.order {
		if e := m.entries[id]; e != nil && e.n.State != StateLeaving {
			active = append(active, id)
		}
	}
	if len(active) <= m.cfg.MaxVisible {
		return nil
	}
	return active[:len(active)-m.cfg.MaxVisible]
}

func (m *Manager) markVisible(id int64) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || e.n.State != StateEntering {
		m.mu.Unlock()
		return
	}
	e.enterTimer = nil
	_ = e.n.transition(StateVisible)
	snapshot := e.n
	m.mu.Unlock()

	m.emit(Event{Type: EventVisible, Notification: snapshot})
}

// Remove starts the exit transition of id. It is a no-op for unknown ids and
// for notifications already leaving or removed, so the auto-dismiss timer and
// manual dismissal can race safely.
func (m *Manager) Remove(id int64) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || e.n.State == StateLeaving || e.n.State == StateRemoved {
		m.mu.Unlock()
		return
	}
	e.stopPending()
	if err := e.n.transition(StateLeaving); err != nil {
		m.mu.Unlock()
		m.logger.Error().Err(err).Int64("id", id).Msg("remove notification")
		return
	}
	e.exitTimer = m.clock.AfterFunc(m.cfg.ExitDuration, func() { m.purge(id) })
	snapshot := e.n
	m.mu.Unlock()

	m.emit(Event{Type: EventLeaving, Notification: snapshot})
}

func (m *Manager) purge(id int64) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || e.n.State != StateLeaving {
		m.mu.Unlock()
		return
	}
	_ = e.n.transition(StateRemoved)
	delete(m.entries, id)
	for i, other := range m.order {
		if other == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	snapshot := e.n
	live := len(m.entries)
	m.mu.Unlock()

	m.metrics.SetNotificationsLive(live)
	m.emit(Event{Type: EventRemoved, Notification: snapshot})
}

// RemoveAll starts the exit transition of every live notification.
func (m *Manager) RemoveAll() {
	m.mu.Lock()
	ids := make([]int64, len(m.order))
	copy(ids, m.order)
	m.mu.Unlock()

	for _, id := range ids {
		m.Remove(id)
	}
}

// Activate handles a click or key press on the notification body.
func (m *Manager) Activate(id int64) {
	m.Remove(id)
}

// ActivateAction runs the action at index of notification id and then
// dismisses the notification. A panicking callback is logged and does not
// prevent dismissal. It returns false if the notification or action does not
// exist or the notification is already leaving.
func (m *Manager) ActivateAction(id int64, index int) bool {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || e.n.State == StateLeaving || e.n.State == StateRemoved || index < 0 || index >= len(e.n.Actions) {
		m.mu.Unlock()
		return false
	}
	action := e.n.Actions[index]
	m.mu.Unlock()

	if action.OnActivate != nil {
		m.runAction(id, action)
	}
	m.Remove(id)
	return true
}

func (m *Manager) runAction(id int64, action Action) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Int64("id", id).
				Str("action", action.Label).
				Interface("panic", r).
				Msg("notification action failed")
		}
	}()
	action.OnActivate(ActionContext{
		ID:         id,
		CloseToast: func() { m.Remove(id) },
	})
}

// Get returns a copy of the live notification with the given id.
func (m *Manager) Get(id int64) (Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return Notification{}, false
	}
	return e.n, true
}

// Live returns the live notifications, oldest first.
func (m *Manager) Live() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id].n)
	}
	return out
}

// Len returns the number of live notifications.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Manager) emit(ev Event) {
	m.mu.Lock()
	subs := make([]Subscriber, len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
