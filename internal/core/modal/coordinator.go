package modal

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/whimsicalfrog/frogshop/internal/metrics"
	"github.com/whimsicalfrog/frogshop/pkg/clock"
)

// DefaultCloseDuration is the close animation window.
const DefaultCloseDuration = 200 * time.Millisecond

// ErrUnknownModal is returned when a key has never been registered.
var ErrUnknownModal = errors.New("unknown modal")

// Coordinator owns every modal instance and the shared scroll lock. Scroll
// lock state is always derived from the set of open keys, so any interleaving
// of opens and closes across modals leaves it consistent.
type Coordinator struct {
	mu            sync.Mutex
	doc           Document
	clock         clock.Clock
	logger        zerolog.Logger
	metrics       *metrics.Manager
	closeDuration time.Duration

	modals map[string]*Modal
	open   map[string]struct{}
	locked bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock used for close animations.
func WithClock(c clock.Clock) Option {
	return func(co *Coordinator) {
		if c != nil {
			co.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(co *Coordinator) { co.logger = l }
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(co *Coordinator) { co.metrics = m }
}

// WithCloseDuration sets the default close animation window.
func WithCloseDuration(d time.Duration) Option {
	return func(co *Coordinator) {
		if d >= 0 {
			co.closeDuration = d
		}
	}
}

// NewCoordinator creates a coordinator for doc.
func NewCoordinator(doc Document, opts ...Option) *Coordinator {
	c := &Coordinator{
		doc:           doc,
		clock:         clock.Real{},
		logger:        zerolog.Nop(),
		closeDuration: DefaultCloseDuration,
		modals:        make(map[string]*Modal),
		open:          make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Modal returns the instance for key, creating it with opts on first use.
// Later calls return the cached instance and ignore opts.
func (c *Coordinator) Modal(key string, opts Options) *Modal {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.modals[key]; ok {
		return m
	}
	if opts.CloseDuration == nil {
		d := c.closeDuration
		opts.CloseDuration = &d
	}
	m := &Modal{key: key, coord: c, opts: opts}
	c.modals[key] = m
	c.logger.Debug().Str("modal", key).Msg("modal created")
	return m
}

// Lookup returns a previously created modal.
func (c *Coordinator) Lookup(key string) (*Modal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.modals[key]
	if !ok {
		return nil, ErrUnknownModal
	}
	return m, nil
}

// IsAnyModalOpen reports whether at least one modal key is open.
func (c *Coordinator) IsAnyModalOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.open) > 0
}

// OpenKeys returns the open modal keys in sorted order.
func (c *Coordinator) OpenKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.open))
	for k := range c.open {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ScrollLocked reports whether the scroll marker is applied.
func (c *Coordinator) ScrollLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// LockScroll applies the scroll marker. Calling it while locked does nothing.
func (c *Coordinator) LockScroll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lockLocked()
}

func (c *Coordinator) lockLocked() {
	if c.locked {
		return
	}
	c.locked = true
	c.doc.SetScrollLocked(true)
}

// UnlockScrollIfNoneOpen removes the scroll marker only when no modal of any
// key is open. It is safe to call repeatedly.
func (c *Coordinator) UnlockScrollIfNoneOpen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unlockIfNoneOpenLocked()
}

func (c *Coordinator) unlockIfNoneOpenLocked() {
	if len(c.open) > 0 || !c.locked {
		return
	}
	c.locked = false
	c.doc.SetScrollLocked(false)
}

func (c *Coordinator) markOpen(key string) {
	c.mu.Lock()
	c.open[key] = struct{}{}
	c.lockLocked()
	n := len(c.open)
	c.mu.Unlock()

	c.metrics.ModalOpened(key)
	c.metrics.SetModalsOpen(n)
}

func (c *Coordinator) markClosed(key string) {
	c.mu.Lock()
	delete(c.open, key)
	c.unlockIfNoneOpenLocked()
	n := len(c.open)
	c.mu.Unlock()

	c.metrics.SetModalsOpen(n)
}
