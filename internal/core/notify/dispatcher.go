package notify

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/whimsicalfrog/frogshop/internal/core/styles"
)

// Sink renders notifications. A sink that cannot show a message returns an
// error so the Dispatcher can try the next one.
type Sink interface {
	Show(message string, kind Kind, opts Options) (int64, error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(message string, kind Kind, opts Options) (int64, error)

func (f SinkFunc) Show(message string, kind Kind, opts Options) (int64, error) {
	return f(message, kind, opts)
}

// Dispatcher tries a ranked list of sinks in order; the first sink that
// accepts a message wins.
type Dispatcher struct {
	sinks  []Sink
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher over sinks, most preferred first.
func NewDispatcher(logger zerolog.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, logger: logger}
}

// Show hands the message to the first sink that accepts it. Sinks that error
// or panic are logged and skipped.
func (d *Dispatcher) Show(message string, kind Kind, opts Options) (int64, error) {
	for i, sink := range d.sinks {
		id, err := safeShow(sink, message, kind, opts)
		if err == nil {
			return id, nil
		}
		d.logger.Warn().Err(err).Int("sink", i).Str("kind", string(kind)).Msg("notification sink failed")
	}
	return 0, ErrNoSink
}

func safeShow(sink Sink, message string, kind Kind, opts Options) (id int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			id, err = 0, fmt.Errorf("sink panic: %v", r)
		}
	}()
	return sink.Show(message, kind, opts)
}

func (d *Dispatcher) showf(kind Kind, format string, args ...any) int64 {
	id, err := d.Show(fmt.Sprintf(format, args...), kind, Options{})
	if err != nil {
		d.logger.Error().Err(err).Msg("notification dropped")
	}
	return id
}

// Successf shows a success notification.
func (d *Dispatcher) Successf(format string, args ...any) int64 {
	return d.showf(KindSuccess, format, args...)
}

// Errorf shows an error notification.
func (d *Dispatcher) Errorf(format string, args ...any) int64 {
	return d.showf(KindError, format, args...)
}

// Warnf shows a warning notification.
func (d *Dispatcher) Warnf(format string, args ...any) int64 {
	return d.showf(KindWarning, format, args...)
}

// Infof shows an info notification.
func (d *Dispatcher) Infof(format string, args ...any) int64 {
	return d.showf(KindInfo, format, args...)
}

// WriterSink prints each notification as one styled line. It is the sink for
// non-interactive commands.
type WriterSink struct {
	mu     sync.Mutex
	w      io.Writer
	plain  bool
	nextID atomic.Int64
}

// NewWriterSink writes to w. When plain is true no ANSI styling is applied.
func NewWriterSink(w io.Writer, plain bool) *WriterSink {
	return &WriterSink{w: w, plain: plain}
}

func (s *WriterSink) Show(message string, kind Kind, opts Options) (int64, error) {
	line := Icon(kind) + " "
	if opts.Title != "" {
		line += opts.Title + ": "
	}
	line += message

	if !s.plain {
		line = lipgloss.NewStyle().Foreground(KindColor(kind)).Render(line)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.w, line); err != nil {
		return 0, fmt.Errorf("write notification: %w", err)
	}
	return s.nextID.Add(1), nil
}

// Icon returns the glyph for kind.
func Icon(kind Kind) string {
	switch kind {
	case KindSuccess:
		return styles.IconNotifySuccess
	case KindError:
		return styles.IconNotifyError
	case KindWarning:
		return styles.IconNotifyWarning
	case KindValidation:
		return styles.IconNotifyValidation
	default:
		return styles.IconNotifyInfo
	}
}
