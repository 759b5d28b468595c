// Package logging carries correlation ids through a context and onto log
// events.
package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type correlationKey struct{}

// correlation is immutable; each With* call stores a modified copy.
type correlation struct {
	run     string
	request string
}

func from(ctx context.Context) correlation {
	c, _ := ctx.Value(correlationKey{}).(correlation)
	return c
}

// WithRunID tags ctx with the id of one upsell run.
func WithRunID(ctx context.Context, id string) context.Context {
	c := from(ctx)
	c.run = id
	return context.WithValue(ctx, correlationKey{}, c)
}

// WithRequestID tags ctx with an API request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	c := from(ctx)
	c.request = id
	return context.WithValue(ctx, correlationKey{}, c)
}

// RunID returns the run id of ctx, or "".
func RunID(ctx context.Context) string { return from(ctx).run }

// RequestID returns the API request id of ctx, or "".
func RequestID(ctx context.Context) string { return from(ctx).request }

// ContextHook writes run_id and request_id onto events logged with Ctx.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}
	c := from(ctx)
	if c.run != "" {
		e.Str("run_id", c.run)
	}
	if c.request != "" {
		e.Str("request_id", c.request)
	}
}
