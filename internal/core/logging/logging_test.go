package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunID(ctx))
	assert.Empty(t, RequestID(ctx))

	run := WithRunID(ctx, "run-1")
	both := WithRequestID(run, "req-2")

	assert.Equal(t, "run-1", RunID(both))
	assert.Equal(t, "req-2", RequestID(both))
	assert.Empty(t, RequestID(run), "parent context is unchanged")

	assert.Equal(t, "run-3", RunID(WithRunID(both, "run-3")))
	assert.Equal(t, "req-2", RequestID(WithRunID(both, "run-3")))
}

func logLine(t *testing.T, log func(zerolog.Logger)) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	log(zerolog.New(&buf).Hook(ContextHook{}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestContextHook(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want map[string]string
		none []string
	}{
		{
			name: "run and request",
			ctx:  WithRequestID(WithRunID(context.Background(), "run-1"), "req-2"),
			want: map[string]string{"run_id": "run-1", "request_id": "req-2"},
		},
		{
			name: "run only",
			ctx:  WithRunID(context.Background(), "run-1"),
			want: map[string]string{"run_id": "run-1"},
			none: []string{"request_id"},
		},
		{
			name: "bare context",
			ctx:  context.Background(),
			none: []string{"run_id", "request_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := logLine(t, func(l zerolog.Logger) { l.Info().Ctx(tt.ctx).Msg("x") })
			for k, v := range tt.want {
				assert.Equal(t, v, entry[k])
			}
			for _, k := range tt.none {
				assert.NotContains(t, entry, k)
			}
		})
	}
}

func TestContextHook_without_ctx(t *testing.T) {
	entry := logLine(t, func(l zerolog.Logger) { l.Info().Msg("x") })
	assert.NotContains(t, entry, "run_id")
}
