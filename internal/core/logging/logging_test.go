package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestContextValues(t *testing.T) {
	ctx := WithCategory(WithRunID(context.Background(), "0b6c1f0e-run"), "SEC")

	assert.Equal(t, "0b6c1f0e-run", GetRunID(ctx))
	assert.Equal(t, "SEC", GetCategory(ctx))

	assert.Empty(t, GetRunID(context.Background()))
	assert.Empty(t, GetCategory(context.Background()))
}

func TestContextHook(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		want   map[string]string
		absent []string
	}{
		{
			name: "run and category",
			ctx:  WithCategory(WithRunID(context.Background(), "run-123"), "BAK"),
			want: map[string]string{"run_id": "run-123", "category": "BAK"},
		},
		{
			name:   "run only",
			ctx:    WithRunID(context.Background(), "run-123"),
			want:   map[string]string{"run_id": "run-123"},
			absent: []string{"category"},
		},
		{
			name:   "category only",
			ctx:    WithCategory(context.Background(), "SSL"),
			want:   map[string]string{"category": "SSL"},
			absent: []string{"run_id"},
		},
		{
			name:   "bare context",
			ctx:    context.Background(),
			absent: []string{"run_id", "category"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(tt.ctx).Msg("check")

			entry := decode(t, &buf)
			for k, v := range tt.want {
				assert.Equal(t, v, entry[k], k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, entry, k)
			}
		})
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	logger := Component("cache")
	logger.Info().Msg("saved")

	entry := decode(t, &buf)
	assert.Equal(t, "cache", entry["cmp"])
	assert.Equal(t, "saved", entry["message"])
}

func TestComponentCtx(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	ctx := WithCategory(WithRunID(context.Background(), "run-9"), "DSK")
	logger := ComponentCtx(ctx, "checks")
	logger.Info().Msg("scan")

	entry := decode(t, &buf)
	assert.Equal(t, "checks", entry["cmp"])
	assert.Equal(t, "run-9", entry["run_id"])
	assert.Equal(t, "DSK", entry["category"])
}
