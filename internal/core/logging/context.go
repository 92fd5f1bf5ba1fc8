package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	categoryKey contextKey = "category"
)

// fieldKeys is the order context fields are written in.
var fieldKeys = []contextKey{runIDKey, categoryKey}

// WithRunID tags ctx with the id of one aggregation run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithCategory tags ctx with the category code of the running check.
func WithCategory(ctx context.Context, category string) context.Context {
	return context.WithValue(ctx, categoryKey, category)
}

// GetRunID returns the run id carried by ctx, or "".
func GetRunID(ctx context.Context) string {
	return value(ctx, runIDKey)
}

// GetCategory returns the check category carried by ctx, or "".
func GetCategory(ctx context.Context) string {
	return value(ctx, categoryKey)
}

func value(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// eachField calls fn for every non-empty field carried by ctx.
func eachField(ctx context.Context, fn func(key, value string)) {
	for _, key := range fieldKeys {
		if v := value(ctx, key); v != "" {
			fn(string(key), v)
		}
	}
}

// ContextHook copies run_id and category from the event's context onto
// the event. Install it with logger.Hook and log with Ctx(ctx).
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}
	eachField(ctx, func(k, v string) { e.Str(k, v) })
}
