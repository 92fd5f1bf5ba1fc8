// Package logging provides component loggers and the context fields that
// tie log lines to one aggregation run.
package logging

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns the global logger tagged with a component name.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// ComponentCtx is Component with the run_id and category carried by ctx
// attached as fields, for loggers handed to code that does not log with
// a context.
func ComponentCtx(ctx context.Context, name string) zerolog.Logger {
	lc := log.With().Str("cmp", name)
	eachField(ctx, func(k, v string) { lc = lc.Str(k, v) })
	return lc.Logger()
}
