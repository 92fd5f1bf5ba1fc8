// Package metrics exports the result of a todo run in the Prometheus text
// format, for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/colonyops/pl/internal/core/checks"
	"github.com/colonyops/pl/internal/core/todo"
)

const (
	namespace = "pl"
	subsystem = "todo"
)

// Run describes the aggregation run behind a view.
type Run struct {
	Timestamp time.Time
	Cached    bool
	Providers []checks.Stat
}

// Collect builds a registry holding the gauges for view and run.
func Collect(view todo.View, run Run) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	items := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "items",
		Help:      "Number of open todo items.",
	}, []string{"priority", "category"})

	ignored := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ignored_items",
		Help:      "Number of todo items suppressed by the ignore list.",
	}, []string{"category"})

	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "provider_duration_seconds",
		Help:      "Time taken by each check during the last run.",
	}, []string{"category"})

	up := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "provider_up",
		Help:      "Whether the check completed without error during the last run.",
	}, []string{"category"})

	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the snapshot the items were taken from.",
	})

	cached := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "cached",
		Help:      "1 when the items were served from the cache.",
	})

	reg.MustRegister(items, ignored, duration, up, lastRun, cached)

	for _, c := range todo.Categories() {
		for _, p := range todo.Priorities() {
			items.WithLabelValues(string(p), string(c)).Set(0)
		}
	}
	for _, it := range view.Items {
		if it.Ignored {
			ignored.WithLabelValues(string(it.Category)).Inc()
			continue
		}
		items.WithLabelValues(string(it.Priority), string(it.Category)).Inc()
	}

	for _, st := range run.Providers {
		cat := string(st.Category)
		duration.WithLabelValues(cat).Set(st.Duration.Seconds())
		if st.Err != nil {
			up.WithLabelValues(cat).Set(0)
		} else {
			up.WithLabelValues(cat).Set(1)
		}
	}

	ts := run.Timestamp
	if ts.IsZero() {
		ts = view.Timestamp
	}
	if !ts.IsZero() {
		lastRun.Set(float64(ts.Unix()))
	}
	if run.Cached {
		cached.Set(1)
	}

	return reg
}

// WriteTextfile atomically writes the metrics for view and run to path.
func WriteTextfile(path string, view todo.View, run Run) error {
	if err := prometheus.WriteToTextfile(path, Collect(view, run)); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
