// Package doctor runs environment health checks for `pl doctor`.
package doctor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Status is the outcome of a single check item.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckItem is one line of a check result.
type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Problem reports whether the item needs attention.
func (i CheckItem) Problem() bool {
	return i.Status == StatusWarn || i.Status == StatusFail
}

// Result groups the items produced by one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

// Check is a single diagnostic run by `pl doctor`.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Report is the collected output of a doctor run.
type Report struct {
	Results []Result
	Passed  int
	Warned  int
	Failed  int
	Fixable int
}

// Healthy reports whether no item failed. Warnings do not make a run unhealthy.
func (r Report) Healthy() bool {
	return r.Failed == 0
}

// Run executes the checks concurrently. Results keep the order of checks.
func Run(ctx context.Context, checks []Check) Report {
	results := make([]Result, len(checks))

	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return NewReport(results)
}

// NewReport tallies item statuses across results.
func NewReport(results []Result) Report {
	r := Report{Results: results}
	for _, res := range results {
		for _, item := range res.Items {
			switch item.Status {
			case StatusPass:
				r.Passed++
			case StatusWarn:
				r.Warned++
			case StatusFail:
				r.Failed++
			}
			if item.Fixable && item.Problem() {
				r.Fixable++
			}
		}
	}
	return r
}
