package todo

import (
	"sort"
	"strings"
	"time"
)

// Snapshot is the cached result of one aggregation run, before filtering
// and ignore suppression.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Items     []Item    `json:"items"`
}

// Fresh reports whether the snapshot is younger than ttl at now.
func (s Snapshot) Fresh(now time.Time, ttl time.Duration) bool {
	if s.Timestamp.IsZero() || ttl <= 0 {
		return false
	}
	age := now.Sub(s.Timestamp)
	return age >= 0 && age < ttl
}

// Filter restricts a view. Zero-value fields match everything; set fields
// are combined with AND.
type Filter struct {
	Priority Priority
	Category string // case-insensitive prefix of the category code
	Site     string
}

// Match reports whether it satisfies every set predicate.
func (f Filter) Match(it Item) bool {
	if f.Priority != "" && it.Priority != f.Priority {
		return false
	}
	if f.Category != "" && !strings.HasPrefix(strings.ToUpper(string(it.Category)), strings.ToUpper(f.Category)) {
		return false
	}
	if f.Site != "" && it.Site != f.Site {
		return false
	}
	return true
}

// Sort orders items by priority, then category enumeration order. The sort
// is stable, so within a category items keep their discovery order.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Priority.Rank(), items[j].Priority.Rank()
		if pi != pj {
			return pi < pj
		}
		return items[i].Category.Rank() < items[j].Category.Rank()
	})
}

// ViewItem is an item as presented, optionally tagged as ignored.
type ViewItem struct {
	Item
	Ignored      bool   `json:"ignored,omitempty"`
	IgnoreReason string `json:"ignore_reason,omitempty"`
}

// Summary holds per-priority counts of a view.
type Summary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

func (s *Summary) add(p Priority) {
	s.Total++
	switch p {
	case PriorityHigh:
		s.High++
	case PriorityMedium:
		s.Medium++
	case PriorityLow:
		s.Low++
	}
}

// View is the filtered, sorted item list handed to presenters.
type View struct {
	Timestamp time.Time  `json:"timestamp"`
	Summary   Summary    `json:"summary"`
	Items     []ViewItem `json:"items"`
}

// ViewOptions control BuildView.
type ViewOptions struct {
	Filter      Filter
	ShowIgnored bool
}

// BuildView applies filters, then ignore suppression, then sorting, and
// counts what remains. snap.Items is not modified.
func BuildView(snap Snapshot, ignored IgnoreSet, opts ViewOptions) View {
	kept := make([]Item, 0, len(snap.Items))
	for _, it := range snap.Items {
		if !opts.Filter.Match(it) {
			continue
		}
		if !opts.ShowIgnored && ignored.Has(it.ID) {
			continue
		}
		kept = append(kept, it)
	}

	Sort(kept)

	view := View{
		Timestamp: snap.Timestamp.UTC(),
		Items:     make([]ViewItem, 0, len(kept)),
	}
	for _, it := range kept {
		vi := ViewItem{Item: it}
		if e, ok := ignored[NormalizeID(it.ID)]; ok {
			vi.Ignored = true
			vi.IgnoreReason = e.Reason
		}
		view.Items = append(view.Items, vi)
		view.Summary.add(it.Priority)
	}
	return view
}

// ByPriority returns the view items with priority p, in view order.
func (v View) ByPriority(p Priority) []ViewItem {
	var out []ViewItem
	for _, it := range v.Items {
		if it.Priority == p {
			out = append(out, it)
		}
	}
	return out
}
