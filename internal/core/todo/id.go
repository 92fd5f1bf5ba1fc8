package todo

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when an id is not of the form <CAT>-<NNN>.
var ErrInvalidID = errors.New("invalid item id")

var idPattern = regexp.MustCompile(`^([A-Z]{3})-([0-9]{3,})$`)

// FormatID renders the id for the n-th finding (1-based) of a category.
func FormatID(c Category, n int) string {
	return fmt.Sprintf("%s-%03d", c, n)
}

// NormalizeID upper-cases and trims user input so "sec-001" matches "SEC-001".
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// ParseID splits an id into its category and sequence number.
func ParseID(id string) (Category, int, error) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	cat := Category(m[1])
	if !cat.IsValid() {
		return "", 0, fmt.Errorf("%w: %q: unknown category", ErrInvalidID, id)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return cat, n, nil
}

// IDSeq hands out sequential ids within one category. Providers must feed
// it findings in a stable order (e.g. sorted by site name) so the same
// finding keeps its id across runs.
type IDSeq struct {
	cat Category
	n   int
}

// NewIDSeq starts a sequence at <cat>-001.
func NewIDSeq(cat Category) *IDSeq {
	return &IDSeq{cat: cat}
}

// Next returns the next id in the sequence.
func (s *IDSeq) Next() string {
	s.n++
	return FormatID(s.cat, s.n)
}
