package pl

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/colonyops/pl/internal/core/confstore"
	"github.com/colonyops/pl/internal/core/todo"
)

// IgnoredPath is where ignore entries live in the configuration document.
const IgnoredPath = "settings.todo.ignored"

// currentUser names the operator recorded in ignored_by. Overridden in tests.
var currentUser = func() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}

// IgnoreService manages the persisted ignore/resolution list.
type IgnoreService struct {
	store confstore.Store
	now   func() time.Time
}

// NewIgnoreService creates an IgnoreService over store.
func NewIgnoreService(store confstore.Store) *IgnoreService {
	return &IgnoreService{store: store, now: time.Now}
}

// List returns every stored entry, including expired ones, in stored order.
func (s *IgnoreService) List() ([]todo.IgnoreEntry, error) {
	var entries []todo.IgnoreEntry
	if err := confstore.GetOr(s.store, IgnoredPath, &entries); err != nil {
		return nil, fmt.Errorf("read ignore list: %w", err)
	}
	return entries, nil
}

// Active returns the entries currently suppressing items.
func (s *IgnoreService) Active() (todo.IgnoreSet, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	return todo.NewIgnoreSet(entries, s.now().UTC()), nil
}

// IsIgnored reports whether id is suppressed by an unexpired entry.
func (s *IgnoreService) IsIgnored(id string) (bool, error) {
	set, err := s.Active()
	if err != nil {
		return false, err
	}
	return set.Has(id), nil
}

// Add records id as ignored. An empty reason defaults to "Manual ignore".
// Existing entries for the same id and any expired entries are dropped in
// the same write, so repeating the command leaves exactly one entry.
func (s *IgnoreService) Add(id, reason string, expires *time.Time) (todo.IgnoreEntry, error) {
	id = todo.NormalizeID(id)
	if _, _, err := todo.ParseID(id); err != nil {
		return todo.IgnoreEntry{}, err
	}
	if reason == "" {
		reason = todo.ReasonIgnored
	}

	now := s.now().UTC().Truncate(time.Second)
	if expires != nil {
		exp := expires.UTC()
		if !exp.After(now) {
			return todo.IgnoreEntry{}, fmt.Errorf("expiry %s is in the past", exp.Format(time.RFC3339))
		}
		expires = &exp
	}

	entry := todo.IgnoreEntry{
		ID:        id,
		Reason:    reason,
		IgnoredAt: now,
		IgnoredBy: currentUser(),
		Expires:   expires,
	}

	err := s.store.Update(func(doc *confstore.Document) error {
		entries, err := readEntries(doc)
		if err != nil {
			return err
		}

		kept := make([]todo.IgnoreEntry, 0, len(entries)+1)
		for _, e := range entries {
			if todo.NormalizeID(e.ID) == id || !e.Active(now) {
				continue
			}
			kept = append(kept, e)
		}
		kept = append(kept, entry)

		return doc.Set(IgnoredPath, kept)
	})
	if err != nil {
		return todo.IgnoreEntry{}, fmt.Errorf("save ignore entry: %w", err)
	}

	return entry, nil
}

// Resolve records id as manually resolved.
func (s *IgnoreService) Resolve(id string) (todo.IgnoreEntry, error) {
	return s.Add(id, todo.ReasonResolved, nil)
}

// Remove deletes all entries for id and returns how many were removed.
// Nothing is written when there is no match.
func (s *IgnoreService) Remove(id string) (int, error) {
	id = todo.NormalizeID(id)
	if _, _, err := todo.ParseID(id); err != nil {
		return 0, err
	}

	removed := 0
	err := s.store.Update(func(doc *confstore.Document) error {
		entries, err := readEntries(doc)
		if err != nil {
			return err
		}

		kept := make([]todo.IgnoreEntry, 0, len(entries))
		for _, e := range entries {
			if todo.NormalizeID(e.ID) == id {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if removed == 0 {
			return errNoChange
		}

		return doc.Set(IgnoredPath, kept)
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return 0, fmt.Errorf("remove ignore entry: %w", err)
	}

	return removed, nil
}

// Prune drops expired entries and returns how many were removed.
func (s *IgnoreService) Prune() (int, error) {
	now := s.now().UTC()

	pruned := 0
	err := s.store.Update(func(doc *confstore.Document) error {
		entries, err := readEntries(doc)
		if err != nil {
			return err
		}

		kept := make([]todo.IgnoreEntry, 0, len(entries))
		for _, e := range entries {
			if !e.Active(now) {
				pruned++
				continue
			}
			kept = append(kept, e)
		}
		if pruned == 0 {
			return errNoChange
		}

		return doc.Set(IgnoredPath, kept)
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return 0, fmt.Errorf("prune ignore list: %w", err)
	}

	return pruned, nil
}

// errNoChange aborts an Update without writing.
var errNoChange = errors.New("no change")

func readEntries(doc *confstore.Document) ([]todo.IgnoreEntry, error) {
	var entries []todo.IgnoreEntry
	if err := doc.Get(IgnoredPath, &entries); err != nil && !errors.Is(err, confstore.ErrNotFound) {
		return nil, fmt.Errorf("read ignore list: %w", err)
	}
	return entries, nil
}
