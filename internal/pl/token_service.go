package pl

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/confstore"
	"github.com/colonyops/pl/internal/core/logging"
)

var (
	// ErrEmptyToken is returned when a rotation is recorded without a token name.
	ErrEmptyToken = errors.New("token name is required")
	// ErrInvalidTokenName is returned for names that cannot be used as a
	// configuration key.
	ErrInvalidTokenName = errors.New("invalid token name")
)

// TokenService records API token rotations.
type TokenService struct {
	store  confstore.Store
	config *config.Config
	cache  SnapshotCache
	now    func() time.Time
	log    zerolog.Logger
}

// NewTokenService creates a TokenService. cfg is kept in sync with what is
// written so checks later in the same process see the rotation.
func NewTokenService(store confstore.Store, cfg *config.Config, cache SnapshotCache) *TokenService {
	return &TokenService{
		store:  store,
		config: cfg,
		cache:  cache,
		now:    time.Now,
		log:    logging.Component("tokens"),
	}
}

// Record stores the current UTC time as the last rotation of name and
// invalidates the cached snapshot.
func (s *TokenService) Record(name string) (time.Time, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return time.Time{}, ErrEmptyToken
	}
	if strings.ContainsAny(name, ". ") {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidTokenName, name)
	}

	rotated := s.now().UTC().Truncate(time.Second)
	path := "settings.todo.tokens." + name + ".last_rotated"
	if err := s.store.Set(path, rotated); err != nil {
		return time.Time{}, fmt.Errorf("record rotation for %s: %w", name, err)
	}

	if s.config != nil {
		if s.config.Todo.Tokens == nil {
			s.config.Todo.Tokens = map[string]config.Token{}
		}
		s.config.Todo.Tokens[name] = config.Token{LastRotated: config.Timestamp{Time: rotated}}
	}

	if s.cache != nil {
		if err := s.cache.Clear(); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear todo cache")
		}
	}

	return rotated, nil
}
