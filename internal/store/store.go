// Package store owns the todo data aggregate. It enforces the role and
// ownership rules on every mutation and keeps the aggregate in step with a
// storage.Backend shared by every front-end.
//
// Each exported operation runs one cycle under the store mutex:
//
//	reload from backend -> apply rules -> persist (mutations only)
//
// so writes made by another process become visible on the next call. Across
// processes the last writer wins.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"todomcp/internal/domain"
	"todomcp/internal/logging"
	"todomcp/internal/storage"

	"github.com/google/uuid"
)

var (
	// ErrPermissionDenied means the current user (or lack of one) may not act.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound means a referenced todo, project or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotLoggedIn is returned by operations that need a session to report on.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrInvalidInput wraps shape and reference failures.
	ErrInvalidInput = errors.New("invalid input")
)

// IsDenial reports whether err is a permission or existence refusal. The
// front-ends present both the same way.
func IsDenial(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotLoggedIn)
}

// Outcome labels for Observer.
const (
	OutcomeOK          = "ok"
	OutcomeDenied      = "denied"
	OutcomeNotFound    = "not_found"
	OutcomeNotLoggedIn = "not_logged_in"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

// OutcomeOf maps an operation error to its outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrPermissionDenied):
		return OutcomeDenied
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrNotLoggedIn):
		return OutcomeNotLoggedIn
	case errors.Is(err, ErrInvalidInput):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// Observer is notified after every operation with its name and outcome label.
type Observer func(op, outcome string)

// Store is the task tracker shared by the MCP and HTTP adapters. Every
// operation reloads from the backend, runs under one mutex and, when it
// mutates, saves the aggregate back.
type Store struct {
	mu       sync.Mutex
	backend  storage.Backend
	logger   *logging.AppLogger
	now      func() time.Time
	newID    func() string
	observer Observer

	data *domain.Data
	// loadErr is the last reload failure other than ErrNotExist. While set,
	// persist leaves the stored document alone.
	loadErr error
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now; "today" is the clock's UTC date.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUIDv4 id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithObserver registers a hook called after every operation.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// New builds a store over backend. Nothing is read until the first operation.
func New(backend storage.Backend, logger *logging.AppLogger, opts ...Option) *Store {
	if logger == nil {
		logger = logging.GetDefault()
	}
	s := &Store{
		backend: backend,
		logger:  logger.With("component", "store"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the storage backend the store reads and writes.
func (s *Store) Backend() storage.Backend { return s.backend }

func (s *Store) today() string { return domain.Today(s.now()) }

// Reload re-reads the backend, replacing the in-memory aggregate.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reload(ctx)
}

// reload falls back to the seed data set when nothing is stored or the
// stored document cannot be read. An unreadable document also blocks
// persist until a later reload succeeds.
func (s *Store) reload(ctx context.Context) {
	data, err := s.backend.Load(ctx)
	s.loadErr = nil
	switch {
	case err == nil:
		s.data = data
		s.logger.DebugObject("loaded", map[string]int{
			"users":    len(data.Users),
			"projects": len(data.Projects),
			"todos":    len(data.Todos),
		})
		return
	case errors.Is(err, storage.ErrNotExist):
		s.logger.Debug("No stored data, using seed data", "storage", s.backend.Describe())
	default:
		s.loadErr = err
		s.logger.Error("Failed to load data, using seed data", "storage", s.backend.Describe(), "error", err)
	}
	s.data = domain.SeedData(s.now())
}

// persist writes the aggregate. Failures are logged and swallowed: the
// in-memory change stays applied for the rest of the cycle.
func (s *Store) persist(ctx context.Context) {
	if s.loadErr != nil {
		s.logger.Error("Not saving over unreadable stored data", "storage", s.backend.Describe(), "error", s.loadErr)
		return
	}
	if err := s.backend.Save(ctx, s.data); err != nil {
		s.logger.Error("Failed to save data", "storage", s.backend.Describe(), "error", err)
	}
}

// cycle runs fn under the lock between a reload and, when mutating and fn
// succeeded, a persist.
func (s *Store) cycle(ctx context.Context, op string, mutating bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.reload(ctx)
	err := fn()
	if err == nil && mutating {
		s.persist(ctx)
	}

	if err != nil {
		s.logger.Debug("Operation refused", "op", op, "error", err)
	}
	if s.observer != nil {
		s.observer(op, OutcomeOf(err))
	}
	s.logger.LogPerformance(op, start)
	return err
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

func denied(action string) error {
	return fmt.Errorf("%s: %w", action, ErrPermissionDenied)
}
