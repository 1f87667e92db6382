package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// maxCreateAttempts bounds id regeneration when Create reports ErrExists.
const maxCreateAttempts = 5

// Service handles the business logic for notes.
type Service struct {
	repo   Repository
	ids    IDGenerator
	now    func() time.Time
	logger *slog.Logger
	locks  *keyedMutex

	mu      sync.RWMutex
	created int
	updated int
	deleted int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithIDGenerator overrides the default timestamp id generator.
func WithIDGenerator(g IDGenerator) ServiceOption {
	return func(s *Service) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithServiceLogger sets the logger used for recovered failures.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		ids:    &TimestampGenerator{},
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		locks:  newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository exposes the underlying storage adapter.
func (s *Service) Repository() Repository {
	return s.repo
}

// CreateNote stores a new note with a fresh id and returns it.
func (s *Service) CreateNote(ctx context.Context, in NoteInput) (Note, error) {
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		now := NewTimestamp(s.now())
		n := Note{
			ID:        s.ids.NewID(now.Time),
			Title:     SanitizeTitle(in.Title),
			Content:   in.Content,
			Tags:      normalizeTags(in.Tags),
			CreatedAt: now,
			UpdatedAt: now,
		}

		unlock := s.locks.Lock(n.ID)
		err := s.repo.Create(ctx, n)
		unlock()

		if err == nil {
			s.count(&s.created)
			return n, nil
		}
		if !errors.Is(err, ErrExists) {
			return Note{}, fmt.Errorf("failed to create note: %w", err)
		}
		s.logger.Warn("note id collision, retrying", "id", n.ID, "attempt", attempt)
	}
	return Note{}, fmt.Errorf("failed to allocate a unique note id after %d attempts: %w", maxCreateAttempts, ErrExists)
}

// GetNote retrieves a note. Missing, invalid and corrupt notes all report
// ErrNotFound.
func (s *Service) GetNote(ctx context.Context, id string) (Note, error) {
	if !ValidID(id) {
		return Note{}, ErrNotFound
	}
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return Note{}, s.readError(id, err)
	}
	return n, nil
}

// UpdateNote overwrites the mutable fields of a note and refreshes
// UpdatedAt. ID and CreatedAt never change.
func (s *Service) UpdateNote(ctx context.Context, id string, in NoteInput) (Note, error) {
	if !ValidID(id) {
		return Note{}, ErrNotFound
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return Note{}, s.readError(id, err)
	}

	now := NewTimestamp(s.now())
	if !now.After(n.UpdatedAt.Time) {
		now = Timestamp{Time: n.UpdatedAt.Add(time.Microsecond)}
	}
	if now.Before(n.CreatedAt.Time) {
		now = n.CreatedAt
	}

	n.Title = SanitizeTitle(in.Title)
	n.Content = in.Content
	n.Tags = normalizeTags(in.Tags)
	n.UpdatedAt = now

	if err := s.repo.Save(ctx, n); err != nil {
		return Note{}, fmt.Errorf("failed to update note %s: %w", id, err)
	}
	s.count(&s.updated)
	return n, nil
}

// DeleteNote removes a note and reports whether it existed.
func (s *Service) DeleteNote(ctx context.Context, id string) (bool, error) {
	if !ValidID(id) {
		return false, nil
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	s.count(&s.deleted)
	return true, nil
}

// ListNotes returns the readable notes matching q, newest first.
func (s *Service) ListNotes(ctx context.Context, q Query) ([]Note, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return q.Apply(notes), nil
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx, pattern)
}

func (s *Service) readError(id string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrCorruptRecord):
		s.logger.Debug("corrupt note treated as missing", "id", id, "error", err)
		return ErrNotFound
	default:
		return fmt.Errorf("failed to read note %s: %w", id, err)
	}
}

func (s *Service) count(c *int) {
	s.mu.Lock()
	*c++
	s.mu.Unlock()
}
