// Package users owns the user collection: identity tokens, admin flags and
// step submissions. The whole collection lives in memory and is written back
// to its repository after every mutation.
package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teamsteps/teamsteps/internal/models"
	"github.com/teamsteps/teamsteps/internal/users/repository"
	"github.com/teamsteps/teamsteps/pkg/logger"
	"github.com/teamsteps/teamsteps/pkg/metrics"
)

// DateLayout formats submission dates (UTC, millisecond precision, "Z" suffix).
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used to date step submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTokenGenerator overrides how new user tokens are generated.
func WithTokenGenerator(gen func() string) Option {
	return func(s *Store) { s.newToken = gen }
}

// Store is the single owner of the user collection. Reads are served from
// memory; each mutation holds the write lock across mutate, recompute and
// persist, so mutations are applied one at a time.
type Store struct {
	mu       sync.RWMutex
	repo     repository.Repository
	users    []models.UserWithToken
	now      func() time.Time
	newToken func() string
}

// New loads the collection from repo. An absent document is initialised to an
// empty collection and written immediately.
func New(ctx context.Context, repo repository.Repository, opts ...Option) (*Store, error) {
	s := &Store{
		repo:     repo,
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := repo.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNoDocument):
		logger.Infof("no user document in %s backend; creating an empty one", repo.Name())
		s.users = []models.UserWithToken{}
		if err := s.persist(ctx); err != nil {
			return nil, fmt.Errorf("initializing user document: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("loading users: %w", err)
	default:
		s.users = loaded
		seen := make(map[string]bool, len(loaded))
		for i := range s.users {
			u := &s.users[i]
			if u.Steps == nil {
				u.Steps = []models.StepSubmission{}
			}
			u.TotalSteps = models.SumSteps(u.Steps)
			if seen[u.Name] {
				logger.Warnf("user document contains duplicate name %q", u.Name)
			}
			seen[u.Name] = true
		}
		metrics.StoreUsers.Set(float64(len(s.users)))
		logger.Infof("loaded %d users from %s backend", len(s.users), repo.Name())
	}
	return s, nil
}

// Backend names the repository behind the store.
func (s *Store) Backend() string { return s.repo.Name() }

// GetAll returns every user without tokens, in collection order.
func (s *Store) GetAll(ctx context.Context) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.users))
	for i, u := range s.users {
		out[i] = u.Public()
	}
	return out
}

// GetAllWithToken returns every user including tokens. Admin-only view.
func (s *Store) GetAllWithToken(ctx context.Context) []models.UserWithToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserWithToken, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out
}

// GetByToken returns the user holding token.
func (s *Store) GetByToken(ctx context.Context, token string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if token != "" {
		for _, u := range s.users {
			if u.Token == token {
				return u.Public(), nil
			}
		}
	}
	return models.User{}, fmt.Errorf("%w for token", ErrNotFound)
}

// GetByName returns the user called name.
func (s *Store) GetByName(ctx context.Context, name string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, err := s.indexByName(name)
	if err != nil {
		return models.User{}, err
	}
	return s.users[i].Public(), nil
}

// AddUser creates a user with a fresh token and returns the token.
func (s *Store) AddUser(ctx context.Context, name, team string) (token string, err error) {
	defer func() { recordMutation("add_user", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.indexByName(name); err == nil {
		return "", fmt.Errorf("%w: %q", ErrConflict, name)
	}
	u := models.UserWithToken{
		User: models.User{
			Name:  name,
			Team:  team,
			Steps: []models.StepSubmission{},
		},
		Token: s.newToken(),
	}
	s.users = append(s.users, u)
	if err := s.persist(ctx); err != nil {
		return "", err
	}
	return u.Token, nil
}

// EditUser renames and/or moves a user to another team. Empty newName or
// newTeam leave that field as it is, so neither can be cleared.
func (s *Store) EditUser(ctx context.Context, previousName, newName, newTeam string) (err error) {
	defer func() { recordMutation("edit_user", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexByName(previousName)
	if err != nil {
		return err
	}
	if newName != "" && newName != previousName {
		if _, err := s.indexByName(newName); err == nil {
			return fmt.Errorf("%w: new name %q can't be used", ErrConflict, newName)
		}
	}
	u := &s.users[i]
	if newName != "" {
		u.Name = newName
	}
	if newTeam != "" {
		u.Team = newTeam
	}
	return s.persist(ctx)
}

// DeleteUser removes a user together with its step history.
func (s *Store) DeleteUser(ctx context.Context, name string) (err error) {
	defer func() { recordMutation("delete_user", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexByName(name)
	if err != nil {
		return err
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	return s.persist(ctx)
}

// SubmitSteps records a new submission dated now, ahead of older ones.
func (s *Store) SubmitSteps(ctx context.Context, name string, steps int) (err error) {
	defer func() { recordMutation("submit_steps", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexByName(name)
	if err != nil {
		return err
	}
	u := &s.users[i]
	sub := models.StepSubmission{Date: s.now().UTC().Format(DateLayout), Steps: steps}
	u.Steps = append([]models.StepSubmission{sub}, u.Steps...)
	u.TotalSteps = models.SumSteps(u.Steps)
	return s.persist(ctx)
}

// DeleteSteps removes every submission dated exactly date.
func (s *Store) DeleteSteps(ctx context.Context, name, date string) (err error) {
	defer func() { recordMutation("delete_steps", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexByName(name)
	if err != nil {
		return err
	}
	u := &s.users[i]
	kept := make([]models.StepSubmission, 0, len(u.Steps))
	for _, sub := range u.Steps {
		if sub.Date != date {
			kept = append(kept, sub)
		}
	}
	u.Steps = kept
	u.TotalSteps = models.SumSteps(u.Steps)
	return s.persist(ctx)
}

// SetAdmin grants or revokes admin rights.
func (s *Store) SetAdmin(ctx context.Context, name string, isAdmin bool) (err error) {
	defer func() { recordMutation("set_admin", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexByName(name)
	if err != nil {
		return err
	}
	s.users[i].IsAdmin = isAdmin
	return s.persist(ctx)
}

// indexByName finds a user by name (caller must hold the lock).
func (s *Store) indexByName(name string) (int, error) {
	for i := range s.users {
		if s.users[i].Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w with name %q", ErrNotFound, name)
}

// persist writes the whole collection (caller must hold the write lock).
func (s *Store) persist(ctx context.Context) error {
	metrics.StoreUsers.Set(float64(len(s.users)))
	if err := s.repo.Save(ctx, s.users); err != nil {
		metrics.StorePersistFailures.WithLabelValues(s.repo.Name()).Inc()
		logger.Errorf("saving users to %s backend: %v", s.repo.Name(), err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func recordMutation(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrConflict):
		result = "conflict"
	default:
		result = "persist_error"
	}
	metrics.StoreMutations.WithLabelValues(op, result).Inc()
}
