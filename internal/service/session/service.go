// Package session implements the session manager: the authentication gate
// that binds at most one active session to an account, persists a durable
// pointer so the session survives restarts, and always re-reads the account
// through the repository so mutations made elsewhere are visible immediately.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finflow/finflow/internal/bank"
	"github.com/finflow/finflow/internal/errs"
)

// State is the session lifecycle state.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// Repo defines the repository operations the session manager needs.
type Repo interface {
	Create(ctx context.Context, username, secret, email string) (bank.Account, error)
	FindByCredentials(ctx context.Context, username, secret string) (bank.Account, error)
	Load(ctx context.Context, id uuid.UUID) (bank.Account, error)
	SaveSession(ctx context.Context, a bank.Account) error
	LoadSession(ctx context.Context) (bank.Account, bool, error)
	ClearSession(ctx context.Context) error
}

// Service exposes the authentication surface consumed by presentation code.
type Service interface {
	Login(ctx context.Context, username, secret string) (bank.Account, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, username, secret, email string) (bank.Account, error)
	Current(ctx context.Context) (bank.Account, error)
	Restore(ctx context.Context) error
	State() State
	AccountID() (uuid.UUID, bool)
}

type service struct {
	repo  Repo
	delay time.Duration

	// mu guards the state fields only. It is never held across repository
	// calls or the artificial wait, so State, AccountID, Current and Logout
	// stay responsive while a login is pending.
	mu        sync.Mutex
	state     State
	accountID uuid.UUID
}

// Option configures the service.
type Option func(*service)

// WithDelay sets the artificial processing latency applied before login and
// register commit. Zero disables it (tests).
func WithDelay(d time.Duration) Option {
	return func(s *service) { s.delay = d }
}

// New constructs a session manager in the Anonymous state.
func New(repo Repo, opts ...Option) Service {
	s := &service{repo: repo, state: StateAnonymous}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates and establishes the single current session, persisting
// the durable pointer. On failure the state returns to Anonymous. The wait
// happens before anything is committed, so cancellation abandons the attempt
// without partial effect.
func (s *service) Login(ctx context.Context, username, secret string) (bank.Account, error) {
	s.transition(StateAuthenticating, uuid.Nil)
	if err := s.wait(ctx); err != nil {
		s.transition(StateAnonymous, uuid.Nil)
		return bank.Account{}, err
	}
	acc, err := s.repo.FindByCredentials(ctx, username, secret)
	if err != nil {
		s.transition(StateAnonymous, uuid.Nil)
		return bank.Account{}, err
	}
	if err := s.repo.SaveSession(ctx, acc); err != nil {
		s.transition(StateAnonymous, uuid.Nil)
		return bank.Account{}, err
	}
	s.transition(StateAuthenticated, acc.ID)
	return acc, nil
}

// Logout returns to Anonymous from any state and clears the durable pointer.
func (s *service) Logout(ctx context.Context) error {
	s.transition(StateAnonymous, uuid.Nil)
	return s.repo.ClearSession(ctx)
}

// Register creates a new account. It does not establish a session; the
// caller logs in separately.
func (s *service) Register(ctx context.Context, username, secret, email string) (bank.Account, error) {
	if err := s.wait(ctx); err != nil {
		return bank.Account{}, err
	}
	return s.repo.Create(ctx, username, secret, email)
}

// Current re-reads the authenticated account from the repository. Returns
// errs.ErrNotFound when no session is active or the account has vanished
// (which also tears the session down).
func (s *service) Current(ctx context.Context) (bank.Account, error) {
	id, ok := s.AccountID()
	if !ok {
		return bank.Account{}, errs.ErrNotFound
	}
	acc, err := s.repo.Load(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.transition(StateAnonymous, uuid.Nil)
			_ = s.repo.ClearSession(ctx)
		}
		return bank.Account{}, err
	}
	return acc, nil
}

// Restore resolves the durable session pointer at startup. A resolvable
// pointer transitions directly to Authenticated; a missing or stale one
// leaves the manager Anonymous.
func (s *service) Restore(ctx context.Context) error {
	acc, found, err := s.repo.LoadSession(ctx)
	if err != nil {
		return err
	}
	if !found {
		s.transition(StateAnonymous, uuid.Nil)
		return nil
	}
	s.transition(StateAuthenticated, acc.ID)
	return nil
}

// State reports the current lifecycle state.
func (s *service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AccountID reports the authenticated account id, if any.
func (s *service) AccountID() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return uuid.Nil, false
	}
	return s.accountID, true
}

func (s *service) transition(st State, id uuid.UUID) {
	s.mu.Lock()
	s.state = st
	s.accountID = id
	s.mu.Unlock()
}

// wait blocks for the configured artificial latency or until ctx is done.
func (s *service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
