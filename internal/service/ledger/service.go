// Package ledger implements the balance-mutation engine. Every committed
// operation appends exactly one transaction to the acting account's history
// and writes the new balance and history back through the repository as a
// single logical update. A per-account mutex keeps concurrent mutations on
// the same account from computing balances off the same stale read.
//
// Investment purchases are the one deliberate exception: they deduct the
// balance without a ledger entry, so balance and ledger sum can diverge
// after a purchase. This mirrors the original system and is preserved, not
// fixed.
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finflow/finflow/internal/bank"
	"github.com/finflow/finflow/internal/errs"
	"github.com/finflow/finflow/internal/funds"
)

// Repo defines the repository operations the engine needs. Save must
// replace balance and history together (see repo.Repo).
type Repo interface {
	Load(ctx context.Context, id uuid.UUID) (bank.Account, error)
	Save(ctx context.Context, a bank.Account) error
}

// ErrUnknownKind rejects transaction kinds outside the deposit,
// withdrawal, transfer family.
var ErrUnknownKind = errors.New("unknown transaction kind")

// Service exposes the transaction-apply surface.
type Service interface {
	Apply(ctx context.Context, accountID uuid.UUID, kind bank.TransactionKind, amountMinor int64, description, counterparty string) (bank.Transaction, error)
	Invest(ctx context.Context, accountID uuid.UUID, amountMinor int64, fundID int) (bank.Account, error)
}

type service struct {
	repo  Repo
	delay time.Duration
	now   func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// Option configures the service.
type Option func(*service)

// WithDelay sets the artificial processing latency applied before a mutation
// commits. Zero disables it (tests).
func WithDelay(d time.Duration) Option {
	return func(s *service) { s.delay = d }
}

// WithClock overrides the timestamp source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// New constructs the ledger engine.
func New(repo Repo, opts ...Option) Service {
	s := &service{repo: repo, now: func() time.Time { return time.Now().UTC() }, locks: make(map[uuid.UUID]*sync.Mutex)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply validates and commits one deposit, withdrawal or transfer.
// Preconditions: amount > 0; withdrawals and transfers must be covered by
// the current balance; transfers need a counterparty. The counterparty is
// recorded as entered and not resolved against the directory.
func (s *service) Apply(ctx context.Context, accountID uuid.UUID, kind bank.TransactionKind, amountMinor int64, description, counterparty string) (bank.Transaction, error) {
	if !kind.Valid() {
		return bank.Transaction{}, ErrUnknownKind
	}
	if amountMinor <= 0 {
		return bank.Transaction{}, errs.ErrInvalidAmount
	}
	if kind == bank.KindTransfer && counterparty == "" {
		return bank.Transaction{}, errs.ErrMissingCounterparty
	}
	if err := s.wait(ctx); err != nil {
		return bank.Transaction{}, err
	}

	l := s.lockFor(accountID)
	l.Lock()
	defer l.Unlock()

	acc, err := s.repo.Load(ctx, accountID)
	if err != nil {
		return bank.Transaction{}, err
	}
	amount := bank.Amount(amountMinor)
	newBalance := acc.Balance
	if kind.Deducts() {
		if amountMinor > bank.MinorUnits(acc.Balance) {
			return bank.Transaction{}, errs.ErrInsufficientFunds
		}
		newBalance, err = acc.Balance.Sub(amount)
	} else {
		newBalance, err = acc.Balance.Add(amount)
	}
	if err != nil {
		return bank.Transaction{}, err
	}

	tx := bank.Transaction{
		ID:           acc.NextTransactionID(),
		Kind:         kind,
		Amount:       amount,
		Description:  description,
		Timestamp:    s.now(),
		Counterparty: counterparty,
	}
	acc.Balance = newBalance
	acc.Transactions = append(acc.Transactions, tx)
	if err := s.repo.Save(ctx, acc); err != nil {
		return bank.Transaction{}, err
	}
	return tx, nil
}

// Invest commits an investment purchase: the fund must exist, the amount
// must be positive and at least the fund's minimum, and the balance must
// cover it. The deduction is not recorded in the transaction history.
func (s *service) Invest(ctx context.Context, accountID uuid.UUID, amountMinor int64, fundID int) (bank.Account, error) {
	fund, ok := funds.ByID(fundID)
	if !ok {
		return bank.Account{}, errs.ErrUnknownFund
	}
	if amountMinor <= 0 {
		return bank.Account{}, errs.ErrInvalidAmount
	}
	if amountMinor < fund.MinInvestmentMinor {
		return bank.Account{}, errs.ErrBelowMinimum
	}
	if err := s.wait(ctx); err != nil {
		return bank.Account{}, err
	}

	l := s.lockFor(accountID)
	l.Lock()
	defer l.Unlock()

	acc, err := s.repo.Load(ctx, accountID)
	if err != nil {
		return bank.Account{}, err
	}
	if amountMinor > bank.MinorUnits(acc.Balance) {
		return bank.Account{}, errs.ErrInsufficientFunds
	}
	newBalance, err := acc.Balance.Sub(bank.Amount(amountMinor))
	if err != nil {
		return bank.Account{}, err
	}
	acc.Balance = newBalance
	if err := s.repo.Save(ctx, acc); err != nil {
		return bank.Account{}, err
	}
	return acc, nil
}

// lockFor returns the mutex serializing mutations for one account.
func (s *service) lockFor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// wait blocks for the configured artificial latency or until ctx is done.
// Nothing has been committed when it returns, so cancellation has no
// partial effect.
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
