// Package repo implements the account repository: the directory of all
// accounts (credentials, balance, transaction history) and the durable
// session pointer, both persisted as whole documents through a kv.Store.
//
// All directory writes go through a single mutex so a load→mutate→save
// sequence is a critical section within this process. The store remains the
// source of truth; accounts returned to callers are decoded copies and never
// carry the credential digest.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/finflow/finflow/internal/bank"
	"github.com/finflow/finflow/internal/errs"
	"github.com/finflow/finflow/internal/kv"
)

// InitialBalanceMinor is the onboarding balance for new accounts:
// ₹10,000.00 in minor units.
const InitialBalanceMinor int64 = 1_000_000

// Repo mediates all reads and writes of the accounts directory and the
// active-session document.
type Repo struct {
	store kv.Store
	mu    sync.Mutex
}

// New constructs a repository over the given store.
func New(store kv.Store) *Repo {
	return &Repo{store: store}
}

// Create registers a new account with a fresh id, the onboarding balance and
// an empty history. The secret is bcrypt-hashed before it touches the store.
// Fails with errs.ErrDuplicateUsername when the username is taken
// (case-sensitive match, like login).
func (r *Repo) Create(ctx context.Context, username, secret, email string) (bank.Account, error) {
	if username == "" || secret == "" {
		return bank.Account{}, fmt.Errorf("%w: username and credential are required", errs.ErrInvalidCredentials)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	dir, err := r.readDirectory(ctx)
	if err != nil {
		return bank.Account{}, err
	}
	for _, sa := range dir.Accounts {
		if sa.Username == username {
			return bank.Account{}, errs.ErrDuplicateUsername
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return bank.Account{}, err
	}
	acc := bank.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		Balance:      bank.Amount(InitialBalanceMinor),
		Transactions: []bank.Transaction{},
	}
	dir.Accounts = append(dir.Accounts, encodeAccount(acc, hash))
	if err := r.writeDirectory(ctx, dir); err != nil {
		return bank.Account{}, err
	}
	return acc, nil
}

// FindByCredentials authenticates by exact username match plus bcrypt
// comparison of the secret. Unknown usernames and wrong secrets both return
// errs.ErrInvalidCredentials.
func (r *Repo) FindByCredentials(ctx context.Context, username, secret string) (bank.Account, error) {
	dir, err := r.readDirectory(ctx)
	if err != nil {
		return bank.Account{}, err
	}
	for _, sa := range dir.Accounts {
		if sa.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword(sa.CredentialHash, []byte(secret)) != nil {
			return bank.Account{}, errs.ErrInvalidCredentials
		}
		return decodeAccount(sa), nil
	}
	return bank.Account{}, errs.ErrInvalidCredentials
}

// Load returns the account with the given id, or errs.ErrNotFound.
func (r *Repo) Load(ctx context.Context, id uuid.UUID) (bank.Account, error) {
	dir, err := r.readDirectory(ctx)
	if err != nil {
		return bank.Account{}, err
	}
	for _, sa := range dir.Accounts {
		if sa.ID == id {
			return decodeAccount(sa), nil
		}
	}
	return bank.Account{}, errs.ErrNotFound
}

// Save replaces the stored record for the account wholesale, preserving the
// immutable username and the credential digest from the existing record.
// When the active-session pointer references the same account the mirror
// snapshot is refreshed in the same logical update, so the two documents are
// never observed diverged.
func (r *Repo) Save(ctx context.Context, a bank.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir, err := r.readDirectory(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, sa := range dir.Accounts {
		if sa.ID == a.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errs.ErrNotFound
	}
	prev := dir.Accounts[idx]
	next := encodeAccount(a, prev.CredentialHash)
	next.Username = prev.Username
	dir.Accounts[idx] = next
	if err := r.writeDirectory(ctx, dir); err != nil {
		return err
	}

	sess, found, err := r.readSession(ctx)
	if err != nil {
		return err
	}
	if found && sess.AccountID == a.ID {
		sess.Account = next.stripped()
		return r.writeSession(ctx, sess)
	}
	return nil
}

// SaveSession persists the durable session pointer for the account, storing
// a credential-stripped snapshot of its current directory record.
func (r *Repo) SaveSession(ctx context.Context, a bank.Account) error {
	return r.writeSession(ctx, storedSession{
		AccountID: a.ID,
		Account:   encodeAccount(a, nil),
	})
}

// LoadSession resolves the durable session pointer against the directory.
// It reports found=false when no pointer exists or when the pointed-to
// account is gone (the stale pointer is cleared in that case).
func (r *Repo) LoadSession(ctx context.Context) (bank.Account, bool, error) {
	sess, found, err := r.readSession(ctx)
	if err != nil || !found {
		return bank.Account{}, false, err
	}
	acc, err := r.Load(ctx, sess.AccountID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			_ = r.store.Delete(ctx, kv.KeyActiveSession)
			return bank.Account{}, false, nil
		}
		return bank.Account{}, false, err
	}
	return acc, true, nil
}

// ClearSession removes the durable session pointer.
func (r *Repo) ClearSession(ctx context.Context) error {
	return r.store.Delete(ctx, kv.KeyActiveSession)
}

func (r *Repo) readDirectory(ctx context.Context) (storedDirectory, error) {
	raw, found, err := r.store.Get(ctx, kv.KeyAccountsDirectory)
	if err != nil {
		return storedDirectory{}, err
	}
	if !found {
		return storedDirectory{}, nil
	}
	var dir storedDirectory
	if err := json.Unmarshal(raw, &dir); err != nil {
		return storedDirectory{}, fmt.Errorf("%w: corrupt accounts directory: %v", errs.ErrStorageUnavailable, err)
	}
	return dir, nil
}

func (r *Repo) writeDirectory(ctx context.Context, dir storedDirectory) error {
	raw, err := json.Marshal(dir)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, kv.KeyAccountsDirectory, raw)
}

func (r *Repo) readSession(ctx context.Context) (storedSession, bool, error) {
	raw, found, err := r.store.Get(ctx, kv.KeyActiveSession)
	if err != nil || !found {
		return storedSession{}, false, err
	}
	var sess storedSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return storedSession{}, false, fmt.Errorf("%w: corrupt session document: %v", errs.ErrStorageUnavailable, err)
	}
	return sess, true, nil
}

func (r *Repo) writeSession(ctx context.Context, sess storedSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, kv.KeyActiveSession, raw)
}
