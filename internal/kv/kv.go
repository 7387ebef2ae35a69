// Package kv defines the persistent key-value store contract the account
// repository writes through. Implementations map string keys to JSON
// documents and must be durable across restarts (the in-memory variant is
// for development and tests).
package kv

import "context"

// Logical keys for the two collections the repository maintains.
const (
	// KeyAccountsDirectory holds the authoritative list of all accounts,
	// including credential digests.
	KeyAccountsDirectory = "accounts_directory"
	// KeyActiveSession holds the credential-stripped snapshot of the
	// currently authenticated account, used only to restore a session
	// across restarts. It mirrors the directory and is never a second
	// source of truth.
	KeyActiveSession = "active_session"
)

// Store is the minimal persistence contract. Get reports found=false for a
// missing key rather than an error. Implementations surface infrastructure
// failures wrapped in errs.ErrStorageUnavailable.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
