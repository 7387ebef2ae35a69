// Package query serves read-only projections over an account's transaction
// history: filter by kind, recency sort, pagination and monthly statements.
// Results are recomputed per call from the latest committed state.
package query

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/finflow/finflow/internal/bank"
	"github.com/finflow/finflow/internal/errs"
)

// ErrBadKind rejects filter values outside the known transaction kinds.
var ErrBadKind = errors.New("unknown transaction kind filter")

// Repo defines the read access the layer needs.
type Repo interface {
	Load(ctx context.Context, id uuid.UUID) (bank.Account, error)
}

// Service exposes the projection operations.
type Service interface {
	List(ctx context.Context, accountID uuid.UUID, kind bank.TransactionKind) ([]bank.Transaction, error)
	Statement(ctx context.Context, accountID uuid.UUID, year int, month time.Month, kind bank.TransactionKind) ([]bank.Transaction, error)
}

type service struct {
	repo Repo
}

// New constructs the query layer.
func New(repo Repo) Service { return &service{repo: repo} }

// List returns the account's transactions, optionally restricted to one
// kind (empty kind means all), sorted most recent first: timestamp
// descending with ties broken by id descending.
func (s *service) List(ctx context.Context, accountID uuid.UUID, kind bank.TransactionKind) ([]bank.Transaction, error) {
	if accountID == uuid.Nil {
		return nil, errs.ErrNotFound
	}
	if kind != "" && !kind.Valid() {
		return nil, ErrBadKind
	}
	acc, err := s.repo.Load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]bank.Transaction, 0, len(acc.Transactions))
	for _, t := range acc.Transactions {
		if kind != "" && t.Kind != kind {
			continue
		}
		out = append(out, t)
	}
	sortRecent(out)
	return out, nil
}

// Statement restricts List to one calendar month (timestamps compared in UTC).
func (s *service) Statement(ctx context.Context, accountID uuid.UUID, year int, month time.Month, kind bank.TransactionKind) ([]bank.Transaction, error) {
	all, err := s.List(ctx, accountID, kind)
	if err != nil {
		return nil, err
	}
	out := make([]bank.Transaction, 0, len(all))
	for _, t := range all {
		ts := t.Timestamp.UTC()
		if ts.Year() == year && ts.Month() == month {
			out = append(out, t)
		}
	}
	return out, nil
}

// Paginate slices a projection into 1-indexed pages. Pages past the end and
// non-positive sizes or page numbers yield an empty page, never an error.
func Paginate(txs []bank.Transaction, pageSize, pageNumber int) []bank.Transaction {
	if pageSize < 1 || pageNumber < 1 {
		return []bank.Transaction{}
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(txs) {
		return []bank.Transaction{}
	}
	end := start + pageSize
	if end > len(txs) {
		end = len(txs)
	}
	page := make([]bank.Transaction, end-start)
	copy(page, txs[start:end])
	return page
}

func sortRecent(txs []bank.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
}
