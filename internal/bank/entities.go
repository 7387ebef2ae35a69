package bank

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
)

// Currency is the single currency every balance and transaction is
// denominated in. Amounts are carried as money.Amount and persisted in
// minor units (paise).
const Currency = "INR"

// TransactionKind classifies a ledger transaction.
type TransactionKind string

const (
	// KindDeposit increases the account balance.
	KindDeposit TransactionKind = "deposit"
	// KindWithdrawal decreases the account balance.
	KindWithdrawal TransactionKind = "withdrawal"
	// KindTransfer decreases the balance in favour of a counterparty.
	KindTransfer TransactionKind = "transfer"
)

// Valid reports whether k is one of the known kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindTransfer:
		return true
	}
	return false
}

// Deducts reports whether the kind reduces the balance and is therefore
// subject to the insufficient-funds rule.
func (k TransactionKind) Deducts() bool {
	return k == KindWithdrawal || k == KindTransfer
}

// Amount builds a money.Amount in the fixed currency from minor units.
func Amount(minor int64) money.Amount {
	a, _ := money.NewAmountFromMinorUnits(Currency, minor)
	return a
}

// MinorUnits extracts the minor-unit magnitude of a.
func MinorUnits(a money.Amount) int64 {
	units, _ := a.MinorUnits()
	return units
}

// Transaction is an immutable record of one balance-affecting event.
// IDs are per-account sequence numbers: unique within the owning account
// and strictly increasing in insertion order, which makes (Timestamp, ID)
// a total recency order.
type Transaction struct {
	ID          int64
	Kind        TransactionKind
	Amount      money.Amount
	Description string
	Timestamp   time.Time
	// Counterparty is set only for transfers. It is free text as entered
	// by the caller and is not resolved against the account directory.
	Counterparty string
}

// Account is a user's identity, balance and transaction history.
// The authentication secret never appears here; it stays behind the
// repository boundary as a bcrypt digest.
type Account struct {
	ID       uuid.UUID
	Username string
	Email    string
	// Balance is the authoritative mutable field. It is not recomputed
	// from Transactions: investment purchases deduct from it without a
	// ledger entry, so the two can legitimately diverge.
	Balance      money.Amount
	Transactions []Transaction
}

// Clone returns a deep copy so callers can mutate freely without
// aliasing the repository's view of the account.
func (a Account) Clone() Account {
	out := a
	out.Transactions = make([]Transaction, len(a.Transactions))
	copy(out.Transactions, a.Transactions)
	return out
}

// NextTransactionID returns the sequence number for the next appended
// transaction. History is append-only, so the last ID is the maximum.
func (a Account) NextTransactionID() int64 {
	if len(a.Transactions) == 0 {
		return 1
	}
	return a.Transactions[len(a.Transactions)-1].ID + 1
}
