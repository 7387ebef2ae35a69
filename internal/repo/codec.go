package repo

import (
	"time"

	"github.com/google/uuid"

	"github.com/finflow/finflow/internal/bank"
)

// Stored representations of the two documents the repository maintains.
// Amounts are persisted in minor units; the credential digest only ever
// appears in the directory document, never in the session snapshot.

type storedTransaction struct {
	ID           int64                `json:"id"`
	Kind         bank.TransactionKind `json:"kind"`
	AmountMinor  int64                `json:"amount_minor"`
	Description  string               `json:"description"`
	Timestamp    time.Time            `json:"timestamp"`
	Counterparty string               `json:"counterparty,omitempty"`
}

type storedAccount struct {
	ID             uuid.UUID           `json:"id"`
	Username       string              `json:"username"`
	CredentialHash []byte              `json:"credential_hash,omitempty"`
	Email          string              `json:"email,omitempty"`
	BalanceMinor   int64               `json:"balance_minor"`
	Transactions   []storedTransaction `json:"transactions"`
}

// storedDirectory is the accounts_directory document: the authoritative,
// insertion-ordered list of all accounts.
type storedDirectory struct {
	Accounts []storedAccount `json:"accounts"`
}

// storedSession is the active_session document: the account id the session
// points at plus a credential-stripped mirror of its directory record.
type storedSession struct {
	AccountID uuid.UUID     `json:"account_id"`
	Account   storedAccount `json:"account"`
}

func encodeAccount(a bank.Account, hash []byte) storedAccount {
	txs := make([]storedTransaction, len(a.Transactions))
	for i, t := range a.Transactions {
		txs[i] = storedTransaction{
			ID:           t.ID,
			Kind:         t.Kind,
			AmountMinor:  bank.MinorUnits(t.Amount),
			Description:  t.Description,
			Timestamp:    t.Timestamp,
			Counterparty: t.Counterparty,
		}
	}
	return storedAccount{
		ID:             a.ID,
		Username:       a.Username,
		CredentialHash: hash,
		Email:          a.Email,
		BalanceMinor:   bank.MinorUnits(a.Balance),
		Transactions:   txs,
	}
}

func decodeAccount(sa storedAccount) bank.Account {
	txs := make([]bank.Transaction, len(sa.Transactions))
	for i, st := range sa.Transactions {
		txs[i] = bank.Transaction{
			ID:           st.ID,
			Kind:         st.Kind,
			Amount:       bank.Amount(st.AmountMinor),
			Description:  st.Description,
			Timestamp:    st.Timestamp,
			Counterparty: st.Counterparty,
		}
	}
	return bank.Account{
		ID:           sa.ID,
		Username:     sa.Username,
		Email:        sa.Email,
		Balance:      bank.Amount(sa.BalanceMinor),
		Transactions: txs,
	}
}

// stripped returns a copy of sa with the credential digest removed, for use
// in the session mirror.
func (sa storedAccount) stripped() storedAccount {
	out := sa
	out.CredentialHash = nil
	return out
}
