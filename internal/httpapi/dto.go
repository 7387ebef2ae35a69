package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/finflow/finflow/internal/bank"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Account accountResponse `json:"account"`
}

type accountResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	BalanceMinor int64     `json:"balance_minor"`
	Currency     string    `json:"currency"`
	Transactions int       `json:"transaction_count"`
}

type postTransactionRequest struct {
	Kind         bank.TransactionKind `json:"kind"`
	AmountMinor  int64                `json:"amount_minor"`
	Description  string               `json:"description"`
	Counterparty string               `json:"counterparty,omitempty"`
}

type transactionResponse struct {
	ID           int64                `json:"id"`
	Kind         bank.TransactionKind `json:"kind"`
	AmountMinor  int64                `json:"amount_minor"`
	Description  string               `json:"description"`
	Timestamp    time.Time            `json:"timestamp"`
	Counterparty string               `json:"counterparty,omitempty"`
}

type listTransactionsResponse struct {
	Items      []transactionResponse `json:"items"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalItems int                   `json:"total_items"`
}

type postInvestmentRequest struct {
	FundID      int   `json:"fund_id"`
	AmountMinor int64 `json:"amount_minor"`
}

func toAccountResponse(a bank.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		BalanceMinor: bank.MinorUnits(a.Balance),
		Currency:     bank.Currency,
		Transactions: len(a.Transactions),
	}
}

func toTransactionResponse(t bank.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		Kind:         t.Kind,
		AmountMinor:  bank.MinorUnits(t.Amount),
		Description:  t.Description,
		Timestamp:    t.Timestamp,
		Counterparty: t.Counterparty,
	}
}
