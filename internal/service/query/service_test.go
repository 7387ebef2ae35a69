package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finflow/finflow/internal/bank"
	"github.com/finflow/finflow/internal/errs"
	"github.com/finflow/finflow/internal/repo"
	"github.com/finflow/finflow/internal/storage/memory"
)

func seeded(t *testing.T) (Service, uuid.UUID) {
	t.Helper()
	accounts := repo.New(memory.New())
	ctx := context.Background()
	acc, err := accounts.Create(ctx, "asha", "s3cret", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	base := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	acc.Transactions = []bank.Transaction{
		{ID: 1, Kind: bank.KindDeposit, Amount: bank.Amount(2_500_000), Description: "Salary Deposit", Timestamp: base},
		{ID: 2, Kind: bank.KindWithdrawal, Amount: bank.Amount(500_000), Description: "ATM Withdrawal", Timestamp: base.Add(24 * time.Hour)},
		{ID: 3, Kind: bank.KindTransfer, Amount: bank.Amount(300_000), Description: "Transfer to Rahul", Timestamp: base.Add(48 * time.Hour), Counterparty: "rahul"},
		{ID: 4, Kind: bank.KindDeposit, Amount: bank.Amount(120_000), Description: "Refund", Timestamp: base.Add(48 * time.Hour)},
		{ID: 5, Kind: bank.KindDeposit, Amount: bank.Amount(80_000), Description: "Interest Credit", Timestamp: time.Date(2026, 5, 5, 9, 0, 0, 0, time.UTC)},
	}
	if err := accounts.Save(ctx, acc); err != nil {
		t.Fatalf("save: %v", err)
	}
	return New(accounts), acc.ID
}

func TestList_SortAndFilter(t *testing.T) {
	svc, id := seeded(t)
	ctx := context.Background()

	all, err := svc.List(ctx, id, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len = %d, want 5", len(all))
	}
	// most recent first; equal timestamps break by id descending
	wantOrder := []int64{5, 4, 3, 2, 1}
	for i, tx := range all {
		if tx.ID != wantOrder[i] {
			t.Fatalf("position %d has id %d, want %d", i, tx.ID, wantOrder[i])
		}
	}

	deposits, err := svc.List(ctx, id, bank.KindDeposit)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(deposits) != 3 {
		t.Fatalf("deposit count = %d, want 3", len(deposits))
	}
	for _, tx := range deposits {
		if tx.Kind != bank.KindDeposit {
			t.Fatalf("filter leaked kind %s", tx.Kind)
		}
	}
}

func TestList_Errors(t *testing.T) {
	svc, id := seeded(t)
	ctx := context.Background()

	if _, err := svc.List(ctx, uuid.New(), ""); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown account: %v", err)
	}
	if _, err := svc.List(ctx, id, bank.TransactionKind("refund")); !errors.Is(err, ErrBadKind) {
		t.Fatalf("bad kind: %v", err)
	}
}

func TestPaginate(t *testing.T) {
	txs := make([]bank.Transaction, 0, 5)
	for i := int64(1); i <= 5; i++ {
		txs = append(txs, bank.Transaction{ID: i})
	}

	tests := []struct {
		name     string
		pageSize int
		page     int
		wantIDs  []int64
	}{
		{"first page", 2, 1, []int64{1, 2}},
		{"middle page", 2, 2, []int64{3, 4}},
		{"short last page", 2, 3, []int64{5}},
		{"past the end", 2, 4, []int64{}},
		{"whole set", 10, 1, []int64{1, 2, 3, 4, 5}},
		{"zero page", 2, 0, []int64{}},
		{"zero size", 0, 1, []int64{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate(txs, tc.pageSize, tc.page)
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.wantIDs))
			}
			for i, tx := range got {
				if tx.ID != tc.wantIDs[i] {
					t.Fatalf("ids = %v, want %v", got, tc.wantIDs)
				}
			}
		})
	}
}

func TestStatement_MonthWindow(t *testing.T) {
	svc, id := seeded(t)
	ctx := context.Background()

	april, err := svc.Statement(ctx, id, 2026, time.April, "")
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(april) != 4 {
		t.Fatalf("april count = %d, want 4", len(april))
	}
	may, err := svc.Statement(ctx, id, 2026, time.May, "")
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(may) != 1 || may[0].ID != 5 {
		t.Fatalf("may = %+v", may)
	}
	empty, err := svc.Statement(ctx, id, 2026, time.June, "")
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("june count = %d, want 0", len(empty))
	}
}
