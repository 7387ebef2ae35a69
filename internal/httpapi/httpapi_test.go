package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finflow/finflow/internal/repo"
	ledgersvc "github.com/finflow/finflow/internal/service/ledger"
	"github.com/finflow/finflow/internal/service/query"
	"github.com/finflow/finflow/internal/service/session"
	"github.com/finflow/finflow/internal/storage/memory"
)

func newTestServer(t *testing.T) (*Server, *repo.Repo) {
	t.Helper()
	accounts := repo.New(memory.New())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.New(accounts)
	ledger := ledgersvc.New(accounts)
	q := query.New(accounts)
	return New(sessions, ledger, q, accounts, nil, []byte("test-secret"), logger), accounts
}

func do(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// registerAndLogin creates an account and returns a bearer token for it.
func registerAndLogin(t *testing.T, srv *Server, username, password string) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/v1/register", "", registerRequest{Username: username, Password: password})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = do(t, srv, http.MethodPost, "/v1/login", "", loginRequest{Username: username, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	return decode[loginResponse](t, rec).Token
}

func TestRegisterAndLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/v1/register", "", registerRequest{Username: "asha", Password: "pw", Email: "asha@example.com"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	created := decode[accountResponse](t, rec)
	if created.Username != "asha" || created.BalanceMinor != repo.InitialBalanceMinor || created.Currency != "INR" {
		t.Fatalf("unexpected account: %+v", created)
	}

	rec = do(t, srv, http.MethodPost, "/v1/register", "", registerRequest{Username: "asha", Password: "other"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status = %d, want 409", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/v1/login", "", loginRequest{Username: "asha", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: status = %d, want 401", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/v1/login", "", loginRequest{Username: "asha", Password: "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d; body %s", rec.Code, rec.Body.String())
	}
	resp := decode[loginResponse](t, rec)
	if resp.Token == "" {
		t.Fatal("login response has no token")
	}
	if resp.Account.ID != created.ID {
		t.Fatalf("login account %s, want %s", resp.Account.ID, created.ID)
	}
}

func TestTransactionFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv, "asha", "pw")

	rec := do(t, srv, http.MethodPost, "/v1/transactions", token, postTransactionRequest{Kind: "deposit", AmountMinor: 500_000, Description: "Salary Deposit"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("deposit: status %d body %s", rec.Code, rec.Body.String())
	}
	dep := decode[transactionResponse](t, rec)
	if dep.ID != 1 || dep.AmountMinor != 500_000 {
		t.Fatalf("unexpected deposit record: %+v", dep)
	}

	rec = do(t, srv, http.MethodPost, "/v1/transactions", token, postTransactionRequest{Kind: "withdrawal", AmountMinor: 200_000, Description: "ATM Withdrawal"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("withdrawal: status %d body %s", rec.Code, rec.Body.String())
	}

	// Transfers need a counterparty.
	rec = do(t, srv, http.MethodPost, "/v1/transactions", token, postTransactionRequest{Kind: "transfer", AmountMinor: 100_000, Description: "Rent"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("transfer without counterparty: status %d, want 422", rec.Code)
	}

	// Balance never goes negative.
	rec = do(t, srv, http.MethodPost, "/v1/transactions", token, postTransactionRequest{Kind: "withdrawal", AmountMinor: 10_000_000, Description: "Too much"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overdraft: status %d, want 422", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, "/v1/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", rec.Code, rec.Body.String())
	}
	me := decode[accountResponse](t, rec)
	wantBalance := repo.InitialBalanceMinor + 500_000 - 200_000
	if me.BalanceMinor != wantBalance {
		t.Fatalf("balance = %d, want %d", me.BalanceMinor, wantBalance)
	}
	if me.Transactions != 2 {
		t.Fatalf("transaction count = %d, want 2", me.Transactions)
	}
}

func TestListTransactions(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv, "asha", "pw")

	for i := 0; i < 3; i++ {
		rec := do(t, srv, http.MethodPost, "/v1/transactions", token, postTransactionRequest{Kind: "deposit", AmountMinor: 100_000, Description: "Deposit"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed deposit %d: status %d", i, rec.Code)
		}
	}
	rec := do(t, srv, http.MethodPost, "/v1/transactions", token, postTransactionRequest{Kind: "withdrawal", AmountMinor: 50_000, Description: "Withdrawal"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed withdrawal: status %d", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, "/v1/transactions", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d body %s", rec.Code, rec.Body.String())
	}
	all := decode[listTransactionsResponse](t, rec)
	if all.TotalItems != 4 || len(all.Items) != 4 {
		t.Fatalf("total = %d items = %d, want 4/4", all.TotalItems, len(all.Items))
	}
	// Most recent first.
	if all.Items[0].Kind != "withdrawal" {
		t.Fatalf("first item kind = %s, want withdrawal", all.Items[0].Kind)
	}

	rec = do(t, srv, http.MethodGet, "/v1/transactions?kind=deposit", token, nil)
	filtered := decode[listTransactionsResponse](t, rec)
	if filtered.TotalItems != 3 {
		t.Fatalf("filtered total = %d, want 3", filtered.TotalItems)
	}

	rec = do(t, srv, http.MethodGet, "/v1/transactions?page=2&page_size=3", token, nil)
	paged := decode[listTransactionsResponse](t, rec)
	if paged.Page != 2 || paged.PageSize != 3 || len(paged.Items) != 1 {
		t.Fatalf("paged = %+v", paged)
	}

	rec = do(t, srv, http.MethodGet, "/v1/transactions?page=zero", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad paging: status %d, want 400", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, "/v1/transactions?kind=refund", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad kind filter: status %d, want 400", rec.Code)
	}
}

func TestInvestments(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv, "asha", "pw")

	rec := do(t, srv, http.MethodGet, "/v1/funds", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("funds: status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "FinFlow Equity Fund") {
		t.Fatalf("fund catalog missing expected entry: %s", rec.Body.String())
	}

	rec = do(t, srv, http.MethodPost, "/v1/investments", token, postInvestmentRequest{FundID: 1, AmountMinor: 200_000})
	if rec.Code != http.StatusOK {
		t.Fatalf("invest: status %d body %s", rec.Code, rec.Body.String())
	}
	acc := decode[accountResponse](t, rec)
	if acc.BalanceMinor != repo.InitialBalanceMinor-200_000 {
		t.Fatalf("balance = %d, want %d", acc.BalanceMinor, repo.InitialBalanceMinor-200_000)
	}
	// Purchases do not appear in the transaction history.
	if acc.Transactions != 0 {
		t.Fatalf("transaction count = %d, want 0", acc.Transactions)
	}

	rec = do(t, srv, http.MethodPost, "/v1/investments", token, postInvestmentRequest{FundID: 1, AmountMinor: 10_000})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("below minimum: status %d, want 422", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/v1/investments", token, postInvestmentRequest{FundID: 99, AmountMinor: 200_000})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown fund: status %d, want 422", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/me"},
		{http.MethodPost, "/v1/logout"},
		{http.MethodPost, "/v1/transactions"},
		{http.MethodGet, "/v1/transactions"},
		{http.MethodGet, "/v1/statements?month=2026-04"},
		{http.MethodPost, "/v1/investments"},
	}
	for _, p := range paths {
		rec := do(t, srv, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status %d, want 401", p.method, p.path, rec.Code)
		}
	}

	rec := do(t, srv, http.MethodGet, "/v1/me", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d, want 401", rec.Code)
	}
}

func TestStatement(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv, "asha", "pw")

	rec := do(t, srv, http.MethodPost, "/v1/transactions", token, postTransactionRequest{Kind: "deposit", AmountMinor: 100_000, Description: "Deposit"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed: status %d", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, "/v1/statements", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing month: status %d, want 400", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, "/v1/statements?month=April", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad month: status %d, want 400", rec.Code)
	}

	// The only transaction was just created, so this month's statement has it
	// and an old month is empty.
	rec = do(t, srv, http.MethodGet, "/v1/statements?month="+timeNowMonth(), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statement: status %d body %s", rec.Code, rec.Body.String())
	}
	items := decode[[]transactionResponse](t, rec)
	if len(items) != 1 {
		t.Fatalf("current month count = %d, want 1", len(items))
	}

	rec = do(t, srv, http.MethodGet, "/v1/statements?month=2001-01", token, nil)
	empty := decode[[]transactionResponse](t, rec)
	if len(empty) != 0 {
		t.Fatalf("old month count = %d, want 0", len(empty))
	}
}

func timeNowMonth() string {
	return time.Now().UTC().Format("2006-01")
}

func TestMeIsScopedToBearer(t *testing.T) {
	srv, _ := newTestServer(t)
	tokenA := registerAndLogin(t, srv, "alice", "pw")
	// bob logs in last, so the process-wide session points at bob
	registerAndLogin(t, srv, "bob", "pw")

	rec := do(t, srv, http.MethodGet, "/v1/me", tokenA, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", rec.Code, rec.Body.String())
	}
	me := decode[accountResponse](t, rec)
	if me.Username != "alice" {
		t.Fatalf("alice's token resolved to %q", me.Username)
	}
}

func TestLogoutIsScopedToBearer(t *testing.T) {
	srv, accounts := newTestServer(t)
	ctx := context.Background()
	tokenA := registerAndLogin(t, srv, "alice", "pw")
	tokenB := registerAndLogin(t, srv, "bob", "pw")

	// alice's logout leaves bob's durable session untouched
	rec := do(t, srv, http.MethodPost, "/v1/logout", tokenA, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: status %d, want 204", rec.Code)
	}
	if acc, found, err := accounts.LoadSession(ctx); err != nil || !found || acc.Username != "bob" {
		t.Fatalf("bob's session gone after alice's logout: found=%v err=%v", found, err)
	}
	// and alice's token still works
	rec = do(t, srv, http.MethodGet, "/v1/me", tokenA, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me after foreign logout: status %d", rec.Code)
	}

	// the session owner's logout clears the durable pointer
	rec = do(t, srv, http.MethodPost, "/v1/logout", tokenB, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("owner logout: status %d, want 204", rec.Code)
	}
	if _, found, _ := accounts.LoadSession(ctx); found {
		t.Fatal("session survived the owner's logout")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz: status %d", rec.Code)
	}
}
