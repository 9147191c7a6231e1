package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfin/internal/core"
	applog "selfin/internal/log"
	"selfin/internal/services"
	"selfin/internal/store"
)

func newTestServer(t *testing.T, opts Options) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "finance_data.json"), nil)
	require.NoError(t, err)

	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Output: io.Discard})
	}
	srv := NewServer(":0", services.NewLedgerService(st, nil), opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func do(srv *Server, method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Add Income")
	assert.Contains(t, body, "Add Expense")
	assert.Contains(t, body, `hx-trigger="ledger:changed from:body"`)
	assert.Contains(t, body, "Total Income: $0.00 | Total Expenses: $0.00 | Balance: $0.00")
	assert.Contains(t, body, "No income yet")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	for _, path := range []string{"/healthz", "/readyz", "/static/app.css", "/static/app.js"} {
		rr := do(srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/missing", nil).Code)
}

func TestCreateIncomeAndExpense(t *testing.T) {
	srv, st := newTestServer(t, Options{})

	rr := do(srv, http.MethodPost, "/income", url.Values{"source": {"Salary"}, "amount": {"1000"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `<div class="success">Income added successfully!</div>`, rr.Body.String())

	var triggers map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(rr.Header().Get("HX-Trigger")), &triggers))
	assert.Contains(t, triggers, EventLedgerChanged)
	assert.Contains(t, triggers, EventFormReset)
	assert.Contains(t, triggers, EventShowNotification)

	rr = do(srv, http.MethodPost, "/expenses", url.Values{"category": {"Rent"}, "amount": {"400"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `<div class="success">Expense added successfully!</div>`, rr.Body.String())
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"balance":"600.00"`)

	rr = do(srv, http.MethodGet, "/ui/ledger", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<td>Salary</td>")
	assert.Contains(t, body, "$1000.00")
	assert.Contains(t, body, "<td>Rent</td>")
	assert.Contains(t, body, "$400.00")
	assert.Contains(t, body, "Total Income: $1000.00 | Total Expenses: $400.00 | Balance: $600.00")
	assert.NotContains(t, body, "<html")

	snap := st.Snapshot()
	assert.Equal(t, []core.IncomeRecord{{Source: "Salary", Amount: 1000}}, snap.Income)
	assert.Equal(t, []core.ExpenseRecord{{Category: "Rent", Amount: 400}}, snap.Expenses)
}

func TestCreateValidation(t *testing.T) {
	srv, st := newTestServer(t, Options{})

	tests := []struct {
		name string
		path string
		form url.Values
		want string
	}{
		{"non-numeric amount", "/income", url.Values{"source": {"Salary"}, "amount": {"abc"}}, "Amount must be a number"},
		{"amount checked before source", "/income", url.Values{"source": {""}, "amount": {"abc"}}, "Amount must be a number"},
		{"empty source", "/income", url.Values{"source": {""}, "amount": {"10"}}, "Source cannot be empty"},
		{"control characters only", "/income", url.Values{"source": {"\x00\x07"}, "amount": {"10"}}, "Source cannot be empty"},
		{"empty category", "/expenses", url.Values{"category": {""}, "amount": {"10"}}, "Category cannot be empty"},
		{"missing amount", "/expenses", url.Values{"category": {"Food"}}, "Amount must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(srv, http.MethodPost, tt.path, tt.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Equal(t, `<div class="error">`+tt.want+`</div>`, rr.Body.String())
			assert.NotContains(t, rr.Header().Get("HX-Trigger"), EventLedgerChanged)
		})
	}

	assert.Equal(t, 0, st.Snapshot().Len())
}

func TestCreateKeepsLabelWhitespace(t *testing.T) {
	srv, st := newTestServer(t, Options{})

	rr := do(srv, http.MethodPost, "/income", url.Values{"source": {"  Salary "}, "amount": {" 10 "}})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(srv, http.MethodPost, "/expenses", url.Values{"category": {"   "}, "amount": {"5"}})
	require.Equal(t, http.StatusOK, rr.Code)

	snap := st.Snapshot()
	assert.Equal(t, []core.IncomeRecord{{Source: "  Salary ", Amount: 10}}, snap.Income)
	assert.Equal(t, []core.ExpenseRecord{{Category: "   ", Amount: 5}}, snap.Expenses)
}

func TestCreateMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rr := do(srv, http.MethodGet, "/income", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Contains(t, rr.Header().Get("Allow"), http.MethodPost)
}

func TestRenderedLabelsAreEscaped(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	require.Equal(t, http.StatusOK, do(srv, http.MethodPost, "/income",
		url.Values{"source": {"<script>x</script>"}, "amount": {"1"}}).Code)

	body := do(srv, http.MethodGet, "/ui/ledger", nil).Body.String()
	assert.NotContains(t, body, "<script>x</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestAPILedger(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	do(srv, http.MethodPost, "/income", url.Values{"source": {"Salary"}, "amount": {"0.1"}})
	do(srv, http.MethodPost, "/income", url.Values{"source": {"Bonus"}, "amount": {"0.2"}})
	do(srv, http.MethodPost, "/expenses", url.Values{"category": {"Rent"}, "amount": {"400"}})

	rr := do(srv, http.MethodGet, "/api/ledger", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got apiLedger
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.Income, 2)
	assert.Len(t, got.Expenses, 1)
	assert.Equal(t, "0.30", got.Summary.TotalIncome)
	assert.Equal(t, "400.00", got.Summary.TotalExpenses)
	assert.Equal(t, "-399.70", got.Summary.Balance)
}

func TestNegativeBalanceIsMarked(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	do(srv, http.MethodPost, "/expenses", url.Values{"category": {"Rent"}, "amount": {"400"}})

	body := do(srv, http.MethodGet, "/ui/ledger", nil).Body.String()
	assert.Contains(t, body, "summary negative")
	assert.Contains(t, body, "Balance: $-400.00")
}

func TestRateLimitAppliesToPosts(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimitPerMinute: 1})

	assert.Equal(t, http.StatusOK, do(srv, http.MethodPost, "/income", url.Values{"source": {"A"}, "amount": {"1"}}).Code)
	rr := do(srv, http.MethodPost, "/income", url.Values{"source": {"B"}, "amount": {"1"}})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/ui/ledger", nil).Code)
}

// failingLedger simulates a ledger whose file cannot be written.
type failingLedger struct{}

func (failingLedger) AddIncome(context.Context, string, string) (services.Result, error) {
	return services.Result{}, fmt.Errorf("add income: %w", store.ErrPersist)
}

func (failingLedger) AddExpense(context.Context, string, string) (services.Result, error) {
	return services.Result{}, fmt.Errorf("add expense: %w", store.ErrPersist)
}

func (failingLedger) Ledger() (core.Ledger, core.Summary) {
	l := core.NewLedger()
	return l, core.Summarize(l)
}

func TestCreatePersistFailure(t *testing.T) {
	srv := NewServer(":0", failingLedger{}, Options{Logger: applog.New(applog.Config{Output: io.Discard})})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rr := do(srv, http.MethodPost, "/income", url.Values{"source": {"Salary"}, "amount": {"1000"}})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, `<div class="error">Failed to save the ledger</div>`, rr.Body.String())
}

func TestShutdownTwice(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, srv.Shutdown(context.Background()))
}
