package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfin/internal/core"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentStore, Output: &buf})

	l.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "component=store")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	l.WithComponent(ComponentHTTP).Debug("x")
	assert.Contains(t, buf.String(), "component=http")
}

func TestChangeListenerLogsBalance(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentLedger, Output: &buf})

	ledger := core.Ledger{Expenses: []core.ExpenseRecord{{Category: "Rent", Amount: 400}}}
	rec := ledger.Expenses[0]
	ChangeListener(l)(context.Background(), core.Change{
		ID:      "id-1",
		Kind:    core.KindExpense,
		Expense: &rec,
		Summary: core.Summarize(ledger),
	})

	out := buf.String()
	assert.Contains(t, out, "Ledger changed")
	assert.Contains(t, out, "category=Rent")
	assert.Contains(t, out, "balance=-400.00")
	assert.Contains(t, out, "change_id=id-1")
}

func TestLogErrorWithNilFields(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	sl.LogError(context.Background(), "boom", errors.New("disk full"), ComponentStore, OpCreate, nil)
	assert.Contains(t, buf.String(), "error=\"disk full\"")
}

func TestMiddlewareStoresLogger(t *testing.T) {
	l := New(Config{Component: "custom", Output: &bytes.Buffer{}})
	var got *Logger
	h := Middleware(l)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	assert.Equal(t, "custom", got.Component())

	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}
