package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"selfin/internal/core"
	applog "selfin/internal/log"
	"selfin/internal/services"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether templates loaded and the ledger is reachable
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.ledger == nil {
		checks["ledger"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		l, _ := s.ledger.Ledger()
		checks["ledger"] = "ok"
		checks["records"] = l.Len()
	}

	checks["rate_limit_rejected"] = s.rateLimiter.GetMetrics().Rejected
	checks["requests_total"] = s.tracer.TotalRequests()

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", s.view())
}

// handleLedgerPartial re-renders the tables and summary after a change.
func (s *Server) handleLedgerPartial(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "ledger", s.view())
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	s.handleCreate(w, r, "source", s.ledger.AddIncome)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	s.handleCreate(w, r, "category", s.ledger.AddExpense)
}

type addFunc func(ctx context.Context, label, amountText string) (services.Result, error)

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, labelField string, add addFunc) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "Parse form error", applog.FieldError, err.Error(), applog.FieldPath, r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	label := sanitizeInput(r.Form.Get(labelField))
	amountText := sanitizeInput(r.Form.Get("amount"))

	res, err := add(ctx, label, amountText)
	switch {
	case err == nil:
	case core.IsValidation(err):
		msg := validationMessage(err)
		logger.InfoContext(ctx, "Rejected ledger entry",
			applog.FieldPath, r.URL.Path,
			applog.FieldOperation, applog.OpValidate,
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldError, err.Error())
		UnprocessableEntityError(msg).TriggerErrorNotification(msg).Write(w)
		return
	default:
		s.errors.LogError(ctx, "Failed to save ledger entry", err, applog.ComponentHTTP, applog.OpCreate,
			applog.NewFields().WithErrorType(applog.ErrorTypePersistence))
		InternalServerError("Failed to save the ledger").
			TriggerErrorNotification("Failed to save the ledger").
			Write(w)
		return
	}

	SuccessResponse(res.Message).
		TriggerLedgerChanged(res.Change.Summary).
		TriggerFormReset().
		TriggerSuccessNotification(res.Message).
		Write(w)
}

// apiLedger is the JSON shape of GET /api/ledger.
type apiLedger struct {
	Income   []core.IncomeRecord  `json:"income"`
	Expenses []core.ExpenseRecord `json:"expenses"`
	Summary  apiSummary           `json:"summary"`
}

type apiSummary struct {
	TotalIncome   string `json:"total_income"`
	TotalExpenses string `json:"total_expenses"`
	Balance       string `json:"balance"`
}

func (s *Server) handleAPILedger(w http.ResponseWriter, r *http.Request) {
	l, sum := s.ledger.Ledger()
	writeJSON(w, http.StatusOK, apiLedger{
		Income:   l.Income,
		Expenses: l.Expenses,
		Summary: apiSummary{
			TotalIncome:   sum.TotalIncome.StringFixed(2),
			TotalExpenses: sum.TotalExpenses.StringFixed(2),
			Balance:       sum.Balance.StringFixed(2),
		},
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.errors.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.LogFields{"template": name}.WithErrorType(applog.ErrorTypeInternal))
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// validationMessage maps a validation error to its user-facing sentence.
func validationMessage(err error) string {
	for _, sentinel := range []error{core.ErrInvalidAmount, core.ErrEmptySource, core.ErrEmptyCategory} {
		if errors.Is(err, sentinel) {
			return capitalize(sentinel.Error())
		}
	}
	return err.Error()
}
