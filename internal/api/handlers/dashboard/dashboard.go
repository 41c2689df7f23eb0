package dashboard

import (
	"context"
	"net/http"
	"time"

	"finance_io/internal/api/handlers"
	"finance_io/internal/finance"
	"finance_io/internal/models"
	"finance_io/pkg/utils"
)

type TransactionLister interface {
	ListTransactions(ctx context.Context, userID int, filter models.TransactionFilter) ([]models.Transaction, error)
}

type Handler struct {
	Store TransactionLister
	Now   func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request, filter models.TransactionFilter) ([]models.Transaction, int, bool) {
	userID, ok := handlers.UserID(w, r)
	if !ok {
		return nil, 0, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	transactions, err := h.Store.ListTransactions(ctx, userID, filter)
	if err != nil {
		utils.Logger.Errorf("error fetching transactions for dashboard: %v", err)
		utils.WriteError(w, "error fetching transactions", http.StatusInternalServerError)
		return nil, 0, false
	}
	return transactions, userID, true
}

// Summary returns totals, the per-category breakdown and the monthly chart
// series, optionally restricted with ?from and ?to.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	var filter models.TransactionFilter
	for param, dst := range map[string]*time.Time{"from": &filter.From, "to": &filter.To} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		d, err := handlers.ParseDate(raw)
		if err != nil {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
		*dst = d
	}

	transactions, _, ok := h.load(w, r, filter)
	if !ok {
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "", finance.Summarize(transactions))
}

// Metrics returns the current month's financial metrics and health score.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	transactions, userID, ok := h.load(w, r, models.TransactionFilter{})
	if !ok {
		return
	}

	report := finance.NewReport(finance.CalculateMetrics(transactions, h.now()))
	utils.Logger.WithField("user_id", userID).WithField("score", report.Health.Score).Debug("metrics computed")

	utils.WriteSuccess(w, http.StatusOK, "", report)
}
