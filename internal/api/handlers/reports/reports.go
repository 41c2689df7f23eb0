package reports

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finance_io/internal/api/handlers"
	"finance_io/internal/models"
	"finance_io/internal/report"
	"finance_io/internal/repositories"
	"finance_io/pkg/utils"
)

const DefaultFreeReportsPerMonth = 5

type TransactionLister interface {
	ListTransactions(ctx context.Context, userID int, filter models.TransactionFilter) ([]models.Transaction, error)
}

type UserGetter interface {
	GetUserByID(ctx context.Context, id int) (models.User, error)
}

type UsageStore interface {
	ReportCount(ctx context.Context, userID int, period string) (int, error)
	IncrementReportCount(ctx context.Context, userID int, period string) error
}

type Handler struct {
	Transactions TransactionLister
	Users        UserGetter
	Counter      UsageStore
	Generator    report.Generator
	Mailer       utils.Mailer
	FreeLimit    int
	Now          func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) limit() int {
	if h.FreeLimit > 0 {
		return h.FreeLimit
	}
	return DefaultFreeReportsPerMonth
}

func (h *Handler) usage(ctx context.Context, user models.User, period string) (models.ReportUsage, error) {
	used, err := h.Counter.ReportCount(ctx, user.ID, period)
	if err != nil {
		return models.ReportUsage{}, err
	}
	return models.ReportUsage{UserID: user.ID, Period: period, Used: used, Limit: h.limit(), IsPro: user.IsPro}, nil
}

func (h *Handler) currentUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	userID, ok := handlers.UserID(w, r)
	if !ok {
		return models.User{}, false
	}

	user, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.WriteError(w, "user not found", http.StatusNotFound)
			return user, false
		}
		utils.Logger.Errorf("error fetching user %d: %v", userID, err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return user, false
	}
	return user, true
}

// Usage reports how many reports the user has left this month.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	user, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	usage, err := h.usage(ctx, user, models.UsagePeriod(h.now()))
	if err != nil {
		utils.Logger.Errorf("error fetching report usage: %v", err)
		utils.WriteError(w, "error fetching report usage", http.StatusInternalServerError)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "", map[string]interface{}{
		"usage":     usage,
		"remaining": usage.Remaining(),
	})
}

// Generate produces a report for the requested timeframe. Free users are
// limited per calendar month; a report only counts once it was generated.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}

	type generateRequest struct {
		Timeframe string `json:"timeframe"`
		Email     bool   `json:"email"`
	}

	var req generateRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	timeframe, err := report.ParseTimeframe(req.Timeframe)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := h.now()
	period := models.UsagePeriod(now)

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	user, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	usage, err := h.usage(ctx, user, period)
	if err != nil {
		utils.Logger.Errorf("error fetching report usage: %v", err)
		utils.WriteError(w, "error fetching report usage", http.StatusInternalServerError)
		return
	}
	if usage.Remaining() == 0 {
		utils.Logger.WithField("user_id", user.ID).Info("report quota exhausted")
		utils.WriteError(w, report.ErrQuotaExceeded.Error()+": upgrade to PRO for unlimited reports", http.StatusTooManyRequests)
		return
	}

	transactions, err := h.Transactions.ListTransactions(ctx, user.ID, models.TransactionFilter{})
	if err != nil {
		utils.Logger.Errorf("error fetching transactions for report: %v", err)
		utils.WriteError(w, "error fetching transactions", http.StatusInternalServerError)
		return
	}

	data := report.BuildData(transactions, timeframe, now)

	// generation may call a remote API, so it gets the request context
	// rather than the short DB timeout
	text, err := h.Generator.Generate(r.Context(), data)
	if err != nil {
		utils.Logger.WithError(err).WithField("user_id", user.ID).Error("report generation failed")
		utils.WriteError(w, "error generating report, please try again later", http.StatusBadGateway)
		return
	}

	incCtx, incCancel := context.WithTimeout(context.WithoutCancel(r.Context()), handlers.DBTimeout)
	defer incCancel()
	if err := h.Counter.IncrementReportCount(incCtx, user.ID, period); err != nil {
		utils.Logger.Errorf("failed to record report usage for user %d: %v", user.ID, err)
	} else {
		usage.Used++
	}

	if req.Email {
		subject, body := utils.ReportEmail(user.Username, timeframe.Label(), text)
		utils.SendAsync(h.Mailer, user.Email, subject, body)
	}

	utils.WriteSuccess(w, http.StatusOK, "report generated successfully", map[string]interface{}{
		"report":    text,
		"timeframe": timeframe,
		"data":      data,
		"usage":     usage,
		"remaining": usage.Remaining(),
	})
}
