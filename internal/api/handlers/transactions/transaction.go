package transactions

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"finance_io/internal/api/handlers"
	"finance_io/internal/models"
	"finance_io/internal/repositories"
	"finance_io/pkg/utils"

	"github.com/shopspring/decimal"
)

const maxIdempotencyKeyLength = 64

type TransactionStore interface {
	ListTransactions(ctx context.Context, userID int, filter models.TransactionFilter) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id int) (models.Transaction, error)
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, bool, error)
	UpdateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int) error
}

type Handler struct {
	Store TransactionStore
}

type transactionRequest struct {
	Description string                 `json:"description"`
	Amount      decimal.Decimal        `json:"amount"`
	Type        models.TransactionType `json:"type"`
	Category    string                 `json:"category"`
	Date        string                 `json:"date"`
}

func (req transactionRequest) toModel(userID int) (models.Transaction, error) {
	t := models.Transaction{
		UserID:      userID,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
	}
	if strings.TrimSpace(req.Date) == "" {
		return t, models.ErrZeroTransactionDay
	}
	date, err := handlers.ParseDate(req.Date)
	if err != nil {
		return t, err
	}
	t.Date = date
	t.Normalize()
	return t, t.Validate()
}

// parseFilter reads ?type, ?from and ?to. Pagination is left to the caller.
func parseFilter(r *http.Request) (models.TransactionFilter, error) {
	var filter models.TransactionFilter
	q := r.URL.Query()

	if typ := q.Get("type"); typ != "" {
		filter.Type = models.TransactionType(typ)
		if !filter.Type.Valid() {
			return filter, models.ErrInvalidType
		}
	}
	if from := q.Get("from"); from != "" {
		d, err := handlers.ParseDate(from)
		if err != nil {
			return filter, err
		}
		filter.From = d
	}
	if to := q.Get("to"); to != "" {
		d, err := handlers.ParseDate(to)
		if err != nil {
			return filter, err
		}
		filter.To = d
	}
	return filter, nil
}

// FUNC TO GET ALL TRANSACTIONS FOR A USER
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, limit := utils.GetPaginationParams(r)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	transactions, err := h.Store.ListTransactions(ctx, userID, filter)
	if err != nil {
		utils.Logger.Errorf("error fetching transactions: %v", err)
		utils.WriteError(w, "error fetching transactions", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status   string               `json:"status"`
		Count    int                  `json:"count"`
		Page     int                  `json:"page"`
		PageSize int                  `json:"page_size"`
		Data     []models.Transaction `json:"data"`
	}{
		Status:   "success",
		Count:    len(transactions),
		Page:     page,
		PageSize: limit,
		Data:     transactions,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET ONE TRANSACTION BY ID
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	transactionID, ok := handlers.PathID(w, r, "id", "transaction")
	if !ok {
		return
	}
	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	transaction, err := h.Store.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.WriteError(w, "no transaction found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error fetching data: %v", err)
		utils.WriteError(w, "error fetching transaction", http.StatusInternalServerError)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "", transaction)
}

// Create stores a new transaction. A repeated Idempotency-Key returns the
// original row with 200 instead of inserting it again.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}

	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := req.toModel(userID)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if len(key) > maxIdempotencyKeyLength {
		utils.WriteError(w, "Idempotency-Key is too long", http.StatusBadRequest)
		return
	}
	transaction.ClientRef = key

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	saved, created, err := h.Store.CreateTransaction(ctx, transaction)
	if err != nil {
		utils.Logger.Errorf("error creating transaction: %v", err)
		utils.WriteError(w, "error creating transaction", http.StatusInternalServerError)
		return
	}

	if !created {
		utils.Logger.WithField("client_ref", key).Info("duplicate transaction replay ignored")
		utils.WriteSuccess(w, http.StatusOK, "transaction already recorded", saved)
		return
	}

	utils.Logger.WithField("user_id", userID).WithField("transaction_id", saved.ID).Info("transaction created")
	utils.WriteSuccess(w, http.StatusCreated, "transaction created successfully", saved)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPut, http.MethodPatch) {
		return
	}

	transactionID, ok := handlers.PathID(w, r, "id", "transaction")
	if !ok {
		return
	}
	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := req.toModel(userID)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	transaction.ID = transactionID

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	updated, err := h.Store.UpdateTransaction(ctx, transaction)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.WriteError(w, "no transaction found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error updating transaction %d: %v", transactionID, err)
		utils.WriteError(w, "error updating transaction", http.StatusInternalServerError)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "transaction updated successfully", updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodDelete) {
		return
	}

	transactionID, ok := handlers.PathID(w, r, "id", "transaction")
	if !ok {
		return
	}
	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	if err := h.Store.DeleteTransaction(ctx, userID, transactionID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.WriteError(w, "no transaction found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error deleting transaction %d: %v", transactionID, err)
		utils.WriteError(w, "error deleting transaction", http.StatusInternalServerError)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "transaction deleted successfully", nil)
}
