package categories

import (
	"context"
	"errors"
	"net/http"

	"finance_io/internal/api/handlers"
	"finance_io/internal/models"
	"finance_io/internal/repositories"
	"finance_io/pkg/utils"
)

type CategoryStore interface {
	ListCategories(ctx context.Context, userID int) ([]models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) (models.Category, error)
	UpdateCategory(ctx context.Context, c models.Category) (models.Category, error)
	DeleteCategory(ctx context.Context, userID, id int) error
}

type Handler struct {
	Store CategoryStore
}

type categoryRequest struct {
	Name string                 `json:"name"`
	Type models.TransactionType `json:"type"`
}

// writeStoreError maps validation and repository failures to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, models.ErrEmptyCategoryName), errors.Is(err, models.ErrInvalidCategoryType):
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrDuplicateCategory):
		utils.WriteError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repositories.ErrNotFound):
		utils.WriteError(w, "category not found", http.StatusNotFound)
	default:
		utils.Logger.Errorf("error trying to %s category: %v", action, err)
		utils.WriteError(w, "error trying to "+action+" category", http.StatusInternalServerError)
	}
}

// List returns the user's categories, seeding the defaults on first use.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	categories, err := h.Store.ListCategories(ctx, userID)
	if err != nil {
		writeStoreError(w, err, "list")
		return
	}

	if typ := models.TransactionType(r.URL.Query().Get("type")); typ != "" {
		filtered := make([]models.Category, 0, len(categories))
		for _, c := range categories {
			if c.Type == typ {
				filtered = append(filtered, c)
			}
		}
		categories = filtered
	}

	utils.WriteSuccess(w, http.StatusOK, "", categories)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}

	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	created, err := h.Store.CreateCategory(ctx, models.Category{UserID: userID, Name: req.Name, Type: req.Type})
	if err != nil {
		writeStoreError(w, err, "create")
		return
	}

	utils.Logger.WithField("user_id", userID).Infof("category %q created", created.Name)
	utils.WriteSuccess(w, http.StatusCreated, "category created successfully", created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPut, http.MethodPatch) {
		return
	}

	categoryID, ok := handlers.PathID(w, r, "id", "category")
	if !ok {
		return
	}
	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	updated, err := h.Store.UpdateCategory(ctx, models.Category{ID: categoryID, UserID: userID, Name: req.Name, Type: req.Type})
	if err != nil {
		writeStoreError(w, err, "update")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "category updated successfully", updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodDelete) {
		return
	}

	categoryID, ok := handlers.PathID(w, r, "id", "category")
	if !ok {
		return
	}
	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	if err := h.Store.DeleteCategory(ctx, userID, categoryID); err != nil {
		writeStoreError(w, err, "delete")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "category deleted successfully", nil)
}
