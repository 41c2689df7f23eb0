package routers

import (
	"net/http"

	"finance_io/internal/api/handlers/categories"
)

func categoriesRouter(h *categories.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/categories/", h.List)
	mux.HandleFunc("/categories/create", h.Create)
	mux.HandleFunc("/categories/update/{id}", h.Update)
	mux.HandleFunc("/categories/delete/{id}", h.Delete)

	return mux
}
