package routers

import (
	"net/http"

	"finance_io/internal/api/handlers/transactions"
)

func transactionsRouter(h *transactions.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/transactions/", h.List)

	mux.HandleFunc("/transactions/create", h.Create)

	mux.HandleFunc("/transactions/export", h.Export)

	mux.HandleFunc("/transactions/{id}", h.Get)

	mux.HandleFunc("/transactions/update/{id}", h.Update)

	mux.HandleFunc("/transactions/delete/{id}", h.Delete)

	return mux
}
