package routers

import (
	"net/http"

	"finance_io/internal/api/handlers/dashboard"
	"finance_io/internal/api/handlers/reports"
)

func dashboardRouter(h *dashboard.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/dashboard/summary", h.Summary)
	mux.HandleFunc("/dashboard/metrics", h.Metrics)

	return mux
}

func reportsRouter(h *reports.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/reports/generate", h.Generate)
	mux.HandleFunc("/reports/usage", h.Usage)

	return mux
}
