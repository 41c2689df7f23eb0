package routers

import (
	"net/http"

	"finance_io/internal/api/handlers/auth"
	"finance_io/internal/api/handlers/billing"
	"finance_io/internal/api/handlers/categories"
	"finance_io/internal/api/handlers/dashboard"
	"finance_io/internal/api/handlers/reports"
	"finance_io/internal/api/handlers/transactions"
)

// Handlers groups every resource handler the API serves.
type Handlers struct {
	Auth         *auth.Handler
	Transactions *transactions.Handler
	Categories   *categories.Handler
	Dashboard    *dashboard.Handler
	Reports      *reports.Handler
	Billing      *billing.Handler
}

// PublicPaths are served without a login token.
var PublicPaths = []string{
	"/users/signup",
	"/users/login",
	"/billing/stripe/webhook",
	"/healthz",
}

func MainRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/users/", usersRouter(h.Auth))
	mux.Handle("/transactions/", transactionsRouter(h.Transactions))
	mux.Handle("/categories/", categoriesRouter(h.Categories))
	mux.Handle("/dashboard/", dashboardRouter(h.Dashboard))
	mux.Handle("/reports/", reportsRouter(h.Reports))
	mux.Handle("/billing/", billingRouter(h.Billing))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}
