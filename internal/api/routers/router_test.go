package routers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"finance_io/internal/api/handlers/auth"
	"finance_io/internal/api/handlers/billing"
	"finance_io/internal/api/handlers/categories"
	"finance_io/internal/api/handlers/dashboard"
	"finance_io/internal/api/handlers/reports"
	"finance_io/internal/api/handlers/transactions"
	"finance_io/internal/api/middlewares"

	"github.com/stretchr/testify/assert"
)

func emptyHandlers() Handlers {
	return Handlers{
		Auth:         &auth.Handler{},
		Transactions: &transactions.Handler{},
		Categories:   &categories.Handler{},
		Dashboard:    &dashboard.Handler{},
		Reports:      &reports.Handler{},
		Billing:      &billing.Handler{},
	}
}

func TestMainRouter_Dispatch(t *testing.T) {
	mux := MainRouter(emptyHandlers())

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/users/login", http.StatusMethodNotAllowed},
		{http.MethodGet, "/transactions/abc", http.StatusBadRequest},
		{http.MethodPost, "/transactions/export", http.StatusMethodNotAllowed},
		{http.MethodGet, "/categories/delete/1", http.StatusMethodNotAllowed},
		{http.MethodGet, "/billing/paypal/capture/ORDER-1", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.code, rr.Code, tt.method+" "+tt.path)
	}
}

func TestPublicPathsBypassAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	jwt := middlewares.MiddlewaresExcludePaths(middlewares.JWTMiddleware, PublicPaths...)
	h := jwt(MainRouter(emptyHandlers()))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
