package routers

import (
	"net/http"

	"finance_io/internal/api/handlers/billing"
)

func billingRouter(h *billing.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/billing/stripe/checkout", h.StripeCheckout)
	mux.HandleFunc("/billing/stripe/subscription", h.StripeSubscription)
	mux.HandleFunc("/billing/stripe/webhook", h.StripeWebhook)

	mux.HandleFunc("/billing/paypal/order", h.PayPalOrder)
	mux.HandleFunc("/billing/paypal/capture/{orderId}", h.PayPalCapture)

	mux.HandleFunc("/billing/downgrade", h.Downgrade)

	return mux
}
