package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"finance_io/internal/api/handlers"
	mw "finance_io/internal/api/middlewares"
	"finance_io/internal/services"
	"finance_io/pkg/utils"

	"github.com/joho/godotenv"
)

type intentCreator interface {
	CreateSubscriptionIntent(ctx context.Context, userID int, email string) (*services.SubscriptionIntent, error)
}

type intentRequest struct {
	Email string `json:"email"`
}

// createPaymentIntent starts an incomplete Stripe subscription for the
// browser checkout and hands back its client secret.
func createPaymentIntent(stripe intentCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !handlers.AllowMethods(w, r, http.MethodPost) {
			return
		}

		var req intentRequest
		if r.ContentLength != 0 {
			if err := handlers.DecodeJSON(w, r, &req); err != nil {
				utils.WriteError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		intent, err := stripe.CreateSubscriptionIntent(ctx, 0, strings.TrimSpace(req.Email))
		if err != nil {
			utils.Logger.Errorf("relay: create subscription intent: %v", err)
			utils.WriteError(w, "error creating payment intent", http.StatusInternalServerError)
			return
		}

		utils.WriteJSON(w, intent)
	}
}

func newRelay(stripe intentCreator) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/create-payment-intent", createPaymentIntent(stripe))
	return mw.Chain(mux, mw.RequestLogger, mw.Cors())
}

func main() {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Warn("No .env file loaded")
	}
	utils.InitLogger()

	cfg, err := services.StripeConfigFromEnv()
	if err != nil {
		utils.Logger.Fatal("Stripe configuration: ", err)
	}

	port := utils.GetEnv("RELAY_PORT", ":3001")
	server := &http.Server{
		Addr:              port,
		Handler:           newRelay(services.NewStripeClient(cfg, nil)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Logger.Infof("Relay is running on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("Error starting the relay: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		utils.Logger.Errorf("Relay shutdown failed: %v", err)
	}
}
