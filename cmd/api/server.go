package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance_io/internal/api/handlers/auth"
	"finance_io/internal/api/handlers/billing"
	"finance_io/internal/api/handlers/categories"
	"finance_io/internal/api/handlers/dashboard"
	"finance_io/internal/api/handlers/reports"
	"finance_io/internal/api/handlers/transactions"
	mw "finance_io/internal/api/middlewares"
	"finance_io/internal/api/routers"
	"finance_io/internal/report"
	"finance_io/internal/repositories/sqlconnect"
	"finance_io/internal/services"
	"finance_io/pkg/cron"
	"finance_io/pkg/utils"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// production sets the environment directly
		utils.Logger.Warn("No .env file loaded")
	}

	utils.InitLogger()

	if err := sqlconnect.ConnectDb(); err != nil {
		utils.Logger.Fatal("DB connection failed: ", err)
	}

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sqlconnect.Migrate(migrateCtx, sqlconnect.DB); err != nil {
		cancel()
		utils.Logger.Fatal("DB migration failed: ", err)
	}
	cancel()

	store := sqlconnect.NewStore(sqlconnect.DB)
	mailer := utils.SMTPMailer{}

	generator, err := report.NewGeneratorFromEnv()
	if err != nil {
		utils.Logger.Fatal("Report engine setup failed: ", err)
	}

	billingHandler := &billing.Handler{
		Users:         store,
		Billing:       store,
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Mailer:        mailer,
	}
	if cfg, err := services.StripeConfigFromEnv(); err != nil {
		utils.Logger.Warnf("Stripe disabled: %v", err)
	} else {
		billingHandler.Stripe = services.NewStripeClient(cfg, nil)
	}
	if cfg, err := services.PayPalConfigFromEnv(); err != nil {
		utils.Logger.Warnf("PayPal disabled: %v", err)
	} else if client, err := services.NewPayPalClient(cfg); err != nil {
		utils.Logger.Warnf("PayPal disabled: %v", err)
	} else {
		billingHandler.PayPal = client
	}

	router := routers.MainRouter(routers.Handlers{
		Auth:         &auth.Handler{Users: store, Mailer: mailer},
		Transactions: &transactions.Handler{Store: store},
		Categories:   &categories.Handler{Store: store},
		Dashboard:    &dashboard.Handler{Store: store},
		Reports: &reports.Handler{
			Transactions: store,
			Users:        store,
			Counter:      store,
			Generator:    generator,
			Mailer:       mailer,
			FreeLimit:    utils.GetEnvInt("FREE_REPORTS_PER_MONTH", reports.DefaultFreeReportsPerMonth),
		},
		Billing: billingHandler,
	})

	jwtMiddleware := mw.MiddlewaresExcludePaths(mw.JWTMiddleware, routers.PublicPaths...)
	secureMux := mw.Chain(router, mw.RequestLogger, mw.Cors(), mw.SecurityHeaders, jwtMiddleware)

	jobs := cron.StartCronJob(&cron.Jobs{Store: store, Generator: generator, Mailer: mailer})

	port := utils.GetEnv("SERVER_PORT", ":3000")
	cert := os.Getenv("CERT_FILE")
	key := os.Getenv("KEY_FILE")

	server := &http.Server{
		Addr:              port,
		Handler:           secureMux,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Logger.Infof("Server is running on port %s", port)
		var err error
		if cert != "" && key != "" {
			err = server.ListenAndServeTLS(cert, key)
		} else {
			utils.Logger.Warn("CERT_FILE/KEY_FILE not set, serving plain HTTP")
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("Error starting the server: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	utils.Logger.Info("Shutting down")
	<-jobs.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Errorf("Graceful shutdown failed: %v", err)
	}
	if err := sqlconnect.DB.Close(); err != nil {
		utils.Logger.Errorf("Closing DB failed: %v", err)
	}
}
