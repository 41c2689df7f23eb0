package billing

import (
	"context"
	"errors"
	"io"
	"net/http"

	"finance_io/internal/api/handlers"
	"finance_io/internal/models"
	"finance_io/internal/repositories"
	"finance_io/internal/services"
	"finance_io/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxWebhookBytes = 65536

type UserStore interface {
	GetUserByID(ctx context.Context, id int) (models.User, error)
	SetPro(ctx context.Context, userID int, isPro bool) error
}

type BillingStore interface {
	ApplyBillingEvent(ctx context.Context, ev models.BillingEvent, isPro bool) (bool, error)
}

type StripeAPI interface {
	CreateCheckoutSession(ctx context.Context, userID int, email string) (string, error)
	CreateSubscriptionIntent(ctx context.Context, userID int, email string) (*services.SubscriptionIntent, error)
}

type PayPalAPI interface {
	CreateOrder(ctx context.Context, userID int) (*services.PayPalOrder, error)
	CaptureOrder(ctx context.Context, orderID string, userID int) (*services.PayPalCapture, error)
}

// Handler serves the Stripe and PayPal flows that toggle the Pro flag.
// Stripe or PayPal may be nil when the provider is not configured.
type Handler struct {
	Users         UserStore
	Billing       BillingStore
	Stripe        StripeAPI
	PayPal        PayPalAPI
	WebhookSecret string
	Mailer        utils.Mailer
}

func (h *Handler) currentUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	userID, ok := handlers.UserID(w, r)
	if !ok {
		return models.User{}, false
	}
	user, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.WriteError(w, "user not found", http.StatusNotFound)
			return user, false
		}
		utils.Logger.Errorf("error fetching user %d: %v", userID, err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return user, false
	}
	return user, true
}

func (h *Handler) notifyPro(ctx context.Context, userID int, provider, amount string) {
	user, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		utils.Logger.WithError(err).WithField("user_id", userID).Warn("could not load user for pro e-mail")
		return
	}
	utils.SendProActivatedEmail(h.Mailer, user.Email, user.Username, provider, amount)
}

// StripeCheckout starts a hosted checkout for the Pro subscription.
func (h *Handler) StripeCheckout(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}
	if h.Stripe == nil {
		utils.WriteError(w, "stripe is not configured", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()
	user, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	url, err := h.Stripe.CreateCheckoutSession(r.Context(), user.ID, user.Email)
	if err != nil {
		utils.Logger.WithError(err).WithField("user_id", user.ID).Error("failed to create checkout session")
		utils.WriteError(w, "failed to create checkout session", http.StatusInternalServerError)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "", map[string]string{"url": url})
}

// StripeSubscription creates an incomplete subscription and returns the
// payment intent client secret for an embedded payment form.
func (h *Handler) StripeSubscription(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}
	if h.Stripe == nil {
		utils.WriteError(w, "stripe is not configured", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()
	user, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	intent, err := h.Stripe.CreateSubscriptionIntent(r.Context(), user.ID, user.Email)
	if err != nil {
		utils.Logger.WithError(err).WithField("user_id", user.ID).Error("failed to create subscription")
		utils.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, intent)
}

// StripeWebhook applies subscription lifecycle events. Each event id is
// processed once; redeliveries are acknowledged without effect.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		utils.WriteError(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	change, err := services.ParseStripeEvent(body, r.Header.Get("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		if errors.Is(err, services.ErrMissingMetadata) {
			utils.Logger.WithField("event_id", change.EventID).Warn("subscription event without userId ignored")
			utils.WriteSuccess(w, http.StatusOK, "ignored", nil)
			return
		}
		utils.Logger.WithError(err).Warn("invalid Stripe webhook")
		utils.WriteError(w, "webhook error", http.StatusBadRequest)
		return
	}

	log := utils.Logger.WithFields(logrus.Fields{"event_id": change.EventID, "type": change.Type, "user_id": change.UserID})

	if !change.Relevant {
		log.Debug("stripe event ignored")
		utils.WriteSuccess(w, http.StatusOK, "ignored", nil)
		return
	}

	status := "active"
	if !change.IsPro {
		status = "canceled"
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	applied, err := h.Billing.ApplyBillingEvent(ctx, models.BillingEvent{
		Provider:  models.ProviderStripe,
		Reference: change.EventID,
		UserID:    change.UserID,
		Kind:      change.Type,
		Amount:    decimal.Zero,
		Status:    status,
	}, change.IsPro)
	if err != nil {
		log.WithError(err).Error("failed to apply stripe event")
		utils.WriteError(w, "failed to process event", http.StatusInternalServerError)
		return
	}

	if !applied {
		utils.WriteSuccess(w, http.StatusOK, "already processed", nil)
		return
	}

	log.WithField("is_pro", change.IsPro).Info("subscription status updated")
	if change.IsPro && change.Type == "customer.subscription.created" {
		h.notifyPro(ctx, change.UserID, "Stripe", "assinatura mensal")
	}
	utils.WriteSuccess(w, http.StatusOK, "processed", nil)
}

// PayPalOrder opens an order for the fixed Pro price.
func (h *Handler) PayPalOrder(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}
	if h.PayPal == nil {
		utils.WriteError(w, "paypal is not configured", http.StatusServiceUnavailable)
		return
	}

	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	order, err := h.PayPal.CreateOrder(r.Context(), userID)
	if err != nil {
		utils.Logger.WithError(err).WithField("user_id", userID).Error("failed to create paypal order")
		utils.WriteError(w, "failed to create paypal order", http.StatusBadGateway)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, "", order)
}

// PayPalCapture captures an approved order and grants Pro in the same SQL
// transaction that records the capture.
func (h *Handler) PayPalCapture(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}
	if h.PayPal == nil {
		utils.WriteError(w, "paypal is not configured", http.StatusServiceUnavailable)
		return
	}

	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	orderID := r.PathValue("orderId")
	if orderID == "" {
		utils.WriteError(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	capture, err := h.PayPal.CaptureOrder(r.Context(), orderID, userID)
	if err != nil {
		fields := logrus.Fields{"order_id": orderID, "user_id": userID}
		switch {
		case errors.Is(err, services.ErrCaptureNotCompleted):
			utils.WriteError(w, "payment was not completed", http.StatusPaymentRequired)
			return
		case errors.Is(err, services.ErrOrderNotOwned):
			utils.Logger.WithError(err).WithFields(fields).Error("paypal order captured for another user")
			utils.WriteError(w, "this order does not belong to your account", http.StatusForbidden)
			return
		case errors.Is(err, services.ErrCaptureMismatch):
			utils.Logger.WithError(err).WithFields(fields).Error("paypal capture does not match the pro price")
			utils.WriteError(w, "payment amount does not match the PRO plan", http.StatusPaymentRequired)
			return
		}
		utils.Logger.WithError(err).WithField("order_id", orderID).Error("failed to capture paypal order")
		utils.WriteError(w, "failed to capture paypal order", http.StatusBadGateway)
		return
	}

	// the payment is already taken at this point, so the write must not be
	// abandoned if the client goes away
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), handlers.DBTimeout)
	defer cancel()

	applied, err := h.Billing.ApplyBillingEvent(ctx, models.BillingEvent{
		Provider:  models.ProviderPayPal,
		Reference: capture.OrderID,
		UserID:    userID,
		Kind:      "order.captured",
		Amount:    capture.Amount,
		Currency:  capture.Currency,
		Status:    capture.Status,
	}, true)
	if err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{"order_id": capture.OrderID, "user_id": userID}).
			Error("paypal payment captured but pro upgrade failed")
		utils.WriteError(w, "payment confirmed, but we could not upgrade your account. Please contact support", http.StatusInternalServerError)
		return
	}

	if applied {
		h.notifyPro(ctx, userID, "PayPal", capture.Amount.StringFixed(2)+" "+capture.Currency)
	}

	utils.WriteSuccess(w, http.StatusOK, "payment confirmed, PRO plan active", map[string]interface{}{
		"orderId": capture.OrderID,
		"status":  capture.Status,
		"isPro":   true,
	})
}

// Downgrade returns the user to the free plan.
func (h *Handler) Downgrade(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}

	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	if err := h.Users.SetPro(ctx, userID, false); err != nil {
		utils.Logger.Errorf("failed to downgrade user %d: %v", userID, err)
		utils.WriteError(w, "failed to downgrade plan", http.StatusInternalServerError)
		return
	}

	utils.Logger.WithField("user_id", userID).Info("user downgraded to free plan")
	utils.WriteSuccess(w, http.StatusOK, "plan downgraded to free", map[string]bool{"isPro": false})
}
