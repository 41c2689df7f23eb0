package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"finance_io/pkg/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrNoActivePrice   = errors.New("no active price found for product")
	ErrNoClientSecret  = errors.New("subscription has no payment intent client secret")
	ErrMissingMetadata = errors.New("subscription metadata has no userId")
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	ProductID     string
	SiteURL       string
}

func StripeConfigFromEnv() (StripeConfig, error) {
	cfg := StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PriceID:       os.Getenv("STRIPE_PRICE_ID"),
		ProductID:     os.Getenv("STRIPE_PRODUCT_ID"),
		SiteURL:       utils.GetEnv("SITE_URL", "http://localhost:8080"),
	}
	if cfg.SecretKey == "" {
		return cfg, fmt.Errorf("STRIPE_SECRET_KEY environment variable is not set")
	}
	return cfg, nil
}

type StripeClient struct {
	cfg StripeConfig
	api *client.API
}

// NewStripeClient talks to the Stripe API. backends may be nil to use the
// default endpoints.
func NewStripeClient(cfg StripeConfig, backends *stripe.Backends) *StripeClient {
	api := &client.API{}
	api.Init(cfg.SecretKey, backends)
	return &StripeClient{cfg: cfg, api: api}
}

type SubscriptionIntent struct {
	ClientSecret   string `json:"clientSecret"`
	SubscriptionID string `json:"subscriptionId"`
}

// CreateCheckoutSession returns the hosted checkout URL for the Pro subscription.
// The customer is reused when one already exists for the e-mail.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, userID int, email string) (string, error) {
	if s.cfg.PriceID == "" {
		return "", fmt.Errorf("STRIPE_PRICE_ID environment variable is not set")
	}

	customerID, err := s.findOrCreateCustomer(ctx, userID, email)
	if err != nil {
		return "", err
	}

	uid := strconv.Itoa(userID)
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(s.cfg.SiteURL + "/dashboard?success=true"),
		CancelURL:  stripe.String(s.cfg.SiteURL + "/dashboard?canceled=true"),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"userId": uid},
		},
	}
	params.Context = ctx
	params.AddMetadata("userId", uid)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreateSubscriptionIntent starts an incomplete subscription on the first active
// price of the product and hands back the payment intent secret for the client.
func (s *StripeClient) CreateSubscriptionIntent(ctx context.Context, userID int, email string) (*SubscriptionIntent, error) {
	cp := &stripe.CustomerParams{}
	if email != "" {
		cp.Email = stripe.String(email)
	}
	cp.Context = ctx
	if userID > 0 {
		cp.AddMetadata("userId", strconv.Itoa(userID))
	}
	cust, err := s.api.Customers.New(cp)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	priceID, err := s.activePrice(ctx)
	if err != nil {
		return nil, err
	}

	sp := &stripe.SubscriptionParams{
		Customer:        stripe.String(cust.ID),
		Items:           []*stripe.SubscriptionItemsParams{{Price: stripe.String(priceID)}},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
	}
	sp.Context = ctx
	sp.AddExpand("latest_invoice.payment_intent")
	if userID > 0 {
		sp.AddMetadata("userId", strconv.Itoa(userID))
	}

	sub, err := s.api.Subscriptions.New(sp)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if sub.LatestInvoice == nil || sub.LatestInvoice.PaymentIntent == nil || sub.LatestInvoice.PaymentIntent.ClientSecret == "" {
		return nil, ErrNoClientSecret
	}

	return &SubscriptionIntent{
		ClientSecret:   sub.LatestInvoice.PaymentIntent.ClientSecret,
		SubscriptionID: sub.ID,
	}, nil
}

func (s *StripeClient) findOrCreateCustomer(ctx context.Context, userID int, email string) (string, error) {
	lp := &stripe.CustomerListParams{Email: stripe.String(email)}
	lp.Context = ctx
	lp.Limit = stripe.Int64(1)

	iter := s.api.Customers.List(lp)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("failed to look up customer: %w", err)
	}

	cp := &stripe.CustomerParams{Email: stripe.String(email)}
	cp.Context = ctx
	cp.AddMetadata("userId", strconv.Itoa(userID))
	cust, err := s.api.Customers.New(cp)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return cust.ID, nil
}

func (s *StripeClient) activePrice(ctx context.Context) (string, error) {
	if s.cfg.ProductID == "" {
		return "", fmt.Errorf("STRIPE_PRODUCT_ID environment variable is not set")
	}

	pp := &stripe.PriceListParams{
		Product: stripe.String(s.cfg.ProductID),
		Active:  stripe.Bool(true),
	}
	pp.Context = ctx
	pp.Limit = stripe.Int64(1)

	iter := s.api.Prices.List(pp)
	if iter.Next() {
		return iter.Price().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("failed to list prices: %w", err)
	}
	return "", ErrNoActivePrice
}

// SubscriptionChange is the entitlement update carried by a webhook event.
// Relevant is false for events that do not touch is_pro.
type SubscriptionChange struct {
	EventID  string
	Type     string
	UserID   int
	IsPro    bool
	Relevant bool
}

// ParseStripeEvent verifies the Stripe-Signature header and maps subscription
// lifecycle events onto the Pro flag.
func ParseStripeEvent(payload []byte, signature, secret string) (SubscriptionChange, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return SubscriptionChange{}, fmt.Errorf("invalid webhook signature: %w", err)
	}

	change := SubscriptionChange{EventID: event.ID, Type: string(event.Type)}

	switch change.Type {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
	default:
		return change, nil
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return change, fmt.Errorf("failed to decode subscription: %w", err)
	}

	uid, err := strconv.Atoi(sub.Metadata["userId"])
	if err != nil || uid <= 0 {
		return change, ErrMissingMetadata
	}
	change.UserID = uid

	if change.Type == "customer.subscription.deleted" {
		change.Relevant = true
		change.IsPro = false
		return change, nil
	}

	if sub.Status == stripe.SubscriptionStatusActive {
		change.Relevant = true
		change.IsPro = true
	}
	return change, nil
}
