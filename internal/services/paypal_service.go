package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"finance_io/pkg/utils"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
)

const proDescription = "Plano PRO - Finance.io"

var (
	ErrCaptureNotCompleted = errors.New("paypal capture not completed")
	ErrCaptureMismatch     = errors.New("paypal capture does not match the pro price")
	ErrOrderNotOwned       = errors.New("paypal order belongs to another user")
)

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	APIBase      string
	Price        decimal.Decimal
	Currency     string
}

func PayPalConfigFromEnv() (PayPalConfig, error) {
	cfg := PayPalConfig{
		ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		APIBase:      paypal.APIBaseSandBox,
		Price:        utils.GetEnvDecimal("PRO_PRICE", decimal.RequireFromString("19.90")),
		Currency:     utils.GetEnv("PRO_CURRENCY", "BRL"),
	}
	if strings.EqualFold(os.Getenv("PAYPAL_MODE"), "live") {
		cfg.APIBase = paypal.APIBaseLive
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return cfg, fmt.Errorf("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET must be set")
	}
	return cfg, nil
}

type PayPalClient struct {
	cfg PayPalConfig
	api *paypal.Client
}

func NewPayPalClient(cfg PayPalConfig) (*PayPalClient, error) {
	api, err := paypal.NewClient(cfg.ClientID, cfg.ClientSecret, cfg.APIBase)
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal client: %w", err)
	}
	return &PayPalClient{cfg: cfg, api: api}, nil
}

type PayPalOrder struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// PayPalCapture is what PayPal reports for the first capture of the order.
type PayPalCapture struct {
	OrderID   string
	Status    string
	CaptureID string
	CustomID  string
	Amount    decimal.Decimal
	Currency  string
}

// CreateOrder opens a CAPTURE order for one Pro upgrade at the fixed price.
func (p *PayPalClient) CreateOrder(ctx context.Context, userID int) (*PayPalOrder, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	ref := GenerateReference("PRO-")
	order, err := p.api.CreateOrder(ctx, paypal.OrderIntentCapture, []paypal.PurchaseUnitRequest{
		{
			ReferenceID: ref,
			Description: proDescription,
			CustomID:    strconv.Itoa(userID),
			Amount: &paypal.PurchaseUnitAmount{
				Currency: p.cfg.Currency,
				Value:    p.cfg.Price.StringFixed(2),
			},
		},
	}, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal order: %w", err)
	}

	return &PayPalOrder{ID: order.ID, Status: order.Status, Reference: ref}, nil
}

// CaptureOrder captures an approved order on behalf of userID. The capture
// must be COMPLETED (ErrCaptureNotCompleted), carry the user's id as
// custom_id (ErrOrderNotOwned) and match the configured price and currency
// (ErrCaptureMismatch). The capture is returned alongside those errors.
func (p *PayPalClient) CaptureOrder(ctx context.Context, orderID string, userID int) (*PayPalCapture, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	resp, err := p.api.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to capture paypal order: %w", err)
	}

	capture := &PayPalCapture{OrderID: resp.ID, Status: resp.Status}
	if resp.Status != "COMPLETED" {
		return capture, fmt.Errorf("%w: status %s", ErrCaptureNotCompleted, resp.Status)
	}

	if len(resp.PurchaseUnits) == 0 || resp.PurchaseUnits[0].Payments == nil ||
		len(resp.PurchaseUnits[0].Payments.Captures) == 0 {
		return capture, fmt.Errorf("%w: no capture in response", ErrCaptureMismatch)
	}
	c := resp.PurchaseUnits[0].Payments.Captures[0]
	capture.CaptureID = c.ID
	capture.CustomID = c.CustomID
	if c.Amount != nil {
		capture.Currency = c.Amount.Currency
		if amount, err := decimal.NewFromString(c.Amount.Value); err == nil {
			capture.Amount = amount
		}
	}

	if capture.CustomID != strconv.Itoa(userID) {
		return capture, fmt.Errorf("%w: custom_id %q", ErrOrderNotOwned, capture.CustomID)
	}
	if !capture.Amount.Equal(p.cfg.Price) || !strings.EqualFold(capture.Currency, p.cfg.Currency) {
		return capture, fmt.Errorf("%w: got %s %s", ErrCaptureMismatch, capture.Amount.StringFixed(2), capture.Currency)
	}
	return capture, nil
}

func (p *PayPalClient) ensureToken(ctx context.Context) error {
	if p.api.Token != nil && p.api.Token.Token != "" {
		return nil
	}
	if _, err := p.api.GetAccessToken(ctx); err != nil {
		return fmt.Errorf("failed to get paypal access token: %w", err)
	}
	return nil
}
