package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completedCapture = `{"id":"ORDER-1","status":"COMPLETED","purchase_units":[{"reference_id":"PRO-1",
	"payments":{"captures":[{"id":"CAP-1","status":"COMPLETED","custom_id":"42",
	"amount":{"currency_code":"BRL","value":"19.90"}}]}}]}`

func newTestPayPal(t *testing.T, captureBody string) (*PayPalClient, *int) {
	t.Helper()
	tokenCalls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/oauth2/token":
			tokenCalls++
			w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
		case "/v2/checkout/orders":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			var body struct {
				Intent        string `json:"intent"`
				PurchaseUnits []struct {
					Description string `json:"description"`
					CustomID    string `json:"custom_id"`
					Amount      struct {
						Currency string `json:"currency_code"`
						Value    string `json:"value"`
					} `json:"amount"`
				} `json:"purchase_units"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "CAPTURE", body.Intent)
			require.Len(t, body.PurchaseUnits, 1)
			assert.Equal(t, "Plano PRO - Finance.io", body.PurchaseUnits[0].Description)
			assert.Equal(t, "42", body.PurchaseUnits[0].CustomID)
			assert.Equal(t, "BRL", body.PurchaseUnits[0].Amount.Currency)
			assert.Equal(t, "19.90", body.PurchaseUnits[0].Amount.Value)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"ORDER-1","status":"CREATED"}`))
		case "/v2/checkout/orders/ORDER-1/capture":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(captureBody))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	p, err := NewPayPalClient(PayPalConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		APIBase:      srv.URL,
		Price:        decimal.RequireFromString("19.9"),
		Currency:     "BRL",
	})
	require.NoError(t, err)
	return p, &tokenCalls
}

func TestPayPal_CreateAndCapture(t *testing.T) {
	p, tokenCalls := newTestPayPal(t, completedCapture)
	ctx := context.Background()

	order, err := p.CreateOrder(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", order.ID)
	assert.Equal(t, "CREATED", order.Status)
	assert.Contains(t, order.Reference, "PRO-")

	capture, err := p.CaptureOrder(ctx, "ORDER-1", 42)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", capture.Status)
	assert.Equal(t, "CAP-1", capture.CaptureID)
	assert.Equal(t, "42", capture.CustomID)
	assert.Equal(t, "19.9", capture.Amount.String())
	assert.Equal(t, "BRL", capture.Currency)
	assert.Equal(t, 1, *tokenCalls)
}

func TestPayPal_CaptureNotCompleted(t *testing.T) {
	p, _ := newTestPayPal(t, `{"id":"ORDER-1","status":"PENDING"}`)

	_, err := p.CaptureOrder(context.Background(), "ORDER-1", 42)
	assert.ErrorIs(t, err, ErrCaptureNotCompleted)
}

func TestPayPal_CaptureRequiresOrderID(t *testing.T) {
	p, _ := newTestPayPal(t, completedCapture)

	_, err := p.CaptureOrder(context.Background(), "", 42)
	assert.Error(t, err)
}

func TestPayPal_CaptureChecksOwnerAndAmount(t *testing.T) {
	cheap := `{"id":"ORDER-1","status":"COMPLETED","purchase_units":[{"payments":{"captures":[
		{"id":"CAP-2","custom_id":"42","amount":{"currency_code":"BRL","value":"0.01"}}]}}]}`
	foreign := `{"id":"ORDER-1","status":"COMPLETED","purchase_units":[{"payments":{"captures":[
		{"id":"CAP-3","custom_id":"999","amount":{"currency_code":"BRL","value":"19.90"}}]}}]}`
	otherCurrency := `{"id":"ORDER-1","status":"COMPLETED","purchase_units":[{"payments":{"captures":[
		{"id":"CAP-4","custom_id":"42","amount":{"currency_code":"USD","value":"19.90"}}]}}]}`
	empty := `{"id":"ORDER-1","status":"COMPLETED"}`

	p, _ := newTestPayPal(t, cheap)
	c, err := p.CaptureOrder(context.Background(), "ORDER-1", 42)
	assert.ErrorIs(t, err, ErrCaptureMismatch)
	require.NotNil(t, c)
	assert.Equal(t, "0.01", c.Amount.String(), "the captured amount is reported, not the configured price")

	p, _ = newTestPayPal(t, foreign)
	_, err = p.CaptureOrder(context.Background(), "ORDER-1", 42)
	assert.ErrorIs(t, err, ErrOrderNotOwned)

	p, _ = newTestPayPal(t, otherCurrency)
	_, err = p.CaptureOrder(context.Background(), "ORDER-1", 42)
	assert.ErrorIs(t, err, ErrCaptureMismatch)

	p, _ = newTestPayPal(t, empty)
	_, err = p.CaptureOrder(context.Background(), "ORDER-1", 42)
	assert.ErrorIs(t, err, ErrCaptureMismatch)
}

func TestGenerateReference(t *testing.T) {
	a := GenerateReference("PRO-")
	b := GenerateReference("PRO-")

	assert.Regexp(t, `^PRO-\d{14}-[0-9a-f]{8}$`, a)
	assert.NotEqual(t, a, b)
}
