package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finance_io/internal/models"

	"github.com/shopspring/decimal"
)

// ErrQueued reports a write accepted locally and waiting for Flush.
var ErrQueued = errors.New("request queued for offline sync")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type TransactionInput struct {
	Description string                 `json:"description"`
	Amount      decimal.Decimal        `json:"amount"`
	Type        models.TransactionType `json:"type"`
	Category    string                 `json:"category"`
	Date        string                 `json:"date"`
}

// bearerTransport adds the current token to every attempt, replays included.
type bearerTransport struct {
	base  http.RoundTripper
	token func() string
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := b.token()
	if tok == "" {
		return b.base.RoundTrip(req)
	}
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+tok)
	return b.base.RoundTrip(out)
}

// Client talks to the finance API through an offline Transport.
type Client struct {
	BaseURL   string
	Token     string
	Transport *Transport

	http   *http.Client
	direct *http.Client
}

func NewClient(baseURL, token string, store *FileStore) *Client {
	c := &Client{BaseURL: strings.TrimRight(baseURL, "/"), Token: token}
	auth := &bearerTransport{base: http.DefaultTransport, token: func() string { return c.Token }}
	c.Transport = &Transport{Base: auth, Store: store}
	c.http = &http.Client{Transport: c.Transport, Timeout: 30 * time.Second}
	c.direct = &http.Client{Transport: auth, Timeout: 30 * time.Second}
	return c
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in any) (envelope, *http.Response, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return envelope{}, nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return envelope{}, nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return envelope{}, nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return envelope{}, resp, fmt.Errorf("error decoding response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return env, resp, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return env, resp, nil
}

// Login never goes through the queue.
func (c *Client) Login(ctx context.Context, accountID, password string) error {
	env, _, err := c.do(ctx, c.direct, http.MethodPost, "/users/login", map[string]string{
		"account_id": accountID,
		"password":   password,
	})
	if err != nil {
		return err
	}
	c.Token = env.Token
	return nil
}

// ListTransactions reports whether the answer came from the local cache.
func (c *Client) ListTransactions(ctx context.Context) ([]models.Transaction, bool, error) {
	env, resp, err := c.do(ctx, c.http, http.MethodGet, "/transactions/", nil)
	if err != nil {
		return nil, false, err
	}
	var txs []models.Transaction
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &txs); err != nil {
			return nil, false, fmt.Errorf("error decoding transactions: %w", err)
		}
	}
	return txs, resp.Header.Get(CacheHeader) != "", nil
}

func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (models.Transaction, error) {
	return c.writeTransaction(ctx, http.MethodPost, "/transactions/create", in)
}

func (c *Client) UpdateTransaction(ctx context.Context, id int, in TransactionInput) (models.Transaction, error) {
	return c.writeTransaction(ctx, http.MethodPut, fmt.Sprintf("/transactions/update/%d", id), in)
}

func (c *Client) writeTransaction(ctx context.Context, method, path string, in TransactionInput) (models.Transaction, error) {
	env, _, err := c.do(ctx, c.http, method, path, in)
	if err != nil {
		return models.Transaction{}, err
	}
	if env.Status == "offline" {
		return models.Transaction{}, ErrQueued
	}
	var t models.Transaction
	if err := json.Unmarshal(env.Data, &t); err != nil {
		return models.Transaction{}, fmt.Errorf("error decoding transaction: %w", err)
	}
	return t, nil
}

// Sync flushes the offline queue.
func (c *Client) Sync(ctx context.Context) error {
	return c.Transport.Flush(ctx)
}
