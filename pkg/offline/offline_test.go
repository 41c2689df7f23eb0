package offline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"finance_io/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNetwork = errors.New("dial tcp: connection refused")

// switchBase fails every request while down is set.
type switchBase struct {
	mu   sync.Mutex
	down bool
}

func (s *switchBase) setDown(v bool) {
	s.mu.Lock()
	s.down = v
	s.mu.Unlock()
}

func (s *switchBase) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	down := s.down
	s.mu.Unlock()
	if down {
		return nil, errNetwork
	}
	return http.DefaultTransport.RoundTrip(req)
}

type received struct {
	method, path, key, body string
}

type recordingServer struct {
	mu     sync.Mutex
	got    []received
	status map[string]int
}

func (s *recordingServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.got = append(s.got, received{r.Method, r.URL.Path, r.Header.Get(IdempotencyHeader), string(body)})
	code, ok := s.status[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		code = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"status":"success","data":[]}`))
}

func newTestTransport(t *testing.T) (*Transport, *switchBase, *recordingServer, *httptest.Server) {
	t.Helper()
	rs := &recordingServer{status: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(rs.handler))
	t.Cleanup(srv.Close)

	base := &switchBase{}
	store := NewFileStore(filepath.Join(t.TempDir(), "offline.json"))
	return &Transport{Base: base, Store: store}, base, rs, srv
}

func TestFileStore_KeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o600))

	s := NewFileStore(path)
	d, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, d.Queue)

	require.NoError(t, s.Update(func(d *Data) error {
		d.Queue = append(d.Queue, QueuedRequest{ID: "a", Method: http.MethodPost, URL: "http://x/y"})
		return nil
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var kv map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &kv))
	assert.JSONEq(t, `"dark"`, string(kv["theme"]))
	assert.Contains(t, kv, StorageKey)

	d, err = NewFileStore(path).Load()
	require.NoError(t, err)
	require.Len(t, d.Queue, 1)
	assert.Equal(t, "a", d.Queue[0].ID)
}

func TestFileStore_UpdateErrorDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	s := NewFileStore(path)

	err := s.Update(func(d *Data) error { return errors.New("boom") })
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestTransport_GetFallsBackToCache(t *testing.T) {
	tr, base, _, srv := newTestTransport(t)
	client := &http.Client{Transport: tr}

	resp, err := client.Get(srv.URL + "/transactions/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get(CacheHeader))

	base.setDown(true)

	resp, err = client.Get(srv.URL + "/transactions/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(CacheHeader))
	assert.JSONEq(t, `{"status":"success","data":[]}`, string(body))

	_, err = client.Get(srv.URL + "/categories/")
	assert.ErrorIs(t, err, errNetwork)
}

func TestTransport_QueuesWritesAndFlushes(t *testing.T) {
	tr, base, rs, srv := newTestTransport(t)
	client := &http.Client{Transport: tr}
	base.setDown(true)

	resp, err := client.Post(srv.URL+"/transactions/create", "application/json", strings.NewReader(`{"n":1}`))
	require.NoError(t, err)
	var offline map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&offline))
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "offline", offline["status"])
	key := resp.Header.Get(IdempotencyHeader)
	assert.NotEmpty(t, key)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/transactions/update/3", strings.NewReader(`{"n":2}`))
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	n, err := tr.Pending()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// still offline: nothing is lost
	require.Error(t, tr.Flush(context.Background()))
	n, _ = tr.Pending()
	assert.Equal(t, 2, n)

	base.setDown(false)
	require.NoError(t, tr.Flush(context.Background()))

	n, err = tr.Pending()
	require.NoError(t, err)
	assert.Zero(t, n, "queue must be empty after a successful flush")

	require.Len(t, rs.got, 2)
	assert.Equal(t, received{http.MethodPost, "/transactions/create", key, `{"n":1}`}, rs.got[0])
	assert.Equal(t, http.MethodPut, rs.got[1].method)
	assert.NotEmpty(t, rs.got[1].key)
}

func TestTransport_FlushKeepsServerErrors(t *testing.T) {
	tr, base, rs, srv := newTestTransport(t)
	rs.status["/bad"] = http.StatusBadRequest
	rs.status["/down"] = http.StatusServiceUnavailable
	client := &http.Client{Transport: tr}

	base.setDown(true)
	for _, p := range []string{"/ok", "/bad", "/down"} {
		resp, err := client.Post(srv.URL+p, "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()
	}
	base.setDown(false)

	err := tr.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	d, err := tr.Store.Load()
	require.NoError(t, err)
	require.Len(t, d.Queue, 1)
	assert.Equal(t, srv.URL+"/down", d.Queue[0].URL)

	rs.mu.Lock()
	delete(rs.status, "/down")
	rs.mu.Unlock()
	require.NoError(t, tr.Flush(context.Background()))
	n, _ := tr.Pending()
	assert.Zero(t, n)
}

func TestTransport_FlushKeepsWritesRejectedForAuthOrRate(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			tr, base, rs, srv := newTestTransport(t)
			rs.status["/transactions/create"] = code
			client := &http.Client{Transport: tr}

			base.setDown(true)
			resp, err := client.Post(srv.URL+"/transactions/create", "application/json", strings.NewReader(`{"n":1}`))
			require.NoError(t, err)
			resp.Body.Close()
			key := resp.Header.Get(IdempotencyHeader)
			base.setDown(false)

			err = tr.Flush(context.Background())
			require.Error(t, err)
			n, _ := tr.Pending()
			assert.Equal(t, 1, n, "write must survive a %d", code)

			// after logging in again the same write goes through
			rs.mu.Lock()
			delete(rs.status, "/transactions/create")
			rs.mu.Unlock()
			require.NoError(t, tr.Flush(context.Background()))
			n, _ = tr.Pending()
			assert.Zero(t, n)

			require.Len(t, rs.got, 2)
			assert.Equal(t, key, rs.got[0].key)
			assert.Equal(t, key, rs.got[1].key)
		})
	}
}

func TestRetryable(t *testing.T) {
	for _, code := range []int{400, 404, 409, 422} {
		assert.False(t, retryable(code), code)
	}
	for _, code := range []int{401, 403, 408, 429, 500, 502, 503} {
		assert.True(t, retryable(code), code)
	}
}

func TestTransport_OnlineWriteKeepsCallerKey(t *testing.T) {
	tr, _, rs, srv := newTestTransport(t)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/transactions/create", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyHeader, "caller-key")

	resp, err := (&http.Client{Transport: tr}).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, rs.got, 1)
	assert.Equal(t, "caller-key", rs.got[0].key)
	n, _ := tr.Pending()
	assert.Zero(t, n)
}

func TestClient_CreateTransaction(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"success","data":{"id":7,"description":"Mercado","amount":"12.5","type":"expense","category":"Alimentação","date":"2025-03-01T00:00:00Z"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", NewFileStore(filepath.Join(t.TempDir(), "kv.json")))
	got, err := c.CreateTransaction(context.Background(), TransactionInput{
		Description: "Mercado",
		Amount:      decimal.RequireFromString("12.5"),
		Type:        models.Expense,
		Category:    "Alimentação",
		Date:        "2025-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestClient_OfflineWriteIsQueued(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "tok", NewFileStore(filepath.Join(t.TempDir(), "kv.json")))
	_, err := c.CreateTransaction(context.Background(), TransactionInput{Description: "x", Type: models.Income})
	assert.ErrorIs(t, err, ErrQueued)

	d, err := c.Transport.Store.Load()
	require.NoError(t, err)
	require.Len(t, d.Queue, 1)
	assert.Empty(t, d.Queue[0].Header.Get("Authorization"), "tokens are added per attempt, never stored")
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"status":"error","message":"incorrect password or account ID"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", NewFileStore(filepath.Join(t.TempDir(), "kv.json")))
	err := c.Login(context.Background(), "ana", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "incorrect password or account ID", apiErr.Message)
}

func TestStartSyncer_BadSchedule(t *testing.T) {
	_, err := StartSyncer(&Transport{}, "not a schedule")
	assert.Error(t, err)
}
