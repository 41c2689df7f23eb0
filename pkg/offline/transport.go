package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"finance_io/pkg/utils"

	"github.com/google/uuid"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// CacheHeader marks a GET answered from the local cache.
	CacheHeader = "X-Offline-Cache"

	offlineMessage = "Dados serão sincronizados quando houver conexão"
)

// Transport is an http.RoundTripper that tries the network first.
// Failed GETs are answered from cache; failed POST/PUT are queued and
// answered with 202 {"status":"offline"}.
type Transport struct {
	Base  http.RoundTripper
	Store *FileStore
	Now   func() time.Time

	flushMu sync.Mutex
}

func NewTransport(store *FileStore) *Transport {
	return &Transport{Base: http.DefaultTransport, Store: store}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch req.Method {
	case http.MethodGet:
		return t.roundTripRead(req)
	case http.MethodPost, http.MethodPut:
		return t.roundTripWrite(req)
	}
	return t.base().RoundTrip(req)
}

func (t *Transport) roundTripRead(req *http.Request) (*http.Response, error) {
	key := req.URL.String()

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		data, loadErr := t.Store.Load()
		if loadErr != nil {
			return nil, errors.Join(err, loadErr)
		}
		cached, ok := data.Cache[key]
		if !ok {
			return nil, err
		}
		utils.Logger.Warnf("offline: serving cached %s", key)
		h := cached.Header.Clone()
		if h == nil {
			h = http.Header{}
		}
		h.Set(CacheHeader, "true")
		return newResponse(req, cached.StatusCode, h, cached.Body), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	err = t.Store.Update(func(d *Data) error {
		d.Cache[key] = CachedResponse{
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       body,
			StoredAt:   t.now(),
		}
		return nil
	})
	if err != nil {
		utils.Logger.Errorf("offline: caching %s: %v", key, err)
	}
	return resp, nil
}

func (t *Transport) roundTripWrite(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	out := req.Clone(req.Context())
	if out.Header.Get(IdempotencyHeader) == "" {
		out.Header.Set(IdempotencyHeader, uuid.NewString())
	}
	out.Body = io.NopCloser(bytes.NewReader(body))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	out.ContentLength = int64(len(body))

	resp, err := t.base().RoundTrip(out)
	if err == nil {
		return resp, nil
	}

	item := QueuedRequest{
		ID:       out.Header.Get(IdempotencyHeader),
		Method:   out.Method,
		URL:      out.URL.String(),
		Header:   out.Header.Clone(),
		Body:     body,
		QueuedAt: t.now(),
	}
	if qErr := t.Store.Update(func(d *Data) error {
		d.Queue = append(d.Queue, item)
		return nil
	}); qErr != nil {
		return nil, errors.Join(err, qErr)
	}
	utils.Logger.Warnf("offline: queued %s %s (%s): %v", item.Method, item.URL, item.ID, err)

	payload, _ := json.Marshal(map[string]string{"status": "offline", "message": offlineMessage})
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set(IdempotencyHeader, item.ID)
	return newResponse(req, http.StatusAccepted, h, payload), nil
}

func newResponse(req *http.Request, status int, h http.Header, body []byte) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// Pending is the number of queued writes.
func (t *Transport) Pending() (int, error) {
	d, err := t.Store.Load()
	if err != nil {
		return 0, err
	}
	return len(d.Queue), nil
}

// Flush replays queued writes in order, one at a time. Delivered items and
// items the server rejected as invalid are dropped; network failures, 5xx
// and the retryable 4xx answers stay queued. The returned error joins every
// failure.
func (t *Transport) Flush(ctx context.Context) error {
	t.flushMu.Lock()
	defer t.flushMu.Unlock()

	data, err := t.Store.Load()
	if err != nil {
		return err
	}
	if len(data.Queue) == 0 {
		return nil
	}

	done := map[string]bool{}
	var errs []error
	for _, item := range data.Queue {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		status, err := t.replay(ctx, item)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s %s: %w", item.Method, item.URL, err))
		case retryable(status):
			errs = append(errs, fmt.Errorf("%s %s: server answered %d", item.Method, item.URL, status))
		case status >= 400:
			utils.Logger.Warnf("offline: dropping %s %s rejected with %d", item.Method, item.URL, status)
			done[item.ID] = true
		default:
			done[item.ID] = true
		}
	}

	if len(done) > 0 {
		// writes queued while flushing are kept
		err := t.Store.Update(func(d *Data) error {
			kept := d.Queue[:0]
			for _, q := range d.Queue {
				if !done[q.ID] {
					kept = append(kept, q)
				}
			}
			d.Queue = kept
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
		utils.Logger.Infof("offline: synced %d of %d queued writes", len(done), len(data.Queue))
	}

	return errors.Join(errs...)
}

// retryable reports whether a queued write may succeed later: server errors,
// an expired or missing login, timeouts and rate limiting.
func retryable(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

func (t *Transport) replay(ctx context.Context, item QueuedRequest) (int, error) {
	req, err := http.NewRequestWithContext(ctx, item.Method, item.URL, bytes.NewReader(item.Body))
	if err != nil {
		return 0, err
	}
	for k, v := range item.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	req.Header.Set(IdempotencyHeader, item.ID)

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}
