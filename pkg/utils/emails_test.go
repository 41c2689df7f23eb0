package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type chanMailer struct {
	sent chan string
	err  error
}

func (m *chanMailer) Send(to, subject, body string, _ ...string) error {
	m.sent <- to
	return m.err
}

func TestEmailTemplates(t *testing.T) {
	subject, body := WelcomeEmail("ana")
	assert.Contains(t, subject, "ana")
	assert.Contains(t, body, "ana")

	subject, body = ProActivatedEmail("ana", "PayPal", "BRL 19.90", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, subject, "PRO")
	assert.Contains(t, body, "PayPal")
	assert.Contains(t, body, "BRL 19.90")

	subject, body = ReportEmail("<ana>", "Mensal", "linha 1\nlinha <2>")
	assert.Contains(t, subject, "Mensal")
	assert.Contains(t, body, "&lt;ana&gt;")
	assert.Contains(t, body, "linha 1<br/>linha &lt;2&gt;")
}

func TestSendAsync(t *testing.T) {
	m := &chanMailer{sent: make(chan string, 1), err: errors.New("smtp down")}
	SendAsync(m, "ana@example.com", "s", "b")

	select {
	case to := <-m.sent:
		assert.Equal(t, "ana@example.com", to)
	case <-time.After(time.Second):
		t.Fatal("mail was not sent")
	}

	SendAsync(nil, "ana@example.com", "s", "b")
}

func TestSendEmail_InvalidPort(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")
	assert.Error(t, SendEmail("ana@example.com", "s", "b"))
}

func TestWriteHelpers(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, "boom", http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.JSONEq(t, `{"status":"error","message":"boom"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	WriteSuccess(rr, http.StatusCreated, "created", map[string]int{"id": 1})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"status":"success","message":"created","data":{"id":1}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	WriteSuccess(rr, http.StatusOK, "", nil)
	assert.JSONEq(t, `{"status":"success"}`, rr.Body.String())
}

func TestContextHelpers(t *testing.T) {
	ctx := WithUserID(context.Background(), 9)
	id, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, 9, id)

	_, ok = UserIDFromContext(context.Background())
	assert.False(t, ok)

	ctx = context.WithValue(context.Background(), RequestIDKey, "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestErrorHandler(t *testing.T) {
	assert.NoError(t, ErrorHandler(nil, "ignored"))
	base := errors.New("root")
	err := ErrorHandler(base, "loading")
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "loading: root", err.Error())
}
