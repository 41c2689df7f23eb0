package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"finance_io/internal/models"
	"finance_io/internal/repositories"
	"finance_io/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[int]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[int]models.User{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return u, repositories.ErrDuplicate
		}
	}
	u.ID = len(f.users) + 1
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return u, repositories.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByLogin(_ context.Context, login string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == login || u.Username == login {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID int, hashed string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Password = hashed
	f.users[userID] = u
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	done chan struct{}
}

func (m *recordingMailer) Send(to, subject, body string, _ ...string) error {
	m.mu.Lock()
	m.sent = append(m.sent, to)
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return nil
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestSignupAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	mailer := &recordingMailer{done: make(chan struct{}, 1)}
	h := &Handler{Users: newFakeUsers(), Mailer: mailer}

	rr := httptest.NewRecorder()
	h.Signup(rr, httptest.NewRequest(http.MethodPost, "/users/signup",
		strings.NewReader(`{"email":"Ana@Example.com","username":"Ana","password":"s3cret-pass"}`)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body := decode(t, rr)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ana@example.com", data["email"])
	assert.NotContains(t, data, "password")

	<-mailer.done
	assert.Equal(t, []string{"ana@example.com"}, mailer.sent)

	rr = httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/users/login",
		strings.NewReader(`{"account_id":"ana","password":"s3cret-pass"}`)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body = decode(t, rr)
	assert.NotEmpty(t, body["token"])
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "Bearer", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSignup_Validation(t *testing.T) {
	h := &Handler{Users: newFakeUsers()}

	tests := []struct {
		name string
		body string
		code int
	}{
		{"blank field", `{"email":"a@b.com","username":"","password":"longenough"}`, http.StatusBadRequest},
		{"bad email", `{"email":"nope","username":"ana","password":"longenough"}`, http.StatusBadRequest},
		{"short password", `{"email":"a@b.com","username":"ana","password":"short"}`, http.StatusBadRequest},
		{"unknown field", `{"email":"a@b.com","username":"ana","password":"longenough","is_pro":true}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Signup(rr, httptest.NewRequest(http.MethodPost, "/users/signup", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

func TestSignup_Duplicate(t *testing.T) {
	h := &Handler{Users: newFakeUsers()}
	body := `{"email":"a@b.com","username":"ana","password":"longenough"}`

	rr := httptest.NewRecorder()
	h.Signup(rr, httptest.NewRequest(http.MethodPost, "/users/signup", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	h.Signup(rr, httptest.NewRequest(http.MethodPost, "/users/signup", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := newFakeUsers()
	hash, err := utils.HashPassword("right-password")
	require.NoError(t, err)
	_, err = users.CreateUser(context.Background(), models.User{Email: "a@b.com", Username: "ana", Password: hash})
	require.NoError(t, err)

	h := &Handler{Users: users}
	for _, body := range []string{
		`{"account_id":"ana","password":"wrong-password"}`,
		`{"account_id":"nobody","password":"right-password"}`,
	} {
		rr := httptest.NewRecorder()
		h.Login(rr, httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(body)))
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "incorrect password or account ID")
	}
}

func TestMeAndUpdatePassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	users := newFakeUsers()
	hash, err := utils.HashPassword("old-password")
	require.NoError(t, err)
	u, err := users.CreateUser(context.Background(), models.User{Email: "a@b.com", Username: "ana", Password: hash, IsPro: true})
	require.NoError(t, err)

	h := &Handler{Users: users}
	authed := func(method, path, body string) *http.Request {
		r := httptest.NewRequest(method, path, strings.NewReader(body))
		return r.WithContext(utils.WithUserID(r.Context(), u.ID))
	}

	rr := httptest.NewRecorder()
	h.Me(rr, authed(http.MethodGet, "/users/me", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	data := decode(t, rr)["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_pro"])

	rr = httptest.NewRecorder()
	h.UpdatePassword(rr, authed(http.MethodPatch, "/users/updatepassword",
		`{"current_password":"not-it","new_password":"new-password"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.UpdatePassword(rr, authed(http.MethodPatch, "/users/updatepassword",
		`{"current_password":"old-password","new_password":"new-password"}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	stored, _ := users.GetUserByID(context.Background(), u.ID)
	assert.NoError(t, utils.VerifyPassword("new-password", stored.Password))
}

func TestLogoutClearsCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	(&Handler{}).Logout(rr, httptest.NewRequest(http.MethodPost, "/users/logout", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
}

func TestMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	(&Handler{}).Login(rr, httptest.NewRequest(http.MethodGet, "/users/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
