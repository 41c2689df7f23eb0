package routers

import (
	"net/http"

	"finance_io/internal/api/handlers/auth"
)

func usersRouter(h *auth.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/users/signup", h.Signup)
	mux.HandleFunc("/users/login", h.Login)
	mux.HandleFunc("/users/logout", h.Logout)
	mux.HandleFunc("/users/me", h.Me)
	mux.HandleFunc("/users/updatepassword", h.UpdatePassword)

	return mux
}
