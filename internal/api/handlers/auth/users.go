package auth

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"finance_io/internal/api/handlers"
	"finance_io/internal/models"
	"finance_io/internal/repositories"
	"finance_io/pkg/utils"
)

const minPasswordLength = 8

type UserStore interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUserByID(ctx context.Context, id int) (models.User, error)
	GetUserByLogin(ctx context.Context, login string) (models.User, error)
	UpdatePassword(ctx context.Context, userID int, hashed string) error
}

type Handler struct {
	Users  UserStore
	Mailer utils.Mailer
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Now().Add(24 * time.Hour),
		SameSite: http.SameSiteStrictMode,
	})
}

func publicUser(u models.User) models.User {
	u.Password = ""
	return u
}

// FUNC TO REGISTER USERS
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}

	type signupRequest struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req signupRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handlers.CheckBlankFields(req); err != nil {
		utils.WriteError(w, "missing required fields", http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	if _, err := mail.ParseAddress(req.Email); err != nil {
		utils.WriteError(w, "invalid email address", http.StatusBadRequest)
		return
	}
	if len(req.Password) < minPasswordLength {
		utils.WriteError(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	hashedPwd, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Logger.WithError(err).Error("error hashing password")
		utils.WriteError(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	user, err := h.Users.CreateUser(ctx, models.User{
		Email:    req.Email,
		Username: req.Username,
		Password: hashedPwd,
		Role:     "user",
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			utils.WriteError(w, "email or username already exists", http.StatusConflict)
			return
		}
		utils.Logger.Errorf("failed to insert user: %v", err)
		utils.WriteError(w, "error signing up", http.StatusInternalServerError)
		return
	}

	utils.SendWelcomeEmail(h.Mailer, user.Email, user.Username)
	utils.Logger.WithField("user_id", user.ID).Info("user signed up")

	utils.WriteSuccess(w, http.StatusCreated, "account created successfully", publicUser(user))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}

	type loginRequest struct {
		AccountID string `json:"account_id"`
		Password  string `json:"password"`
	}

	var req loginRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.AccountID == "" || req.Password == "" {
		utils.WriteError(w, "email or username and password are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	user, err := h.Users.GetUserByLogin(ctx, strings.ToLower(strings.TrimSpace(req.AccountID)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.WriteError(w, "incorrect password or account ID", http.StatusForbidden)
			return
		}
		utils.Logger.Errorf("database query error: %v", err)
		utils.WriteError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := utils.VerifyPassword(req.Password, user.Password); err != nil {
		if !errors.Is(err, utils.ErrPasswordMismatch) {
			utils.Logger.WithError(err).WithField("user_id", user.ID).Error("stored password hash is malformed")
		}
		utils.WriteError(w, "incorrect password or account ID", http.StatusForbidden)
		return
	}

	tokenString, err := utils.SignToken(user.ID, user.Username, user.Role)
	if err != nil {
		utils.Logger.WithError(err).Error("could not create login token")
		utils.WriteError(w, "error signing in", http.StatusInternalServerError)
		return
	}

	setAuthCookie(w, tokenString)

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "login successful",
		"token":   tokenString,
		"user":    publicUser(user),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPost) {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Unix(0, 0),
		SameSite: http.SameSiteStrictMode,
	})

	utils.WriteSuccess(w, http.StatusOK, "logged out successfully", nil)
}

// Me returns the authenticated user's profile including the Pro flag.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	user, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.WriteError(w, "user not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error fetching user %d: %v", userID, err)
		utils.WriteError(w, "error fetching user", http.StatusInternalServerError)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "", publicUser(user))
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodPatch) {
		return
	}

	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	var req models.UpdatePasswordRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, "all fields are required", http.StatusBadRequest)
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		utils.WriteError(w, "please enter all fields", http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		utils.WriteError(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	user, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		utils.WriteError(w, "user not found", http.StatusNotFound)
		return
	}

	if err := utils.VerifyPassword(req.CurrentPassword, user.Password); err != nil {
		utils.WriteError(w, "the password you entered does not match the current password", http.StatusBadRequest)
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Logger.Error("failed to hash password")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.Users.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		utils.Logger.Errorf("failed to update password for user %d: %v", userID, err)
		utils.WriteError(w, "failed to update password", http.StatusInternalServerError)
		return
	}

	token, err := utils.SignToken(userID, user.Username, user.Role)
	if err != nil {
		utils.Logger.Error("could not create token")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	setAuthCookie(w, token)
	utils.WriteSuccess(w, http.StatusOK, "password updated successfully", nil)
}
