package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"finance_io/pkg/utils"
)

// DBTimeout bounds every store call made while serving a request.
const DBTimeout = 5 * time.Second

const maxBodyBytes = 1 << 20

func CheckBlankFields(value interface{}) error {
	val := reflect.ValueOf(value)
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if field.Kind() == reflect.String && strings.TrimSpace(field.String()) == "" {
			return utils.ErrorHandler(errors.New("all fields are required"), "all fields are required")
		}
	}
	return nil
}

// DecodeJSON strictly decodes a size-limited request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid or unexpected fields in body: %w", err)
	}
	return nil
}

// UserID returns the authenticated user, writing a 401 when there is none.
func UserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

// PathID parses the named path value as a positive integer, writing a 400
// on failure.
func PathID(w http.ResponseWriter, r *http.Request, name, label string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		utils.WriteError(w, "invalid "+label+" ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// AllowMethods writes a 405 unless the request uses one of methods.
func AllowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	return false
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t, nil
}
