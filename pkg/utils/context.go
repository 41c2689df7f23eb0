package utils

import "context"

type ContextKey string

const (
	UserIDKey    ContextKey = "userId"
	UsernameKey  ContextKey = "username"
	RoleKey      ContextKey = "role"
	ExpiresAtKey ContextKey = "expiresAt"
	RequestIDKey ContextKey = "requestId"
)

// UserIDFromContext reads the uid claim stored by the JWT middleware.
// JSON numbers decode as float64, so both representations are accepted.
func UserIDFromContext(ctx context.Context) (int, bool) {
	switch v := ctx.Value(UserIDKey).(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, UserIDKey, float64(userID))
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
