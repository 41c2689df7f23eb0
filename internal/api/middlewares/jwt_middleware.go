package middlewares

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"finance_io/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
)

// bearerToken reads the token from the Bearer cookie set at login, falling
// back to an Authorization header for non-browser clients.
func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie("Bearer"); err == nil && cookie.Value != "" {
		return strings.TrimPrefix(cookie.Value, "Bearer ")
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			utils.WriteError(w, "Unauthorized: Missing Bearer token", http.StatusUnauthorized)
			return
		}

		jwtSecret := os.Getenv("JWT_SECRET")

		parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				utils.WriteError(w, "token expired", http.StatusUnauthorized)
				return
			}
			utils.Logger.WithError(err).Debug("rejected JWT")
			utils.WriteError(w, "invalid login token", http.StatusUnauthorized)
			return
		}

		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok || !parsedToken.Valid {
			utils.WriteError(w, "invalid login token", http.StatusUnauthorized)
			return
		}

		if _, ok := claims["uid"].(float64); !ok {
			utils.WriteError(w, "invalid login token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), utils.RoleKey, claims["role"])
		ctx = context.WithValue(ctx, utils.ExpiresAtKey, claims["exp"])
		ctx = context.WithValue(ctx, utils.UsernameKey, claims["user"])
		ctx = context.WithValue(ctx, utils.UserIDKey, claims["uid"])

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
