package middlewares

import (
	"net/http"

	"finance_io/pkg/utils"

	"github.com/rs/cors"
)

const defaultAllowedOrigin = "http://localhost:8080"

// Cors restricts cross-origin calls to ALLOWED_ORIGINS (comma separated).
func Cors() func(http.Handler) http.Handler {
	origins := utils.GetEnvList("ALLOWED_ORIGINS", []string{defaultAllowedOrigin})
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler
}
