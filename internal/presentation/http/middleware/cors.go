package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/studio-ledger/internal/config"
)

// Headers the front desk client must be able to send
var requiredRequestHeaders = []string{"Authorization", "Content-Type", IdempotencyKeyHeader, "X-Request-ID"}

// Headers the ledger sets that browsers may read
var exposedHeaders = []string{
	"Content-Length",
	"X-Request-ID",
	"X-Idempotency-Replayed",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"Retry-After",
}

// CORSMiddleware creates a CORS middleware with the provided configuration
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    exposedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*" {
		// credentials cannot be combined with a wildcard origin
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}

	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}
	}

	corsConfig.AllowHeaders = mergeHeaders(append([]string{"Accept", "Origin"}, corsConfig.AllowHeaders...), requiredRequestHeaders)

	return cors.New(corsConfig)
}

func mergeHeaders(have, want []string) []string {
	seen := make(map[string]bool, len(have))
	for _, h := range have {
		seen[http.CanonicalHeaderKey(h)] = true
	}
	for _, h := range want {
		if !seen[http.CanonicalHeaderKey(h)] {
			have = append(have, h)
			seen[http.CanonicalHeaderKey(h)] = true
		}
	}
	return have
}
