package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos-api/internal/config"
)

// Headers the billing counter always sends
var requiredHeaders = []string{ShopIDHeader, IdempotencyKeyHeader}

// CORSMiddleware creates a CORS middleware with the provided configuration
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     slices.Clone(cfg.AllowedHeaders),
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID", "X-Idempotency-Replayed"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// Counter terminals run the web client locally
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}
	}

	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}

	if len(corsConfig.AllowHeaders) == 0 {
		corsConfig.AllowHeaders = []string{"Accept", "Content-Type", "Origin", "X-Request-ID"}
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(corsConfig.AllowHeaders, h) {
			corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, h)
		}
	}

	return cors.New(corsConfig)
}
