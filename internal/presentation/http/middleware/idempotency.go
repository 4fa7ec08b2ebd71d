package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader  = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid by default
	IdempotencyKeyTTL     = 24 * time.Hour
	// IdempotencyPendingTTL frees a key whose request never finished
	IdempotencyPendingTTL = time.Minute

	maxIdempotencyKeyLength = 255
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	TTL  time.Duration
	Now  func() time.Time
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a request already processed
// under the same Idempotency-Key. Requests without the header run normally,
// so every plain resubmission is a new request.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	if config.TTL <= 0 {
		config.TTL = IdempotencyKeyTTL
	}
	if config.Now == nil {
		config.Now = func() time.Time { return time.Now().UTC() }
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			response.BadRequest(c, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Invalid request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		hash := hex.EncodeToString(sum[:])

		endpoint := c.Request.Method + " " + c.FullPath()
		ctx := c.Request.Context()

		existing, err := config.Repo.GetByKey(ctx, key, endpoint)
		if err != nil {
			log.Printf("Idempotency lookup for %q failed: %v", key, err)
			c.Next()
			return
		}

		if existing != nil && existing.IsExpired(config.Now()) {
			if _, err := config.Repo.DeleteExpired(ctx, config.Now()); err != nil {
				log.Printf("Idempotency cleanup failed: %v", err)
			}
			existing = nil
		}
		if existing != nil {
			respondStored(c, existing, hash)
			return
		}

		// Hold the key while the request runs so a concurrent duplicate
		// sees it instead of running too.
		pending := &entity.IdempotencyKey{
			Key:         key,
			Endpoint:    endpoint,
			RequestHash: hash,
			ExpiresAt:   config.Now().Add(min(config.TTL, IdempotencyPendingTTL)),
		}
		if err := config.Repo.Create(ctx, pending); err != nil {
			holder, gerr := config.Repo.GetByKey(ctx, key, endpoint)
			if gerr == nil && holder != nil {
				respondStored(c, holder, hash)
				return
			}
			log.Printf("Idempotency reserve for %q failed: %v", key, err)
			c.Next()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// The reservation is settled even when the client has gone away
		ctx = context.WithoutCancel(ctx)

		// Only successful responses are replayed; failures may be retried
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			if err := config.Repo.Release(ctx, pending.ID); err != nil {
				log.Printf("Idempotency release for %q failed: %v", key, err)
			}
			return
		}

		pending.ResponseCode = status
		pending.ResponseBody = blw.body.String()
		pending.ExpiresAt = config.Now().Add(config.TTL)
		if err := config.Repo.Complete(ctx, pending); err != nil {
			log.Printf("Idempotency store for %q failed: %v", key, err)
		}
	}
}

// respondStored answers from a key that is already held: a conflict while
// the first request is still running, otherwise its stored response.
func respondStored(c *gin.Context, stored *entity.IdempotencyKey, hash string) {
	if stored.RequestHash != "" && stored.RequestHash != hash {
		response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used with a different request body")
		c.Abort()
		return
	}
	if stored.IsPending() {
		response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is still being processed")
		c.Abort()
		return
	}
	c.Header("X-Idempotency-Replayed", "true")
	c.Data(stored.ResponseCode, "application/json; charset=utf-8", []byte(stored.ResponseBody))
	c.Abort()
}
