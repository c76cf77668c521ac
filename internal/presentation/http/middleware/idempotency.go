package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// IdempotencyClaimTTL bounds how long a claim left by a crashed request
	// blocks its key
	IdempotencyClaimTTL = 2 * time.Minute
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger *zap.Logger
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

// Idempotency replays the stored response of a POST that carried the same
// Idempotency-Key, so a retried payment is never recorded twice. Requests
// without the header pass through. The key row is claimed in the database
// before the handler runs, so a duplicate arriving at any API instance while
// the first is running gets 409. Only 2xx responses are kept; any other
// outcome releases the claim so the client can retry.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}
		if len(idempotencyKey) > 255 {
			response.BadRequest(c, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		userIDValue, exists := c.Get(ctxUserID)
		if !exists {
			c.Next()
			return
		}
		userID, ok := userIDValue.(uuid.UUID)
		if !ok {
			c.Next()
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
		requestHash := hex.EncodeToString(sum[:])
		endpoint := c.Request.Method + " " + c.FullPath()

		ctx := c.Request.Context()
		existing, err := config.Repo.GetByKey(ctx, idempotencyKey, userID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if existing != nil {
			if existing.Endpoint != endpoint || (existing.RequestHash != "" && existing.RequestHash != requestHash) {
				response.Abort(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used for a different request")
				return
			}
			if existing.IsPending() {
				response.Abort(c, http.StatusConflict, "A request with this Idempotency-Key is in progress")
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		claim := &entity.IdempotencyKey{
			Key:         idempotencyKey,
			UserID:      userID,
			Endpoint:    endpoint,
			RequestHash: requestHash,
			ExpiresAt:   time.Now().Add(IdempotencyClaimTTL),
		}
		if err := config.Repo.Create(ctx, claim); err != nil {
			if apperror.GetAppError(err).Code == http.StatusConflict {
				response.Abort(c, http.StatusConflict, "A request with this Idempotency-Key is in progress")
				return
			}
			response.Error(c, err)
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// the write is committed by now, so record it even if the client left
		ctx = context.WithoutCancel(ctx)
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			if err := config.Repo.Release(ctx, claim); err != nil {
				logger.Warn("failed to release idempotency key", zap.String("endpoint", endpoint), zap.Error(err))
			}
			return
		}

		claim.ResponseCode = status
		claim.ResponseBody = blw.body.String()
		claim.ExpiresAt = time.Now().Add(IdempotencyKeyTTL)
		if err := config.Repo.Complete(ctx, claim); err != nil {
			logger.Warn("failed to store idempotency key",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
	}
}
