package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/sangkips/studio-ledger/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSanitizeInput_StripsMarkupKeepsNumbers(t *testing.T) {
	router := gin.New()
	router.Use(SanitizeInput())

	var got map[string]interface{}
	var raw string
	router.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		raw = string(b)
		require.NoError(t, json.Unmarshal(b, &got))
		c.Status(http.StatusNoContent)
	})

	body := `{"notes":"<script>alert(1)</script>Paid & signed","amount":1234.567890123456789,"tags":["<b>vip</b>"]}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "Paid & signed", got["notes"])
	assert.Equal(t, []interface{}{"vip"}, got["tags"])
	assert.Contains(t, raw, "1234.567890123456789")
}

func TestSanitizeInput_RejectsMalformedJSON(t *testing.T) {
	router := gin.New()
	router.Use(SanitizeInput())
	router.POST("/echo", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"amount":`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2, CleanupInterval: time.Minute, EntryTTL: time.Minute})
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_CleanupDropsStaleEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfigFrom(60, 60))
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.getLimiter("ip:10.0.0.1")
	now = now.Add(rl.entryTTL + time.Second)
	rl.getLimiter("ip:10.0.0.2")
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "ip:10.0.0.2")
}

func TestAuthMiddleware_AndPermissions(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", time.Hour, time.Hour)
	router := gin.New()
	router.Use(AuthMiddleware(jwtManager))
	router.POST("/payments", RequirePermission(enum.PermRecordPayments), func(c *gin.Context) { c.Status(http.StatusCreated) })
	router.POST("/reconcile", RequireRole(string(enum.UserRoleManager)), func(c *gin.Context) { c.Status(http.StatusOK) })

	employee := enum.UserRoleEmployee
	token, err := jwtManager.GenerateAccessToken(uuid.New(), "desk", string(employee), employee.Permissions())
	require.NoError(t, err)
	refresh, err := jwtManager.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/payments", "", http.StatusUnauthorized},
		{"wrong scheme", "/payments", "Basic " + token, http.StatusUnauthorized},
		{"refresh token rejected", "/payments", "Bearer " + refresh, http.StatusUnauthorized},
		{"employee records payment", "/payments", "Bearer " + token, http.StatusCreated},
		{"employee is not a manager", "/reconcile", "Bearer " + token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

type memoryIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func newMemoryIdempotencyRepo() *memoryIdempotencyRepo {
	return &memoryIdempotencyRepo{keys: make(map[string]*entity.IdempotencyKey)}
}

func (r *memoryIdempotencyRepo) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[userID.String()+key]
	if !ok || k.IsExpired() {
		return nil, nil
	}
	return k, nil
}

func (r *memoryIdempotencyRepo) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := ikey.UserID.String() + ikey.Key
	if k, ok := r.keys[id]; ok && !k.IsExpired() {
		return apperror.NewConflictError("Idempotency key already used")
	}
	stored := *ikey
	r.keys[id] = &stored
	return nil
}

func (r *memoryIdempotencyRepo) Complete(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *ikey
	r.keys[ikey.UserID.String()+ikey.Key] = &stored
	return nil
}

func (r *memoryIdempotencyRepo) Release(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.keys, ikey.UserID.String()+ikey.Key)
	return nil
}

func (r *memoryIdempotencyRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	user := uuid.New()
	calls := 0

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", user)
		c.Next()
	})
	router.Use(Idempotency(IdempotencyConfig{Repo: newMemoryIdempotencyRepo()}))
	router.POST("/print-jobs/:id/payments", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"receipt": calls})
	})
	router.POST("/photo-sessions/:id/payments", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{})
	})

	send := func(path, body, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send("/print-jobs/1/payments", `{"amount":"50"}`, "k1")
	require.Equal(t, http.StatusCreated, first.Code)

	replay := send("/print-jobs/1/payments", `{"amount":"50"}`, "k1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, 1, calls)

	mismatch := send("/print-jobs/1/payments", `{"amount":"75"}`, "k1")
	assert.Equal(t, http.StatusUnprocessableEntity, mismatch.Code)

	otherEndpoint := send("/photo-sessions/1/payments", `{"amount":"50"}`, "k1")
	assert.Equal(t, http.StatusUnprocessableEntity, otherEndpoint.Code)

	unkeyed := send("/print-jobs/1/payments", `{"amount":"50"}`, "")
	assert.Equal(t, http.StatusCreated, unkeyed.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ClaimBlocksDuplicateWhileRunning(t *testing.T) {
	user := uuid.New()
	repo := newMemoryIdempotencyRepo()

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", user)
		c.Next()
	})
	router.Use(Idempotency(IdempotencyConfig{Repo: repo}))

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/print-jobs/1/payments", strings.NewReader(`{"amount":"50"}`))
		req.Header.Set(IdempotencyKeyHeader, key)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	var duplicate *httptest.ResponseRecorder
	calls := 0
	router.POST("/print-jobs/:id/payments", func(c *gin.Context) {
		calls++
		if duplicate == nil {
			// a retry lands while the first request still holds the key
			duplicate = send("k1")
		}
		c.JSON(http.StatusCreated, gin.H{"receipt": calls})
	})

	first := send("k1")
	require.Equal(t, http.StatusCreated, first.Code)
	require.NotNil(t, duplicate)
	assert.Equal(t, http.StatusConflict, duplicate.Code)
	assert.Equal(t, 1, calls)

	stored, err := repo.GetByKey(context.Background(), "k1", user)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsPending())
	assert.Equal(t, http.StatusCreated, stored.ResponseCode)
}

func TestIdempotency_FailedRequestReleasesClaim(t *testing.T) {
	user := uuid.New()
	repo := newMemoryIdempotencyRepo()
	fail := true

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", user)
		c.Next()
	})
	router.Use(Idempotency(IdempotencyConfig{Repo: repo}))
	router.POST("/photo-sessions/:id/payments", func(c *gin.Context) {
		if fail {
			c.JSON(http.StatusConflict, gin.H{"kind": "concurrent_modification"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{})
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/photo-sessions/4/payments", strings.NewReader(`{"amount":"10"}`))
		req.Header.Set(IdempotencyKeyHeader, "retry-me")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusConflict, send())
	left, err := repo.GetByKey(context.Background(), "retry-me", user)
	require.NoError(t, err)
	assert.Nil(t, left)

	fail = false
	assert.Equal(t, http.StatusCreated, send())
}

func TestMergeHeaders_AddsMissingOnce(t *testing.T) {
	got := mergeHeaders([]string{"Accept", "authorization"}, []string{"Authorization", IdempotencyKeyHeader})
	assert.Equal(t, []string{"Accept", "authorization", IdempotencyKeyHeader}, got)
}
