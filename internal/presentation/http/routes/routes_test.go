package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/studio-ledger/internal/application/service"
	"github.com/sangkips/studio-ledger/internal/config"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/infrastructure/database"
	"github.com/sangkips/studio-ledger/internal/infrastructure/repository"
	"github.com/sangkips/studio-ledger/internal/presentation/http/handler"
	"github.com/sangkips/studio-ledger/internal/presentation/http/middleware"
	"github.com/sangkips/studio-ledger/internal/presentation/http/routes"
	"github.com/sangkips/studio-ledger/pkg/metrics"
	"github.com/sangkips/studio-ledger/pkg/printer"
	"github.com/sangkips/studio-ledger/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

type paymentBody struct {
	Order struct {
		ID              uint            `json:"id"`
		Status          string          `json:"status"`
		PaidAmount      decimal.Decimal `json:"paid_amount"`
		RemainingAmount decimal.Decimal `json:"remaining_amount"`
		ReceiptNumber   string          `json:"receipt_number"`
	} `json:"order"`
	Receipt *struct {
		ID            uint            `json:"id"`
		ReceiptNumber string          `json:"receipt_number"`
		PaidAmount    decimal.Decimal `json:"paid_amount"`
	} `json:"receipt"`
}

type testServer struct {
	router   *gin.Engine
	jwt      *utils.JWTManager
	employee string
	manager  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "api.db"), false, log)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, log))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		App:       config.AppConfig{Name: "studio-ledger-test", Env: "test"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{Requests: 1000, Duration: 60},
	}
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	printJobRepo := repository.NewPrintJobRepository(db)
	photoSessionRepo := repository.NewPhotoSessionRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	photographerRepo := repository.NewPhotographerRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db, time.Second)

	registry := prometheus.NewRegistry()
	ledgerMetrics := metrics.NewLedger(registry)
	retry := service.RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}

	ledger := service.NewLedgerService(ledgerRepo, log, ledgerMetrics, retry)
	recon := service.NewReconciliationService(ledgerRepo, log, ledgerMetrics, retry)
	printerService := service.NewPrinterService(printer.NewNullPrinter(), ledger, receiptRepo, clientRepo, userRepo,
		service.PrinterSettings{Type: "none", Width: 32}, log)

	handlers := &routes.Handlers{
		Auth:         handler.NewAuthHandler(service.NewAuthService(userRepo, jwtManager, log)),
		User:         handler.NewUserHandler(service.NewUserService(userRepo)),
		Client:       handler.NewClientHandler(service.NewClientService(clientRepo, printJobRepo, photoSessionRepo, receiptRepo, ledger)),
		PrintJob:     handler.NewPrintJobHandler(service.NewPrintJobService(printJobRepo, clientRepo, ledger), ledger, printerService, log),
		PhotoSession: handler.NewPhotoSessionHandler(service.NewPhotoSessionService(photoSessionRepo, clientRepo, packageRepo, photographerRepo, ledger), ledger, printerService, log),
		Receipt:      handler.NewReceiptHandler(service.NewReceiptService(receiptRepo)),
		Catalog:      handler.NewCatalogHandler(service.NewCatalogService(packageRepo, photographerRepo)),
		Printer:      handler.NewPrinterHandler(printerService),
		Admin:        handler.NewAdminHandler(recon),
		Dashboard:    handler.NewDashboardHandler(service.NewDashboardService(repository.NewAnalyticsRepository(db))),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repository.NewIdempotencyRepository(db),
		Logger:          log,
		Gatherer:        registry,
	})

	srv := &testServer{router: router, jwt: jwtManager}
	srv.employee = srv.tokenFor(t, userRepo.Create, "desk", enum.UserRoleEmployee)
	srv.manager = srv.tokenFor(t, userRepo.Create, "owner", enum.UserRoleManager)
	return srv
}

func (s *testServer) tokenFor(t *testing.T, create func(context.Context, *entity.User) error, username string, role enum.UserRole) string {
	t.Helper()
	user := &entity.User{Username: username, Password: "x", Role: role, IsActive: true}
	require.NoError(t, create(context.Background(), user))
	token, err := s.jwt.GenerateAccessToken(user.ID, user.Username, string(role), role.Permissions())
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *testServer) createClient(t *testing.T, name string) uint {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/clients", s.employee, map[string]interface{}{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var client struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &client))
	return client.ID
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	w, _ := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = srv.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	srv := newTestServer(t)

	w, env := srv.do(t, http.MethodGet, "/api/v1/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = srv.do(t, http.MethodGet, "/api/v1/clients", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_PrintJobPaymentFlow(t *testing.T) {
	srv := newTestServer(t)
	clientID := srv.createClient(t, "Grace Muthoni")

	w, env := srv.do(t, http.MethodPost, "/api/v1/print-jobs", srv.employee, map[string]interface{}{
		"client_id":       clientID,
		"title":           "Graduation portraits",
		"print_type":      "digital",
		"size":            "A4",
		"quantity":        10,
		"total_amount":    "1000",
		"initial_payment": "400",
		"payment_method":  "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created paymentBody
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "partially_paid", created.Order.Status)
	assert.Regexp(t, `^PRN-\d{14}-\d+$`, created.Order.ReceiptNumber)
	require.NotNil(t, created.Receipt)
	assert.True(t, created.Receipt.PaidAmount.Equal(decimal.NewFromInt(400)))

	paymentsPath := fmt.Sprintf("/api/v1/print-jobs/%d/payments", created.Order.ID)
	payment := map[string]interface{}{"amount": "600", "payment_method": "mobile_money"}

	first, env := srv.do(t, http.MethodPost, paymentsPath, srv.employee, payment, middleware.IdempotencyKeyHeader, "final-payment")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	var paid paymentBody
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.Equal(t, "completed", paid.Order.Status)
	assert.True(t, paid.Order.RemainingAmount.IsZero())

	replay, _ := srv.do(t, http.MethodPost, paymentsPath, srv.employee, payment, middleware.IdempotencyKeyHeader, "final-payment")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	w, env = srv.do(t, http.MethodPost, paymentsPath, srv.employee, map[string]interface{}{"amount": "1", "payment_method": "cash"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_amount", env.Kind)

	w, env = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/print-jobs/%d/receipts?order=desc", created.Order.ID), srv.employee, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var receipts []struct {
		PaidAmount decimal.Decimal `json:"paid_amount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &receipts))
	require.Len(t, receipts, 2, "the replay must not record a second payment")
	assert.True(t, receipts[0].PaidAmount.Equal(decimal.NewFromInt(600)))

	w, env = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/clients/%d/total-remaining", clientID), srv.employee, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var total struct {
		TotalRemaining decimal.Decimal `json:"total_remaining"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &total))
	assert.True(t, total.TotalRemaining.IsZero())
}

func TestRoutes_IdempotencyKeyReusedWithDifferentBody(t *testing.T) {
	srv := newTestServer(t)
	clientID := srv.createClient(t, "Peter Ochieng")

	body := map[string]interface{}{
		"client_id":    clientID,
		"title":        "Flyers",
		"print_type":   "offset",
		"size":         "A4",
		"quantity":     500,
		"total_amount": "250",
	}
	w, _ := srv.do(t, http.MethodPost, "/api/v1/print-jobs", srv.employee, body, middleware.IdempotencyKeyHeader, "flyers")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body["quantity"] = 1000
	w, _ = srv.do(t, http.MethodPost, "/api/v1/print-jobs", srv.employee, body, middleware.IdempotencyKeyHeader, "flyers")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRoutes_LedgerErrorKinds(t *testing.T) {
	srv := newTestServer(t)

	w, env := srv.do(t, http.MethodPost, "/api/v1/photo-sessions/987/payments", srv.employee,
		map[string]interface{}{"amount": "50", "payment_method": "cash"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "order_not_found", env.Kind)

	clientID := srv.createClient(t, "Faith Wambui")
	w, env = srv.do(t, http.MethodPost, "/api/v1/photo-sessions", srv.employee, map[string]interface{}{
		"client_id":    clientID,
		"session_date": "2024-12-07",
		"event_type":   "wedding",
		"total_amount": "2000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session paymentBody
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "scheduled", session.Order.Status)

	w, _ = srv.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/photo-sessions/%d/status", session.Order.ID), srv.employee,
		map[string]interface{}{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/photo-sessions/%d/payments", session.Order.ID), srv.employee,
		map[string]interface{}{"amount": "100", "payment_method": "cash"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "order_in_terminal_state", env.Kind)

	w, env = srv.do(t, http.MethodPost, "/api/v1/print-jobs/abc/payments", srv.employee,
		map[string]interface{}{"amount": "100", "payment_method": "cash"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestRoutes_ManagerOnlyEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w, _ := srv.do(t, http.MethodPost, "/api/v1/admin/reconcile", srv.employee, map[string]interface{}{"repair": false})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = srv.do(t, http.MethodGet, "/api/v1/users", srv.employee, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := srv.do(t, http.MethodPost, "/api/v1/admin/reconcile", srv.manager, map[string]interface{}{"repair": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		OrdersChecked int               `json:"orders_checked"`
		Mismatches    []json.RawMessage `json:"mismatches"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Empty(t, report.Mismatches)
}

func TestRoutes_Dashboard(t *testing.T) {
	srv := newTestServer(t)
	clientID := srv.createClient(t, "Kevin Mwangi")

	w, _ := srv.do(t, http.MethodPost, "/api/v1/print-jobs", srv.employee, map[string]interface{}{
		"client_id":       clientID,
		"title":           "Wedding album prints",
		"print_type":      "digital",
		"size":            "A3",
		"quantity":        20,
		"total_amount":    "1500",
		"initial_payment": "500",
		"payment_method":  "bank_transfer",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = srv.do(t, http.MethodGet, "/api/v1/dashboard", srv.employee, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := srv.do(t, http.MethodGet, "/api/v1/dashboard?days=3", srv.manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats service.DashboardStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 1, stats.TotalClients)
	assert.EqualValues(t, 1, stats.OpenOrders)
	assert.True(t, stats.TotalOutstanding.Equal(decimal.NewFromInt(1000)), "got %s", stats.TotalOutstanding)
	assert.True(t, stats.CollectedToday.Equal(decimal.NewFromInt(500)), "got %s", stats.CollectedToday)
	require.Len(t, stats.DailyCollections, 3)
	assert.True(t, stats.DailyCollections[2].Collected.Equal(decimal.NewFromInt(500)))
	require.Len(t, stats.CollectionsByMethod, 1)
	assert.Equal(t, enum.PaymentMethodBankTransfer, stats.CollectionsByMethod[0].Method)
	require.Len(t, stats.TopDebtors, 1)
	assert.Equal(t, clientID, stats.TopDebtors[0].ClientID)

	w, _ = srv.do(t, http.MethodGet, "/api/v1/dashboard?days=abc", srv.manager, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutes_MalformedAmountsAreInvalidAmount(t *testing.T) {
	srv := newTestServer(t)
	clientID := srv.createClient(t, "Brian Kiprono")

	w, env := srv.do(t, http.MethodPost, "/api/v1/print-jobs", srv.employee, map[string]interface{}{
		"client_id":    clientID,
		"title":        "Banner",
		"print_type":   "large_format",
		"size":         "A1",
		"quantity":     1,
		"total_amount": "300",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var job paymentBody
	require.NoError(t, json.Unmarshal(env.Data, &job))
	paymentsPath := fmt.Sprintf("/api/v1/print-jobs/%d/payments", job.Order.ID)

	for _, amount := range []interface{}{"abc", "", true, nil, map[string]int{"value": 1}} {
		t.Run(fmt.Sprintf("payment %v", amount), func(t *testing.T) {
			w, env := srv.do(t, http.MethodPost, paymentsPath, srv.employee,
				map[string]interface{}{"amount": amount, "payment_method": "cash"})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "invalid_amount", env.Kind, w.Body.String())
		})
	}

	w, env = srv.do(t, http.MethodPost, paymentsPath, srv.employee, map[string]interface{}{"payment_method": "cash"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_amount", env.Kind)

	create := func(field string, value interface{}) map[string]interface{} {
		body := map[string]interface{}{
			"client_id":      clientID,
			"title":          "Posters",
			"print_type":     "digital",
			"size":           "A3",
			"quantity":       20,
			"total_amount":   "100",
			"payment_method": "cash",
		}
		body[field] = value
		return body
	}
	for _, field := range []string{"initial_payment", "total_amount"} {
		w, env = srv.do(t, http.MethodPost, "/api/v1/print-jobs", srv.employee, create(field, "lots"))
		assert.Equal(t, http.StatusBadRequest, w.Code, field)
		assert.Equal(t, "invalid_amount", env.Kind, field)
	}

	w, env = srv.do(t, http.MethodPost, "/api/v1/photo-sessions", srv.employee, map[string]interface{}{
		"client_id":       clientID,
		"session_date":    "2024-11-02",
		"event_type":      "portrait",
		"total_amount":    "500",
		"initial_payment": false,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_amount", env.Kind)

	w, env = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/clients/%d/print-jobs", clientID), srv.employee, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var jobs []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &jobs))
	assert.Len(t, jobs, 1, "rejected creates leave no order behind")
}
