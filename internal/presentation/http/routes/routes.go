package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/studio-ledger/internal/config"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/internal/presentation/http/handler"
	"github.com/sangkips/studio-ledger/internal/presentation/http/middleware"
	"github.com/sangkips/studio-ledger/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Client       *handler.ClientHandler
	PrintJob     *handler.PrintJobHandler
	PhotoSession *handler.PhotoSessionHandler
	Receipt      *handler.ReceiptHandler
	Catalog      *handler.CatalogHandler
	Printer      *handler.PrinterHandler
	Admin        *handler.AdminHandler
	Dashboard    *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *zap.Logger
	// Gatherer serves /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer
	// Done stops background cleanup of the rate limiter
	Done <-chan struct{}
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	router.Use(middleware.SanitizeInput())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	metricsHandler := promhttp.Handler()
	if deps.Gatherer != nil {
		metricsHandler = promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})
	}
	router.GET("/metrics", gin.WrapH(metricsHandler))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFrom(
		deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration,
	))
	if deps.Done != nil {
		go rateLimiter.Run(deps.Done)
	}

	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		Logger: logger,
	})

	v1 := router.Group("/api/v1")
	{
		// Public routes, limited per client IP
		auth := v1.Group("/auth")
		auth.Use(rateLimiter.Middleware())
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, idempotency)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/change-password", h.Auth.ChangePassword)

	registerUserRoutes(protected, h)
	registerClientRoutes(protected, h)
	registerPrintJobRoutes(protected, h, idempotency)
	registerPhotoSessionRoutes(protected, h, idempotency)
	registerReceiptRoutes(protected, h)
	registerCatalogRoutes(protected, h)
	registerPrinterRoutes(protected, h)

	protected.GET("/dashboard", middleware.RequirePermission(enum.PermViewReports), h.Dashboard.GetStats)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(string(enum.UserRoleManager)))
	admin.POST("/reconcile", middleware.RequirePermission(enum.PermReconcile), h.Admin.Reconcile)
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequirePermission(enum.PermManageUsers))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
	}
}

func registerClientRoutes(protected *gin.RouterGroup, h *Handlers) {
	clients := protected.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.GET("/:id", h.Client.Get)
		clients.GET("/:id/total-remaining", h.Client.TotalRemaining)
		clients.GET("/:id/print-jobs", h.Client.PrintJobs)
		clients.GET("/:id/photo-sessions", h.Client.PhotoSessions)
		clients.GET("/:id/receipts", h.Client.Receipts)

		write := clients.Group("")
		write.Use(middleware.RequirePermission(enum.PermManageClients))
		write.POST("", h.Client.Create)
		write.PUT("/:id", h.Client.Update)
		write.DELETE("/:id", h.Client.Delete)
	}
}

func registerPrintJobRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	jobs := protected.Group("/print-jobs")
	{
		jobs.GET("", h.PrintJob.List)
		jobs.GET("/:id", h.PrintJob.Get)
		jobs.GET("/:id/remaining", h.PrintJob.Remaining)
		jobs.GET("/:id/receipts", h.PrintJob.Receipts)

		manage := middleware.RequirePermission(enum.PermManageOrders)
		jobs.POST("", manage, idempotency, h.PrintJob.Create)
		jobs.PUT("/:id", manage, h.PrintJob.Update)
		jobs.PATCH("/:id/status", manage, h.PrintJob.ChangeStatus)
		jobs.DELETE("/:id", manage, h.PrintJob.Delete)

		jobs.POST("/:id/payments", middleware.RequirePermission(enum.PermRecordPayments), idempotency, h.PrintJob.RecordPayment)
	}
}

func registerPhotoSessionRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	sessions := protected.Group("/photo-sessions")
	{
		sessions.GET("", h.PhotoSession.List)
		sessions.GET("/:id", h.PhotoSession.Get)
		sessions.GET("/:id/remaining", h.PhotoSession.Remaining)
		sessions.GET("/:id/receipts", h.PhotoSession.Receipts)

		manage := middleware.RequirePermission(enum.PermManageOrders)
		sessions.POST("", manage, idempotency, h.PhotoSession.Create)
		sessions.PUT("/:id", manage, h.PhotoSession.Update)
		sessions.PATCH("/:id/status", manage, h.PhotoSession.ChangeStatus)
		sessions.DELETE("/:id", manage, h.PhotoSession.Delete)

		sessions.POST("/:id/payments", middleware.RequirePermission(enum.PermRecordPayments), idempotency, h.PhotoSession.RecordPayment)
	}
}

func registerReceiptRoutes(protected *gin.RouterGroup, h *Handlers) {
	receipts := protected.Group("/receipts")
	{
		receipts.GET("", h.Receipt.List)
		receipts.GET("/:id", h.Receipt.Get)
		receipts.GET("/number/:number", h.Receipt.GetByNumber)
	}
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	manage := middleware.RequirePermission(enum.PermManageCatalog)

	packages := protected.Group("/packages")
	{
		packages.GET("", h.Catalog.ListPackages)
		packages.GET("/:id", h.Catalog.GetPackage)
		packages.POST("", manage, h.Catalog.CreatePackage)
		packages.PUT("/:id", manage, h.Catalog.UpdatePackage)
		packages.DELETE("/:id", manage, h.Catalog.DeactivatePackage)
	}

	photographers := protected.Group("/photographers")
	{
		photographers.GET("", h.Catalog.ListPhotographers)
		photographers.GET("/:id", h.Catalog.GetPhotographer)
		photographers.POST("", manage, h.Catalog.CreatePhotographer)
		photographers.PUT("/:id", manage, h.Catalog.UpdatePhotographer)
		photographers.DELETE("/:id", manage, h.Catalog.DeactivatePhotographer)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printer := protected.Group("/printer")
	printer.Use(middleware.RequirePermission(enum.PermPrintDocuments))
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
		printer.POST("/receipt", h.Printer.PrintReceipt)
		printer.POST("/statement", h.Printer.PrintStatement)
		printer.POST("/final-invoice", h.Printer.PrintFinalInvoice)
	}
}
