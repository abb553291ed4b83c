package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"

	"github.com/ncnwin/backoffice-api/internal/config"
	"github.com/ncnwin/backoffice-api/internal/database"
	"github.com/ncnwin/backoffice-api/internal/handlers"
	"github.com/ncnwin/backoffice-api/internal/jobs"
	"github.com/ncnwin/backoffice-api/internal/middleware"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/internal/services"
	"github.com/ncnwin/backoffice-api/internal/storage"
	"github.com/ncnwin/backoffice-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Run migrations and seed the chart of accounts on first run
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	if err := database.SeedChartOfAccounts(db); err != nil {
		logger.Error("Failed to seed chart of accounts", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg)

	// The auto-posting engine refuses to start with a broken account mapping
	if err := svcs.Posting.ValidateRoles(context.Background()); err != nil {
		logger.Error("Account role validation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Validated posting account roles")

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// User management
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Create)
				admin.GET("/users/:id", h.User.Show)
				admin.PUT("/users/:id/active", h.User.SetActive)

				// Chart of accounts management
				admin.POST("/accounts", h.Accounting.CreateAccount)
				admin.PUT("/accounts/:id/deactivate", h.Accounting.DeactivateAccount)

				// Audit log
				admin.GET("/audits", h.Audit.Index)

				// Worker stats
				admin.GET("/health/worker", h.Health.WorkerStats)
			}

			protected.POST("/auth/change_password", h.Auth.ChangePassword)

			// Customers
			customers := protected.Group("/customers")
			{
				customers.GET("", h.Customer.Index)
				customers.POST("", h.Customer.Create)
				customers.GET("/:id", h.Customer.Show)
				customers.PUT("/:id", h.Customer.Update)
				customers.DELETE("/:id", h.Customer.Destroy)
				customers.POST("/:id/contacts", h.Customer.CreateContact)
				customers.PUT("/:id/contacts/:contact_id", h.Customer.UpdateContact)
				customers.DELETE("/:id/contacts/:contact_id", h.Customer.DestroyContact)
			}

			// Suppliers
			suppliers := protected.Group("/suppliers")
			{
				suppliers.GET("", h.Supplier.Index)
				suppliers.POST("", h.Supplier.Create)
				suppliers.GET("/:id", h.Supplier.Show)
				suppliers.PUT("/:id", h.Supplier.Update)
				suppliers.DELETE("/:id", h.Supplier.Destroy)
				suppliers.POST("/:id/contacts", h.Supplier.CreateContact)
				suppliers.PUT("/:id/contacts/:contact_id", h.Supplier.UpdateContact)
				suppliers.DELETE("/:id/contacts/:contact_id", h.Supplier.DestroyContact)
			}

			// Sales documents
			documents := protected.Group("/documents")
			{
				documents.GET("", h.Document.Index)
				documents.POST("", h.Document.Create)
				documents.GET("/:id", h.Document.Show)
				documents.PUT("/:id", h.Document.Update)
				documents.DELETE("/:id", h.Document.Destroy)
				documents.POST("/:id/issue", h.Document.Issue)
				documents.POST("/:id/mark_paid", h.Document.MarkPaid)
				documents.POST("/:id/cancel", h.Document.Cancel)
				documents.POST("/:id/convert", h.Document.Convert)
			}

			// Purchase orders
			purchaseOrders := protected.Group("/purchase_orders")
			{
				purchaseOrders.GET("", h.PurchaseOrder.Index)
				purchaseOrders.POST("", h.PurchaseOrder.Create)
				purchaseOrders.GET("/:id", h.PurchaseOrder.Show)
				purchaseOrders.PUT("/:id", h.PurchaseOrder.Update)
				purchaseOrders.DELETE("/:id", h.PurchaseOrder.Destroy)
				purchaseOrders.POST("/:id/order", h.PurchaseOrder.Order)
				purchaseOrders.POST("/:id/deliver", h.PurchaseOrder.Deliver)
				purchaseOrders.POST("/:id/cancel", h.PurchaseOrder.Cancel)
			}

			// Inventory
			inventory := protected.Group("/inventory")
			{
				// Static routes first so "alerts" is not matched as :id
				inventory.GET("/alerts", h.Inventory.IndexAlerts)
				inventory.PUT("/alerts/:alert_id/dismiss", h.Inventory.DismissAlert)

				inventory.GET("", h.Inventory.Index)
				inventory.POST("", h.Inventory.Create)
				inventory.GET("/:id", h.Inventory.Show)
				inventory.PUT("/:id", h.Inventory.Update)
				inventory.DELETE("/:id", h.Inventory.Destroy)
				inventory.GET("/:id/movements", h.Inventory.IndexMovements)
				inventory.POST("/:id/movements", h.Inventory.CreateMovement)
			}

			// Accounting
			protected.GET("/accounts", h.Accounting.IndexAccounts)
			journal := protected.Group("/journal_entries")
			{
				journal.GET("", h.Accounting.IndexEntries)
				journal.POST("", h.Accounting.CreateEntry)
				journal.GET("/:id", h.Accounting.ShowEntry)
				journal.PUT("/:id", h.Accounting.UpdateEntry)
				journal.DELETE("/:id", h.Accounting.DestroyEntry)
			}

			// Financial statements
			statements := protected.Group("/statements")
			{
				statements.GET("/trial_balance", h.Accounting.TrialBalance)
				statements.GET("/profit_and_loss", h.Accounting.ProfitAndLoss)
				statements.GET("/balance_sheet", h.Accounting.BalanceSheet)
			}

			// Exports
			exports := protected.Group("/exports")
			{
				exports.GET("/trial_balance_csv", h.Accounting.ExportTrialBalanceCSV)
				exports.GET("/trial_balance_xlsx", h.Accounting.ExportTrialBalanceXLSX)
				exports.GET("/journal_csv", h.Accounting.ExportJournalCSV)
				exports.GET("/statements_pdf", h.Accounting.ExportStatementsPDF)
			}

			// Expenses
			expenses := protected.Group("/expenses")
			{
				// Static route first so "totals" is not matched as :id
				expenses.GET("/totals", h.Expense.CategoryTotals)

				expenses.GET("", h.Expense.Index)
				expenses.POST("", h.Expense.Create)
				expenses.GET("/:id", h.Expense.Show)
				expenses.PUT("/:id", h.Expense.Update)
				expenses.DELETE("/:id", h.Expense.Destroy)
				expenses.POST("/:id/receipt", h.Expense.AttachReceipt)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Sweep stock and expiry alerts hourly, starting right away
	worker.ScheduleEveryImmediate(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Sweeping inventory alerts...")
		return svcs.Inventory.SweepAlerts(ctx)
	})

	// Verify ledger integrity daily
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Auditing ledger...")
		return svcs.Accounting.AuditLedger(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
