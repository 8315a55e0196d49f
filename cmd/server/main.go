package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/docs"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/config"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/database"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/handlers"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/interest"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/logging"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/metrics"
	mW "github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/middleware"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/services"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/storage"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/store"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/valuation"
)

// @title Gadai Biru Pawnshop API
// @version 1.0
// @description Loan ledger for pawned collateral: customers, transactions, extensions, repayments and dashboard reporting.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg := config.Load(".env")

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWT.SecretKey == "" {
		logger.Fatal("JWT_SECRET_KEY must be set")
	}
	if err := cfg.Loan.Validate(); err != nil {
		logger.Fatal("Invalid LOAN_EXTENSION_PAYMENT_TYPE", zap.Error(err))
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.HTTP.Port

	ctx := context.Background()

	db, err := database.InitDB(ctx, database.GetConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := database.InitRedis(ctx, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	st := store.New(db)
	policy := interest.NewPolicy(cfg.Loan.InterestRate, models.PaymentType(cfg.Loan.ExtensionPaymentType), cfg.Loan.InterestOnlyExtensionDays)
	engine := valuation.NewEngine(cfg.Valuation.DefaultPercentage)

	loanService := services.NewLoanService(st, policy, engine, cfg.Loan.NumberRetryLimit, logger, m)
	customerService := services.NewCustomerService(st, logger)
	reportService := services.NewReportService(st, redisClient, cfg.Reports.StatsCacheTTL, cfg.Reports.InventoryPageSize, logger, m)

	// Every ledger write makes the cached dashboard stale.
	loanService.OnLedgerChange(reportService.InvalidateStats)
	customerService.OnLedgerChange(reportService.InvalidateStats)

	photos := storage.NewLocal(cfg.Storage.Root, cfg.Storage.PublicPrefix, cfg.Storage.MaxUploadMB, logger)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	r.Use(mW.HTTPMetrics(m, logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		if err := db.PingContext(r.Context()); err != nil {
			status = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Stored photos
	r.Handle(photos.PublicPrefix+"/*", http.StripPrefix(photos.PublicPrefix, mW.StaticFileServer(cfg.Storage.Root)))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mW.AuthMiddleware([]byte(cfg.JWT.SecretKey)))

		handlers.Routes(r,
			handlers.NewUserHandler(st),
			handlers.NewCustomerHandler(customerService),
			handlers.NewTransactionHandler(loanService),
			handlers.NewReportHandler(reportService),
			handlers.NewUploadHandler(photos, photos.MaxBytes),
		)
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
