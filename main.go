package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/vcscsvcscs/health-dashboard/internal/audit"
	"github.com/vcscsvcscs/health-dashboard/internal/azure"
	"github.com/vcscsvcscs/health-dashboard/internal/config"
	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/internal/handler"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/internal/store"
	"github.com/vcscsvcscs/health-dashboard/internal/view"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger, err := cfg.Logging.NewLogger(cfg.Server.IsProduction(), "dashboard-server")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("backend_url", cfg.Backend.URL),
	)

	loc, err := cfg.Display.Location()
	if err != nil {
		logger.Fatal("Failed to load display time zone", zap.Error(err))
	}

	client, err := gateway.NewClient(gateway.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize backend client", zap.Error(err))
	}

	// Workspaces and the audit list live in Redis when it is enabled
	var (
		kv     store.KV = store.NewMemoryKV()
		rdb    *redis.Client
		checks = map[string]handler.Pinger{}
	)
	if cfg.Redis.Enabled {
		rdb = store.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()

		redisKV := store.NewRedisKV(rdb, cfg.Redis.Prefix)
		if err := redisKV.Ping(context.Background()); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		logger.Info("Successfully connected to Redis", zap.String("addr", cfg.Redis.Addr))

		kv = redisKV
		checks["redis"] = redisKV
	} else {
		logger.Warn("Redis disabled, workspaces are kept in memory")
	}

	registry := view.NewRegistry(kv, view.RegistryConfig{
		Location:  loc,
		WindowTTL: cfg.Session.WorkspaceTTL,
	}, logger)
	auditLogger := audit.NewLogger(rdb, cfg.Audit.MaxEntries, logger)

	var archive azure.WorkbookArchive
	if cfg.Storage.Enabled() {
		blobClient, err := azure.NewBlobStorageClient(
			cfg.Storage.AccountName,
			cfg.Storage.AccountKey,
			cfg.Storage.ExportContainer,
			logger,
		)
		if err != nil {
			logger.Fatal("Failed to initialize Azure Blob Storage client", zap.Error(err))
		}
		archive = blobClient
	}

	// Initialize services
	authService := service.NewAuthService(client, registry, logger)
	dashboardService := service.NewDashboardService(client, logger)
	reportService := service.NewReportService(client, archive, loc, logger)
	patientService := service.NewPatientService(client, auditLogger, logger)
	adminService := service.NewAdminService(client, auditLogger, logger)

	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, logger),
		Dashboard: handler.NewDashboardHandler(dashboardService, registry, logger),
		Report:    handler.NewReportHandler(reportService, registry, logger),
		Patient:   handler.NewPatientHandler(patientService, logger),
		Admin:     handler.NewAdminHandler(adminService, logger),
		Audit:     handler.NewAuditHandler(auditLogger, logger),
		Health:    handler.NewHealthHandler(checks, logger),
		Verifier:  authService,
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := handler.NewRouter(handlers, handler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
