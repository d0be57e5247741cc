package handler

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/health-dashboard/internal/middleware"
	"go.uber.org/zap"
)

// Handlers groups every endpoint of the dashboard server
type Handlers struct {
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Report    *ReportHandler
	Patient   *PatientHandler
	Admin     *AdminHandler
	Audit     *AuditHandler
	Health    *HealthHandler
	Verifier  SessionVerifier
}

// RouterConfig holds router-level settings
type RouterConfig struct {
	AllowedOrigins []string
}

// NewRouter wires middleware and routes
func NewRouter(h Handlers, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(logger))
	router.Use(middleware.ErrorLoggingMiddleware(logger))
	router.Use(middleware.SessionMiddleware())
	router.Use(middleware.AuditClientMiddleware())

	v1 := router.Group("/api/v1")

	v1.GET("/health", h.Health.GetHealth)
	v1.POST("/auth/login", h.Auth.Login)

	authed := v1.Group("", middleware.RequireSession())
	{
		authed.POST("/auth/logout", h.Auth.Logout)

		authed.GET("/dashboard", h.Dashboard.GetDashboard)

		authed.GET("/reports", h.Report.GetReports)
		authed.GET("/reports/export", h.Report.ExportReports)
		authed.GET("/reports/patient/:id", h.Report.GetPatientReports)

		authed.GET("/patients", h.Patient.ListPatients)
		authed.GET("/patients/:id", h.Patient.GetPatient)
		authed.POST("/patients", h.Patient.CreatePatient)
		authed.PUT("/patients/:id", h.Patient.UpdatePatient)
		authed.DELETE("/patients/:id", h.Patient.DeletePatient)

		authed.GET("/admins", h.Admin.ListAdmins)
		authed.POST("/admins", h.Admin.CreateAdmin)
		authed.PUT("/admins/:id", h.Admin.UpdateAdmin)
		authed.DELETE("/admins/:id", h.Admin.DeleteAdmin)
	}

	// served from local state only, so the token is checked with the backend first
	verified := authed.Group("", requireVerified(h.Verifier, logger))
	{
		verified.GET("/dashboard/latest", h.Dashboard.GetLatestDashboard)
		verified.GET("/dashboard/window", h.Dashboard.GetWindow)
		verified.PUT("/dashboard/window", h.Dashboard.PutWindow)
		verified.POST("/dashboard/window/reset", h.Dashboard.ResetWindow)

		verified.GET("/reports/archive/*path", h.Report.DownloadArchivedExport)

		verified.GET("/audit", h.Audit.GetAuditEntries)
	}

	return router
}

// corsConfig allows every origin when none or "*" is configured
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID", ArchivePathHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
