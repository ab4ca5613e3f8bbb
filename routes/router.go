package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/config"
	"github.com/vizcard/vizcard/controllers"
	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/services"
	"github.com/vizcard/vizcard/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	analyticsService := services.NewAnalyticsService(db)
	qrService := services.NewQRCodeService(cfg.BaseURL, 0)
	batchService := services.NewBatchQRService(db, qrService)
	exportService := services.NewExportService(db, qrService)

	authController := controllers.NewAuthController(db)
	cardController := controllers.NewCardController(db, qrService)
	publicController := controllers.NewPublicController(db, analyticsService, qrService)
	analyticsController := controllers.NewAnalyticsController(db, analyticsService)
	contactController := controllers.NewContactController(db)
	batchController := controllers.NewBatchController(batchService)
	exportController := controllers.NewExportController(exportService)
	templateController := controllers.NewTemplateController(db)
	adminController := controllers.NewAdminController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public card surface: every page view is recorded
	publicGroup := api.Group("")
	publicGroup.Use(middleware.RateLimitMiddleware())
	publicGroup.GET("/card/:id", publicController.ViewCard)
	publicGroup.GET("/card/:id/qr", publicController.QRCode)
	publicGroup.GET("/vcard/:id", publicController.DownloadVCard)
	publicGroup.POST("/card/:id/contact", contactController.Submit)

	api.GET("/templates", cardController.ListTemplates)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/cards", cardController.ListCards)
	protected.POST("/cards", cardController.CreateCard)
	protected.GET("/cards/:id", cardController.GetCard)
	protected.PUT("/cards/:id", cardController.UpdateCard)
	protected.DELETE("/cards/:id", cardController.DeleteCard)
	protected.POST("/cards/:id/logo", cardController.UploadLogo)
	protected.GET("/cards/:id/qr", cardController.QRCode)
	protected.GET("/cards/:id/export/pdf", exportController.ExportPDF)
	protected.GET("/cards/:id/export/png", exportController.ExportPNG)

	protected.GET("/templates/custom", templateController.ListCustom)
	protected.POST("/templates/custom", templateController.CreateCustom)
	protected.PUT("/templates/custom/:id", templateController.UpdateCustom)
	protected.DELETE("/templates/custom/:id", templateController.DeleteCustom)

	protected.GET("/analytics/dashboard", analyticsController.Dashboard)
	protected.GET("/analytics/cards/:id", analyticsController.CardStats)
	protected.GET("/analytics/cards/:id/trend", analyticsController.CardTrend)

	protected.GET("/messages", contactController.Inbox)
	protected.PATCH("/messages/:id/read", contactController.MarkRead)

	protected.POST("/qr/batch", batchController.Generate)
	protected.POST("/qr/batch/export", batchController.Export)

	protected.GET("/admin/stats", adminController.GetStats)
	protected.GET("/admin/email-log", adminController.ListEmailLog)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		// SPA entry for share links like /card/42
		ctx.Status(http.StatusOK)
		ctx.File("./static/index.html")
	})

	return r
}
