// Package api wires the HTTP routes of the liquidity crisis dashboard.
package api

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"liquidity-crisis/internal/api/handlers"
	"liquidity-crisis/internal/api/middleware"
	"liquidity-crisis/internal/config"
	"liquidity-crisis/internal/data"
	"liquidity-crisis/internal/metrics"
	"liquidity-crisis/internal/pipeline"
	"liquidity-crisis/internal/predict"

	"github.com/gin-gonic/gin"
)

// Deps are the long-lived objects shared by every request.
type Deps struct {
	Config  *config.Config
	Model   *predict.Handle
	Cache   *data.ResultCache[*pipeline.Result]
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Config.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = d.Config.Server.MaxUploadBytes

	// Apply middleware
	router.Use(middleware.CORS(d.Config.Server.AllowedOrigins))
	router.Use(middleware.Logger(d.Logger))
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(middleware.ErrorHandler(d.Logger))

	engine := pipeline.New(d.Model, d.Config, d.Metrics, d.Logger)

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(engine, d.Cache, d.Config.Server.MaxUploadBytes, d.Logger)
	modelHandler := handlers.NewModelHandler(d.Model, d.Config)

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/model", modelHandler.GetModel)

		v1.POST("/groups", analysisHandler.ListGroups)
		v1.POST("/overview", analysisHandler.Overview)

		v1.POST("/analyses", analysisHandler.RunAnalysis)
		v1.GET("/analyses/:id", analysisHandler.GetAnalysis)
		v1.GET("/analyses/:id/export", analysisHandler.ExportAnalysis)
		v1.GET("/analyses/:id/chart.png", analysisHandler.RenderChart)
	}

	serveStatic(router, d.Config.Server.StaticDir, d.Logger)
	return router
}

// serveStatic serves a built frontend from dir, if it exists, with SPA fallback.
func serveStatic(router *gin.Engine, dir string, logger *slog.Logger) {
	if _, err := os.Stat(dir); err != nil {
		logger.Info("Static directory not found, skipping static file serving", slog.String("dir", dir))
		router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		})
		return
	}

	router.Static("/assets", dir+"/assets")
	router.StaticFile("/favicon.ico", dir+"/favicon.ico")

	// Serve index.html for all non-API routes (SPA routing)
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(dir + "/index.html")
	})
	logger.Info("Serving static files", slog.String("dir", dir))
}
