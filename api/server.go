package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/code-geek/ai-project-template/internal/config"
	"github.com/code-geek/ai-project-template/internal/health"
	"github.com/code-geek/ai-project-template/internal/identity"
)

// Server represents the API server
type Server struct {
	router   *gin.Engine
	logger   *zap.Logger
	cfg      *config.Config
	identity *identity.Service
	health   *health.Checker
}

// NewServer creates the API server with its full middleware chain and
// route table.
func NewServer(cfg *config.Config, logger *zap.Logger, identitySvc *identity.Service, healthChecker *health.Checker) *Server {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		logger:   logger,
		cfg:      cfg,
		identity: identitySvc,
		health:   healthChecker,
	}

	router := gin.New()

	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware(cfg.App.Name))
	router.Use(server.allowedHostsMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(server.metricsMiddleware())
	router.Use(server.errorMiddleware())

	server.router = router
	server.registerRoutes()
	return server
}

// Router returns the internal Gin engine for embedding and testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Bare infrastructure probes
	s.router.GET("/health", s.livenessHandler)
	s.router.GET("/ready", s.readinessHandler)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.GET("/health/", s.livenessHandler)
		api.GET("/health/db/", s.databaseHealthHandler)
		api.GET("/health/cache/", s.cacheHealthHandler)
		api.GET("/health/ready/", s.readinessHandler)

		auth := api.Group("/auth")
		{
			auth.POST("/register/", s.registerHandler)
			auth.POST("/login/", s.loginHandler)
			auth.GET("/me/", s.authMiddleware(), s.currentUserHandler)
		}

		users := api.Group("/users", s.authMiddleware())
		{
			users.GET("/profile/", s.getProfileHandler)
			users.PUT("/profile/", s.updateProfileHandler)
			users.PUT("/password/", s.changePasswordHandler)
			users.DELETE("/", s.deleteAccountHandler)
		}

		// API documentation (ReDoc over the static OpenAPI document)
		api.GET("/docs/openapi.yaml", func(c *gin.Context) {
			c.File("docs/openapi.yaml")
		})
		api.GET("/docs", func(c *gin.Context) {
			html := `<!DOCTYPE html>
			<html>
			<head>
			  <title>API Docs</title>
			  <meta charset="utf-8" />
			  <meta name="viewport" content="width=device-width, initial-scale=1">
			  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
			</head>
			<body>
			  <redoc spec-url='/api/docs/openapi.yaml'></redoc>
			</body>
			</html>`
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		})
	}
}
