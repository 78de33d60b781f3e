package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/serverlist/internal/api/dto"
	"github.com/martijn/serverlist/internal/api/handler"
	"github.com/martijn/serverlist/internal/api/middleware"
	"github.com/martijn/serverlist/internal/core/service"
	"github.com/martijn/serverlist/pkg/config"
	"github.com/rs/zerolog"
)

type Server struct {
	router *gin.Engine
	srv    *http.Server
	config *config.Config
	logger zerolog.Logger
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	logger zerolog.Logger,
	authService *service.AuthService,
	serverService *service.ServerService,
) *Server {
	// Set Gin mode
	if !cfg.IsDevMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = false

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandlerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	registerRoutes(router, authService, serverService)

	return &Server{
		router: router,
		config: cfg,
		logger: logger,
	}
}

func registerRoutes(router *gin.Engine, authService *service.AuthService, serverService *service.ServerService) {
	authHandler := handler.NewAuthHandler(authService)
	serverHandler := handler.NewServerHandler(serverService)

	// Public routes (no auth required)
	auth := router.Group("/auth")
	{
		auth.POST("/authorize", authHandler.Authorize)
		auth.POST("/token", authHandler.Token)
	}

	// Anonymous access allowed, a bearer token when present must be valid
	servers := router.Group("/api/servers")
	servers.Use(middleware.OptionalAuthMiddleware(authService))
	{
		servers.GET("/select", serverHandler.ListServers)
		servers.GET("/select/", serverHandler.ListServers)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{
			Status: "ok",
			Time:   time.Now().Format(time.RFC3339),
		})
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.APIHost, s.config.APIPort)

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start with or without SSL
	if s.config.SSLCert != "" && s.config.SSLKey != "" {
		s.logger.Info().Str("addr", addr).Msg("starting HTTPS server")
		return s.srv.ListenAndServeTLS(s.config.SSLCert, s.config.SSLKey)
	}

	s.logger.Info().Str("addr", addr).Msg("starting HTTP server")
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
