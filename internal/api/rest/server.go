package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/KevinKickass/OpenIOLink/internal/api/websocket"
	"github.com/KevinKickass/OpenIOLink/internal/auth"
	"github.com/KevinKickass/OpenIOLink/internal/config"
	"github.com/KevinKickass/OpenIOLink/internal/interfaces"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	lm     interfaces.LifecycleManager
	logger *zap.Logger
	server *http.Server
	wsHub  *websocket.Hub
	auth   *auth.Service // nil: auth disabled
}

// NewServer builds the router. authSvc may be nil, which leaves every route open.
func NewServer(cfg *config.Config, lm interfaces.LifecycleManager, logger *zap.Logger, wsHub *websocket.Hub, authSvc *auth.Service) *Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	s := &Server{
		router: gin.New(),
		lm:     lm,
		logger: logger,
		wsHub:  wsHub,
		auth:   authSvc,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(s.lm.Metrics().Handler()))

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// ==================== AUTH ====================
		if s.auth != nil {
			v1.POST("/auth/login", s.login)
		}

		// ==================== SYSTEM ====================
		system := v1.Group("/system")
		{
			system.GET("/status", s.getSystemStatus)
			system.POST("/reload", s.protect(auth.PermSystemReload, s.reloadSpecs)...)
		}

		// ==================== DEVICE SPECS ====================
		specs := v1.Group("/specs")
		{
			specs.GET("", s.listSpecs)
			specs.GET("/:name", s.getSpec)
			specs.POST("/validate", s.validateSpec)
			specs.POST("", s.protect(auth.PermSpecsWrite, s.registerSpec)...)
			specs.DELETE("/:name", s.protect(auth.PermSpecsWrite, s.deleteSpec)...)
		}

		// ==================== VENDORS ====================
		vendors := v1.Group("/vendors")
		{
			vendors.GET("", s.listVendors)
			vendors.GET("/:vendor", s.getVendor)
		}

		// ==================== DECODING ====================
		v1.POST("/decode", s.decode)
		v1.POST("/ports/decode", s.decodePort)
		v1.GET("/masters", s.listMasters)

		// ==================== WEBSOCKET ====================
		ws := v1.Group("/ws")
		{
			ws.GET("/live", s.wsLiveConnection)
			ws.GET("/status", s.wsStatus)
		}
	}
}

// protect prepends token and permission checks when auth is enabled.
func (s *Server) protect(perm auth.Permission, h gin.HandlerFunc) []gin.HandlerFunc {
	if s.auth == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{s.auth.Middleware(), auth.RequirePermission(perm), h}
}

// WebSocket handlers
func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": s.wsHub.GetClientCount(),
	})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}
