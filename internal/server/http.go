package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	accessservice "github.com/aldersonarchive/archive-backend/internal/access/service"
	"github.com/aldersonarchive/archive-backend/internal/auth"
	authmiddleware "github.com/aldersonarchive/archive-backend/internal/auth/middleware"
	authservice "github.com/aldersonarchive/archive-backend/internal/auth/service"
	catalogservice "github.com/aldersonarchive/archive-backend/internal/catalog/service"
	"github.com/aldersonarchive/archive-backend/internal/conf"
	"github.com/aldersonarchive/archive-backend/internal/pkg/logger"
	"github.com/aldersonarchive/archive-backend/internal/pkg/redis"
	userservice "github.com/aldersonarchive/archive-backend/internal/user/service"
)

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

// Services groups the HTTP services wired into the router
type Services struct {
	Auth        *authservice.AuthService
	User        *userservice.UserService
	Item        *catalogservice.ItemService
	Contributor *catalogservice.ContributorService
	Access      *accessservice.AccessService
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	jwtManager *auth.JWTManager,
	redisClient *redis.Client,
	services Services,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log))
	router.Use(authmiddleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")

	// Public routes with per-IP rate limiting
	services.Auth.RegisterRoutes(api,
		authmiddleware.RegisterRateLimiter(redisClient, log),
		authmiddleware.LoginRateLimiter(redisClient, log),
	)

	// Everything else requires a verified token
	authed := api.Group("", authmiddleware.JWTAuth(jwtManager, log))
	requireAdmin := authmiddleware.RequireAdmin()

	services.User.RegisterRoutes(authed, requireAdmin)
	services.Item.RegisterRoutes(authed, requireAdmin)
	services.Contributor.RegisterRoutes(authed, requireAdmin)
	services.Access.RegisterRoutes(authed)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
