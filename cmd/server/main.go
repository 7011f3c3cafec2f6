package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	accessbiz "github.com/aldersonarchive/archive-backend/internal/access/biz"
	accessdata "github.com/aldersonarchive/archive-backend/internal/access/data"
	accessservice "github.com/aldersonarchive/archive-backend/internal/access/service"
	"github.com/aldersonarchive/archive-backend/internal/auth"
	authbiz "github.com/aldersonarchive/archive-backend/internal/auth/biz"
	authservice "github.com/aldersonarchive/archive-backend/internal/auth/service"
	catalogbiz "github.com/aldersonarchive/archive-backend/internal/catalog/biz"
	catalogdata "github.com/aldersonarchive/archive-backend/internal/catalog/data"
	catalogservice "github.com/aldersonarchive/archive-backend/internal/catalog/service"
	"github.com/aldersonarchive/archive-backend/internal/conf"
	"github.com/aldersonarchive/archive-backend/internal/data"
	"github.com/aldersonarchive/archive-backend/internal/pkg/logger"
	"github.com/aldersonarchive/archive-backend/internal/server"
	userbiz "github.com/aldersonarchive/archive-backend/internal/user/biz"
	userdata "github.com/aldersonarchive/archive-backend/internal/user/data"
	userservice "github.com/aldersonarchive/archive-backend/internal/user/service"
)

var configFile = flag.String("config", "config.yaml", "config file path")

func main() {
	flag.Parse()

	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(&config.Log); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	fileStore := catalogdata.NewMinIOFileStore(d.MinIOClient, config.MinIO.Bucket)
	if err := fileStore.EnsureBucket(context.Background()); err != nil {
		log.Fatal("failed to prepare storage bucket", zap.Error(err))
	}

	// Repositories
	userRepo := userdata.NewUserRepo(d.DB.DB)
	itemRepo := catalogdata.NewItemRepo(d.DB.DB)
	contributorRepo := catalogdata.NewContributorRepo(d.DB.DB)
	accessRepo := accessdata.NewAccessRepo(d.DB.DB)

	// Use cases
	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer)
	authUseCase := authbiz.NewAuthUseCase(userRepo, jwtManager)
	userUseCase := userbiz.NewUserUseCase(userRepo)
	itemUseCase := catalogbiz.NewItemUseCase(itemRepo, fileStore, config.MinIO.URLExpiry)
	contributorUseCase := catalogbiz.NewContributorUseCase(contributorRepo)
	accessUseCase := accessbiz.NewAccessUseCase(accessRepo)

	// Services
	services := server.Services{
		Auth:        authservice.NewAuthService(authUseCase, log),
		User:        userservice.NewUserService(userUseCase, log),
		Item:        catalogservice.NewItemService(itemUseCase, accessUseCase, log),
		Contributor: catalogservice.NewContributorService(contributorUseCase, log),
		Access:      accessservice.NewAccessService(accessUseCase, log),
	}

	httpServer := server.NewHTTPServer(config, log, jwtManager, d.RedisClient, services)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
