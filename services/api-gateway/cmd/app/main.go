package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fanverse/internal/logger"
	"fanverse/services/api-gateway/internal/client"
	"fanverse/services/api-gateway/internal/config"
	"fanverse/services/api-gateway/internal/middleware"
	handlers "fanverse/services/api-gateway/internal/transport/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log).With(zap.String("service", "api-gateway"))
	defer log.Sync()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

	authClient, err := client.NewAuthClient(cfg.AuthSvcUrl)
	if err != nil {
		log.Fatal("failed to connect to auth service", zap.Error(err))
	}
	defer authClient.Close()

	profileClient, err := client.NewProfileClient(cfg.UserSvcUrl)
	if err != nil {
		log.Fatal("failed to connect to user service", zap.Error(err))
	}
	defer profileClient.Close()

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:           handlers.NewAuthHandler(authClient.Client),
		Profile:        handlers.NewProfileHandler(profileClient.Client),
		Limiter:        middleware.NewRateLimiter(rdb, log),
		AuthClient:     authClient.Client,
		AllowedOrigins: cfg.Origins(),
		Limits: handlers.Limits{
			LoginLimit:   cfg.LoginLimit,
			LoginWindow:  cfg.LoginWindow,
			ResendLimit:  cfg.ResendLimit,
			ResendWindow: cfg.ResendWindow,
		},
		RPCTimeout: cfg.RPCTimeout,
		Log:        log,
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("API gateway listening", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down API gateway")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	_ = rdb.Close()
}
