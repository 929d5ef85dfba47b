package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"fanverse/internal/logger"
	"fanverse/pkg/fanrpc"
	"fanverse/services/auth-service/config"
	"fanverse/services/auth-service/internal/application/usecase"
	"fanverse/services/auth-service/internal/infrastructure/cache"
	"fanverse/services/auth-service/internal/infrastructure/email"
	"fanverse/services/auth-service/internal/infrastructure/repository"
	"fanverse/services/auth-service/internal/infrastructure/security"
	grpc_server "fanverse/services/auth-service/internal/transport/grpc"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/reflection"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log).With(zap.String("service", "auth-service"))
	defer log.Sync()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to DB", zap.Error(err))
	}
	if err := db.AutoMigrate(&repository.UserGorm{}); err != nil {
		log.Fatal("failed to migrate DB", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}

	userConn, err := grpc.NewClient(cfg.UserSvcUrl,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		fanrpc.CallOption(),
	)
	if err != nil {
		log.Fatal("failed to dial user service", zap.Error(err))
	}
	defer userConn.Close()

	userRepo := repository.NewUserRepository(db)
	tokenCache := cache.NewTokenCache(rdb)
	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	emailSender := email.NewEmailSender(cfg.APIKey, cfg.SMTPEmail, cfg.FrontendURL)

	authUseCase := usecase.NewAuthUseCase(
		userRepo,
		tokenCache,
		hasher,
		tokenManager,
		emailSender,
		fanrpc.NewProfileServiceClient(userConn),
		usecase.Options{
			RequireEmailConfirmation: cfg.RequireEmailConfirmation,
			ConfirmationTTL:          cfg.ConfirmationTTL,
			ResendCooldown:           cfg.ResendCooldown,
		},
		log,
	)
	authServer := grpc_server.NewAuthServer(authUseCase)

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", cfg.GRPCPort), zap.Error(err))
	}

	grpcServer := grpc.NewServer()
	fanrpc.RegisterAuthServiceServer(grpcServer, authServer)
	reflection.Register(grpcServer)

	log.Info("auth service is running", zap.String("addr", cfg.GRPCPort),
		zap.Bool("require_email_confirmation", cfg.RequireEmailConfirmation))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("shutting down server")
	grpcServer.GracefulStop()
}
