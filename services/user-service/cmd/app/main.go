package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"fanverse/internal/logger"
	"fanverse/pkg/fanrpc"
	"fanverse/services/user-service/config"
	"fanverse/services/user-service/internal/domain"
	"fanverse/services/user-service/internal/infrastructure/repository"
	grpc_server "fanverse/services/user-service/internal/transport/grpc"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log).With(zap.String("service", "user-service"))
	defer log.Sync()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to DB", zap.Error(err))
	}

	log.Info("running migrations")
	if err := db.AutoMigrate(&domain.Profile{}); err != nil {
		log.Fatal("failed to migrate DB", zap.Error(err))
	}

	profileRepo := repository.NewProfileRepository(db)
	userServer := grpc_server.NewUserServer(profileRepo, log)

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", cfg.GRPCPort), zap.Error(err))
	}

	grpcServer := grpc.NewServer()
	fanrpc.RegisterProfileServiceServer(grpcServer, userServer)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("failed to serve", zap.Error(err))
		}
	}()
	log.Info("user service running", zap.String("addr", cfg.GRPCPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("shutting down server")
	grpcServer.GracefulStop()
}
