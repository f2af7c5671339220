package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	"github.com/NeuralTrust/RealtimeGateway/pkg/dependency_container"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/database"
	infraLogger "github.com/NeuralTrust/RealtimeGateway/pkg/infra/logger"
	_ "github.com/NeuralTrust/RealtimeGateway/pkg/infra/migrations"
	"github.com/NeuralTrust/RealtimeGateway/pkg/server"
	"github.com/NeuralTrust/RealtimeGateway/pkg/server/middleware"
	"github.com/NeuralTrust/RealtimeGateway/pkg/server/router"
	"github.com/joho/godotenv"
)

// @title			Realtime Gateway API
// @version		1.0
// @description	Inspection API for realtime voice and text sessions.
// @BasePath		/
func main() {
	ctx := context.Background()
	serverType := getServerType()
	envFile := os.Getenv("ENV_FILE")

	if envFile == "" {
		envFile = ".env"
	}
	err := godotenv.Load(envFile)
	if err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, closeLogger := infraLogger.NewLogger(serverType)
	defer closeLogger()

	// Load configuration
	if err := config.Load("../../config"); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	// Initialize database
	db, err := database.NewDB(logger, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,

		MaxOpenConns:     cfg.Database.MaxOpenConns,
		MaxIdleConns:     cfg.Database.MaxIdleConns,
		ConnMaxLifetime:  cfg.Database.ConnMaxLifetime,
		SlowQuery:        cfg.Database.SlowQuery,
		MigrationTimeout: cfg.Database.MigrationTimeout,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	container, err := dependency_container.NewContainer(ctx, dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
		DB:     db,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer container.TelemetryExporter.Close()
	defer container.Cache.Close()

	// middleware
	realtimeMiddlewareTransport := middleware.NewTransport(
		container.PanicRecoverMiddleware,
		container.AuthMiddleware,
		container.UserAgentMiddleware,
		container.WebSocketMiddleware,
	)
	adminMiddlewareTransport := middleware.NewTransport(
		container.PanicRecoverMiddleware,
		container.AuthMiddleware,
	)

	routers := []router.ServerRouter{
		router.NewRealtimeRouter(realtimeMiddlewareTransport, container.WSHandlerTransport, cfg),
		router.NewGenerationRouter(adminMiddlewareTransport, container.HandlerTransport, cfg),
	}
	if serverType != "realtime" {
		routers = append(routers, router.NewAdminRouter(adminMiddlewareTransport, container.HandlerTransport, cfg))
	}

	srv := server.NewGatewayServer(server.GatewayServerDI{
		Config:   cfg,
		Logger:   logger,
		Registry: container.Registry,
		Routers:  routers,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
		return
	}
	logger.Info("server gracefully stopped")
}

// getServerType returns "gateway" (realtime and inspection routes) unless
// "realtime" is passed to serve only the websocket endpoint.
func getServerType() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return "gateway"
}
