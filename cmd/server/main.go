package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/fekuna/omnipos-variant-service/config"
	"github.com/fekuna/omnipos-variant-service/internal/auth"
	"github.com/fekuna/omnipos-variant-service/internal/blob"
	"github.com/fekuna/omnipos-variant-service/internal/middleware"
	"github.com/fekuna/omnipos-variant-service/pkg/broker"
	"github.com/fekuna/omnipos-variant-service/pkg/cache"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
	"github.com/fekuna/omnipos-variant-service/pkg/postgres"

	catRepoPkg "github.com/fekuna/omnipos-variant-service/internal/catalog/repository"

	invH "github.com/fekuna/omnipos-variant-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-variant-service/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/omnipos-variant-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-variant-service/internal/inventory/usecase"

	locH "github.com/fekuna/omnipos-variant-service/internal/location/handler"
	locRepoPkg "github.com/fekuna/omnipos-variant-service/internal/location/repository"
	locUCPkg "github.com/fekuna/omnipos-variant-service/internal/location/usecase"

	varEvents "github.com/fekuna/omnipos-variant-service/internal/variant/events"
	varH "github.com/fekuna/omnipos-variant-service/internal/variant/handler"
	varRepoPkg "github.com/fekuna/omnipos-variant-service/internal/variant/repository"
	varUCPkg "github.com/fekuna/omnipos-variant-service/internal/variant/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Repositories
	locRepo := locRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)
	varRepo := varRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.InventoryTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	kafkaProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.VariantTopic,
	})
	defer kafkaProducer.Close()
	appLogger.Info("Connected to Kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("consume", cfg.Kafka.InventoryTopic),
		zap.String("produce", cfg.Kafka.VariantTopic),
	)

	// 5.8 Initialize Blob Storage
	storageClient, err := storage.NewClient(context.Background())
	if err != nil {
		appLogger.Fatal("Could not create storage client", zap.Error(err))
	}
	defer storageClient.Close()
	blobStore := blob.NewGCSStore(storageClient, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)

	// 6. Initialize UseCases
	locUC := locUCPkg.NewLocationUseCase(locRepo, redisClient, cfg.Allocation.LocationCacheTTL, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, appLogger)
	varUC := varUCPkg.NewVariantUseCase(
		varRepo,
		invUC,
		catRepo,
		locUC,
		blobStore,
		redisClient,
		varEvents.NewPublisher(kafkaProducer),
		varUCPkg.Config{
			PlaceholderName: cfg.Allocation.PlaceholderName,
			Bucket:          cfg.Storage.Bucket,
			LockTTL:         cfg.Allocation.LockTTL,
			LockRetries:     cfg.Allocation.LockRetries,
			LockRetryDelay:  cfg.Allocation.LockRetryDelay,
		},
		appLogger,
	)

	// 6.5 Initialize Listeners
	invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, varUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go invListener.Start(ctx)

	// 7. HTTP Server
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(appLogger), auth.StaffMiddleware())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	locH.NewLocationHandler(locUC, appLogger).Register(api)
	invH.NewInventoryHandler(invUC, appLogger).Register(api)
	varH.NewVariantHandler(varUC, appLogger).Register(api)

	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 8. gRPC health server
	grpcPort := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", grpcPort), zap.Error(err))
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("omnipos.variant.v1", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("port", grpcPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
