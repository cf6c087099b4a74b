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

	// Adapters
	redisCache "github.com/Abdurahmanit/review-service/internal/adapter/cache/redis"
	"github.com/Abdurahmanit/review-service/internal/adapter/client"
	httpAdapter "github.com/Abdurahmanit/review-service/internal/adapter/http"
	natsAdapter "github.com/Abdurahmanit/review-service/internal/adapter/messaging/nats"
	memoryRepo "github.com/Abdurahmanit/review-service/internal/adapter/repository/memory"
	mongoRepo "github.com/Abdurahmanit/review-service/internal/adapter/repository/mongodb"

	"github.com/Abdurahmanit/review-service/internal/config"
	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/Abdurahmanit/review-service/internal/platform/metrics"
	"github.com/Abdurahmanit/review-service/internal/platform/tracer"
	"github.com/Abdurahmanit/review-service/internal/usecase"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file (optional, for local development)
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	// 1. Logger
	appLogger := logger.NewLogger()

	// 2. Configuration
	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Application starting...",
		zap.String("service_name", cfg.ServiceName),
		zap.String("app_env", cfg.AppEnv),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("storage_driver", cfg.StorageDriver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Tracer
	tp, err := tracer.InitTracer(ctx, cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// 4. Store
	reviewRepo, closeStore := mustOpenStore(ctx, cfg, appLogger)
	defer closeStore()

	// 5. Events
	var events domain.EventPublisher = natsAdapter.NoopPublisher{}
	if cfg.NATSURL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
	} else {
		appLogger.Info("NATS_URL not set, review events are disabled")
	}

	// 6. Downstream services
	products := client.NewProductClient(cfg.ProductServiceURL, cfg.DownstreamTimeout, appLogger)
	purchases := client.NewPurchaseVerifier(cfg.OrderServiceURL, cfg.IsDevelopment(), cfg.DownstreamTimeout, appLogger)
	var users domain.UserService = client.NewUserClient(cfg.UserServiceURL, cfg.DownstreamTimeout, appLogger)
	if cfg.RedisAddr != "" {
		rdb, err := redisCache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, appLogger)
		if err != nil {
			appLogger.Warn("Redis unavailable, user profiles will not be cached", zap.Error(err))
		} else {
			defer rdb.Close()
			users = redisCache.NewCachedUserService(users, rdb, cfg.UserCacheTTL, appLogger)
		}
	}

	// 7. Usecase and HTTP
	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)
	reviewUsecase := usecase.NewReviewUsecase(reviewRepo, products, users, purchases, events, metricsManager, appLogger)
	router := httpAdapter.NewRouter(
		httpAdapter.NewReviewHandler(reviewUsecase, appLogger),
		httpAdapter.RouterConfig{
			ServiceName:    cfg.ServiceName,
			JWTSecret:      cfg.JWTSecret,
			AllowedOrigins: cfg.AllowedOrigins(),
		},
		metricsManager,
		appLogger,
	)

	servers := []*http.Server{{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}}
	if cfg.PrometheusMetricsPort != "" {
		servers = append(servers, metrics.NewMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry))
	}

	// 8. Serve until a signal arrives, then shut down gracefully.
	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			appLogger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down HTTP servers", zap.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", zap.Error(err))
		stop()
		os.Exit(1)
	}
	appLogger.Info("Application shut down cleanly")
}

// mustOpenStore returns the configured review store and its cleanup.
func mustOpenStore(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (domain.ReviewRepository, func()) {
	if cfg.StorageDriver == "memory" {
		appLogger.Warn("Using in-memory review store; data is lost on restart")
		return memoryRepo.NewReviewRepository(), func() {}
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	disconnect := func() {
		appLogger.Info("Disconnecting from MongoDB...")
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		disconnect()
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	appLogger.Info("Successfully connected and pinged MongoDB.")

	repo, err := mongoRepo.NewReviewRepository(ctx, mongoClient.Database(cfg.MongoDatabase), appLogger)
	if err != nil {
		disconnect()
		appLogger.Fatal("Failed to initialize ReviewRepository", zap.Error(err))
	}
	return repo, disconnect
}
