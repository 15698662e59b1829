package main

import (
	"commons/internal/cache"
	"commons/internal/config"
	"commons/internal/logging"
	"commons/internal/repository"
	"commons/internal/service"
	"commons/internal/transport/rest"
	"commons/internal/transport/ws"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server exited")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer mongoClient.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	db := mongoClient.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

	// Initialize repositories
	codeRepo := repository.NewCodeRepo(db)
	playerRepo := repository.NewPlayerRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	roundRepo := repository.NewRoundRepo(db)
	moveRepo := repository.NewMoveRepo(db)

	// Initialize caches
	claims := cache.NewCloseClaimCache(rdb, cfg.ClaimTTL)
	rosters := cache.NewRosterCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)
	signalLog := cache.NewSignalLog(rdb)
	bus := cache.NewSignalBus(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL)
	notifier := service.NewNotifier(signalLog, bus, logger.Named("notifier"))
	codeSvc := service.NewCodeService(codeRepo, playerRepo, logger.Named("codes"))
	sessions := service.NewSessionManager(codeRepo, playerRepo, sessionRepo, moveRepo, rosters, leaderboard, notifier, cfg.Game.Params(), logger.Named("sessions"))
	engine := service.NewRoundEngine(roundRepo, moveRepo, claims, sessions, notifier, logger.Named("rounds"))
	sessions.SetRoundEngine(engine)
	queries := service.NewQueryService(sessionRepo)

	// Signals published by any instance reach the players connected here
	deliveries, err := bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe signals: %w", err)
	}
	hub := ws.NewHub(logger.Named("ws"))

	router := rest.NewRouter(&rest.Container{
		AuthService:    authSvc,
		CodeService:    codeSvc,
		SessionManager: sessions,
		RoundEngine:    engine,
		QueryService:   queries,
		WSHub:          hub,
		CORSOrigins:    cfg.CORSOrigins,
		Logger:         logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx, deliveries)
		if gctx.Err() == nil {
			return errors.New("signal subscription closed")
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
