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

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/config"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/handler"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/logger"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/middleware"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/notify"
	pgRepo "github.com/ConnorBoetig-dev/morepractice-sub001/internal/repository/postgres"
	redisRepo "github.com/ConnorBoetig-dev/morepractice-sub001/internal/repository/redis"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/scheduler"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service"
	"github.com/ConnorBoetig-dev/morepractice-sub001/pkg/auth"
	"github.com/ConnorBoetig-dev/morepractice-sub001/pkg/database"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.Server.Mode)
	log.Info("config loaded", zap.String("path", configPath), zap.String("mode", cfg.Server.Mode))

	loc, err := cfg.Gamification.Location()
	if err != nil {
		log.Fatal("invalid timezone", zap.Error(err))
	}

	// Подключаемся к базе данных
	db, err := database.NewPostgresDB(cfg.Database, logger.GormLevel(cfg.Log.SQLLevel))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.MigrateDB(db, cfg.Database.MigrationsDir, log); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis необязателен: без него нет кеша рейтингов, ограничения частоты и событий
	var (
		lbCache      repository.CacheRepository
		limitCounter repository.CacheRepository
		pubsub       notify.PubSubProvider = notify.NoOpPubSub{}
		redisClient  goredis.UniversalClient
	)
	redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, running without cache, rate limit and events", zap.Error(err))
	} else {
		if c, err := redisRepo.NewCacheRepo(redisClient, cfg.Leaderboard.CachePrefix); err == nil {
			lbCache = c
		}
		if c, err := redisRepo.NewCacheRepo(redisClient, "rl:"); err == nil {
			limitCounter = c
		}
		if p, err := notify.NewRedisPubSub(redisClient, log); err == nil {
			pubsub = p
		}
	}

	publisher := notify.NewChannelPublisher(pubsub, cfg.Gamification.EventsChannelPrefix, log)

	// Репозитории и сервисы
	store := pgRepo.NewStore(db)
	tx := pgRepo.NewTransactor(db, cfg.Gamification.TxMaxRetries, log)

	achievementService := service.NewAchievementService(store, log)
	avatarService := service.NewAvatarService(store, log)
	attemptService := service.NewAttemptService(tx, store, achievementService, avatarService, publisher, loc, log)
	studyService := service.NewStudyService(tx, store, attemptService,
		cfg.Gamification.DefaultStudyQuestions, cfg.Gamification.MaxStudyQuestions, log)
	profileService := service.NewProfileService(store, avatarService, log)
	leaderboardService := service.NewLeaderboardService(pgRepo.NewLeaderboardRepo(db), lbCache, service.LeaderboardOptions{
		AccuracyMinAttempts: cfg.Leaderboard.AccuracyMinAttempts,
		ExamMinAttempts:     cfg.Leaderboard.ExamMinAttempts,
		DefaultLimit:        cfg.Leaderboard.DefaultLimit,
		MaxLimit:            cfg.Leaderboard.MaxLimit,
		CacheTTL:            cfg.Leaderboard.CacheTTL,
		WarmExamTypes:       cfg.Leaderboard.WarmExamTypes,
	}, log)

	// Прогрев кеша рейтингов
	if lbCache != nil {
		var locker scheduler.Locker = lbCache
		sched := scheduler.New(leaderboardService, locker, cfg.Leaderboard.RefreshInterval, log)
		if err := sched.Start(ctx); err != nil {
			log.Error("failed to start scheduler", zap.Error(err))
		} else {
			defer sched.Stop()
		}
	}

	verifier, err := auth.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		log.Fatal("failed to init token verifier", zap.Error(err))
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier, log)

	var writeLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled && limitCounter != nil {
		writeLimit = middleware.NewRateLimiter(limitCounter, log).LimitByUser(middleware.RateLimitConfig{
			MaxRequests: cfg.RateLimit.Requests,
			Window:      cfg.RateLimit.Window,
			KeyPrefix:   "writes",
		})
	}

	writeTimeout := cfg.Gamification.WriteTimeout()
	var trustedProxies []string
	if gin.Mode() != gin.ReleaseMode {
		trustedProxies = []string{"127.0.0.1", "::1"}
	}

	router := handler.NewRouter(handler.Handlers{
		Attempts:     handler.NewAttemptHandler(attemptService, writeTimeout, log),
		Study:        handler.NewStudyHandler(studyService, writeTimeout, log),
		Leaderboard:  handler.NewLeaderboardHandler(leaderboardService, log),
		Achievements: handler.NewAchievementHandler(achievementService, log),
		Profile:      handler.NewProfileHandler(profileService, writeTimeout, log),
		WS:           handler.NewWSHandler(publisher, cfg.Server.AllowedOrigins, log),
	}, authMiddleware, handler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: trustedProxies,
		WriteLimit:     writeLimit,
	})

	// HTTP сервер с тайм-аутами. WriteTimeout не применяется к уже поднятым WebSocket.
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", zap.Error(err))
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	// Останавливаем задачу прогрева и фоновые подписки
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("error closing redis client", zap.Error(err))
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("server exited properly")
}
