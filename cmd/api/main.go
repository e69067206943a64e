package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/namwkim/dataviz-storytelling/internal/auth"
	"github.com/namwkim/dataviz-storytelling/internal/cache"
	"github.com/namwkim/dataviz-storytelling/internal/cache/redis"
	"github.com/namwkim/dataviz-storytelling/internal/cars"
	"github.com/namwkim/dataviz-storytelling/internal/config"
	"github.com/namwkim/dataviz-storytelling/internal/dashboard"
	"github.com/namwkim/dataviz-storytelling/internal/dataset"
	"github.com/namwkim/dataviz-storytelling/internal/db"
	"github.com/namwkim/dataviz-storytelling/internal/logging"
	"github.com/namwkim/dataviz-storytelling/internal/petition"
	"github.com/namwkim/dataviz-storytelling/internal/router"
	"github.com/namwkim/dataviz-storytelling/internal/storage"
	"github.com/namwkim/dataviz-storytelling/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "h1b-dashboard"

func main() {
	ctx := context.Background()

	// ───────────────────────── ENV ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		logging.Must(false).Fatal("❌ config", zap.Error(err))
	}

	logger := logging.Must(cfg.IsProduction())
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ───────────────────────── TRACING ─────────────────────────
	tracing := ""
	if cfg.OTELCollectorURL != "" {
		shutdown, err := telemetry.InitTracer(ctx, serviceName, cfg.OTELCollectorURL)
		if err != nil {
			logger.Warn("⚠️ tracing disabled", zap.Error(err))
		} else {
			tracing = serviceName
			defer shutdown(context.Background())
		}
	}

	// ───────────────────────── STORAGE ─────────────────────────
	var (
		src      dataset.Source = dataset.NewFileSource(cfg.DataDir)
		uploader dashboard.Uploader
	)
	if cfg.HasR2() {
		r2Client, err := storage.NewR2Client(ctx, storage.R2Options{
			Endpoint:      cfg.R2Endpoint,
			AccessKey:     cfg.R2AccessKey,
			SecretKey:     cfg.R2SecretKey,
			Bucket:        cfg.R2Bucket,
			PublicBaseURL: cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Fatal("❌ R2 init failed", zap.Error(err))
		}
		uploader = r2Client
		if cfg.DataSource == "r2" {
			src = r2Client
		}
	}

	// ───────────────────────── DB ─────────────────────────
	var (
		petitions petition.Repository = petition.NewCSVRepository(src, cfg.PetitionsFile, cfg.CitiesFile)
		users     auth.UserRepository = auth.NewInMemoryUserRepository()
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("❌ database", zap.Error(err))
		}
		defer pool.Close()

		petitions = petition.NewPostgresRepository(pool)
		users = auth.NewPostgresUserRepository(pool)
		logger.Info("✅ Connected to PostgreSQL")
	}

	// ───────────────────────── CACHE ─────────────────────────
	cacheOpts := cache.Options{
		DefaultTTL:      cfg.CacheTTL,
		CleanupInterval: time.Minute,
		RedisURL:        cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		RedisDB:         cfg.RedisDB,
		KeyPrefix:       cfg.CachePrefix,
	}
	var responses cache.Cache = cache.NewMemory(cacheOpts)
	if cfg.RedisAddr != "" {
		rc := redis.New(cacheOpts)
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("⚠️ redis unreachable, using memory cache", zap.Error(err))
			rc.Close()
		} else {
			responses.Close()
			responses = rc
		}
	}
	defer responses.Close()

	// ───────────────────────── AUTH ─────────────────────────
	tokens, err := auth.NewTokens(cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		logger.Fatal("❌ tokens", zap.Error(err))
	}
	authService := auth.NewService(users, tokens)
	if cfg.AdminPassword != "" {
		if _, err := authService.SeedAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatal("❌ seed admin", zap.Error(err))
		}
		logger.Info("👤 admin account ready", zap.String("email", cfg.AdminEmail))
	}

	// ───────────────────────── SERVICES ─────────────────────────
	loader := petition.NewLoader(petitions, cfg.OutlierZ, logger)
	dashboardService := dashboard.NewService(loader, responses, dashboard.Settings{
		TopN:     cfg.TopN,
		AtlasURL: cfg.USAtlasURL,
		CacheTTL: cfg.CacheTTL,
	}, logger)
	carsService := cars.NewService(src, cfg.CarsFile, logger)

	// ───────────────────────── HTTP ─────────────────────────
	r, err := router.NewRouter(router.Deps{
		Dashboard:   dashboardService,
		Cars:        carsService,
		Auth:        authService,
		Tokens:      tokens,
		Uploader:    uploader,
		Logger:      logger,
		ServiceName: tracing,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal("❌ router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🚀 Server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
