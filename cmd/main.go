package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gamecatalog/cache"
	"gamecatalog/config"
	"gamecatalog/db"
	"gamecatalog/handlers"
	"gamecatalog/monitoring"
	"gamecatalog/repository"
	"gamecatalog/service"
	"gamecatalog/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel, cfg.GinMode, cfg.LogFile)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		utils.Log.WithError(err).Fatal("❌ Failed to open database")
	}
	defer db.Close(gdb)

	if err := db.Migrate(gdb); err != nil {
		utils.Log.WithError(err).Fatal("❌ Failed to migrate database")
	}
	utils.Log.Info("Database connected and migrated")

	redisCache, err := cache.New(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		utils.Log.WithError(err).Warn("Redis unavailable, running without cache and rate limiting")
	} else if redisCache.Enabled() {
		utils.Log.WithField("addr", cfg.RedisURL).Info("Redis connected")
	}
	defer redisCache.Close()

	monitoring.InitMetrics()

	repo := repository.NewGameRepository(gdb)
	if count, err := repo.Count(ctx); err == nil {
		monitoring.TotalGames.Set(float64(count))
	}

	games := service.NewGameService(repo, redisCache)
	health := handlers.NewHealthHandler(
		handlers.PingFunc(func(ctx context.Context) error { return db.Ping(ctx, gdb) }),
		redisCache,
	)

	opts := handlers.RouterOptions{AllowOrigins: cfg.CORSOrigins}
	if redisCache.Enabled() {
		opts.Limiter = redisCache
		opts.RateLimit = cfg.RateLimitRequests
		opts.RateWindow = cfg.RateLimitWindow
	}
	r := handlers.NewRouter(games, health, opts)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		var err error
		if cfg.TLSEnabled() {
			server.TLSConfig = &tls.Config{
				MinVersion:       tls.VersionTLS12,
				CurvePreferences: []tls.CurveID{tls.CurveP521, tls.CurveP384, tls.CurveP256},
			}
			utils.Log.WithFields(logrus.Fields{"port": cfg.Port, "cert": cfg.TLSCertFile}).Info("🔒 Starting server with HTTPS")
			err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			utils.Log.WithField("port", cfg.Port).Info("🌐 Starting server with HTTP")
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.WithError(err).Error("❌ Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	utils.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Log.WithError(err).Error("Graceful shutdown failed")
	}
}
