package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callwatch/internal/announce"
	"callwatch/internal/auth"
	"callwatch/internal/config"
	"callwatch/internal/dialer"
	"callwatch/internal/engine"
	"callwatch/internal/history"
	"callwatch/internal/httpapi"
	"callwatch/pkg/clock"
	"callwatch/pkg/logger"
	"callwatch/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	eng := engine.New(engine.Config{
		FeedbackWindow: cfg.Engine.FeedbackWindow,
		ResumeGrace:    cfg.Engine.ResumeGrace,
		ResumeDelay:    cfg.Engine.ResumeDelay,
	}, clock.NewSystem(), dialer.NewBridge(cfg.Dial.BridgeURL), log)
	defer eng.Close()

	var repo history.Repository = history.NewMemoryRepository()
	if cfg.DB.Enabled() {
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		pg := history.NewPostgresRepository(db)
		if err := pg.Migrate(rootCtx); err != nil {
			log.Error("history migrate failed", "err", err)
			os.Exit(1)
		}
		repo = pg
	} else {
		log.Warn("no DB configured; call history is in-memory only")
	}
	hist := history.NewService(repo)
	eng.Archiver = hist

	if cfg.Redis.Enabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()

		pub := &announce.Publisher{RDB: rdb, Channel: cfg.Redis.Channel, Log: log}
		go pub.Run(rootCtx, eng.Events())
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	h := httpapi.Handlers{Engine: eng, History: hist, Auth: authManager}
	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("callwatch listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
