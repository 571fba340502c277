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

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobboard/internal/core/auth"
	"jobboard/internal/core/cache"
	"jobboard/internal/core/config"
	"jobboard/internal/core/database"
	"jobboard/internal/core/logger"
	"jobboard/internal/core/server"
	"jobboard/internal/policy"
	"jobboard/internal/repo"
	"jobboard/internal/service"
	"jobboard/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()
	undo := logger.RedirectStdLog(log)
	defer undo()

	// store.url / store.access_key 缺失直接退出
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", database.DriverFromURL(cfg.Store.URL)))

	if cfg.Store.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// Redis 可选：注销吊销 + 管理端统计缓存
	var (
		revoker auth.Revoker
		loader  cache.Loader
		stale   cache.Invalidator
	)
	if cfg.Redis.Addr != "" {
		rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unreachable, continuing without it", zap.Error(err))
			_ = rc.Close()
		} else {
			defer rc.Close()
			revoker, loader, stale = rc, rc, rc
			log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
		cancel()
	}

	sessions := &auth.Sessions{
		JWT: &auth.JWTer{
			Secret: []byte(cfg.Store.AccessKey),
			Issuer: cfg.Session.Issuer,
			TTL:    time.Duration(cfg.Session.TTLMin) * time.Minute,
		},
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
		Revoker:    revoker,
		Log:        log.Named("session"),
	}

	profiles, jobs, apps := repo.NewProfileRepo(db), repo.NewJobRepo(db), repo.NewApplicationRepo(db)
	svcLog := log.Named("service")
	r := router.NewEngine(router.Deps{
		Log:       log,
		Policy:    policy.NewDefault(),
		Sessions:  sessions,
		Accounts:  service.NewAccountService(profiles, svcLog).WithStatsCache(stale),
		Jobs:      service.NewJobService(jobs, svcLog, cfg.Policy.ReReviewOnEdit).WithStatsCache(stale),
		Apps:      service.NewApplicationService(apps, jobs, svcLog),
		Stats:     service.NewStatsService(profiles, jobs, apps, loader, time.Duration(cfg.Redis.StatsTTLSec)*time.Second, svcLog),
		Limits:    cfg.Limits,
		CORS:      cfg.CORS.AllowOrigins,
		StaticDir: os.Getenv("STATIC_DIR"),
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("jobboard starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.Bool("rereview_on_edit", cfg.Policy.ReReviewOnEdit),
		zap.Bool("redis", revoker != nil),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("jobboard start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("jobboard stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		URL:                cfg.Store.URL,
		Driver:             cfg.Store.Driver,
		MaxOpenConns:       cfg.Store.MaxOpenConns,
		MaxIdleConns:       cfg.Store.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.Store.ConnMaxLifetimeMin,
		LogLevel:           cfg.Store.LogLevel,
		Log:                logger.StdLogger(l.Named("gorm"), zap.WarnLevel),
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
