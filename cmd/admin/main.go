// Command admin is the operator CLI. Admin accounts cannot sign up through
// the public form, so the first one is created here.
//
//	admin create-admin --email root@example.com --password '...' [--name Root]
//	admin migrate
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobboard/internal/core/config"
	"jobboard/internal/core/database"
	"jobboard/internal/core/logger"
	"jobboard/internal/domain"
	"jobboard/internal/repo"
	"jobboard/internal/service"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin <create-admin|migrate> [flags]")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	_ = godotenv.Load()

	cmd, args := os.Args[1], os.Args[2:]
	fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", os.Getenv("CONFIG_PATH"), "config file")

	switch cmd {
	case "create-admin":
		email := fs.String("email", "", "admin email (required)")
		password := fs.String("password", os.Getenv("APP_ADMIN_PASSWORD"), "admin password, or APP_ADMIN_PASSWORD")
		name := fs.String("name", "", "display name")
		migrate := fs.Bool("migrate", false, "run migrations first")
		_ = fs.Parse(args)

		log, db, done := setup(*cfgPath)
		defer done()
		if *migrate {
			runMigrate(log, db)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a, err := service.NewAccountService(repo.NewProfileRepo(db), log).CreateAdmin(ctx, *email, *password, *name)
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			for k, msg := range ve.Fields {
				fmt.Fprintf(os.Stderr, "%s: %s\n", k, msg)
			}
			os.Exit(1)
		case errors.Is(err, domain.ErrDuplicateEmail):
			log.Fatal("email already registered", zap.String("email", *email))
		case err != nil:
			log.Fatal("create admin failed", zap.Error(err))
		}
		fmt.Println(a.ID)

	case "migrate":
		_ = fs.Parse(args)
		log, db, done := setup(*cfgPath)
		defer done()
		runMigrate(log, db)

	default:
		usage()
		os.Exit(2)
	}
}

func setup(cfgPath string) (*zap.Logger, *gorm.DB, func()) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log)
	if cfg.Store.URL == "" {
		log.Fatal("invalid config", zap.Error(config.ErrMissingStoreURL))
	}
	db, err := database.NewGorm(database.Opts{
		URL:                cfg.Store.URL,
		Driver:             cfg.Store.Driver,
		MaxOpenConns:       2,
		MaxIdleConns:       1,
		ConnMaxLifetimeMin: cfg.Store.ConnMaxLifetimeMin,
		LogLevel:           cfg.Store.LogLevel,
		Log:                logger.StdLogger(log.Named("gorm"), zap.WarnLevel),
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	return log, db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		cleanup()
	}
}

func runMigrate(log *zap.Logger, db *gorm.DB) {
	if err := repo.Migrate(db); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}
	log.Info("migrate done")
}
