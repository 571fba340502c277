package database

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrUnsupportedDriver = errors.New("unsupported store driver")

type Opts struct {
	URL                string
	Driver             string // "postgres" | "mysql"; 空则按 URL 推断
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	Log                *log.Logger // gorm SQL 日志输出，nil 用默认
}

func NewGorm(o Opts) (*gorm.DB, error) {
	driver := o.Driver
	if driver == "" {
		driver = DriverFromURL(o.URL)
	}
	var dial gorm.Dialector
	switch driver {
	case "postgres":
		dial = postgres.Open(o.URL)
	case "mysql":
		dsn, err := MySQLDSN(o.URL)
		if err != nil {
			return nil, err
		}
		dial = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	lg := logger.Default.LogMode(logLevel(o.LogLevel))
	if o.Log != nil {
		lg = logger.New(o.Log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel(o.LogLevel),
			IgnoreRecordNotFoundError: true,
		})
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: lg,
		// unique violations come back as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	return db.Session(&gorm.Session{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	}), nil
}

func logLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

// DriverFromURL infers the driver from the URL scheme; bare key=value
// strings are treated as postgres.
func DriverFromURL(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "jdbc:")
	switch {
	case strings.HasPrefix(s, "postgres://"), strings.HasPrefix(s, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(s, "mysql://"), strings.Contains(s, "@tcp("):
		return "mysql"
	case strings.Contains(s, "host="):
		return "postgres"
	}
	return ""
}

// MySQLDSN turns mysql:// (or jdbc:mysql://) URLs into go-sql-driver DSNs.
// Native DSNs pass through with parseTime forced on.
func MySQLDSN(raw string) (string, error) {
	in := strings.TrimPrefix(strings.TrimSpace(raw), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		cfg, err := mysqldrv.ParseDSN(in)
		if err != nil {
			return "", err
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	}
	u, err := url.Parse(in)
	if err != nil {
		return "", err
	}
	cfg := mysqldrv.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	q := u.Query()
	if tz := q.Get("serverTimezone"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			cfg.Loc = loc
		}
	}
	charset := q.Get("charset")
	if charset == "" {
		charset = q.Get("characterEncoding")
	}
	if charset == "" {
		charset = "utf8mb4"
	}
	cfg.Params = map[string]string{"charset": charset}
	if v := strings.ToLower(q.Get("useSSL")); v == "true" || v == "1" {
		cfg.TLSConfig = "true"
	}
	return cfg.FormatDSN(), nil
}
