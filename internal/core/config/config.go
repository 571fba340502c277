package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level      string
	JSON       bool
	File       string // 为空则只写 stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Store is the record store. URL and AccessKey are required.
type Store struct {
	URL                string
	AccessKey          string `mapstructure:"access_key"`
	Driver             string // 为空时按 URL scheme 推断
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Session struct {
	Issuer     string
	TTLMin     int    `mapstructure:"ttl_min"`
	CookieName string `mapstructure:"cookie_name"`
	Secure     bool
}

// Redis 为空 Addr 时关闭注销吊销与统计缓存
type Redis struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	StatsTTLSec int    `mapstructure:"stats_ttl_sec"`
}

type Limits struct {
	RPS            float64
	Burst          int
	PerIPRPS       float64 `mapstructure:"per_ip_rps"`
	PerIPBurst     int     `mapstructure:"per_ip_burst"`
	Concurrency    int64
	MaxBodyBytes   int64 `mapstructure:"max_body_bytes"`
	RequestTimeout int   `mapstructure:"request_timeout_sec"`
}

type Policy struct {
	// ReReviewOnEdit sends an edited, already moderated job back to pending.
	ReReviewOnEdit bool `mapstructure:"rereview_on_edit"`
}

type CORS struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type Config struct {
	App     App
	Log     Log
	Store   Store
	Session Session
	Redis   Redis `mapstructure:"redis"`
	Limits  Limits
	Policy  Policy
	CORS    CORS `mapstructure:"cors"`
}

var (
	ErrMissingStoreURL       = errors.New("store.url is required")
	ErrMissingStoreAccessKey = errors.New("store.access_key is required")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "jobboard")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.maxsizemb", 100)
	v.SetDefault("log.maxbackups", 7)
	v.SetDefault("log.maxagedays", 30)
	v.SetDefault("store.maxopenconns", 20)
	v.SetDefault("store.maxidleconns", 10)
	v.SetDefault("store.connmaxlifetimemin", 30)
	v.SetDefault("store.loglevel", "warn")
	v.SetDefault("session.issuer", "jobboard")
	v.SetDefault("session.ttl_min", 60)
	v.SetDefault("session.cookie_name", "sb-session")
	v.SetDefault("redis.stats_ttl_sec", 30)
	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.per_ip_rps", 20)
	v.SetDefault("limits.per_ip_burst", 40)
	v.SetDefault("limits.concurrency", 300)
	v.SetDefault("limits.max_body_bytes", 1<<20)
	v.SetDefault("limits.request_timeout_sec", 10)
}

// Load reads the YAML file at path (or CONFIG_PATH) with APP_* env overrides.
// A missing file is fine; everything can come from the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv 只对已知 key 生效，必填项显式绑定
	_ = v.BindEnv("store.url")
	_ = v.BindEnv("store.access_key")
	_ = v.BindEnv("redis.addr")

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate fails startup when required settings are absent.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Store.URL) == "" {
		errs = append(errs, ErrMissingStoreURL)
	}
	if strings.TrimSpace(c.Store.AccessKey) == "" {
		errs = append(errs, ErrMissingStoreAccessKey)
	}
	return errors.Join(errs...)
}
