package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"jobboard/internal/core/auth"
	"jobboard/internal/core/config"
	"jobboard/internal/core/server"
	"jobboard/internal/policy"
	"jobboard/internal/service"
	mdw "jobboard/internal/transport/http/middleware"
	resp "jobboard/internal/transport/http/response"
)

type Deps struct {
	Log      *zap.Logger
	Policy   *policy.Engine
	Sessions *auth.Sessions
	Accounts *service.AccountService
	Jobs     *service.JobService
	Apps     *service.ApplicationService
	Stats    *service.StatsService
	Limits   config.Limits
	CORS     []string
	// StaticDir 非空时挂载 /static
	StaticDir string
	// Ready 用于 /health，一般是 DB ping
	Ready func(ctx context.Context) error
}

func NewEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, d.CORS)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(d.Limits.RPS), d.Limits.Burst),
		mdw.RateLimitPerIP(rate.Limit(d.Limits.PerIPRPS), d.Limits.PerIPBurst, 10*time.Minute),
		mdw.ConcurrencyLimit(d.Limits.Concurrency),
		mdw.MaxBodyBytes(d.Limits.MaxBodyBytes),
		mdw.Timeout(time.Duration(d.Limits.RequestTimeout)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	// 以下在 Gate 之前注册，不经过 Gate
	r.GET("/health", health(d.Ready))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if d.StaticDir != "" {
		r.Static("/static", d.StaticDir)
	}

	r.Use(mdw.Gate(d.Sessions, d.Accounts, d.Policy, d.Log))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusOK, resp.Error(resp.CodeNotFound, ""))
	})

	var reg Registry
	reg.Register(
		&authModule{d: d},
		&publicModule{d: d},
		&dashboardModule{d: d},
		&adminModule{d: d},
		&employerModule{d: d},
		&seekerModule{d: d},
	)
	reg.MountAll(&r.RouterGroup)
	return r
}

func health(ready func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	}
}

type listOut[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

func list[T any](items []T) listOut[T] {
	if items == nil {
		items = []T{}
	}
	return listOut[T]{Total: len(items), Items: items}
}
