package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard/internal/transport/http/ez"
)

// 敏感字段 key（query 中统一按 key）
var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "client_secret": {}, "access_token": {},
}

func maskQuery(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
		} else {
			out[k] = v
		}
	}
	return out
}

// AccessLog 打印请求摘要，带上 Gate 解析出的用户与角色。
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("ua", c.Request.UserAgent()),
			zap.Any("query", maskQuery(c.Request.URL.Query())),
			zap.Int("size", c.Writer.Size()),
		}
		if uid := c.GetString(ez.KeyUserID); uid != "" {
			fields = append(fields, zap.String("user_id", uid), zap.String("role", c.GetString(ez.KeyRole)))
		}
		if loc := c.Writer.Header().Get("Location"); loc != "" {
			fields = append(fields, zap.String("location", maskLocation(loc)))
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, zap.String("errors", errs.String()))
		}
		l.Info("HTTP", fields...)
	}
}

func maskLocation(loc string) string {
	i := strings.IndexByte(loc, '?')
	if i < 0 || !strings.Contains(strings.ToLower(loc[i:]), "token") {
		return loc
	}
	return loc[:i] + "?****"
}
