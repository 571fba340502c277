// Package service holds the lifecycle managers for accounts, job postings and
// applications. Every operation takes the acting identity explicitly; nothing
// is read from request state.
package service

import (
	"context"

	"go.uber.org/zap"

	"jobboard/internal/core/cache"
	"jobboard/internal/domain"
)

// requireRole: anonymous → ErrUnauthenticated, wrong role or blocked → ErrForbidden.
func requireRole(a domain.Actor, roles ...domain.Role) error {
	if !a.Authenticated() {
		return domain.ErrUnauthenticated
	}
	for _, r := range roles {
		if a.Is(r) {
			return nil
		}
	}
	return domain.ErrForbidden
}

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// dropAdminStats clears the cached admin totals. A cache failure only
// leaves them stale until the TTL, so it is logged and not returned.
func dropAdminStats(ctx context.Context, inv cache.Invalidator, l *zap.Logger) {
	if inv == nil {
		return
	}
	if err := inv.Invalidate(ctx, adminStatsKey); err != nil {
		l.Warn("admin stats invalidate failed", zap.Error(err))
	}
}
