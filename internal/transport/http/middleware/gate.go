package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard/internal/core/auth"
	"jobboard/internal/domain"
	"jobboard/internal/policy"
	"jobboard/internal/transport/http/ez"
	resp "jobboard/internal/transport/http/response"
)

// IdentityResolver verifies the credentials on a request. *auth.Sessions implements it.
type IdentityResolver interface {
	Resolve(r *http.Request) (auth.Identity, bool)
	Refresh(w http.ResponseWriter, id auth.Identity)
}

// ProfileFetcher reads role and status fresh for every request.
type ProfileFetcher interface {
	RoleAndStatus(ctx context.Context, userID string) (domain.Role, domain.AccountStatus, error)
}

const keyIdentity = "identity"

// Gate resolves the visitor once per request and applies the access
// policy before any handler runs. Failures of the resolver or the profile
// store are absorbed: the visitor is treated as anonymous or role-less.
func Gate(ids IdentityResolver, profiles ProfileFetcher, pol *policy.Engine, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := policy.Request{Path: c.Request.URL.Path}

		id, ok := resolve(ids, c, l)
		if ok {
			req.Authenticated = true
			c.Set(ez.KeyUserID, id.UserID)
			c.Set(keyIdentity, id)

			role, status, err := fetch(c.Request.Context(), profiles, id.UserID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				l.Warn("gate: no profile for identity", zap.String("user_id", id.UserID))
			case err != nil:
				l.Warn("gate: profile lookup failed", zap.String("user_id", id.UserID), zap.Error(err))
			default:
				req.Role, req.Status = role, status
				c.Set(ez.KeyRole, string(role))
				c.Set(ez.KeyStatus, string(status))
			}
		}

		d := pol.Decide(req)
		observeGate(d.Kind)
		switch d.Kind {
		case policy.Redirect:
			c.Redirect(http.StatusFound, d.Location)
			c.Abort()
			return
		case policy.Deny:
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeNotFound, ""))
			return
		}

		if ok {
			ids.Refresh(c.Writer, id)
		}
		c.Next()
	}
}

// IdentityFrom returns the verified identity the gate attached to c.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(keyIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func resolve(ids IdentityResolver, c *gin.Context, l *zap.Logger) (id auth.Identity, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			l.Warn("gate: identity resolver panicked", zap.Any("panic", rec))
			id, ok = auth.Identity{}, false
		}
	}()
	return ids.Resolve(c.Request)
}

func fetch(ctx context.Context, p ProfileFetcher, uid string) (role domain.Role, status domain.AccountStatus, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			role, status, err = "", "", errors.New("profile fetcher panicked")
		}
	}()
	return p.RoleAndStatus(ctx, uid)
}
