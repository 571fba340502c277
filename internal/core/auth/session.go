package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Identity is a verified user. Source tells where the credential came from.
type Identity struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
	Source    Source
}

type Source int

const (
	FromHeader Source = iota + 1
	FromCookie
)

// Revoker remembers tokens ended by logout.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Sessions is the identity provider: it issues session tokens and
// resolves inbound credentials. Resolution never fails the request; any
// problem yields "anonymous".
type Sessions struct {
	JWT        *JWTer
	CookieName string
	Secure     bool
	Revoker    Revoker // nil 表示不支持注销吊销
	Log        *zap.Logger
}

func (s *Sessions) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Resolve returns the verified identity carried by r, if any.
func (s *Sessions) Resolve(r *http.Request) (id Identity, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger().Warn("identity resolve panicked", zap.Any("panic", rec))
			id, ok = Identity{}, false
		}
	}()

	raw, src := s.credential(r)
	if raw == "" {
		return Identity{}, false
	}
	claims, err := s.JWT.Parse(raw)
	if err != nil {
		s.logger().Debug("session token rejected", zap.Error(err))
		return Identity{}, false
	}
	if s.Revoker != nil && claims.ID != "" {
		revoked, err := s.Revoker.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			s.logger().Warn("revocation check failed", zap.Error(err))
			return Identity{}, false
		}
		if revoked {
			return Identity{}, false
		}
	}
	id = Identity{UserID: claims.UID, TokenID: claims.ID, Source: src}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, true
}

func (s *Sessions) credential(r *http.Request) (string, Source) {
	if ah := r.Header.Get("Authorization"); ah != "" {
		if strings.HasPrefix(ah, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")), FromHeader
		}
		return "", 0
	}
	if c, err := r.Cookie(s.CookieName); err == nil && c.Value != "" {
		return c.Value, FromCookie
	}
	return "", 0
}

// Start issues a token for uid and sets it as the session cookie.
func (s *Sessions) Start(w http.ResponseWriter, uid string) (string, error) {
	tok, err := s.JWT.Issue(uid)
	if err != nil {
		return "", err
	}
	s.SetCookie(w, tok)
	return tok, nil
}

func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.JWT.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Refresh re-issues a cookie session that has less than a quarter of its
// lifetime left. Header credentials are the client's business.
func (s *Sessions) Refresh(w http.ResponseWriter, id Identity) {
	if id.Source != FromCookie || id.ExpiresAt.IsZero() {
		return
	}
	if time.Until(id.ExpiresAt) > s.JWT.TTL/4 {
		return
	}
	if _, err := s.Start(w, id.UserID); err != nil {
		s.logger().Warn("session refresh failed", zap.Error(err))
	}
}

// End revokes the current token (when a Revoker is configured) and clears the cookie.
func (s *Sessions) End(ctx context.Context, w http.ResponseWriter, id Identity) error {
	s.ClearCookie(w)
	if s.Revoker == nil || id.TokenID == "" {
		return nil
	}
	ttl := time.Until(id.ExpiresAt) + time.Minute
	if ttl <= time.Minute {
		return nil
	}
	return s.Revoker.Revoke(ctx, id.TokenID, ttl)
}
