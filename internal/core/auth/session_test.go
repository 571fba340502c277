package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
	err     error
}

func (m *memRevoker) Revoke(_ context.Context, id string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]bool{}
	}
	m.revoked[id] = true
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[id], m.err
}

func newSessions(rv Revoker) *Sessions {
	return &Sessions{
		JWT:        &JWTer{Secret: []byte("test-secret"), Issuer: "jobboard", TTL: time.Hour},
		CookieName: "sb-session",
		Revoker:    rv,
	}
}

func TestResolve_BearerHeader(t *testing.T) {
	s := newSessions(nil)
	tok, err := s.JWT.Issue("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	id, ok := s.Resolve(req)
	require.True(t, ok)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, FromHeader, id.Source)
	assert.NotEmpty(t, id.TokenID)
}

func TestResolve_Cookie(t *testing.T) {
	s := newSessions(nil)
	tok, _ := s.JWT.Issue("u2")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sb-session", Value: tok})
	id, ok := s.Resolve(req)
	require.True(t, ok)
	assert.Equal(t, "u2", id.UserID)
	assert.Equal(t, FromCookie, id.Source)
}

func TestResolve_BadCredentialsAreAnonymous(t *testing.T) {
	s := newSessions(nil)
	other := &JWTer{Secret: []byte("other"), Issuer: "jobboard", TTL: time.Hour}
	forged, _ := other.Issue("u1")
	wrongIssuer, _ := (&JWTer{Secret: []byte("test-secret"), Issuer: "evil", TTL: time.Hour}).Issue("u1")
	expired, _ := (&JWTer{Secret: []byte("test-secret"), Issuer: "jobboard", TTL: -time.Hour}).Issue("u1")

	for name, h := range map[string]string{
		"garbage":      "Bearer not-a-token",
		"forged":       "Bearer " + forged,
		"wrong issuer": "Bearer " + wrongIssuer,
		"expired":      "Bearer " + expired,
		"basic auth":   "Basic dTpw",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", h)
		_, ok := s.Resolve(req)
		assert.False(t, ok, name)
	}
}

func TestResolve_RevokedAndRevokerFailure(t *testing.T) {
	rv := &memRevoker{}
	s := newSessions(rv)
	tok, _ := s.JWT.Issue("u1")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	id, ok := s.Resolve(req)
	require.True(t, ok)

	require.NoError(t, s.End(context.Background(), httptest.NewRecorder(), id))
	_, ok = s.Resolve(req)
	assert.False(t, ok)

	rv2 := &memRevoker{err: errors.New("redis down")}
	s2 := newSessions(rv2)
	tok2, _ := s2.JWT.Issue("u1")
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Header.Set("Authorization", "Bearer "+tok2)
	_, ok = s2.Resolve(req2)
	assert.False(t, ok)
}

func TestRefresh_OnlyNearExpiryCookies(t *testing.T) {
	s := newSessions(nil)

	rec := httptest.NewRecorder()
	s.Refresh(rec, Identity{UserID: "u1", Source: FromCookie, ExpiresAt: time.Now().Add(50 * time.Minute)})
	assert.Empty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	s.Refresh(rec, Identity{UserID: "u1", Source: FromHeader, ExpiresAt: time.Now().Add(time.Minute)})
	assert.Empty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	s.Refresh(rec, Identity{UserID: "u1", Source: FromCookie, ExpiresAt: time.Now().Add(5 * time.Minute)})
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sb-session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}
