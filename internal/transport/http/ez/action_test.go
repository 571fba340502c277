package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/domain"
	resp "jobboard/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func TestMap(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrNotFound, resp.CodeNotFound},
		{fmt.Errorf("find job: %w", domain.ErrForbidden), resp.CodeForbidden},
		{domain.ErrAdminProtected, resp.CodeForbidden},
		{domain.ErrSelfAction, resp.CodeForbidden},
		{domain.ErrUnauthenticated, resp.CodeUnauthorized},
		{domain.ErrDuplicateApplication, resp.CodeConflict},
		{domain.ErrInvalidTransition, resp.CodeBadRequest},
		{domain.NewValidationError("bad", nil), resp.CodeBadRequest},
		{fmt.Errorf("list jobs: %w: %w", domain.ErrUnavailable, errors.New("deadline")), resp.CodeUnavailable},
		{errors.New("pq: secret detail"), resp.CodeServerError},
		{BadRequest("nope"), resp.CodeBadRequest},
	}
	for _, c := range cases {
		code, msg, _ := Map(c.err)
		assert.Equal(t, c.code, code, c.err.Error())
		assert.NotContains(t, msg, "secret detail")
	}

	_, msg, _ := Map(domain.ErrDuplicateApplication)
	assert.Equal(t, "you have already applied to this job", msg)
}

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func serve(t *testing.T, actor domain.Actor, method, body string) resp.Resp {
	t.Helper()
	r := gin.New()
	g := r.Group("", func(c *gin.Context) {
		if actor.ID != "" {
			c.Set(KeyUserID, actor.ID)
			c.Set(KeyRole, string(actor.Role))
			c.Set(KeyStatus, string(actor.Status))
		}
	})
	Register(New(g), Action[echoIn, string]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Roles:  []domain.Role{domain.RoleEmployer},
		Handler: func(_ *gin.Context, a domain.Actor, in *echoIn) (string, error) {
			return a.ID + ":" + in.Name, nil
		},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, "/echo", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegister_RolesAndBinding(t *testing.T) {
	emp := domain.Actor{ID: "e1", Role: domain.RoleEmployer, Status: domain.StatusActive}

	assert.Equal(t, resp.CodeUnauthorized, serve(t, domain.Actor{}, http.MethodPost, `{"name":"x"}`).Code)
	assert.Equal(t, resp.CodeForbidden, serve(t, domain.Actor{ID: "s1", Role: domain.RoleJobSeeker}, http.MethodPost, `{"name":"x"}`).Code)
	assert.Equal(t, resp.CodeBadRequest, serve(t, emp, http.MethodPost, `{}`).Code)

	ok := serve(t, emp, http.MethodPost, `{"name":"x"}`)
	assert.Equal(t, resp.CodeOK, ok.Code)
	assert.Equal(t, "e1:x", ok.Data)
}
