// Package ez registers JSON actions in one call: bind, run, map errors
// onto the {code,msg,data} envelope.
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard/internal/domain"
	resp "jobboard/internal/transport/http/response"
)

// gin 上下文里由 Gate 写入的键
const (
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyStatus = "status"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// AErr 统一错误对象
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func NotFound(msg string) error   { return &AErr{Code: resp.CodeNotFound, Msg: msg} }

// Action 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method string // "GET" | "POST" | "PUT" | "DELETE"
	Path   string
	Binder Binder
	// Roles 非空时要求已登录且角色匹配（账号未被封禁）
	Roles   []domain.Role
	Handler func(c *gin.Context, actor domain.Actor, in *I) (O, error)
}

// Register 在当前分组下注册动作
func Register[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		actor := ActorFrom(c)
		if len(a.Roles) > 0 {
			if !actor.Authenticated() {
				c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			ok := false
			for _, r := range a.Roles {
				if actor.Is(r) {
					ok = true
					break
				}
			}
			if !ok {
				c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		out, err := a.Handler(c, actor, &in)
		if err != nil {
			Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// ActorFrom reads the identity the gate stored on c.
func ActorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		ID:     c.GetString(KeyUserID),
		Role:   domain.Role(c.GetString(KeyRole)),
		Status: domain.AccountStatus(c.GetString(KeyStatus)),
	}
}

// Fail writes err as an envelope.
func Fail(c *gin.Context, err error) {
	code, msg, data := Map(err)
	if code >= resp.CodeServerError {
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, resp.ErrorWith(code, msg, data))
}

// Map turns an error into envelope code, message and optional detail.
// Internal failures never leak their text.
func Map(err error) (int, string, any) {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae.Code, ae.Error(), nil
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return resp.CodeBadRequest, ve.Msg, ve.Fields
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return resp.CodeNotFound, "not found", nil
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials):
		return resp.CodeUnauthorized, err.Error(), nil
	case errors.Is(err, domain.ErrForbidden):
		return resp.CodeForbidden, "forbidden", nil
	case errors.Is(err, domain.ErrAdminProtected):
		return resp.CodeForbidden, domain.ErrAdminProtected.Error(), nil
	case errors.Is(err, domain.ErrSelfAction):
		return resp.CodeForbidden, domain.ErrSelfAction.Error(), nil
	case errors.Is(err, domain.ErrDuplicateApplication):
		return resp.CodeConflict, domain.ErrDuplicateApplication.Error(), nil
	case errors.Is(err, domain.ErrDuplicateEmail):
		return resp.CodeConflict, domain.ErrDuplicateEmail.Error(), nil
	case errors.Is(err, domain.ErrInvalidTransition):
		return resp.CodeBadRequest, domain.ErrInvalidTransition.Error(), nil
	case errors.Is(err, domain.ErrUnavailable):
		return resp.CodeUnavailable, domain.ErrUnavailable.Error(), nil
	}
	return resp.CodeServerError, "internal error", nil
}
