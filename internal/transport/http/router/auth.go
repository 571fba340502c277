package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard/internal/domain"
	"jobboard/internal/service"
	"jobboard/internal/transport/http/ez"
	mdw "jobboard/internal/transport/http/middleware"
)

type authModule struct{ d Deps }

func (*authModule) Priority() int { return 10 }

type sessionOut struct {
	Token    string          `json:"token"`
	User     *domain.Account `json:"user"`
	Redirect string          `json:"redirect"`
}

func (m *authModule) Mount(g *gin.RouterGroup) {
	e := ez.New(g.Group("/auth"))
	pol, sess := m.d.Policy, m.d.Sessions

	// 公开注册：只允许 employer / job_seeker
	ez.Register(e, ez.Action[service.SignupInput, sessionOut]{
		Method: http.MethodPost,
		Path:   "/signup",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Actor, in *service.SignupInput) (sessionOut, error) {
			a, err := m.d.Accounts.Signup(c.Request.Context(), *in)
			if err != nil {
				return sessionOut{}, err
			}
			tok, err := sess.Start(c.Writer, a.ID)
			if err != nil {
				return sessionOut{}, err
			}
			return sessionOut{Token: tok, User: a, Redirect: pol.HomeFor(a.Role)}, nil
		},
	})

	type loginIn struct {
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required"`
		RedirectTo string `json:"redirectTo"`
	}
	ez.Register(e, ez.Action[loginIn, sessionOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Actor, in *loginIn) (sessionOut, error) {
			a, err := m.d.Accounts.Authenticate(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return sessionOut{}, err
			}
			tok, err := sess.Start(c.Writer, a.ID)
			if err != nil {
				return sessionOut{}, err
			}
			return sessionOut{Token: tok, User: a, Redirect: pol.SafeReturn(in.RedirectTo)}, nil
		},
	})

	// 外部登录回跳：校验 token 后落 cookie
	g.GET("/auth/callback", func(c *gin.Context) {
		routes := pol.Routes()
		tok := c.Query("token")
		if tok == "" {
			c.Redirect(http.StatusFound, routes.Login)
			return
		}
		if _, err := sess.JWT.Parse(tok); err != nil {
			m.d.Log.Info("callback token rejected", zap.Error(err))
			c.Redirect(http.StatusFound, routes.Login)
			return
		}
		sess.SetCookie(c.Writer, tok)
		c.Redirect(http.StatusFound, pol.SafeReturn(c.Query(routes.ReturnParam)))
	})

	ez.Register(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/blocked",
		Binder: ez.BindNone,
		Handler: func(*gin.Context, domain.Actor, *struct{}) (gin.H, error) {
			return gin.H{"blocked": true, "message": "Your account has been blocked. Contact an administrator."}, nil
		},
	})

	logout := func(c *gin.Context, _ domain.Actor, _ *struct{}) (gin.H, error) {
		if id, ok := mdw.IdentityFrom(c); ok {
			if err := sess.End(c.Request.Context(), c.Writer, id); err != nil {
				m.d.Log.Warn("session revoke failed", zap.String("user_id", id.UserID), zap.Error(err))
			}
		} else {
			sess.ClearCookie(c.Writer)
		}
		return gin.H{"redirect": pol.Routes().Login}, nil
	}
	ez.Register(e, ez.Action[struct{}, gin.H]{Method: http.MethodPost, Path: "/logout", Binder: ez.BindNone, Handler: logout})
	// 被封禁的用户只能到达 /auth/blocked，在这里退出登录
	ez.Register(e, ez.Action[struct{}, gin.H]{Method: http.MethodPost, Path: "/blocked", Binder: ez.BindNone, Handler: logout})
}
