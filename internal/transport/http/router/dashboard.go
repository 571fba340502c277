package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/domain"
	"jobboard/internal/policy"
	"jobboard/internal/transport/http/ez"
)

type dashboardModule struct{ d Deps }

func (*dashboardModule) Priority() int { return 30 }

func (m *dashboardModule) Mount(g *gin.RouterGroup) {
	pol := m.d.Policy
	dash := g.Group(pol.Routes().Dashboard)

	// 按角色跳转到各自的首页；角色未解析时回站点首页
	dash.GET("", func(c *gin.Context) {
		c.Redirect(http.StatusFound, pol.HomeFor(ez.ActorFrom(c).Role))
	})

	ez.Register(ez.New(dash), ez.Action[struct{}, []policy.MenuEntry]{
		Method: http.MethodGet,
		Path:   "/menu",
		Binder: ez.BindNone,
		Handler: func(_ *gin.Context, a domain.Actor, _ *struct{}) ([]policy.MenuEntry, error) {
			menu := pol.Menu(a.Role)
			if menu == nil || a.Status == domain.StatusBlocked {
				return []policy.MenuEntry{}, nil
			}
			return menu, nil
		},
	})
}
