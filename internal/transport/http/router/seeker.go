package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/domain"
	"jobboard/internal/service"
	"jobboard/internal/transport/http/ez"
)

type seekerModule struct{ d Deps }

var seekerOnly = []domain.Role{domain.RoleJobSeeker}

func (m *seekerModule) Mount(g *gin.RouterGroup) {
	e := ez.New(g.Group("/dashboard/job-seeker"))
	d := m.d

	ez.Register(e, ez.Action[struct{}, *service.JobSeekerStats]{
		Method: http.MethodGet, Path: "", Binder: ez.BindNone, Roles: seekerOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (*service.JobSeekerStats, error) {
			return d.Stats.JobSeeker(c.Request.Context(), a)
		},
	})
	ez.Register(e, ez.Action[struct{}, listOut[domain.Application]]{
		Method: http.MethodGet, Path: "/applications", Binder: ez.BindNone, Roles: seekerOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (listOut[domain.Application], error) {
			items, err := d.Apps.ListMine(c.Request.Context(), a)
			return list(items), err
		},
	})

	type applyIn struct {
		JobID       string `json:"job_id" binding:"required"`
		CoverLetter string `json:"cover_letter" binding:"max=10000"`
	}
	ez.Register(e, ez.Action[applyIn, *domain.Application]{
		Method: http.MethodPost, Path: "/applications", Binder: ez.BindJSON, Roles: seekerOnly,
		Handler: func(c *gin.Context, a domain.Actor, in *applyIn) (*domain.Application, error) {
			return d.Apps.Apply(c.Request.Context(), a, in.JobID, in.CoverLetter)
		},
	})
}
