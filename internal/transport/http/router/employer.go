package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/domain"
	"jobboard/internal/service"
	"jobboard/internal/transport/http/ez"
)

type employerModule struct{ d Deps }

var employerOnly = []domain.Role{domain.RoleEmployer}

type jobFormOut struct {
	JobTypes []domain.JobType `json:"job_types"`
	Required []string         `json:"required"`
}

func (m *employerModule) Mount(g *gin.RouterGroup) {
	e := ez.New(g.Group("/dashboard/employer"))
	d := m.d

	ez.Register(e, ez.Action[struct{}, *service.EmployerStats]{
		Method: http.MethodGet, Path: "", Binder: ez.BindNone, Roles: employerOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (*service.EmployerStats, error) {
			return d.Stats.Employer(c.Request.Context(), a)
		},
	})

	type mineQ struct {
		Status domain.JobStatus `form:"status"`
	}
	ez.Register(e, ez.Action[mineQ, listOut[domain.Job]]{
		Method: http.MethodGet, Path: "/jobs", Binder: ez.BindQuery, Roles: employerOnly,
		Handler: func(c *gin.Context, a domain.Actor, q *mineQ) (listOut[domain.Job], error) {
			items, err := d.Jobs.ListForEmployer(c.Request.Context(), a, domain.JobFilter{Status: q.Status})
			return list(items), err
		},
	})

	// 发布表单的元数据
	ez.Register(e, ez.Action[struct{}, jobFormOut]{
		Method: http.MethodGet, Path: "/jobs/new", Binder: ez.BindNone, Roles: employerOnly,
		Handler: func(*gin.Context, domain.Actor, *struct{}) (jobFormOut, error) {
			return jobFormOut{
				JobTypes: []domain.JobType{domain.JobFullTime, domain.JobPartTime, domain.JobRemote, domain.JobContract},
				Required: []string{"title", "company_name", "location", "job_type", "description"},
			}, nil
		},
	})

	// status / employer_id 不在 JobInput 里，客户端传了也会被忽略
	ez.Register(e, ez.Action[domain.JobInput, *domain.Job]{
		Method: http.MethodPost, Path: "/jobs", Binder: ez.BindJSON, Roles: employerOnly,
		Handler: func(c *gin.Context, a domain.Actor, in *domain.JobInput) (*domain.Job, error) {
			return d.Jobs.Create(c.Request.Context(), a, *in)
		},
	})
	ez.Register(e, ez.Action[struct{}, *domain.Job]{
		Method: http.MethodGet, Path: "/jobs/:id", Binder: ez.BindNone, Roles: employerOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (*domain.Job, error) {
			return d.Jobs.Get(c.Request.Context(), a, c.Param("id"))
		},
	})
	ez.Register(e, ez.Action[domain.JobInput, *domain.Job]{
		Method: http.MethodPut, Path: "/jobs/:id", Binder: ez.BindJSON, Roles: employerOnly,
		Handler: func(c *gin.Context, a domain.Actor, in *domain.JobInput) (*domain.Job, error) {
			return d.Jobs.Update(c.Request.Context(), a, c.Param("id"), *in)
		},
	})
	ez.Register(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete, Path: "/jobs/:id", Binder: ez.BindNone, Roles: employerOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (gin.H, error) {
			if err := d.Jobs.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"deleted": c.Param("id")}, nil
		},
	})

	ez.Register(e, ez.Action[struct{}, listOut[domain.Application]]{
		Method: http.MethodGet, Path: "/jobs/:id/applications", Binder: ez.BindNone, Roles: employerOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (listOut[domain.Application], error) {
			items, err := d.Apps.ListForJob(c.Request.Context(), a, c.Param("id"))
			return list(items), err
		},
	})
	ez.Register(e, ez.Action[struct{}, listOut[domain.Application]]{
		Method: http.MethodGet, Path: "/applications", Binder: ez.BindNone, Roles: employerOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (listOut[domain.Application], error) {
			items, err := d.Apps.ListForEmployer(c.Request.Context(), a)
			return list(items), err
		},
	})

	type statusIn struct {
		Status domain.ApplicationStatus `json:"status" binding:"required"`
	}
	ez.Register(e, ez.Action[statusIn, *domain.Application]{
		Method: http.MethodPost, Path: "/applications/:id/status", Binder: ez.BindJSON, Roles: employerOnly,
		Handler: func(c *gin.Context, a domain.Actor, in *statusIn) (*domain.Application, error) {
			return d.Apps.Transition(c.Request.Context(), a, c.Param("id"), in.Status)
		},
	})
}
