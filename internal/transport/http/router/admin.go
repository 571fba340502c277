package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/domain"
	"jobboard/internal/service"
	"jobboard/internal/transport/http/ez"
)

type adminModule struct{ d Deps }

var adminOnly = []domain.Role{domain.RoleAdmin}

func (m *adminModule) Mount(g *gin.RouterGroup) {
	e := ez.New(g.Group("/dashboard/admin"))
	d := m.d

	ez.Register(e, ez.Action[struct{}, *service.AdminStats]{
		Method: http.MethodGet, Path: "", Binder: ez.BindNone, Roles: adminOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (*service.AdminStats, error) {
			return d.Stats.Admin(c.Request.Context(), a)
		},
	})

	// --- 用户 ---
	type usersQ struct {
		Role   domain.Role          `form:"role"`
		Status domain.AccountStatus `form:"status"`
	}
	ez.Register(e, ez.Action[usersQ, listOut[domain.Account]]{
		Method: http.MethodGet, Path: "/users", Binder: ez.BindQuery, Roles: adminOnly,
		Handler: func(c *gin.Context, a domain.Actor, q *usersQ) (listOut[domain.Account], error) {
			items, err := d.Accounts.List(c.Request.Context(), a, domain.ProfileFilter{Role: q.Role, Status: q.Status})
			return list(items), err
		},
	})
	setStatus := func(st domain.AccountStatus) func(*gin.Context, domain.Actor, *struct{}) (*domain.Account, error) {
		return func(c *gin.Context, a domain.Actor, _ *struct{}) (*domain.Account, error) {
			return d.Accounts.SetStatus(c.Request.Context(), a, c.Param("id"), st)
		}
	}
	ez.Register(e, ez.Action[struct{}, *domain.Account]{
		Method: http.MethodPost, Path: "/users/:id/block", Binder: ez.BindNone, Roles: adminOnly,
		Handler: setStatus(domain.StatusBlocked),
	})
	ez.Register(e, ez.Action[struct{}, *domain.Account]{
		Method: http.MethodPost, Path: "/users/:id/unblock", Binder: ez.BindNone, Roles: adminOnly,
		Handler: setStatus(domain.StatusActive),
	})
	ez.Register(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete, Path: "/users/:id", Binder: ez.BindNone, Roles: adminOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (gin.H, error) {
			if err := d.Accounts.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"deleted": c.Param("id")}, nil
		},
	})

	// --- 岗位审核 ---
	type jobsQ struct {
		jobQuery
		Status domain.JobStatus `form:"status"`
	}
	ez.Register(e, ez.Action[jobsQ, listOut[domain.Job]]{
		Method: http.MethodGet, Path: "/jobs", Binder: ez.BindQuery, Roles: adminOnly,
		Handler: func(c *gin.Context, a domain.Actor, q *jobsQ) (listOut[domain.Job], error) {
			f := q.filter()
			f.Status = q.Status
			items, err := d.Jobs.ListAll(c.Request.Context(), a, f)
			return list(items), err
		},
	})
	ez.Register(e, ez.Action[struct{}, *domain.Job]{
		Method: http.MethodPost, Path: "/jobs/:id/approve", Binder: ez.BindNone, Roles: adminOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (*domain.Job, error) {
			return d.Jobs.Approve(c.Request.Context(), a, c.Param("id"))
		},
	})
	ez.Register(e, ez.Action[struct{}, *domain.Job]{
		Method: http.MethodPost, Path: "/jobs/:id/reject", Binder: ez.BindNone, Roles: adminOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (*domain.Job, error) {
			return d.Jobs.Reject(c.Request.Context(), a, c.Param("id"))
		},
	})
	ez.Register(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete, Path: "/jobs/:id", Binder: ez.BindNone, Roles: adminOnly,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (gin.H, error) {
			if err := d.Jobs.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"deleted": c.Param("id")}, nil
		},
	})

	type appsQ struct {
		JobID  string                   `form:"job_id"`
		Status domain.ApplicationStatus `form:"status"`
	}
	ez.Register(e, ez.Action[appsQ, listOut[domain.Application]]{
		Method: http.MethodGet, Path: "/applications", Binder: ez.BindQuery, Roles: adminOnly,
		Handler: func(c *gin.Context, a domain.Actor, q *appsQ) (listOut[domain.Application], error) {
			items, err := d.Apps.ListAll(c.Request.Context(), a, domain.ApplicationFilter{JobID: q.JobID, Status: q.Status})
			return list(items), err
		},
	})
}
