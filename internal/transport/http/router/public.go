package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobboard/internal/domain"
	"jobboard/internal/policy"
	"jobboard/internal/service"
	"jobboard/internal/transport/http/ez"
)

// publicModule serves the home page and the approved-job board.
type publicModule struct{ d Deps }

func (*publicModule) Priority() int { return 20 }

type homeOut struct {
	Stats         service.HomeStats  `json:"stats"`
	Authenticated bool               `json:"authenticated"`
	Menu          []policy.MenuEntry `json:"menu"`
}

type jobQuery struct {
	Search   string         `form:"search"`
	Type     domain.JobType `form:"type"`
	Location string         `form:"location"`
}

func (q jobQuery) filter() domain.JobFilter {
	return domain.JobFilter{Search: q.Search, Type: q.Type, Location: q.Location}
}

type jobDetailOut struct {
	Job     publicJob `json:"job"`
	Applied bool      `json:"applied"`
}

type employerCard struct {
	FullName *string `json:"full_name"`
	Email    string  `json:"email"`
}

// publicJob is what anonymous visitors see of a posting: no account
// role, status or timestamps of the employer.
type publicJob struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	CompanyName string           `json:"company_name"`
	Location    string           `json:"location"`
	JobType     domain.JobType   `json:"job_type"`
	SalaryMin   *int64           `json:"salary_min"`
	SalaryMax   *int64           `json:"salary_max"`
	Description string           `json:"description"`
	Status      domain.JobStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Employer    *employerCard    `json:"employer,omitempty"`
}

func toPublicJob(j *domain.Job) publicJob {
	out := publicJob{
		ID: j.ID, Title: j.Title, CompanyName: j.CompanyName, Location: j.Location,
		JobType: j.JobType, SalaryMin: j.SalaryMin, SalaryMax: j.SalaryMax,
		Description: j.Description, Status: j.Status, CreatedAt: j.CreatedAt,
	}
	if j.Employer != nil {
		out.Employer = &employerCard{FullName: j.Employer.FullName, Email: j.Employer.Email}
	}
	return out
}

func (m *publicModule) Mount(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.Register(e, ez.Action[struct{}, homeOut]{
		Method: http.MethodGet,
		Path:   "/",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (homeOut, error) {
			menu := m.d.Policy.Menu(a.Role)
			if menu == nil {
				menu = []policy.MenuEntry{}
			}
			return homeOut{
				Stats:         m.d.Stats.Home(c.Request.Context()),
				Authenticated: a.Authenticated(),
				Menu:          menu,
			}, nil
		},
	})

	ez.Register(e, ez.Action[jobQuery, listOut[publicJob]]{
		Method: http.MethodGet,
		Path:   "/jobs",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ domain.Actor, q *jobQuery) (listOut[publicJob], error) {
			jobs := m.d.Jobs.ListPublic(c.Request.Context(), q.filter())
			items := make([]publicJob, 0, len(jobs))
			for i := range jobs {
				items = append(items, toPublicJob(&jobs[i]))
			}
			return list(items), nil
		},
	})

	ez.Register(e, ez.Action[struct{}, jobDetailOut]{
		Method: http.MethodGet,
		Path:   "/jobs/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, a domain.Actor, _ *struct{}) (jobDetailOut, error) {
			j, err := m.d.Jobs.GetPublic(c.Request.Context(), c.Param("id"))
			if err != nil {
				return jobDetailOut{}, err
			}
			return jobDetailOut{Job: toPublicJob(j), Applied: m.d.Apps.HasApplied(c.Request.Context(), a, j.ID)}, nil
		},
	})
}
