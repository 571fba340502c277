package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"

	"jobboard/internal/core/cache"
	"jobboard/internal/domain"
)

const adminStatsKey = "stats:admin"

type AdminStats struct {
	Users        int64 `json:"users"`
	Employers    int64 `json:"employers"`
	JobSeekers   int64 `json:"job_seekers"`
	BlockedUsers int64 `json:"blocked_users"`
	Jobs         int64 `json:"jobs"`
	PendingJobs  int64 `json:"pending_jobs"`
	ApprovedJobs int64 `json:"approved_jobs"`
	Applications int64 `json:"applications"`
}

type EmployerStats struct {
	Jobs         int64 `json:"jobs"`
	PendingJobs  int64 `json:"pending_jobs"`
	ApprovedJobs int64 `json:"approved_jobs"`
	Applications int64 `json:"applications"`
}

type JobSeekerStats struct {
	Applications int64 `json:"applications"`
	Pending      int64 `json:"pending"`
	Reviewed     int64 `json:"reviewed"`
	Accepted     int64 `json:"accepted"`
	Rejected     int64 `json:"rejected"`
}

type HomeStats struct {
	OpenJobs int64 `json:"open_jobs"`
}

// StatsService 仪表盘计数。只有管理员汇总走缓存（cache 可为 nil）。
type StatsService struct {
	profiles domain.ProfileRepository
	jobs     domain.JobRepository
	apps     domain.ApplicationRepository
	cache    cache.Loader
	ttl      time.Duration
	log      *zap.Logger
}

func NewStatsService(profiles domain.ProfileRepository, jobs domain.JobRepository, apps domain.ApplicationRepository, c cache.Loader, ttl time.Duration, log *zap.Logger) *StatsService {
	return &StatsService{profiles: profiles, jobs: jobs, apps: apps, cache: c, ttl: ttl, log: nopIfNil(log)}
}

// counter runs one count into dst.
type counter struct {
	dst *int64
	run func(context.Context) (int64, error)
}

func countAll(ctx context.Context, cs ...counter) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range cs {
		c := c
		g.Go(func() error {
			n, err := c.run(ctx)
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	return g.Wait()
}

func (s *StatsService) profileCount(f domain.ProfileFilter) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) { return s.profiles.Count(ctx, f) }
}

func (s *StatsService) jobCount(f domain.JobFilter) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) { return s.jobs.Count(ctx, f) }
}

func (s *StatsService) appCount(f domain.ApplicationFilter) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) { return s.apps.Count(ctx, f) }
}

func (s *StatsService) Admin(ctx context.Context, actor domain.Actor) (*AdminStats, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return cache.GetOrLoadJSON[AdminStats](s.cache, ctx, adminStatsKey, s.ttl, func(ctx context.Context) (*AdminStats, error) {
		var st AdminStats
		err := countAll(ctx,
			counter{&st.Users, s.profileCount(domain.ProfileFilter{})},
			counter{&st.Employers, s.profileCount(domain.ProfileFilter{Role: domain.RoleEmployer})},
			counter{&st.JobSeekers, s.profileCount(domain.ProfileFilter{Role: domain.RoleJobSeeker})},
			counter{&st.BlockedUsers, s.profileCount(domain.ProfileFilter{Status: domain.StatusBlocked})},
			counter{&st.Jobs, s.jobCount(domain.JobFilter{})},
			counter{&st.PendingJobs, s.jobCount(domain.JobFilter{Status: domain.JobPending})},
			counter{&st.ApprovedJobs, s.jobCount(domain.JobFilter{Status: domain.JobApproved})},
			counter{&st.Applications, s.appCount(domain.ApplicationFilter{})},
		)
		if err != nil {
			return nil, err
		}
		return &st, nil
	})
}

func (s *StatsService) Employer(ctx context.Context, actor domain.Actor) (*EmployerStats, error) {
	if err := requireRole(actor, domain.RoleEmployer); err != nil {
		return nil, err
	}
	var st EmployerStats
	err := countAll(ctx,
		counter{&st.Jobs, s.jobCount(domain.JobFilter{EmployerID: actor.ID})},
		counter{&st.PendingJobs, s.jobCount(domain.JobFilter{EmployerID: actor.ID, Status: domain.JobPending})},
		counter{&st.ApprovedJobs, s.jobCount(domain.JobFilter{EmployerID: actor.ID, Status: domain.JobApproved})},
		counter{&st.Applications, s.appCount(domain.ApplicationFilter{EmployerID: actor.ID})},
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *StatsService) JobSeeker(ctx context.Context, actor domain.Actor) (*JobSeekerStats, error) {
	if err := requireRole(actor, domain.RoleJobSeeker); err != nil {
		return nil, err
	}
	mine := func(st domain.ApplicationStatus) domain.ApplicationFilter {
		return domain.ApplicationFilter{UserID: actor.ID, Status: st}
	}
	var st JobSeekerStats
	err := countAll(ctx,
		counter{&st.Applications, s.appCount(mine(""))},
		counter{&st.Pending, s.appCount(mine(domain.ApplicationPending))},
		counter{&st.Reviewed, s.appCount(mine(domain.ApplicationReviewed))},
		counter{&st.Accepted, s.appCount(mine(domain.ApplicationAccepted))},
		counter{&st.Rejected, s.appCount(mine(domain.ApplicationRejected))},
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Home is public; a store failure reads as zero.
func (s *StatsService) Home(ctx context.Context) HomeStats {
	n, err := s.jobs.Count(ctx, domain.JobFilter{Status: domain.JobApproved})
	if err != nil {
		s.log.Warn("home stats failed", zap.Error(err))
		return HomeStats{}
	}
	return HomeStats{OpenJobs: n}
}
