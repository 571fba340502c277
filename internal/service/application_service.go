package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"jobboard/internal/domain"
	"jobboard/pkg/utils"
)

type ApplicationService struct {
	apps domain.ApplicationRepository
	jobs domain.JobRepository
	log  *zap.Logger
}

func NewApplicationService(apps domain.ApplicationRepository, jobs domain.JobRepository, log *zap.Logger) *ApplicationService {
	return &ApplicationService{apps: apps, jobs: jobs, log: nopIfNil(log)}
}

// Apply submits the actor's application to an approved job. Uniqueness per
// (job, applicant) is left to the store; a second submission comes back as
// domain.ErrDuplicateApplication.
func (s *ApplicationService) Apply(ctx context.Context, actor domain.Actor, jobID string, coverLetter string) (*domain.Application, error) {
	if err := requireRole(actor, domain.RoleJobSeeker); err != nil {
		return nil, err
	}
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j == nil || j.Status != domain.JobApproved {
		return nil, domain.ErrNotFound
	}
	a := &domain.Application{
		ID:     utils.NewID(),
		JobID:  j.ID,
		UserID: actor.ID,
		Status: domain.ApplicationPending,
	}
	if cl := strings.TrimSpace(coverLetter); cl != "" {
		a.CoverLetter = &cl
	}
	if err := s.apps.Create(ctx, a); err != nil {
		return nil, err
	}
	a.Job = j
	return a, nil
}

// HasApplied is a read path; store failures read as false.
func (s *ApplicationService) HasApplied(ctx context.Context, actor domain.Actor, jobID string) bool {
	if !actor.Is(domain.RoleJobSeeker) {
		return false
	}
	ok, err := s.apps.Exists(ctx, jobID, actor.ID)
	if err != nil {
		s.log.Warn("applied check failed", zap.String("job_id", jobID), zap.Error(err))
		return false
	}
	return ok
}

func (s *ApplicationService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.Application, error) {
	if err := requireRole(actor, domain.RoleJobSeeker); err != nil {
		return nil, err
	}
	return s.apps.List(ctx, domain.ApplicationFilter{UserID: actor.ID})
}

// ListForJob is open to the job's employer and to admins.
func (s *ApplicationService) ListForJob(ctx context.Context, actor domain.Actor, jobID string) ([]domain.Application, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleEmployer); err != nil {
		return nil, err
	}
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Is(domain.RoleAdmin) && j.EmployerID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return s.apps.List(ctx, domain.ApplicationFilter{JobID: j.ID})
}

func (s *ApplicationService) ListForEmployer(ctx context.Context, actor domain.Actor) ([]domain.Application, error) {
	if err := requireRole(actor, domain.RoleEmployer); err != nil {
		return nil, err
	}
	return s.apps.List(ctx, domain.ApplicationFilter{EmployerID: actor.ID})
}

func (s *ApplicationService) ListAll(ctx context.Context, actor domain.Actor, f domain.ApplicationFilter) ([]domain.Application, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.apps.List(ctx, f)
}

// Transition moves an application along the hiring pipeline. Only the
// employer owning the job, or an admin, may do so.
func (s *ApplicationService) Transition(ctx context.Context, actor domain.Actor, id string, to domain.ApplicationStatus) (*domain.Application, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleEmployer); err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, domain.NewValidationError("invalid status", map[string]string{
			"status": "status must be pending, reviewed, accepted, or rejected",
		})
	}
	a, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if a.Job == nil {
		if a.Job, err = s.jobs.FindByID(ctx, a.JobID); err != nil {
			return nil, err
		}
	}
	if !actor.Is(domain.RoleAdmin) && (a.Job == nil || a.Job.EmployerID != actor.ID) {
		return nil, domain.ErrForbidden
	}
	if !a.Status.CanTransitionTo(to) {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.apps.TransitionStatus(ctx, a.ID, a.Status, to); err != nil {
		return nil, err
	}
	a.Status = to
	return a, nil
}
