package service

import (
	"context"

	"go.uber.org/zap"

	"jobboard/internal/core/cache"
	"jobboard/internal/domain"
	"jobboard/pkg/utils"
)

type JobService struct {
	jobs domain.JobRepository
	log  *zap.Logger
	// 编辑已审核岗位时是否退回 pending 重新审核
	reReviewOnEdit bool
	stats          cache.Invalidator
}

func NewJobService(jobs domain.JobRepository, log *zap.Logger, reReviewOnEdit bool) *JobService {
	return &JobService{jobs: jobs, log: nopIfNil(log), reReviewOnEdit: reReviewOnEdit}
}

// WithStatsCache makes status changes and deletes drop the cached admin totals.
func (s *JobService) WithStatsCache(inv cache.Invalidator) *JobService {
	s.stats = inv
	return s
}

func (s *JobService) invalidate(ctx context.Context) { dropAdminStats(ctx, s.stats, s.log) }

// Create always stores a pending posting owned by the actor.
func (s *JobService) Create(ctx context.Context, actor domain.Actor, in domain.JobInput) (*domain.Job, error) {
	if err := requireRole(actor, domain.RoleEmployer); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	j := &domain.Job{
		ID:         utils.NewID(),
		EmployerID: actor.ID,
		Status:     domain.JobPending,
	}
	in.Apply(j)
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return j, nil
}

// Update edits the fields of a posting the actor owns. Status is kept
// unless re-review on edit is enabled.
func (s *JobService) Update(ctx context.Context, actor domain.Actor, id string, in domain.JobInput) (*domain.Job, error) {
	if err := requireRole(actor, domain.RoleEmployer); err != nil {
		return nil, err
	}
	j, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.EmployerID != actor.ID {
		return nil, domain.ErrForbidden
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.Apply(j)
	requeue := s.reReviewOnEdit && j.Status != domain.JobPending
	if err := s.jobs.UpdateFields(ctx, j, requeue); err != nil {
		return nil, err
	}
	if requeue {
		j.Status = domain.JobPending
		s.invalidate(ctx)
	}
	return j, nil
}

func (s *JobService) Approve(ctx context.Context, actor domain.Actor, id string) (*domain.Job, error) {
	return s.moderate(ctx, actor, id, domain.JobApproved)
}

func (s *JobService) Reject(ctx context.Context, actor domain.Actor, id string) (*domain.Job, error) {
	return s.moderate(ctx, actor, id, domain.JobRejected)
}

func (s *JobService) moderate(ctx context.Context, actor domain.Actor, id string, to domain.JobStatus) (*domain.Job, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	j, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	if !j.Status.CanTransitionTo(to) {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.jobs.TransitionStatus(ctx, j.ID, j.Status, to); err != nil {
		return nil, err
	}
	s.log.Info("job moderated", zap.String("job_id", j.ID), zap.String("status", string(to)), zap.String("by", actor.ID))
	s.invalidate(ctx)
	j.Status = to
	return j, nil
}

// Delete is allowed to the owning employer and to admins, from any status.
func (s *JobService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleEmployer); err != nil {
		return err
	}
	j, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Is(domain.RoleAdmin) && j.EmployerID != actor.ID {
		return domain.ErrForbidden
	}
	if err := s.jobs.Delete(ctx, j.ID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// GetPublic returns an approved posting. Missing and unapproved postings
// are indistinguishable.
func (s *JobService) GetPublic(ctx context.Context, id string) (*domain.Job, error) {
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		s.log.Warn("public job read failed", zap.String("job_id", id), zap.Error(err))
		return nil, domain.ErrNotFound
	}
	if j == nil || j.Status != domain.JobApproved {
		return nil, domain.ErrNotFound
	}
	return j, nil
}

// Get applies the owner/admin visibility rule; everyone else gets GetPublic.
func (s *JobService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Job, error) {
	if !actor.Is(domain.RoleAdmin) && !actor.Is(domain.RoleEmployer) {
		return s.GetPublic(ctx, id)
	}
	j, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Is(domain.RoleAdmin) || j.EmployerID == actor.ID || j.Status == domain.JobApproved {
		return j, nil
	}
	return nil, domain.ErrNotFound
}

// ListPublic lists approved postings, newest first. Store failures read as empty.
func (s *JobService) ListPublic(ctx context.Context, f domain.JobFilter) []domain.Job {
	f.Status = domain.JobApproved
	f.EmployerID = ""
	items, err := s.jobs.List(ctx, f)
	if err != nil {
		s.log.Warn("public job list failed", zap.Error(err))
		return []domain.Job{}
	}
	return items
}

func (s *JobService) ListForEmployer(ctx context.Context, actor domain.Actor, f domain.JobFilter) ([]domain.Job, error) {
	if err := requireRole(actor, domain.RoleEmployer); err != nil {
		return nil, err
	}
	f.EmployerID = actor.ID
	return s.jobs.List(ctx, f)
}

func (s *JobService) ListAll(ctx context.Context, actor domain.Actor, f domain.JobFilter) ([]domain.Job, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.jobs.List(ctx, f)
}

func (s *JobService) mustFind(ctx context.Context, id string) (*domain.Job, error) {
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, domain.ErrNotFound
	}
	return j, nil
}
