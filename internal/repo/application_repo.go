package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"jobboard/internal/domain"
)

type ApplicationRepo struct{ db *gorm.DB }

func NewApplicationRepo(db *gorm.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

// Create relies on the (job_id, user_id) unique index; two racing inserts
// cannot both succeed.
func (r *ApplicationRepo) Create(ctx context.Context, a *domain.Application) error {
	err := r.db.WithContext(ctx).Omit("Job", "User").Create(a).Error
	if err == nil {
		return nil
	}
	if isDupKey(err) {
		return domain.ErrDuplicateApplication
	}
	return storeErr("create application", err)
}

func (r *ApplicationRepo) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	var a domain.Application
	err := r.db.WithContext(ctx).Preload("Job").Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find application", err)
	}
	return &a, nil
}

func (r *ApplicationRepo) scope(ctx context.Context, f domain.ApplicationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Application{})
	if f.JobID != "" {
		q = q.Where("applications.job_id = ?", f.JobID)
	}
	if f.UserID != "" {
		q = q.Where("applications.user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("applications.status = ?", f.Status)
	}
	if f.EmployerID != "" {
		q = q.Where("applications.job_id IN (?)",
			r.db.Model(&domain.Job{}).Select("id").Where("employer_id = ?", f.EmployerID))
	}
	return q
}

func (r *ApplicationRepo) List(ctx context.Context, f domain.ApplicationFilter) ([]domain.Application, error) {
	var out []domain.Application
	err := r.scope(ctx, f).
		Preload("Job").
		Preload("User").
		Order("applications.created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, storeErr("list applications", err)
	}
	return out, nil
}

func (r *ApplicationRepo) Count(ctx context.Context, f domain.ApplicationFilter) (int64, error) {
	var n int64
	if err := r.scope(ctx, f).Count(&n).Error; err != nil {
		return 0, storeErr("count applications", err)
	}
	return n, nil
}

func (r *ApplicationRepo) Exists(ctx context.Context, jobID, userID string) (bool, error) {
	n, err := r.Count(ctx, domain.ApplicationFilter{JobID: jobID, UserID: userID})
	return n > 0, err
}

func (r *ApplicationRepo) TransitionStatus(ctx context.Context, id string, from, to domain.ApplicationStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Application{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return storeErr("update application status", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Application{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return storeErr("find application", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidTransition
}
