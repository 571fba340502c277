package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"jobboard/internal/domain"
)

type JobRepo struct{ db *gorm.DB }

func NewJobRepo(db *gorm.DB) *JobRepo { return &JobRepo{db: db} }

func (r *JobRepo) Create(ctx context.Context, j *domain.Job) error {
	return storeErr("create job", r.db.WithContext(ctx).Omit("Employer").Create(j).Error)
}

// employerCard 只带岗位页展示的雇主字段
func employerCard(tx *gorm.DB) *gorm.DB { return tx.Select("id", "full_name", "email") }

func (r *JobRepo) FindByID(ctx context.Context, id string) (*domain.Job, error) {
	var j domain.Job
	err := r.db.WithContext(ctx).Preload("Employer", employerCard).Where("id = ?", id).First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find job", err)
	}
	return &j, nil
}

func (r *JobRepo) scope(ctx context.Context, f domain.JobFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Job{})
	if f.EmployerID != "" {
		q = q.Where("employer_id = ?", f.EmployerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("job_type = ?", f.Type)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(company_name) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	return q
}

func (r *JobRepo) List(ctx context.Context, f domain.JobFilter) ([]domain.Job, error) {
	var out []domain.Job
	if err := r.scope(ctx, f).Preload("Employer", employerCard).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, storeErr("list jobs", err)
	}
	return out, nil
}

func (r *JobRepo) Count(ctx context.Context, f domain.JobFilter) (int64, error) {
	var n int64
	if err := r.scope(ctx, f).Count(&n).Error; err != nil {
		return 0, storeErr("count jobs", err)
	}
	return n, nil
}

var editableJobColumns = []string{"title", "company_name", "location", "job_type", "salary_min", "salary_max", "description", "updated_at"}

func (r *JobRepo) UpdateFields(ctx context.Context, j *domain.Job, requeue bool) error {
	cols := editableJobColumns
	vals := map[string]any{
		"title":        j.Title,
		"company_name": j.CompanyName,
		"location":     j.Location,
		"job_type":     j.JobType,
		"salary_min":   j.SalaryMin,
		"salary_max":   j.SalaryMax,
		"description":  j.Description,
	}
	q := r.db.WithContext(ctx).Model(&domain.Job{ID: j.ID})
	if requeue {
		// 字段与状态一条 UPDATE 写入，不会出现改了内容却仍是 approved 的半成品
		cols = append(append([]string{}, cols...), "status")
		vals["status"] = domain.JobPending
		q = q.Where("status = ?", j.Status)
	}
	res := q.Select(cols).Updates(vals)
	if res.Error != nil {
		return storeErr("update job", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if !requeue {
		return domain.ErrNotFound
	}
	cur, err := r.FindByID(ctx, j.ID)
	if err != nil {
		return err
	}
	if cur == nil {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidTransition
}

func (r *JobRepo) TransitionStatus(ctx context.Context, id string, from, to domain.JobStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return storeErr("update job status", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	cur, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidTransition
}

func (r *JobRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Job{})
	if res.Error != nil {
		return storeErr("delete job", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
