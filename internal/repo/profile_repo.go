package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"jobboard/internal/domain"
)

type ProfileRepo struct{ db *gorm.DB }

func NewProfileRepo(db *gorm.DB) *ProfileRepo { return &ProfileRepo{db: db} }

func (r *ProfileRepo) Create(ctx context.Context, a *domain.Account) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateEmail
		}
		return storeErr("create profile", err)
	}
	return nil
}

func (r *ProfileRepo) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ProfileRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *ProfileRepo) first(ctx context.Context, cond string, arg any) (*domain.Account, error) {
	var a domain.Account
	err := r.db.WithContext(ctx).Where(cond, arg).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find profile", err)
	}
	return &a, nil
}

func (r *ProfileRepo) scope(ctx context.Context, f domain.ProfileFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Account{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (r *ProfileRepo) List(ctx context.Context, f domain.ProfileFilter) ([]domain.Account, error) {
	var out []domain.Account
	if err := r.scope(ctx, f).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, storeErr("list profiles", err)
	}
	return out, nil
}

func (r *ProfileRepo) Count(ctx context.Context, f domain.ProfileFilter) (int64, error) {
	var n int64
	if err := r.scope(ctx, f).Count(&n).Error; err != nil {
		return 0, storeErr("count profiles", err)
	}
	return n, nil
}

func (r *ProfileRepo) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return storeErr("update profile status", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProfileRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Account{})
	if res.Error != nil {
		return storeErr("delete profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
