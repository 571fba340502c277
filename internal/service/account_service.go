package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"jobboard/internal/core/cache"
	"jobboard/internal/domain"
	"jobboard/pkg/utils"
)

// profiles 表列宽
const (
	maxEmailLen    = 191
	maxFullNameLen = 128
)

type AccountService struct {
	profiles domain.ProfileRepository
	log      *zap.Logger
	stats    cache.Invalidator
}

func NewAccountService(profiles domain.ProfileRepository, log *zap.Logger) *AccountService {
	return &AccountService{profiles: profiles, log: nopIfNil(log)}
}

// WithStatsCache makes account writes drop the cached admin totals.
func (s *AccountService) WithStatsCache(inv cache.Invalidator) *AccountService {
	s.stats = inv
	return s
}

type SignupInput struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	FullName string      `json:"full_name" binding:"omitempty,max=128"`
	Role     domain.Role `json:"role" binding:"required"`
}

// Signup creates an active employer or job seeker. Admins are only made by CreateAdmin.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*domain.Account, error) {
	role, ok := domain.ParseRole(string(in.Role))
	if !ok || role == domain.RoleAdmin {
		return nil, domain.NewValidationError("invalid signup", map[string]string{
			"role": "role must be employer or job_seeker",
		})
	}
	return s.create(ctx, in.Email, in.Password, in.FullName, role)
}

func (s *AccountService) CreateAdmin(ctx context.Context, email, password, fullName string) (*domain.Account, error) {
	return s.create(ctx, email, password, fullName, domain.RoleAdmin)
}

func (s *AccountService) create(ctx context.Context, email, password, fullName string, role domain.Role) (*domain.Account, error) {
	email = normalizeEmail(email)
	fields := map[string]string{}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email || len(email) > maxEmailLen {
		fields["email"] = "a valid email is required"
	}
	fullName = strings.TrimSpace(fullName)
	if utf8.RuneCountInString(fullName) > maxFullNameLen {
		fields["full_name"] = "full name must be at most 128 characters"
	}
	hash, err := utils.HashPassword(password)
	if errors.Is(err, utils.ErrWeakPassword) {
		fields["password"] = err.Error()
	} else if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError("invalid account", fields)
	}
	a := &domain.Account{
		ID:           utils.NewID(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
	}
	if fullName != "" {
		a.FullName = &fullName
	}
	if err := s.profiles.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("account created", zap.String("user_id", a.ID), zap.String("role", string(role)))
	dropAdminStats(ctx, s.stats, s.log)
	return a, nil
}

// Authenticate checks credentials. Blocked accounts still authenticate;
// the gate sends them to the blocked page on their next request.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	a, err := s.profiles.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if a == nil || !utils.CheckPassword(password, a.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return a, nil
}

// RoleAndStatus is the profile lookup behind the gate: ErrNotFound when
// the profile does not exist, the store error otherwise.
func (s *AccountService) RoleAndStatus(ctx context.Context, userID string) (domain.Role, domain.AccountStatus, error) {
	a, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	if a == nil {
		return "", "", domain.ErrNotFound
	}
	return a.Role, a.Status, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	a, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (s *AccountService) List(ctx context.Context, actor domain.Actor, f domain.ProfileFilter) ([]domain.Account, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.profiles.List(ctx, f)
}

func (s *AccountService) Block(ctx context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	return s.SetStatus(ctx, actor, id, domain.StatusBlocked)
}

func (s *AccountService) Unblock(ctx context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	return s.SetStatus(ctx, actor, id, domain.StatusActive)
}

// SetStatus takes effect on the target's next request: the gate reads
// status fresh every time.
func (s *AccountService) SetStatus(ctx context.Context, actor domain.Actor, id string, status domain.AccountStatus) (*domain.Account, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("invalid status", map[string]string{"status": "status must be active or blocked"})
	}
	target, err := s.protectedTarget(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateStatus(ctx, target.ID, status); err != nil {
		return nil, err
	}
	s.log.Info("account status changed", zap.String("user_id", target.ID), zap.String("status", string(status)), zap.String("by", actor.ID))
	dropAdminStats(ctx, s.stats, s.log)
	target.Status = status
	return target, nil
}

// Delete removes the account; the store cascades to its jobs and applications.
func (s *AccountService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	target, err := s.protectedTarget(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.profiles.Delete(ctx, target.ID); err != nil {
		return err
	}
	s.log.Info("account deleted", zap.String("user_id", target.ID), zap.String("by", actor.ID))
	dropAdminStats(ctx, s.stats, s.log)
	return nil
}

// protectedTarget loads an account an admin may act on: never themselves, never another admin.
func (s *AccountService) protectedTarget(ctx context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if id == actor.ID {
		return nil, domain.ErrSelfAction
	}
	target, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleAdmin {
		return nil, domain.ErrAdminProtected
	}
	return target, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
