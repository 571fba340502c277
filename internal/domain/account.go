package domain

import (
	"context"
	"strings"
	"time"
)

// Role is fixed per account at signup.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEmployer  Role = "employer"
	RoleJobSeeker Role = "job_seeker"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleAdmin, RoleEmployer, RoleJobSeeker}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployer, RoleJobSeeker:
		return true
	}
	return false
}

// ParseRole accepts the stored form and the hyphenated path form ("job-seeker").
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	return r, r.Valid()
}

type AccountStatus string

const (
	StatusActive  AccountStatus = "active"
	StatusBlocked AccountStatus = "blocked"
)

func (s AccountStatus) Valid() bool { return s == StatusActive || s == StatusBlocked }

// Account is a row of the profiles collection.
type Account struct {
	ID           string        `gorm:"primaryKey;size:36" json:"id"`
	Email        string        `gorm:"uniqueIndex;size:191;not null" json:"email"`
	FullName     *string       `gorm:"size:128" json:"full_name"`
	PasswordHash string        `gorm:"size:100;not null" json:"-"`
	Role         Role          `gorm:"size:16;not null;index" json:"role"`
	Status       AccountStatus `gorm:"size:16;not null;default:active;index" json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (Account) TableName() string { return "profiles" }

// DisplayName falls back to the email when no name was given.
func (a *Account) DisplayName() string {
	if a.FullName != nil && strings.TrimSpace(*a.FullName) != "" {
		return *a.FullName
	}
	return a.Email
}

type ProfileFilter struct {
	Role   Role
	Status AccountStatus
}

type ProfileRepository interface {
	Create(ctx context.Context, a *Account) error
	// FindByID returns (nil, nil) when the account does not exist.
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, f ProfileFilter) ([]Account, error)
	Count(ctx context.Context, f ProfileFilter) (int64, error)
	UpdateStatus(ctx context.Context, id string, status AccountStatus) error
	Delete(ctx context.Context, id string) error
}

// Actor is the identity a request acts as, as resolved by the gate.
// Role and Status are empty when the profile could not be read.
type Actor struct {
	ID     string
	Role   Role
	Status AccountStatus
}

func (a Actor) Authenticated() bool { return a.ID != "" }

// Is reports whether the actor holds role r on an account that is not blocked.
func (a Actor) Is(r Role) bool {
	return a.ID != "" && a.Role == r && a.Status != StatusBlocked
}
