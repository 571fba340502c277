package domain

import (
	"context"
	"time"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// accepted and rejected are terminal.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:  {ApplicationReviewed, ApplicationAccepted, ApplicationRejected},
	ApplicationReviewed: {ApplicationAccepted, ApplicationRejected},
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, n := range applicationTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Application is unique per (job, applicant); the store enforces it.
type Application struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	JobID       string            `gorm:"size:36;not null;uniqueIndex:idx_applications_job_user" json:"job_id"`
	UserID      string            `gorm:"size:36;not null;uniqueIndex:idx_applications_job_user;index" json:"user_id"`
	Status      ApplicationStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CoverLetter *string           `gorm:"type:text" json:"cover_letter"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`

	Job  *Job     `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"job,omitempty"`
	User *Account `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (Application) TableName() string { return "applications" }

type ApplicationFilter struct {
	JobID  string
	UserID string
	// EmployerID selects applications to jobs owned by this employer.
	EmployerID string
	Status     ApplicationStatus
}

type ApplicationRepository interface {
	// Create returns ErrDuplicateApplication when (job, user) already exists.
	Create(ctx context.Context, a *Application) error
	// FindByID returns (nil, nil) when missing; Job is preloaded.
	FindByID(ctx context.Context, id string) (*Application, error)
	List(ctx context.Context, f ApplicationFilter) ([]Application, error)
	Count(ctx context.Context, f ApplicationFilter) (int64, error)
	Exists(ctx context.Context, jobID, userID string) (bool, error)
	TransitionStatus(ctx context.Context, id string, from, to ApplicationStatus) error
}
