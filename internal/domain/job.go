package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type JobType string

const (
	JobFullTime JobType = "full-time"
	JobPartTime JobType = "part-time"
	JobRemote   JobType = "remote"
	JobContract JobType = "contract"
)

func (t JobType) Valid() bool {
	switch t {
	case JobFullTime, JobPartTime, JobRemote, JobContract:
		return true
	}
	return false
}

// JobStatus is the moderation state of a posting.
type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobApproved JobStatus = "approved"
	JobRejected JobStatus = "rejected"
)

func (s JobStatus) Valid() bool {
	return s == JobPending || s == JobApproved || s == JobRejected
}

// CanTransitionTo allows moderation only out of pending.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	return s == JobPending && (next == JobApproved || next == JobRejected)
}

// MaxJobText is the column size of title, company_name and location.
const MaxJobText = 200

type Job struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	EmployerID  string    `gorm:"size:36;not null;index" json:"employer_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	CompanyName string    `gorm:"size:200;not null" json:"company_name"`
	Location    string    `gorm:"size:200;not null" json:"location"`
	JobType     JobType   `gorm:"size:16;not null" json:"job_type"`
	SalaryMin   *int64    `json:"salary_min"`
	SalaryMax   *int64    `json:"salary_max"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Status      JobStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Employer *Account `gorm:"foreignKey:EmployerID;constraint:OnDelete:CASCADE" json:"employer,omitempty"`
}

func (Job) TableName() string { return "jobs" }

// JobInput is the employer-editable part of a posting. Status and
// ownership are never taken from it.
type JobInput struct {
	Title       string  `json:"title"`
	CompanyName string  `json:"company_name"`
	Location    string  `json:"location"`
	JobType     JobType `json:"job_type"`
	SalaryMin   *int64  `json:"salary_min"`
	SalaryMax   *int64  `json:"salary_max"`
	Description string  `json:"description"`
}

func (in *JobInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.JobType = JobType(strings.ToLower(strings.TrimSpace(string(in.JobType))))
}

func (in JobInput) Validate() error {
	fields := map[string]string{}
	text := []struct {
		key, label, val string
	}{
		{"title", "title", in.Title},
		{"company_name", "company name", in.CompanyName},
		{"location", "location", in.Location},
	}
	for _, f := range text {
		switch {
		case f.val == "":
			fields[f.key] = f.label + " is required"
		case utf8.RuneCountInString(f.val) > MaxJobText:
			fields[f.key] = fmt.Sprintf("%s must be at most %d characters", f.label, MaxJobText)
		}
	}
	if !in.JobType.Valid() {
		fields["job_type"] = "job type must be full-time, part-time, remote, or contract"
	}
	if in.Description == "" {
		fields["description"] = "description is required"
	}
	if in.SalaryMin != nil && *in.SalaryMin < 0 {
		fields["salary_min"] = "salary must not be negative"
	}
	if in.SalaryMax != nil && *in.SalaryMax < 0 {
		fields["salary_max"] = "salary must not be negative"
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		fields["salary_max"] = "salary_max must be greater than or equal to salary_min"
	}
	if len(fields) > 0 {
		return NewValidationError("invalid job", fields)
	}
	return nil
}

// Apply copies the editable fields onto j.
func (in JobInput) Apply(j *Job) {
	j.Title = in.Title
	j.CompanyName = in.CompanyName
	j.Location = in.Location
	j.JobType = in.JobType
	j.SalaryMin = in.SalaryMin
	j.SalaryMax = in.SalaryMax
	j.Description = in.Description
}

type JobFilter struct {
	EmployerID string
	Status     JobStatus
	Type       JobType
	Search     string // title, company name or description
	Location   string
}

type JobRepository interface {
	Create(ctx context.Context, j *Job) error
	// FindByID returns (nil, nil) when the job does not exist.
	FindByID(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, f JobFilter) ([]Job, error)
	Count(ctx context.Context, f JobFilter) (int64, error)
	// UpdateFields writes the editable columns. With requeue set the same
	// write also moves the posting from j.Status back to pending, and fails
	// with ErrInvalidTransition if it is no longer in j.Status.
	UpdateFields(ctx context.Context, j *Job, requeue bool) error
	// TransitionStatus moves id from one status to another in a single
	// conditional write. ErrNotFound if the job is gone, ErrInvalidTransition
	// if it is no longer in from.
	TransitionStatus(ctx context.Context, id string, from, to JobStatus) error
	Delete(ctx context.Context, id string) error
}
