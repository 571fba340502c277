package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{"job-seeker", RoleJobSeeker, true},
		{" Employer ", RoleEmployer, true},
		{"job_seeker", RoleJobSeeker, true},
		{"superuser", Role("superuser"), false},
		{"", Role(""), false},
	}
	for _, c := range cases {
		got, ok := ParseRole(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.Equal(t, c.want, got, c.in)
		}
	}
}

func TestActorIs(t *testing.T) {
	a := Actor{ID: "u1", Role: RoleEmployer, Status: StatusActive}
	assert.True(t, a.Is(RoleEmployer))
	assert.False(t, a.Is(RoleAdmin))

	a.Status = StatusBlocked
	assert.False(t, a.Is(RoleEmployer))

	// profile unresolved: authenticated but holds no role
	u := Actor{ID: "u2"}
	assert.True(t, u.Authenticated())
	for _, r := range Roles {
		assert.False(t, u.Is(r))
	}
	assert.False(t, Actor{}.Authenticated())
}

func TestJobStatusTransitions(t *testing.T) {
	assert.True(t, JobPending.CanTransitionTo(JobApproved))
	assert.True(t, JobPending.CanTransitionTo(JobRejected))
	assert.False(t, JobPending.CanTransitionTo(JobPending))
	assert.False(t, JobApproved.CanTransitionTo(JobRejected))
	assert.False(t, JobRejected.CanTransitionTo(JobApproved))
}

func TestApplicationStatusTransitions(t *testing.T) {
	allowed := map[[2]ApplicationStatus]bool{
		{ApplicationPending, ApplicationReviewed}:  true,
		{ApplicationPending, ApplicationAccepted}:  true,
		{ApplicationPending, ApplicationRejected}:  true,
		{ApplicationReviewed, ApplicationAccepted}: true,
		{ApplicationReviewed, ApplicationRejected}: true,
	}
	all := []ApplicationStatus{ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]ApplicationStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func int64p(v int64) *int64 { return &v }

func TestJobInputValidate(t *testing.T) {
	valid := JobInput{
		Title: " Backend Engineer ", CompanyName: "Acme", Location: "Berlin",
		JobType: "Full-Time", Description: "Go services",
	}
	valid.Normalize()
	require.NoError(t, valid.Validate())
	assert.Equal(t, "Backend Engineer", valid.Title)
	assert.Equal(t, JobFullTime, valid.JobType)

	in := valid
	in.SalaryMin, in.SalaryMax = int64p(90000), int64p(50000)
	var ve *ValidationError
	require.ErrorAs(t, in.Validate(), &ve)
	assert.Contains(t, ve.Fields, "salary_max")

	in = JobInput{JobType: "freelance", SalaryMin: int64p(-1)}
	require.ErrorAs(t, in.Validate(), &ve)
	for _, k := range []string{"title", "company_name", "location", "job_type", "description", "salary_min"} {
		assert.Contains(t, ve.Fields, k)
	}
}

func TestJobInputValidate_ColumnLengths(t *testing.T) {
	in := JobInput{
		Title: strings.Repeat("a", MaxJobText), CompanyName: strings.Repeat("é", MaxJobText),
		Location: "Berlin", JobType: JobRemote, Description: "Go services",
	}
	require.NoError(t, in.Validate())

	in.Title = strings.Repeat("a", MaxJobText+1)
	in.CompanyName = strings.Repeat("é", MaxJobText+1)
	in.Location = strings.Repeat("x", 500)
	var ve *ValidationError
	require.ErrorAs(t, in.Validate(), &ve)
	assert.Equal(t, "title must be at most 200 characters", ve.Fields["title"])
	assert.Contains(t, ve.Fields, "company_name")
	assert.Contains(t, ve.Fields, "location")
	assert.NotContains(t, ve.Fields, "description")
}

func TestJobInputApplyKeepsStatusAndOwner(t *testing.T) {
	j := &Job{ID: "j1", EmployerID: "e1", Status: JobApproved}
	JobInput{Title: "T", CompanyName: "C", Location: "L", JobType: JobRemote, Description: "D"}.Apply(j)
	assert.Equal(t, "T", j.Title)
	assert.Equal(t, JobApproved, j.Status)
	assert.Equal(t, "e1", j.EmployerID)
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := NewValidationError("invalid job", map[string]string{"b": "second", "a": "first"})
	assert.Equal(t, "invalid job: first; second", err.Error())
}

func TestAccountDisplayName(t *testing.T) {
	a := &Account{Email: "a@x.io"}
	assert.Equal(t, "a@x.io", a.DisplayName())
	name := "Ada"
	a.FullName = &name
	assert.Equal(t, "Ada", a.DisplayName())
}
