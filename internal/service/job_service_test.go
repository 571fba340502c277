package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/domain"
)

func validInput() domain.JobInput {
	return domain.JobInput{
		Title: "Backend Engineer", CompanyName: "Acme", Location: "Berlin",
		JobType: domain.JobFullTime, Description: "Go services",
	}
}

func TestJobCreate_AlwaysPendingAndOwned(t *testing.T) {
	f := newFixture(false)
	emp := f.account("e1", domain.RoleEmployer)

	// 客户端塞进来的 status / employer_id 会被 JobInput 丢掉
	var in domain.JobInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"title":"Backend Engineer","company_name":"Acme","location":"Berlin",
		"job_type":"full-time","description":"Go","status":"approved","employer_id":"someone-else"}`), &in))

	j, err := f.jobs.Create(context.Background(), emp, in)
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, j.Status)
	assert.Equal(t, "e1", j.EmployerID)

	stored := f.store.Jobs[j.ID]
	assert.Equal(t, domain.JobPending, stored.Status)
}

func TestJobCreate_RequiresEmployer(t *testing.T) {
	f := newFixture(false)
	seeker := f.account("s1", domain.RoleJobSeeker)

	_, err := f.jobs.Create(context.Background(), domain.Actor{}, validInput())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = f.jobs.Create(context.Background(), seeker, validInput())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	blocked := domain.Actor{ID: "e2", Role: domain.RoleEmployer, Status: domain.StatusBlocked}
	_, err = f.jobs.Create(context.Background(), blocked, validInput())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestJobCreate_Validation(t *testing.T) {
	f := newFixture(false)
	emp := f.account("e1", domain.RoleEmployer)
	in := validInput()
	in.Title = "  "

	_, err := f.jobs.Create(context.Background(), emp, in)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "title")
	assert.Empty(t, f.store.Jobs)
}

func TestApproveThenPublicFetch(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	admin := f.account("a1", domain.RoleAdmin)
	f.account("e1", domain.RoleEmployer)
	f.job("J1", "e1", domain.JobPending)

	_, err := f.jobs.GetPublic(ctx, "J1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.jobs.Approve(ctx, admin, "J1")
	require.NoError(t, err)

	j, err := f.jobs.GetPublic(ctx, "J1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobApproved, j.Status)
}

func TestModeration_OnlyAdminsOnlyFromPending(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	admin := f.account("a1", domain.RoleAdmin)
	emp := f.account("e1", domain.RoleEmployer)
	f.job("J1", "e1", domain.JobPending)

	_, err := f.jobs.Approve(ctx, emp, "J1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.jobs.Reject(ctx, admin, "J1")
	require.NoError(t, err)
	_, err = f.jobs.Approve(ctx, admin, "J1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.jobs.Approve(ctx, admin, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.JobRejected, f.store.Jobs["J1"].Status)
}

func TestUpdate_OwnerOnlyAndStatusKept(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	e1 := f.account("E1", domain.RoleEmployer)
	e2 := f.account("E2", domain.RoleEmployer)
	f.job("J2", "E2", domain.JobApproved)

	in := validInput()
	in.Title = "Staff Engineer"

	_, err := f.jobs.Update(ctx, e1, "J2", in)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "Go Engineer", f.store.Jobs["J2"].Title)

	j, err := f.jobs.Update(ctx, e2, "J2", in)
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", j.Title)
	assert.Equal(t, domain.JobApproved, j.Status)
	assert.Equal(t, domain.JobApproved, f.store.Jobs["J2"].Status)
	assert.Equal(t, "E2", f.store.Jobs["J2"].EmployerID)
}

func TestUpdate_ReReviewOnEdit(t *testing.T) {
	f := newFixture(true)
	emp := f.account("E2", domain.RoleEmployer)
	f.job("J2", "E2", domain.JobApproved)

	j, err := f.jobs.Update(context.Background(), emp, "J2", validInput())
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, j.Status)
	assert.Equal(t, domain.JobPending, f.store.Jobs["J2"].Status)
}

// splitWrites fails any second write so a two-step edit would leave a half-applied posting.
type splitWrites struct {
	domain.JobRepository
	requeued    []bool
	transitions int
}

func (r *splitWrites) UpdateFields(ctx context.Context, j *domain.Job, requeue bool) error {
	r.requeued = append(r.requeued, requeue)
	return r.JobRepository.UpdateFields(ctx, j, requeue)
}

func (r *splitWrites) TransitionStatus(context.Context, string, domain.JobStatus, domain.JobStatus) error {
	r.transitions++
	return domain.ErrUnavailable
}

func TestUpdate_ReReviewIsSingleWrite(t *testing.T) {
	f := newFixture(false)
	emp := f.account("E2", domain.RoleEmployer)
	f.job("J2", "E2", domain.JobApproved)
	jobs := &splitWrites{JobRepository: f.store.JobRepo()}
	svc := NewJobService(jobs, nil, true)

	in := validInput()
	in.Title = "Staff Engineer"
	j, err := svc.Update(context.Background(), emp, "J2", in)
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, j.Status)
	assert.Equal(t, []bool{true}, jobs.requeued)
	assert.Zero(t, jobs.transitions)
	assert.Equal(t, "Staff Engineer", f.store.Jobs["J2"].Title)
	assert.Equal(t, domain.JobPending, f.store.Jobs["J2"].Status)

	// 已是 pending 的岗位编辑时不再改状态
	_, err = svc.Update(context.Background(), emp, "J2", validInput())
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, jobs.requeued)
}

func TestUpdate_FailedWriteLeavesPostingUntouched(t *testing.T) {
	f := newFixture(true)
	emp := f.account("E2", domain.RoleEmployer)
	f.job("J2", "E2", domain.JobApproved)

	jobs := &failingUpdate{JobRepository: f.store.JobRepo()}
	svc := NewJobService(jobs, nil, true)
	in := validInput()
	in.Title = "Staff Engineer"
	_, err := svc.Update(context.Background(), emp, "J2", in)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, "Go Engineer", f.store.Jobs["J2"].Title)
	assert.Equal(t, domain.JobApproved, f.store.Jobs["J2"].Status)
}

type failingUpdate struct{ domain.JobRepository }

func (failingUpdate) UpdateFields(context.Context, *domain.Job, bool) error {
	return domain.ErrUnavailable
}

func TestDelete_OwnerOrAdmin(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	admin := f.account("a1", domain.RoleAdmin)
	owner := f.account("e1", domain.RoleEmployer)
	other := f.account("e2", domain.RoleEmployer)
	f.job("J1", "e1", domain.JobRejected)
	f.job("J2", "e1", domain.JobApproved)

	assert.ErrorIs(t, f.jobs.Delete(ctx, other, "J1"), domain.ErrForbidden)
	require.NoError(t, f.jobs.Delete(ctx, owner, "J1"))
	require.NoError(t, f.jobs.Delete(ctx, admin, "J2"))
	assert.ErrorIs(t, f.jobs.Delete(ctx, admin, "J2"), domain.ErrNotFound)
	assert.Empty(t, f.store.Jobs)
}

func TestVisibility(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	admin := f.account("a1", domain.RoleAdmin)
	owner := f.account("e1", domain.RoleEmployer)
	other := f.account("e2", domain.RoleEmployer)
	seeker := f.account("s1", domain.RoleJobSeeker)
	f.job("P", "e1", domain.JobPending)
	f.job("R", "e1", domain.JobRejected)
	f.job("A", "e1", domain.JobApproved)

	pub := f.jobs.ListPublic(ctx, domain.JobFilter{Status: domain.JobPending})
	require.Len(t, pub, 1)
	assert.Equal(t, "A", pub[0].ID)

	for _, id := range []string{"P", "R"} {
		_, err := f.jobs.Get(ctx, seeker, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
		_, err = f.jobs.Get(ctx, other, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
		_, err = f.jobs.Get(ctx, owner, id)
		assert.NoError(t, err, id)
		_, err = f.jobs.Get(ctx, admin, id)
		assert.NoError(t, err, id)
	}

	mine, err := f.jobs.ListForEmployer(ctx, owner, domain.JobFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	theirs, err := f.jobs.ListForEmployer(ctx, other, domain.JobFilter{})
	require.NoError(t, err)
	assert.Empty(t, theirs)

	all, err := f.jobs.ListAll(ctx, admin, domain.JobFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	_, err = f.jobs.ListAll(ctx, owner, domain.JobFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPublicReadsAbsorbStoreFailures(t *testing.T) {
	f := newFixture(false)
	f.job("A", "e1", domain.JobApproved)
	f.store.FailWith = errors.New("connection refused")

	assert.Empty(t, f.jobs.ListPublic(context.Background(), domain.JobFilter{}))
	_, err := f.jobs.GetPublic(context.Background(), "A")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMutationFailureSurfaces(t *testing.T) {
	f := newFixture(false)
	admin := f.account("a1", domain.RoleAdmin)
	f.job("J1", "e1", domain.JobPending)
	f.store.FailWith = domain.ErrUnavailable

	_, err := f.jobs.Approve(context.Background(), admin, "J1")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, domain.JobPending, f.store.Jobs["J1"].Status)
}
