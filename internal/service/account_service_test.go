package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/domain"
)

func TestSignupAndAuthenticate(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	a, err := f.accounts.Signup(ctx, SignupInput{Email: " Ada@Example.com ", Password: "correct horse", FullName: "Ada", Role: "job-seeker"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", a.Email)
	assert.Equal(t, domain.RoleJobSeeker, a.Role)
	assert.Equal(t, domain.StatusActive, a.Status)
	assert.NotEqual(t, "correct horse", a.PasswordHash)

	_, err = f.accounts.Signup(ctx, SignupInput{Email: "ada@example.com", Password: "another one", Role: domain.RoleEmployer})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	got, err := f.accounts.Authenticate(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.accounts.Authenticate(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.accounts.Authenticate(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSignup_RejectsAdminAndBadInput(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	var ve *domain.ValidationError

	_, err := f.accounts.Signup(ctx, SignupInput{Email: "x@example.com", Password: "long enough", Role: domain.RoleAdmin})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "role")

	_, err = f.accounts.Signup(ctx, SignupInput{Email: "not-an-email", Password: "short", Role: domain.RoleEmployer})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "password")
	assert.Empty(t, f.store.Profiles)

	admin, err := f.accounts.CreateAdmin(ctx, "root@example.com", "long enough", "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Nil(t, admin.FullName)

	_, err = f.accounts.CreateAdmin(ctx, strings.Repeat("a", 190)+"@example.com", "long enough", strings.Repeat("n", 129))
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "full_name")
	assert.Len(t, f.store.Profiles, 1)
}

func TestBlockUnblock(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	admin := f.account("a1", domain.RoleAdmin)
	f.account("a2", domain.RoleAdmin)
	emp := f.account("U2", domain.RoleEmployer)

	got, err := f.accounts.Block(ctx, admin, "U2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, got.Status)

	role, st, err := f.accounts.RoleAndStatus(ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployer, role)
	assert.Equal(t, domain.StatusBlocked, st)

	_, err = f.accounts.Block(ctx, emp, "a1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.accounts.Block(ctx, admin, "a2")
	assert.ErrorIs(t, err, domain.ErrAdminProtected)
	_, err = f.accounts.Block(ctx, admin, "a1")
	assert.ErrorIs(t, err, domain.ErrSelfAction)
	_, err = f.accounts.Block(ctx, admin, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err = f.accounts.Unblock(ctx, admin, "U2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	admin := f.account("a1", domain.RoleAdmin)
	f.account("a2", domain.RoleAdmin)
	f.account("e1", domain.RoleEmployer)
	f.job("J1", "e1", domain.JobApproved)

	assert.ErrorIs(t, f.accounts.Delete(ctx, admin, "a1"), domain.ErrSelfAction)
	assert.ErrorIs(t, f.accounts.Delete(ctx, admin, "a2"), domain.ErrAdminProtected)
	require.NoError(t, f.accounts.Delete(ctx, admin, "e1"))
	assert.NotContains(t, f.store.Profiles, "e1")
	assert.Empty(t, f.store.Jobs)
}

func TestRoleAndStatus_NotFoundAndStoreError(t *testing.T) {
	f := newFixture(false)
	_, _, err := f.accounts.RoleAndStatus(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	boom := errors.New("timeout")
	f.store.FailWith = boom
	role, st, err := f.accounts.RoleAndStatus(context.Background(), "ghost")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, role)
	assert.Empty(t, st)
}
