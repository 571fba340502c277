// Package servicetest provides an in-memory record store for tests. It
// keeps the store-level guarantees the services rely on: (job, applicant)
// uniqueness, conditional status writes and delete cascades.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"jobboard/internal/domain"
)

// Store backs all three repositories. The maps are exported for
// assertions; touch them only while no request is in flight.
type Store struct {
	mu       sync.Mutex
	Profiles map[string]domain.Account
	Jobs     map[string]domain.Job
	Apps     map[string]domain.Application
	seq      int
	FailWith error
}

func New() *Store {
	return &Store{
		Profiles: map[string]domain.Account{},
		Jobs:     map[string]domain.Job{},
		Apps:     map[string]domain.Application{},
	}
}

func (m *Store) stamp() time.Time {
	m.seq++
	return time.Unix(1_700_000_000+int64(m.seq), 0)
}

type profileRepo struct{ *Store }
type jobRepo struct{ *Store }
type appRepo struct{ *Store }

func (f profileRepo) Create(_ context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	for _, p := range f.Profiles {
		if p.Email == a.Email {
			return domain.ErrDuplicateEmail
		}
	}
	a.CreatedAt = f.stamp()
	f.Profiles[a.ID] = *a
	return nil
}

func (f profileRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	if p, ok := f.Profiles[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f profileRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.Profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, nil
}

func (f profileRepo) match(p domain.Account, pf domain.ProfileFilter) bool {
	return (pf.Role == "" || p.Role == pf.Role) && (pf.Status == "" || p.Status == pf.Status)
}

func (f profileRepo) List(_ context.Context, pf domain.ProfileFilter) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, p := range f.Profiles {
		if f.match(p, pf) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f profileRepo) Count(ctx context.Context, pf domain.ProfileFilter) (int64, error) {
	l, err := f.List(ctx, pf)
	return int64(len(l)), err
}

func (f profileRepo) UpdateStatus(_ context.Context, id string, st domain.AccountStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Profiles[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = st
	f.Profiles[id] = p
	return nil
}

func (f profileRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Profiles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.Profiles, id)
	for jid, j := range f.Jobs {
		if j.EmployerID == id {
			delete(f.Jobs, jid)
		}
	}
	for aid, a := range f.Apps {
		if _, ok := f.Jobs[a.JobID]; !ok || a.UserID == id {
			delete(f.Apps, aid)
		}
	}
	return nil
}

func (f jobRepo) Create(_ context.Context, j *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	j.CreatedAt = f.stamp()
	f.Jobs[j.ID] = *j
	return nil
}

func (f jobRepo) FindByID(_ context.Context, id string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	if j, ok := f.Jobs[id]; ok {
		f.attachEmployer(&j)
		return &j, nil
	}
	return nil, nil
}

// attachEmployer fills the same narrow employer card the gorm repo preloads.
func (m *Store) attachEmployer(j *domain.Job) {
	if p, ok := m.Profiles[j.EmployerID]; ok {
		j.Employer = &domain.Account{ID: p.ID, FullName: p.FullName, Email: p.Email}
	}
}

func (f jobRepo) List(_ context.Context, jf domain.JobFilter) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	var out []domain.Job
	for _, j := range f.Jobs {
		if jf.EmployerID != "" && j.EmployerID != jf.EmployerID ||
			jf.Status != "" && j.Status != jf.Status ||
			jf.Type != "" && j.JobType != jf.Type ||
			jf.Search != "" && !strings.Contains(strings.ToLower(j.Title+" "+j.CompanyName+" "+j.Description), strings.ToLower(jf.Search)) ||
			jf.Location != "" && !strings.Contains(strings.ToLower(j.Location), strings.ToLower(jf.Location)) {
			continue
		}
		f.attachEmployer(&j)
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (f jobRepo) Count(ctx context.Context, jf domain.JobFilter) (int64, error) {
	l, err := f.List(ctx, jf)
	return int64(len(l)), err
}

func (f jobRepo) UpdateFields(_ context.Context, j *domain.Job, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	cur, ok := f.Jobs[j.ID]
	if !ok {
		return domain.ErrNotFound
	}
	status := cur.Status
	if requeue {
		if status != j.Status {
			return domain.ErrInvalidTransition
		}
		status = domain.JobPending
	}
	created := cur.CreatedAt
	cur = *j
	cur.Status = status
	cur.CreatedAt = created
	cur.Employer = nil
	f.Jobs[j.ID] = cur
	return nil
}

func (f jobRepo) TransitionStatus(_ context.Context, id string, from, to domain.JobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	j, ok := f.Jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status != from {
		return domain.ErrInvalidTransition
	}
	j.Status = to
	f.Jobs[id] = j
	return nil
}

func (f jobRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.Jobs, id)
	for aid, a := range f.Apps {
		if a.JobID == id {
			delete(f.Apps, aid)
		}
	}
	return nil
}

func (f appRepo) Create(_ context.Context, a *domain.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.Apps {
		if x.JobID == a.JobID && x.UserID == a.UserID {
			return domain.ErrDuplicateApplication
		}
	}
	a.CreatedAt = f.stamp()
	stored := *a
	stored.Job, stored.User = nil, nil
	f.Apps[a.ID] = stored
	return nil
}

func (f appRepo) FindByID(_ context.Context, id string) (*domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.Apps[id]
	if !ok {
		return nil, nil
	}
	if j, ok := f.Jobs[a.JobID]; ok {
		a.Job = &j
	}
	return &a, nil
}

func (f appRepo) List(_ context.Context, af domain.ApplicationFilter) ([]domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Application
	for _, a := range f.Apps {
		if af.JobID != "" && a.JobID != af.JobID ||
			af.UserID != "" && a.UserID != af.UserID ||
			af.Status != "" && a.Status != af.Status ||
			af.EmployerID != "" && f.Jobs[a.JobID].EmployerID != af.EmployerID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f appRepo) Count(ctx context.Context, af domain.ApplicationFilter) (int64, error) {
	l, err := f.List(ctx, af)
	return int64(len(l)), err
}

func (f appRepo) Exists(ctx context.Context, jobID, userID string) (bool, error) {
	n, err := f.Count(ctx, domain.ApplicationFilter{JobID: jobID, UserID: userID})
	return n > 0, err
}

func (f appRepo) TransitionStatus(_ context.Context, id string, from, to domain.ApplicationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.Apps[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.Status != from {
		return domain.ErrInvalidTransition
	}
	a.Status = to
	f.Apps[id] = a
	return nil
}

func (m *Store) ProfileRepo() domain.ProfileRepository { return profileRepo{m} }

func (m *Store) JobRepo() domain.JobRepository { return jobRepo{m} }

func (m *Store) ApplicationRepo() domain.ApplicationRepository { return appRepo{m} }

// PutAccount stores an account and returns the matching actor.
func (m *Store) PutAccount(id string, role domain.Role, status domain.AccountStatus) domain.Actor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Profiles[id] = domain.Account{ID: id, Email: id + "@example.com", Role: role, Status: status}
	return domain.Actor{ID: id, Role: role, Status: status}
}

// PutJob stores a posting with fixed fields and the given status.
func (m *Store) PutJob(id, employerID string, status domain.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Jobs[id] = domain.Job{
		ID: id, EmployerID: employerID, Title: "Go Engineer", CompanyName: "Acme",
		Location: "Remote", JobType: domain.JobRemote, Description: "Build", Status: status,
		CreatedAt: m.stamp(),
	}
}
