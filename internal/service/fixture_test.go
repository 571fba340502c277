package service

import (
	"time"

	"jobboard/internal/domain"
	"jobboard/internal/service/servicetest"
)

// fixture wires all services over one in-memory store.
type fixture struct {
	store    *servicetest.Store
	accounts *AccountService
	jobs     *JobService
	apps     *ApplicationService
	stats    *StatsService
}

func newFixture(reReview bool) *fixture {
	m := servicetest.New()
	p, j, a := m.ProfileRepo(), m.JobRepo(), m.ApplicationRepo()
	return &fixture{
		store:    m,
		accounts: NewAccountService(p, nil),
		jobs:     NewJobService(j, nil, reReview),
		apps:     NewApplicationService(a, j, nil),
		stats:    NewStatsService(p, j, a, nil, time.Minute, nil),
	}
}

func (f *fixture) account(id string, role domain.Role) domain.Actor {
	return f.store.PutAccount(id, role, domain.StatusActive)
}

func (f *fixture) job(id, employerID string, st domain.JobStatus) {
	f.store.PutJob(id, employerID, st)
}
