package plans

import (
	"context"
	"sync"
)

// repoMock is an in-memory plansRepo used in handler and resolver tests.
type repoMock struct {
	mu     sync.Mutex
	nextID int
	// active plan per account
	plans map[int]*Plan

	getActiveErr error
}

func newRepoMock() *repoMock {
	return &repoMock{
		nextID: 1,
		plans:  make(map[int]*Plan),
	}
}

func (m *repoMock) GetActive(_ context.Context, accountID int) (*Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getActiveErr != nil {
		return nil, m.getActiveErr
	}
	plan, ok := m.plans[accountID]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (m *repoMock) InsertAsActive(_ context.Context, plan Plan) (*Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	plan.ID = m.nextID
	m.nextID++
	plan.Active = true
	m.plans[*plan.AccountID] = &plan
	return &plan, nil
}
