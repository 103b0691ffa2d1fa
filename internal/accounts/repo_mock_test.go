package accounts

import (
	"context"
	"time"
)

type repoMock struct {
	accounts map[string]*Account
	nextID   int
}

func newRepoMock() *repoMock {
	return &repoMock{
		accounts: make(map[string]*Account),
		nextID:   1,
	}
}

func (r *repoMock) Create(_ context.Context, username, passwordHash string) (*Account, error) {
	if _, ok := r.accounts[username]; ok {
		return nil, ErrUsernameTaken
	}
	account := &Account{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.nextID++
	r.accounts[username] = account
	return account, nil
}

func (r *repoMock) GetByUsername(_ context.Context, username string) (*Account, error) {
	account, ok := r.accounts[username]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

func (r *repoMock) Get(_ context.Context, id int) (*Account, error) {
	for _, account := range r.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, ErrAccountNotFound
}
