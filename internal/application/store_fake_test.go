package application

import (
	"context"
	"time"

	"github.com/fedeegmz/go-users-api/internal/domain/entity"
	repo "github.com/fedeegmz/go-users-api/internal/domain/repository"
)

// fakeStore is an in-memory AccountStore for tests.
type fakeStore struct {
	accounts map[string]*entity.Account
	findErr  error
}

func newFakeStore(accounts ...*entity.Account) *fakeStore {
	s := &fakeStore{accounts: map[string]*entity.Account{}}
	for _, a := range accounts {
		s.accounts[a.Username] = a
	}
	return s
}

func (s *fakeStore) FindByUsername(_ context.Context, username string) (*entity.Account, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	a, ok := s.accounts[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) Insert(_ context.Context, a *entity.Account) error {
	if _, ok := s.accounts[a.Username]; ok {
		return repo.ErrConflict
	}
	a.ID = "fake-" + a.Username
	a.CreatedAt = time.Now()
	cp := *a
	s.accounts[a.Username] = &cp
	return nil
}

func (s *fakeStore) List(_ context.Context, limit int) ([]*entity.Account, error) {
	out := make([]*entity.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if len(out) == limit {
			break
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeStore) Usernames(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(s.accounts))
	for u := range s.accounts {
		out = append(out, u)
	}
	return out, nil
}

func (s *fakeStore) Update(_ context.Context, username string, upd repo.AccountUpdate) (*entity.Account, error) {
	a, ok := s.accounts[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Lastname != nil {
		a.Lastname = *upd.Lastname
	}
	if upd.Email != nil {
		a.Email = *upd.Email
	}
	if upd.BirthDate != nil {
		bd := *upd.BirthDate
		a.BirthDate = &bd
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) Disable(_ context.Context, username string) (*entity.Account, error) {
	a, ok := s.accounts[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	a.Disabled = true
	cp := *a
	return &cp, nil
}

var _ repo.AccountStore = (*fakeStore)(nil)
