package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/fedeegmz/go-users-api/internal/domain/entity"
	repo "github.com/fedeegmz/go-users-api/internal/domain/repository"
	"github.com/fedeegmz/go-users-api/pkg/helpers"
)

var (
	ErrUsernameTaken   = errors.New("username exists")
	ErrAccountNotFound = errors.New("user not found")
	// ErrAccountDeleted is returned when a mutation targets an account
	// that has already been soft-deleted.
	ErrAccountDeleted = errors.New("user has already been deleted")
)

const listLimit = 100

// AccountService handles signup and profile CRUD on top of the store,
// plus best-effort profile indexing for search.
type AccountService struct {
	Store   repo.AccountStore
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewAccountService(store repo.AccountStore, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *AccountService {
	return &AccountService{Store: store, Logger: logger, ES: es, ESIndex: esIndex}
}

type SignupInput struct {
	Username  string
	Name      string
	Lastname  string
	Email     string
	BirthDate *time.Time
	Password  string
}

// Signup hashes the password and inserts a new enabled account. The
// username pre-check answers taken usernames without an insert attempt;
// the unique index in the store backs it transactionally.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*entity.PublicAccount, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.Store.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	a := &entity.Account{
		Username:  in.Username,
		Name:      in.Name,
		Lastname:  in.Lastname,
		Email:     in.Email,
		BirthDate: in.BirthDate,
		Password:  hash,
		Disabled:  false,
	}
	if err := s.Store.Insert(ctx, a); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	_ = s.indexAccount(ctx, a)
	return a.Public(), nil
}

// List returns up to 100 accounts as public projections.
func (s *AccountService) List(ctx context.Context) ([]*entity.PublicAccount, error) {
	accounts, err := s.Store.List(ctx, listLimit)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.PublicAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Public())
	}
	return out, nil
}

func (s *AccountService) Get(ctx context.Context, username string) (*entity.PublicAccount, error) {
	a, err := s.Store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a.Public(), nil
}

// Usernames returns every taken username.
func (s *AccountService) Usernames(ctx context.Context) ([]string, error) {
	return s.Store.Usernames(ctx)
}

type UpdateProfileInput struct {
	Name      *string
	Lastname  *string
	Email     *string
	BirthDate *time.Time
}

// UpdateProfile merges the present fields into the account. Disabled
// accounts reject the update.
func (s *AccountService) UpdateProfile(ctx context.Context, username string, in UpdateProfileInput) (*entity.PublicAccount, error) {
	a, err := s.Store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if a.Disabled {
		return nil, ErrAccountDeleted
	}

	updated, err := s.Store.Update(ctx, username, repo.AccountUpdate{
		Name:      in.Name,
		Lastname:  in.Lastname,
		Email:     in.Email,
		BirthDate: in.BirthDate,
	})
	if err != nil {
		return nil, err
	}

	_ = s.indexAccount(ctx, updated)
	return updated.Public(), nil
}

// Deactivate soft-deletes the account by setting its disabled flag.
func (s *AccountService) Deactivate(ctx context.Context, username string) (*entity.PublicAccount, error) {
	a, err := s.Store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if a.Disabled {
		return nil, ErrAccountDeleted
	}

	disabled, err := s.Store.Disable(ctx, username)
	if err != nil {
		return nil, err
	}
	return disabled.Public(), nil
}

func (s *AccountService) indexAccount(ctx context.Context, a *entity.Account) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         a.ID,
		"username":   a.Username,
		"name":       a.Name,
		"lastname":   a.Lastname,
		"created_at": a.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("username", a.Username).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("username", a.Username).Warn("es index response error")
	}
	return nil
}

// Search performs a multi_match search over username, name, and lastname.
func (s *AccountService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "name", "lastname"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
