package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fedeegmz/go-users-api/internal/domain/entity"
	repo "github.com/fedeegmz/go-users-api/internal/domain/repository"
	"github.com/fedeegmz/go-users-api/pkg/helpers"
)

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords
	// alike, so the return shape is not a user-enumeration oracle.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrUnauthenticated covers every bearer-token failure: invalid or
	// expired token, empty subject, or no matching account.
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrAccountDisabled means the token was valid but access is revoked.
	ErrAccountDisabled = errors.New("inactive user")
)

// AuthService is the credential gate: it verifies passwords, issues
// bearer tokens, and resolves the account behind a token. It owns no
// state beyond the injected store and codec.
type AuthService struct {
	Store    repo.AccountStore
	Codec    *helpers.TokenCodec
	Logger   *logrus.Logger
	LoginTTL time.Duration
}

func NewAuthService(store repo.AccountStore, codec *helpers.TokenCodec, logger *logrus.Logger, loginTTL time.Duration) *AuthService {
	return &AuthService{Store: store, Codec: codec, Logger: logger, LoginTTL: loginTTL}
}

// Authenticate verifies username/password against the store and returns
// the sanitized account. Both failure modes yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*entity.PublicAccount, error) {
	a, err := s.Store.FindByUsername(ctx, username)
	if err != nil || a == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(a.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return a.Public(), nil
}

// Login authenticates and issues a bearer token with the login TTL.
func (s *AuthService) Login(ctx context.Context, username, password string) (*entity.PublicAccount, string, time.Time, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.Codec.Issue(u.Username, s.LoginTTL)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("username", u.Username).Error("issue token failed")
		}
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// CurrentUser resolves the account behind a bearer token. Every path is
// terminal: decode failure, empty subject, and missing account map to
// ErrUnauthenticated; a disabled account maps to ErrAccountDisabled.
// Store errors (including timeouts) are logged but never surfaced.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*entity.PublicAccount, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, ErrUnauthenticated
	}
	a, err := s.Store.FindByUsername(ctx, claims.Subject)
	if err != nil || a == nil {
		if err != nil && !errors.Is(err, repo.ErrNotFound) && s.Logger != nil {
			s.Logger.WithError(err).Warn("account lookup failed during session resolution")
		}
		return nil, ErrUnauthenticated
	}
	if a.Disabled {
		return nil, ErrAccountDisabled
	}
	return a.Public(), nil
}
