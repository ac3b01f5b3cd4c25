package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedeegmz/go-users-api/internal/application"
	"github.com/fedeegmz/go-users-api/internal/domain/entity"
	repo "github.com/fedeegmz/go-users-api/internal/domain/repository"
	"github.com/fedeegmz/go-users-api/pkg/helpers"
)

type staticStore struct {
	account *entity.Account
}

func (s *staticStore) FindByUsername(context.Context, string) (*entity.Account, error) {
	if s.account == nil {
		return nil, repo.ErrNotFound
	}
	cp := *s.account
	return &cp, nil
}
func (s *staticStore) Insert(context.Context, *entity.Account) error { return nil }
func (s *staticStore) List(context.Context, int) ([]*entity.Account, error) {
	return nil, nil
}
func (s *staticStore) Usernames(context.Context) ([]string, error) { return nil, nil }
func (s *staticStore) Update(context.Context, string, repo.AccountUpdate) (*entity.Account, error) {
	return nil, repo.ErrNotFound
}
func (s *staticStore) Disable(context.Context, string) (*entity.Account, error) {
	return nil, repo.ErrNotFound
}

func newAuthTestRouter(store *staticStore, codec *helpers.TokenCodec) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := application.NewAuthService(store, codec, nil, 20*time.Minute)

	r := gin.New()
	r.GET("/protected", Auth(svc), func(c *gin.Context) {
		account := CurrentAccount(c)
		c.JSON(http.StatusOK, gin.H{"username": account.Username})
	})
	return r
}

func TestAuthMissingHeader(t *testing.T) {
	codec := helpers.NewTokenCodec("mw-test-secret", 15*time.Minute)
	r := newAuthTestRouter(&staticStore{}, codec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestAuthMalformedHeader(t *testing.T) {
	codec := helpers.NewTokenCodec("mw-test-secret", 15*time.Minute)
	r := newAuthTestRouter(&staticStore{}, codec)

	for _, header := range []string{"Bearer", "Basic abc123", "token-without-scheme"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthValidToken(t *testing.T) {
	codec := helpers.NewTokenCodec("mw-test-secret", 15*time.Minute)
	store := &staticStore{account: &entity.Account{Username: "ironman", Name: "Anthony"}}
	r := newAuthTestRouter(store, codec)

	token, _, err := codec.Issue("ironman", time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ironman")
}

func TestAuthDisabledAccount(t *testing.T) {
	codec := helpers.NewTokenCodec("mw-test-secret", 15*time.Minute)
	store := &staticStore{account: &entity.Account{Username: "ironman", Disabled: true}}
	r := newAuthTestRouter(store, codec)

	token, _, err := codec.Issue("ironman", time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "inactive user")
}
