package handlers

import (
	"bytes"
	"context"
	"encoding/json"
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
	"github.com/fedeegmz/go-users-api/internal/interface/middleware"
	"github.com/fedeegmz/go-users-api/pkg/helpers"
	"github.com/fedeegmz/go-users-api/pkg/validation"
)

type memStore struct {
	accounts map[string]*entity.Account
}

func newMemStore() *memStore {
	return &memStore{accounts: map[string]*entity.Account{}}
}

func (s *memStore) FindByUsername(_ context.Context, username string) (*entity.Account, error) {
	a, ok := s.accounts[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) Insert(_ context.Context, a *entity.Account) error {
	if _, ok := s.accounts[a.Username]; ok {
		return repo.ErrConflict
	}
	a.ID = "id-" + a.Username
	a.CreatedAt = time.Now()
	cp := *a
	s.accounts[a.Username] = &cp
	return nil
}

func (s *memStore) List(_ context.Context, limit int) ([]*entity.Account, error) {
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

func (s *memStore) Usernames(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(s.accounts))
	for u := range s.accounts {
		out = append(out, u)
	}
	return out, nil
}

func (s *memStore) Update(_ context.Context, username string, upd repo.AccountUpdate) (*entity.Account, error) {
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

func (s *memStore) Disable(_ context.Context, username string) (*entity.Account, error) {
	a, ok := s.accounts[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	a.Disabled = true
	cp := *a
	return &cp, nil
}

var _ repo.AccountStore = (*memStore)(nil)

func newTestRouter(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	store := newMemStore()
	codec := helpers.NewTokenCodec("handler-test-secret", 15*time.Minute)
	authSvc := application.NewAuthService(store, codec, nil, 20*time.Minute)
	accountSvc := application.NewAccountService(store, nil, nil, "")

	accountHandler := NewAccountHandler(accountSvc, nil, nil, nil)
	tokenHandler := NewTokenHandler(authSvc, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/users/signup", accountHandler.Signup)
	api.GET("/users", accountHandler.List)
	api.GET("/users/available-usernames", accountHandler.AvailableUsernames)
	api.GET("/users/:username", accountHandler.Get)
	api.POST("/login/token", tokenHandler.Login)

	auth := api.Group("/")
	auth.Use(middleware.Auth(authSvc))
	auth.GET("/login/users/me", tokenHandler.Me)
	auth.PATCH("/users/me", accountHandler.Update)
	auth.DELETE("/users/me", accountHandler.Delete)

	return r, store
}

func doJSON(r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signupBody() map[string]any {
	return map[string]any{
		"username":   "ironman",
		"name":       "Anthony",
		"lastname":   "Stark",
		"email":      "tony@starkindustries.com",
		"birth_date": "2000-12-25",
		"password":   "ILoveMark40",
	}
}

func loginToken(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/login/token", map[string]any{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.Data.TokenType)
	return resp.Data.AccessToken
}

func TestSignupLoginMeFlow(t *testing.T) {
	r, store := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/users/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "ILoveMark40")

	// store holds a hash, not the plaintext
	assert.NotEqual(t, "ILoveMark40", store.accounts["ironman"].Password)

	token := loginToken(t, r, "ironman", "ILoveMark40")

	w = doJSON(r, http.MethodGet, "/api/login/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"ironman"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestSignupConflict(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/users/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/users/signup", signupBody(), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "username exists")
}

func TestSignupValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	body := signupBody()
	body["username"] = "abc" // below the 4-char minimum
	w := doJSON(r, http.MethodPost, "/api/users/signup", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = signupBody()
	body["password"] = "short"
	w = doJSON(r, http.MethodPost, "/api/users/signup", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = signupBody()
	body["birth_date"] = "25-12-2000"
	w = doJSON(r, http.MethodPost, "/api/users/signup", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFailures(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/users/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)

	for _, body := range []map[string]any{
		{"username": "ironman", "password": "wrongpassword"},
		{"username": "ghostuser", "password": "whatever123"},
	} {
		w = doJSON(r, http.MethodPost, "/api/login/token", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		assert.Contains(t, w.Body.String(), "incorrect username or password")
	}
}

func TestGetUser(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/users/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users/ironman", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"birth_date":"2000-12-25"`)

	w = doJSON(r, http.MethodGet, "/api/users/nobody", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateMe(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/users/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	token := loginToken(t, r, "ironman", "ILoveMark40")

	w = doJSON(r, http.MethodPatch, "/api/users/me", map[string]any{"name": "Tony"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"Tony"`)
	// untouched field survives
	assert.Contains(t, w.Body.String(), `"lastname":"Stark"`)
}

func TestDeleteMe(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/users/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	token := loginToken(t, r, "ironman", "ILoveMark40")

	w = doJSON(r, http.MethodDelete, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"disabled":true`)

	// the still-valid token no longer resolves
	w = doJSON(r, http.MethodGet, "/api/login/users/me", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "inactive user")
}

func TestAvailableUsernames(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/users/signup", signupBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users/available-usernames", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ironman")
}
