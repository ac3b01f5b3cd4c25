package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fedeegmz/go-users-api/internal/application"
	"github.com/fedeegmz/go-users-api/internal/container"
	handlers "github.com/fedeegmz/go-users-api/internal/interface/http"
	"github.com/fedeegmz/go-users-api/internal/interface/middleware"
)

// AccountModule wires the user CRUD handlers into routes.
// Public: POST /api/users/signup, GET /api/users, GET /api/users/:username,
// GET /api/users/available-usernames
// Protected: PATCH /api/users/me, DELETE /api/users/me, GET /api/users/search
type AccountModule struct {
	Handler *handlers.AccountHandler
	Auth    *application.AuthService
}

func NewAccountModule(h *handlers.AccountHandler, auth *application.AuthService) *AccountModule {
	return &AccountModule{Handler: h, Auth: auth}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	// Public with rate limiting
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil) // 5 req/min per IP
	readLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.POST("/users/signup", signupLimiter, m.Handler.Signup)
	rg.GET("/users", readLimiter, m.Handler.List)
	rg.GET("/users/available-usernames", readLimiter, m.Handler.AvailableUsernames)
	rg.GET("/users/:username", readLimiter, m.Handler.Get)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Auth))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUsername(), nil))
	{
		auth.PATCH("/users/me", m.Handler.Update)
		auth.DELETE("/users/me", m.Handler.Delete)
		auth.GET("/users/search", m.Handler.Search)
	}
}
