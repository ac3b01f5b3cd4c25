package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fedeegmz/go-users-api/internal/application"
	"github.com/fedeegmz/go-users-api/internal/container"
	handlers "github.com/fedeegmz/go-users-api/internal/interface/http"
	"github.com/fedeegmz/go-users-api/internal/interface/middleware"
)

// TokenModule wires the login endpoints.
// Public: POST /api/login/token
// Protected: GET /api/login/users/me
type TokenModule struct {
	Handler *handlers.TokenHandler
	Auth    *application.AuthService
}

func NewTokenModule(h *handlers.TokenHandler, auth *application.AuthService) *TokenModule {
	return &TokenModule{Handler: h, Auth: auth}
}

func (m *TokenModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil) // 10 req/min per IP

	rg.POST("/login/token", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Auth))
	{
		auth.GET("/login/users/me", m.Handler.Me)
	}
}
