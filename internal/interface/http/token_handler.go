package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fedeegmz/go-users-api/internal/application"
	"github.com/fedeegmz/go-users-api/internal/interface/middleware"
	"github.com/fedeegmz/go-users-api/pkg/response"
	"github.com/fedeegmz/go-users-api/pkg/validation"
)

type TokenHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewTokenHandler(auth *application.AuthService, logger *logrus.Logger) *TokenHandler {
	return &TokenHandler{Auth: auth, Logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,pwd"`
}

// Login handles POST /login/token. A failed login never reveals whether
// the username or the password was wrong.
func (h *TokenHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	_, token, exp, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		response.Error[any](c, http.StatusUnauthorized, application.ErrInvalidCredentials.Error(), nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	}, "login successful", map[string]any{"expires_at": exp})
}

// Me handles GET /login/users/me behind the auth middleware.
func (h *TokenHandler) Me(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	if account == nil {
		response.Error[any](c, http.StatusUnauthorized, application.ErrUnauthenticated.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, account, "current user", nil)
}
