package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fedeegmz/go-users-api/config"
	"github.com/fedeegmz/go-users-api/internal/application"
	"github.com/fedeegmz/go-users-api/internal/interface/middleware"
	"github.com/fedeegmz/go-users-api/pkg/helpers"
	"github.com/fedeegmz/go-users-api/pkg/mailer"
	tpl "github.com/fedeegmz/go-users-api/pkg/mailer/templates"
	"github.com/fedeegmz/go-users-api/pkg/response"
	"github.com/fedeegmz/go-users-api/pkg/validation"
)

const birthDateLayout = "2006-01-02"

type AccountHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
	Cfg    *config.Config
	Pub    *helpers.RabbitPublisher
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger, Cfg: cfg, Pub: pub}
}

type signupRequest struct {
	Username  string `json:"username" binding:"required,username"`
	Name      string `json:"name" binding:"required,profilename"`
	Lastname  string `json:"lastname" binding:"required,profilename"`
	Email     string `json:"email" binding:"required,email"`
	BirthDate string `json:"birth_date" binding:"omitempty,birthdate"`
	Password  string `json:"password" binding:"required,pwd"`
}

type updateAccountRequest struct {
	Name      *string `json:"name" binding:"omitempty,profilename"`
	Lastname  *string `json:"lastname" binding:"omitempty,profilename"`
	Email     *string `json:"email" binding:"omitempty,email"`
	BirthDate *string `json:"birth_date" binding:"omitempty,birthdate"`
}

// Signup handles POST /users/signup.
func (h *AccountHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.SignupInput{
		Username: req.Username,
		Name:     req.Name,
		Lastname: req.Lastname,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.BirthDate != "" {
		bd, err := time.Parse(birthDateLayout, req.BirthDate)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"birth_date": "must match format " + birthDateLayout})
			return
		}
		in.BirthDate = &bd
	}

	account, err := h.Svc.Signup(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, application.ErrUsernameTaken) {
			response.Error[any](c, http.StatusConflict, application.ErrUsernameTaken.Error(), nil)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("username", req.Username).Error("signup failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to create user", nil)
		return
	}

	h.enqueueWelcomeEmail(c, account.Email, account.Name, account.Username)
	response.Success(c, http.StatusCreated, account, "user created", nil)
}

// List handles GET /users.
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.Svc.List(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("list users failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to list users", nil)
		return
	}
	response.Success(c, http.StatusOK, accounts, "users", nil)
}

// Get handles GET /users/:username.
func (h *AccountHandler) Get(c *gin.Context) {
	username := c.Param("username")
	account, err := h.Svc.Get(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error[any](c, http.StatusNotFound, application.ErrAccountNotFound.Error(), nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch user", nil)
		return
	}
	response.Success(c, http.StatusOK, account, "user", nil)
}

// AvailableUsernames handles GET /users/available-usernames.
func (h *AccountHandler) AvailableUsernames(c *gin.Context) {
	usernames, err := h.Svc.Usernames(c.Request.Context())
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to list usernames", nil)
		return
	}
	response.Success(c, http.StatusOK, usernames, "taken usernames", nil)
}

// Update handles PATCH /users/me for the authenticated account.
func (h *AccountHandler) Update(c *gin.Context) {
	current := middleware.CurrentAccount(c)
	if current == nil {
		response.Error[any](c, http.StatusUnauthorized, application.ErrUnauthenticated.Error(), nil)
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.UpdateProfileInput{
		Name:     req.Name,
		Lastname: req.Lastname,
		Email:    req.Email,
	}
	if req.BirthDate != nil {
		bd, err := time.Parse(birthDateLayout, *req.BirthDate)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"birth_date": "must match format " + birthDateLayout})
			return
		}
		in.BirthDate = &bd
	}

	account, err := h.Svc.UpdateProfile(c.Request.Context(), current.Username, in)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, account, "user updated", nil)
}

// Delete handles DELETE /users/me. Accounts are soft-deleted by setting
// the disabled flag; records are never removed.
func (h *AccountHandler) Delete(c *gin.Context) {
	current := middleware.CurrentAccount(c)
	if current == nil {
		response.Error[any](c, http.StatusUnauthorized, application.ErrUnauthenticated.Error(), nil)
		return
	}

	account, err := h.Svc.Deactivate(c.Request.Context(), current.Username)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, account, "user deleted", nil)
}

// Search handles GET /users/search?q=&size=.
func (h *AccountHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query parameter q", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("user search failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

func (h *AccountHandler) writeMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrAccountNotFound):
		response.Error[any](c, http.StatusNotFound, application.ErrAccountNotFound.Error(), nil)
	case errors.Is(err, application.ErrAccountDeleted):
		response.Error[any](c, http.StatusConflict, application.ErrAccountDeleted.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("account mutation failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to update user", nil)
	}
}

func (h *AccountHandler) enqueueWelcomeEmail(c *gin.Context, to, name, username string) {
	if h.Pub == nil || h.Cfg == nil || !h.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       to,
		Template: tpl.Welcome,
		Data:     map[string]any{"Name": name, "Username": username},
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("username", username).Warn("failed to publish welcome email job")
	}
}
