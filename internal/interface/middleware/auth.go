package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fedeegmz/go-users-api/internal/application"
	"github.com/fedeegmz/go-users-api/internal/domain/entity"
	"github.com/fedeegmz/go-users-api/pkg/response"
)

const (
	// CtxAccountKey holds the resolved *entity.PublicAccount.
	CtxAccountKey = "currentAccount"
	// CtxUsernameKey holds the resolved username for convenience.
	CtxUsernameKey = "username"
)

// Auth gates protected routes through the session resolver. The bearer
// token is re-verified from scratch on every request; nothing is cached.
func Auth(auth *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthenticated(c)
			return
		}
		account, err := auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, application.ErrAccountDisabled) {
				response.Error[any](c, http.StatusBadRequest, application.ErrAccountDisabled.Error(), nil)
				c.Abort()
				return
			}
			unauthenticated(c)
			return
		}
		c.Set(CtxAccountKey, account)
		c.Set(CtxUsernameKey, account.Username)
		c.Next()
	}
}

// CurrentAccount returns the account set by Auth, or nil outside it.
func CurrentAccount(c *gin.Context) *entity.PublicAccount {
	v, ok := c.Get(CtxAccountKey)
	if !ok {
		return nil
	}
	account, _ := v.(*entity.PublicAccount)
	return account
}

func unauthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Error[any](c, http.StatusUnauthorized, application.ErrUnauthenticated.Error(), nil)
	c.Abort()
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
