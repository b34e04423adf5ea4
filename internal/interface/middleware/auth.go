package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/astimch/go-referrals/internal/application"
	"github.com/astimch/go-referrals/internal/domain/entity"
	"github.com/astimch/go-referrals/pkg/response"
)

const CtxUserKey = "currentUser"

// Auth reads the bearer token from the Authorization header, resolves it
// to a user, and injects the user into the Gin context. Missing, malformed
// and expired tokens, and tokens for deleted users, all answer 401 with
// the same message.
func Auth(svc *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "authorization error", nil)
			return
		}
		u, err := svc.CurrentUser(c.Request.Context(), token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "authorization error", nil)
			return
		}
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// CurrentUser pulls the authenticated user placed in the context by Auth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok
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
