package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/astimch/go-referrals/internal/application"
	"github.com/astimch/go-referrals/internal/container"
	handlers "github.com/astimch/go-referrals/internal/interface/http"
	"github.com/astimch/go-referrals/internal/interface/middleware"
)

// AuthModule wires registration, login and current-user routes.
// Public: POST /api/v1/auth/register, POST /api/v1/auth/login
// Protected: GET /api/v1/auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    *application.AuthService
}

func NewAuthModule(h *handlers.AuthHandler, auth *application.AuthService) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP())

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Auth))
	{
		auth.GET("/auth/me", m.Handler.Me)
	}
}
