package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/astimch/go-referrals/internal/application"
	handlers "github.com/astimch/go-referrals/internal/interface/http"
	"github.com/astimch/go-referrals/internal/interface/middleware"
)

// ReferralModule wires the referral-code routes.
// Public: GET /api/v1/referral_code/:email, GET /api/v1/referrals/:referrer_id,
// GET /api/v1/validate_referral_code
// Protected: POST/GET/DELETE /api/v1/referral_code, GET /api/v1/email_referral_code
type ReferralModule struct {
	Handler *handlers.ReferralHandler
	Auth    *application.AuthService
}

func NewReferralModule(h *handlers.ReferralHandler, auth *application.AuthService) *ReferralModule {
	return &ReferralModule{Handler: h, Auth: auth}
}

func (m *ReferralModule) Register(rg *gin.RouterGroup) {
	rg.GET("/referral_code/:email", m.Handler.GetByEmail)
	rg.GET("/referrals/:referrer_id", m.Handler.ReferralsByReferrer)
	rg.GET("/validate_referral_code", m.Handler.Validate)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Auth))
	{
		auth.POST("/referral_code", m.Handler.Renew)
		auth.GET("/referral_code", m.Handler.Get)
		auth.DELETE("/referral_code", m.Handler.Delete)
		auth.GET("/email_referral_code", m.Handler.Email)
	}
}
