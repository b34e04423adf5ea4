package router

import (
	"github.com/astimch/go-referrals/internal/application"
	"github.com/astimch/go-referrals/internal/container"
	pginfra "github.com/astimch/go-referrals/internal/infrastructure/postgres"
	handlers "github.com/astimch/go-referrals/internal/interface/http"
	"github.com/astimch/go-referrals/internal/router/modules"
)

// InitModules builds the services and handlers from container singletons
// and registers all feature modules with the router registry. Call once
// during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	codes := pginfra.NewReferralCodeRepository(pool)

	authSvc := application.NewAuthService(users, container.GetTokenCodec(), cfg.SessionTTL, container.GetLogger())
	referralSvc := application.NewReferralService(codes, users, container.GetTokenCodec(), container.GetRedis(), cfg.CacheTTL, container.GetLogger())

	authHandler := handlers.NewAuthHandler(authSvc, referralSvc, container.GetLogger())
	referralHandler := handlers.NewReferralHandler(referralSvc, authSvc, container.GetRabbitPub(), container.GetLogger(), cfg)

	r.Add(modules.NewAuthModule(authHandler, authSvc))
	r.Add(modules.NewReferralModule(referralHandler, authSvc))
}
