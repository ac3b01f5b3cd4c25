package router

import (
	"github.com/fedeegmz/go-users-api/internal/application"
	"github.com/fedeegmz/go-users-api/internal/container"
	pginfra "github.com/fedeegmz/go-users-api/internal/infrastructure/postgres"
	handlers "github.com/fedeegmz/go-users-api/internal/interface/http"
	"github.com/fedeegmz/go-users-api/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	store := pginfra.NewAccountStore(container.GetPGPool())

	authSvc := application.NewAuthService(store, container.GetTokenCodec(), logger, cfg.LoginTokenTTL)
	accountSvc := application.NewAccountService(store, logger, container.GetES(), cfg.ESAccountsIndex)

	accountHandler := handlers.NewAccountHandler(accountSvc, logger, cfg, container.GetRabbitPub())
	tokenHandler := handlers.NewTokenHandler(authSvc, logger)

	r.Add(modules.NewAccountModule(accountHandler, authSvc))
	r.Add(modules.NewTokenModule(tokenHandler, authSvc))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
