package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/weedscan-auth/internal/application/linking"
	"github.com/weedscan-auth/internal/config"
	"github.com/weedscan-auth/internal/transport/http/handler"
	appmiddleware "github.com/weedscan-auth/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to the credential-bearing
	// public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	linkSvc := linking.NewService(linking.ServiceDeps{
		Provider: deps.Provider,
		Store:    deps.Store,
		Escrow:   deps.Escrow,
		Mailer:   deps.Mailer,
		BaseURL:  cfg.AppBaseURL,
		DevMode:  !cfg.IsProduction(),
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(linkSvc)
	completeH := handler.NewCompleteLinkHandler(linkSvc)

	r.Get("/health-check", healthH.Ping)

	r.Route("/auth", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/init-link-account", authH.InitLinkAccount)
		r.Get("/complete-link", completeH.Complete)
		r.With(sensitiveRL.Limit).Post("/login", authH.Login)
		r.Get("/anonymous", authH.Anonymous)
		r.Get("/validate", authH.Validate)
		r.Get("/refresh-auth", authH.RefreshAuth)
	})

	return r
}
