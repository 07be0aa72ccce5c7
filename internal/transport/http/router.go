package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authHandler "atelier/internal/auth/handler"
	contentHandler "atelier/internal/content/handler"
	"atelier/internal/platform/middleware"
	adminHandler "atelier/internal/ratelimit/admin"
	settingsHandler "atelier/internal/settings/handler"
	"atelier/pkg/platform/httputil"
	"atelier/pkg/platform/middleware/requesttime"
	"atelier/pkg/platform/middleware/session"
)

// Deps carries everything the router mounts. The transport layer stays thin:
// each handler owns its routes, the router owns middleware and grouping.
type Deps struct {
	Auth     *authHandler.Handler
	Content  *contentHandler.Handler
	Settings *settingsHandler.Handler
	Security *adminHandler.Handler

	SessionValidator  session.Validator
	CookieName        string
	ThrottlePerMinute int

	HealthChecks map[string]func(context.Context) error

	Logger *slog.Logger
}

// NewRouter wires the public, session, and admin surfaces with the shared
// middleware stack.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	if d.ThrottlePerMinute > 0 {
		r.Use(middleware.Throttle(d.ThrottlePerMinute))
	}

	r.Get("/healthz", healthHandler(d.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			d.Auth.PublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(session.Middleware(d.SessionValidator, d.CookieName))
				d.Auth.SessionRoutes(r)
			})
		})

		d.Content.PublicRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(session.Middleware(d.SessionValidator, d.CookieName))
			r.Use(session.RequireAdmin)

			r.Route("/security", d.Security.Routes)
			d.Settings.Routes(r)
			d.Content.AdminRoutes(r)
		})
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler reports ok when every registered dependency responds.
// Unconfigured dependencies (nil check) are skipped.
func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				resp.Status = "degraded"
				resp.Checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		httputil.WriteJSON(w, status, resp)
	}
}
