package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"atelier/internal/auth/models"
	"atelier/internal/auth/service"
	"atelier/internal/platform/config"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/clientip"
	"atelier/pkg/platform/httputil"
	"atelier/pkg/platform/middleware/requesttime"
	"atelier/pkg/platform/middleware/session"
)

// Handler exposes the authentication endpoints. The session token travels
// only in the cookie; response bodies carry the user projection.
type Handler struct {
	svc      *service.Service
	cfg      config.AuthConfig
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(svc *service.Service, cfg config.AuthConfig, logger *slog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

// PublicRoutes mounts the endpoints that do not require a session.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

// SessionRoutes mounts the endpoints that run behind the session middleware.
func (h *Handler) SessionRoutes(r chi.Router) {
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
	r.Post("/refresh", h.refresh)
	r.Put("/profile", h.updateProfile)
	r.Put("/password", h.changePassword)
}

func (h *Handler) meta(r *http.Request) service.Request {
	return service.Request{
		IP:        clientip.FromRequest(r),
		UserAgent: r.UserAgent(),
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "username and password are required"))
		return
	}

	user, signed, err := h.svc.Login(r.Context(), req, h.meta(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, signed)
	httputil.WriteJSON(w, http.StatusOK, models.LoginResponse{
		User:      user.Info(),
		ExpiresAt: requesttime.Now(r.Context()).Add(h.cfg.TokenTTL),
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.Identity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"))
		return
	}

	h.svc.Logout(r.Context(), identity, h.meta(r))
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.Identity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"))
		return
	}

	user, err := h.svc.Me(r.Context(), identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user.Info())
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.Identity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"))
		return
	}

	user, signed, err := h.svc.Refresh(r.Context(), identity, h.meta(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, signed)
	httputil.WriteJSON(w, http.StatusOK, models.LoginResponse{
		User:      user.Info(),
		ExpiresAt: requesttime.Now(r.Context()).Add(h.cfg.TokenTTL),
	})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.Identity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"))
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "username is required and email must be valid"))
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), identity, req, h.meta(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user.Info())
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.Identity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"))
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "new password must be at least 8 characters"))
		return
	}

	if err := h.svc.ChangePassword(r.Context(), identity, req, h.meta(r)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	// Force a fresh login with the new password.
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.cfg.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
