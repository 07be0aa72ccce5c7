package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"atelier/internal/auth/models"
	"atelier/internal/auth/service"
	"atelier/internal/auth/store/user"
	"atelier/internal/auth/token"
	"atelier/internal/platform/config"
	"atelier/internal/ratelimit/limiter"
	"atelier/internal/ratelimit/store/attempt"
	"atelier/internal/ratelimit/store/block"
	"atelier/pkg/platform/middleware/session"
)

type HandlerSuite struct {
	suite.Suite
	router *chi.Mux
}

func (s *HandlerSuite) SetupTest() {
	users := user.NewMemoryStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery staple"), bcrypt.MinCost)
	s.Require().NoError(err)
	alice, err := models.NewUser("alice", "alice@example.com", string(hash), models.RoleAdmin, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(users.Create(context.Background(), alice))

	lim, err := limiter.New(attempt.NewMemoryStore(), block.NewMemoryStore(), config.LimitConfig{
		IPLimit: 3, IPWindow: 5 * time.Minute,
		UserLimit: 3, UserWindow: 15 * time.Minute,
		BlockThreshold: 5, BlockDuration: 24 * time.Hour,
	}, limiter.WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)

	tokens, err := token.New("test-signing-key", 24*time.Hour)
	s.Require().NoError(err)

	svc, err := service.New(users, tokens, lim, service.WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)

	authCfg := config.AuthConfig{
		TokenTTL:     24 * time.Hour,
		CookieName:   "admin_token",
		CookieMaxAge: 24 * time.Hour,
	}
	h := NewHandler(svc, authCfg, slog.New(slog.DiscardHandler))

	s.router = chi.NewRouter()
	s.router.Route("/api/auth", func(r chi.Router) {
		h.PublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(session.Middleware(tokens, authCfg.CookieName))
			h.SessionRoutes(r)
		})
	})
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) postJSON(path string, body any, decorate ...func(*http.Request)) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, d := range decorate {
		d(req)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) login(username, password string) *httptest.ResponseRecorder {
	return s.postJSON("/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
}

func (s *HandlerSuite) sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "admin_token" {
			return c
		}
	}
	s.FailNow("no session cookie in response")
	return nil
}

func (s *HandlerSuite) TestLoginSetsHardenedCookie() {
	rec := s.login("alice", "correct horse battery staple")
	s.Require().Equal(http.StatusOK, rec.Code)

	c := s.sessionCookie(rec)
	s.NotEmpty(c.Value)
	s.True(c.HttpOnly)
	s.True(c.Secure)
	s.Equal(http.SameSiteStrictMode, c.SameSite)
	s.Equal("/", c.Path)
	s.Equal(int((24 * time.Hour).Seconds()), c.MaxAge)

	var resp models.LoginResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("alice", resp.User.Username)
	s.False(resp.ExpiresAt.IsZero())
	s.NotContains(rec.Body.String(), c.Value, "token never appears in the body")
}

func (s *HandlerSuite) TestLoginBadCredentials() {
	rec := s.login("alice", "wrong")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "Invalid credentials")
}

func (s *HandlerSuite) TestLoginValidation() {
	rec := s.postJSON("/api/auth/login", map[string]string{"username": "alice"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestLoginRateLimitedGetsRetryAfter() {
	for i := 0; i < 3; i++ {
		s.login("alice", "wrong")
	}

	rec := s.login("alice", "correct horse battery staple")
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.NotEmpty(rec.Header().Get("Retry-After"))
}

func (s *HandlerSuite) TestMeRequiresSession() {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestMeWithCookie() {
	c := s.sessionCookie(s.login("alice", "correct horse battery staple"))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(c)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code)
	var info models.UserInfo
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &info))
	s.Equal("alice", info.Username)
	s.Equal(models.RoleAdmin, info.Role)
}

func (s *HandlerSuite) TestLogoutExpiresCookie() {
	c := s.sessionCookie(s.login("alice", "correct horse battery staple"))

	rec := s.postJSON("/api/auth/logout", struct{}{}, func(r *http.Request) { r.AddCookie(c) })
	s.Require().Equal(http.StatusNoContent, rec.Code)

	cleared := s.sessionCookie(rec)
	s.Empty(cleared.Value)
	s.Negative(cleared.MaxAge)
}

func (s *HandlerSuite) TestRefreshReissuesCookie() {
	c := s.sessionCookie(s.login("alice", "correct horse battery staple"))

	rec := s.postJSON("/api/auth/refresh", struct{}{}, func(r *http.Request) { r.AddCookie(c) })
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotEmpty(s.sessionCookie(rec).Value)
}

func (s *HandlerSuite) TestChangePasswordFlow() {
	c := s.sessionCookie(s.login("alice", "correct horse battery staple"))

	req := httptest.NewRequest(http.MethodPut, "/api/auth/password",
		bytes.NewBufferString(`{"current_password":"correct horse battery staple","new_password":"a brand new passphrase"}`))
	req.AddCookie(c)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Negative(s.sessionCookie(rec).MaxAge, "password change forces a fresh login")

	s.Equal(http.StatusUnauthorized, s.login("alice", "correct horse battery staple").Code)
	s.Equal(http.StatusOK, s.login("alice", "a brand new passphrase").Code)
}

func (s *HandlerSuite) TestUpdateProfile() {
	c := s.sessionCookie(s.login("alice", "correct horse battery staple"))

	req := httptest.NewRequest(http.MethodPut, "/api/auth/profile",
		bytes.NewBufferString(`{"username":"alice2","email":"alice2@example.com"}`))
	req.AddCookie(c)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code)
	var info models.UserInfo
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &info))
	s.Equal("alice2", info.Username)
}
