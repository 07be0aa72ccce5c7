package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"atelier/internal/audit"
	"atelier/internal/auth/models"
	"atelier/internal/auth/store/user"
	"atelier/internal/platform/privacy"
	rlmodels "atelier/internal/ratelimit/models"
	"atelier/internal/sentinel"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/middleware/requesttime"
)

const invalidCredentials = "Invalid credentials"

// Limiter is the slice of the rate limiter the login flow needs.
type Limiter interface {
	Check(ctx context.Context, ip, username string) *rlmodels.Decision
	RecordFailure(ctx context.Context, ip, username string)
	Clear(ctx context.Context, ip, username string)
}

// TokenIssuer issues and validates session tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, user *models.User) (string, error)
	Validate(tokenString string) (*models.Identity, error)
}

// Request carries the transport-level facts about the caller that the login
// flow needs for limiting and auditing.
type Request struct {
	IP        string
	UserAgent string
}

// Service orchestrates authentication: block check, rate check, credential
// verification, then side effects. Checks run in that order so a blocked IP
// never reaches the counters and bad credentials never skip recording.
type Service struct {
	users   user.Store
	tokens  TokenIssuer
	limiter Limiter
	audits  *audit.Publisher
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(audits *audit.Publisher) Option {
	return func(s *Service) {
		s.audits = audits
	}
}

func New(users user.Store, tokens TokenIssuer, limiter Limiter, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("limiter is required")
	}

	svc := &Service{
		users:   users,
		tokens:  tokens,
		limiter: limiter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Login verifies credentials and returns the user plus a signed session
// token. Credential rejections are always the same Unauthorized error so a
// caller cannot tell an unknown username from a wrong password.
func (s *Service) Login(ctx context.Context, req models.LoginRequest, meta Request) (*models.User, string, error) {
	decision := s.limiter.Check(ctx, meta.IP, req.Username)
	if !decision.Allowed {
		action := audit.ActionLoginRateLimited
		retryAfter := decision.Lockout
		if decision.Blocked {
			action = audit.ActionLoginBlocked
			retryAfter = 0
		}
		s.emit(ctx, action, req.Username, meta, false, decision.Reason)
		return nil, "", dErrors.NewRateLimited(decision.Reason, retryAfter)
	}

	found, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
		}
		s.failAttempt(ctx, req.Username, meta, "unknown username")
		return nil, "", dErrors.New(dErrors.CodeUnauthorized, invalidCredentials)
	}

	if bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.Password)) != nil {
		s.failAttempt(ctx, req.Username, meta, "wrong password")
		return nil, "", dErrors.New(dErrors.CodeUnauthorized, invalidCredentials)
	}

	signed, err := s.tokens.Issue(ctx, found)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.limiter.Clear(ctx, meta.IP, req.Username)
	s.recordLastLogin(ctx, found)
	s.emit(ctx, audit.ActionLoginSucceeded, found.Username, meta, true, "")
	return found, signed, nil
}

// recordLastLogin is best-effort bookkeeping; a store hiccup must not turn a
// successful login into an error.
func (s *Service) recordLastLogin(ctx context.Context, found *models.User) {
	now := requesttime.Now(ctx)
	found.LastLoginAt = &now
	if err := s.users.Update(ctx, found); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login",
			"user_id", found.ID, "error", err)
	}
}

// Logout only records the event; the handler expires the cookie and the token
// simply ages out.
func (s *Service) Logout(ctx context.Context, identity *models.Identity, meta Request) {
	s.emit(ctx, audit.ActionLogout, identity.Username, meta, true, "")
}

// Me returns the account behind a validated identity. A vanished account is
// Unauthorized, not NotFound, to keep the session surface uniform.
func (s *Service) Me(ctx context.Context, identity *models.Identity) (*models.User, error) {
	found, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, invalidCredentials)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return found, nil
}

// Refresh re-issues a session token for a still-valid identity, extending the
// session without another credential exchange.
func (s *Service) Refresh(ctx context.Context, identity *models.Identity, meta Request) (*models.User, string, error) {
	found, err := s.Me(ctx, identity)
	if err != nil {
		return nil, "", err
	}

	signed, err := s.tokens.Issue(ctx, found)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.emit(ctx, audit.ActionTokenRefreshed, found.Username, meta, true, "")
	return found, signed, nil
}

// UpdateProfile changes the account's username and email.
func (s *Service) UpdateProfile(ctx context.Context, identity *models.Identity, req models.UpdateProfileRequest, meta Request) (*models.User, error) {
	found, err := s.Me(ctx, identity)
	if err != nil {
		return nil, err
	}

	found.Username = req.Username
	found.Email = req.Email
	found.UpdatedAt = requesttime.Now(ctx)

	if err := s.users.Update(ctx, found); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "username already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}

	s.emit(ctx, audit.ActionProfileUpdated, found.Username, meta, true, "")
	return found, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, identity *models.Identity, req models.ChangePasswordRequest, meta Request) error {
	found, err := s.Me(ctx, identity)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.CurrentPassword)) != nil {
		s.emit(ctx, audit.ActionPasswordChanged, found.Username, meta, false, "current password mismatch")
		return dErrors.New(dErrors.CodeUnauthorized, invalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	found.PasswordHash = string(hash)
	found.UpdatedAt = requesttime.Now(ctx)
	if err := s.users.Update(ctx, found); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}

	s.emit(ctx, audit.ActionPasswordChanged, found.Username, meta, true, "")
	return nil
}

func (s *Service) failAttempt(ctx context.Context, username string, meta Request, detail string) {
	s.limiter.RecordFailure(ctx, meta.IP, username)
	s.emit(ctx, audit.ActionLoginFailed, username, meta, false, detail)
}

func (s *Service) emit(ctx context.Context, action audit.Action, actor string, meta Request, success bool, detail string) {
	if s.audits == nil {
		return
	}
	s.audits.Emit(ctx, audit.Event{
		Action:    action,
		Actor:     actor,
		Success:   success,
		Detail:    detail,
		IP:        privacy.AnonymizeIP(meta.IP),
		UserAgent: audit.SummarizeUserAgent(meta.UserAgent),
	})
}
