package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"atelier/internal/auth/models"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/middleware/requesttime"
)

// SessionClaims are the JWT claims carried by an admin session token.
type SessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and validates HS256-signed session tokens.
type Service struct {
	signingKey []byte
	tokenTTL   time.Duration
}

func New(signingKey string, tokenTTL time.Duration) (*Service, error) {
	if signingKey == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "signing key cannot be empty")
	}
	if tokenTTL <= 0 {
		return nil, dErrors.New(dErrors.CodeInternal, "token ttl must be positive")
	}
	return &Service{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
	}, nil
}

// TTL returns the configured token lifetime, which also bounds the session
// cookie max-age.
func (s *Service) TTL() time.Duration {
	return s.tokenTTL
}

// Issue signs a session token for the user. Expiry is relative to the
// request-scoped clock.
func (s *Service) Issue(ctx context.Context, user *models.User) (string, error) {
	now := requesttime.Now(ctx)

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Username: user.Username,
		Role:     user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})

	signed, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return signed, nil
}

// Validate parses and verifies a session token and returns the caller's
// identity. Expired, malformed, and badly-signed tokens all come back as the
// same Unauthorized error so callers cannot distinguish them.
func (s *Service) Validate(tokenString string) (*models.Identity, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
	}

	role := models.Role(claims.Role)
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
	}

	return &models.Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     role,
	}, nil
}
