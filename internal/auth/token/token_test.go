package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"atelier/internal/auth/models"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/middleware/requesttime"
)

type TokenSuite struct {
	suite.Suite
	svc  *Service
	user *models.User
	base time.Time
}

func (s *TokenSuite) SetupTest() {
	svc, err := New("test-signing-key", 24*time.Hour)
	s.Require().NoError(err)
	s.svc = svc
	s.base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	user, err := models.NewUser("alice", "alice@example.com", "$2a$10$hash", models.RoleAdmin, s.base)
	s.Require().NoError(err)
	s.user = user
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) at(offset time.Duration) context.Context {
	return requesttime.WithTime(context.Background(), s.base.Add(offset))
}

func (s *TokenSuite) TestNewRejectsBadConfig() {
	_, err := New("", time.Hour)
	s.Error(err)

	_, err = New("key", 0)
	s.Error(err)
}

func (s *TokenSuite) TestIssueThenValidate() {
	signed, err := s.svc.Issue(s.at(0), s.user)
	s.Require().NoError(err)
	s.NotEmpty(signed)

	identity, err := s.svc.Validate(signed)
	s.Require().NoError(err)
	s.Equal(s.user.ID, identity.UserID)
	s.Equal("alice", identity.Username)
	s.Equal(models.RoleAdmin, identity.Role)
	s.True(identity.IsAdmin())
}

func (s *TokenSuite) TestExpiredTokenIsUnauthorized() {
	// Issue in the past so the token is already expired against the real
	// clock the validator uses.
	ctx := requesttime.WithTime(context.Background(), time.Now().Add(-48*time.Hour))
	signed, err := s.svc.Issue(ctx, s.user)
	s.Require().NoError(err)

	_, err = s.svc.Validate(signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestTamperedTokenIsUnauthorized() {
	signed, err := s.svc.Issue(s.at(0), s.user)
	s.Require().NoError(err)

	_, err = s.svc.Validate(signed + "x")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestWrongKeyIsUnauthorized() {
	other, err := New("a-different-key", 24*time.Hour)
	s.Require().NoError(err)

	signed, err := other.Issue(s.at(0), s.user)
	s.Require().NoError(err)

	_, err = s.svc.Validate(signed)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestEmptyTokenIsUnauthorized() {
	_, err := s.svc.Validate("")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestRejectionsAreIndistinguishable() {
	expiredCtx := requesttime.WithTime(context.Background(), time.Now().Add(-48*time.Hour))
	expired, err := s.svc.Issue(expiredCtx, s.user)
	s.Require().NoError(err)

	_, expiredErr := s.svc.Validate(expired)
	_, garbageErr := s.svc.Validate("not-a-token")
	s.Require().Error(expiredErr)
	s.Require().Error(garbageErr)
	s.Equal(expiredErr.Error(), garbageErr.Error())
}
