package domainerrors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// These are core error primitives used at every trust boundary. Unit tests
// ensure invariants like "wrapped domain errors preserve original code" and
// "errors.Is matches by code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeUnauthorized, Message: "Invalid credentials"}
		s.Equal("Invalid credentials", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeTooManyRequests}
		s.Equal("too_many_requests", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("redis connection refused")
		err := &Error{Code: CodeInternal, Message: "store error", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeNotFound, Message: "not found"}
		s.Nil(err.Unwrap())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeUnauthorized, Message: "bad password"}
		err2 := &Error{Code: CodeUnauthorized, Message: "expired token"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeUnauthorized}
		err2 := &Error{Code: CodeTooManyRequests}
		s.False(err1.Is(err2))
	})

	s.Run("does not match non-domain errors", func() {
		err := &Error{Code: CodeInternal}
		s.False(err.Is(errors.New("plain error")))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("wraps plain error with new code", func() {
		inner := errors.New("dial tcp: connection refused")
		err := Wrap(inner, CodeInternal, "failed to reach counter store")
		s.True(HasCode(err, CodeInternal))
		s.True(errors.Is(err, inner))
	})

	s.Run("preserves code of wrapped domain error", func() {
		inner := New(CodeUnauthorized, "Invalid credentials")
		err := Wrap(inner, CodeInternal, "login failed")
		s.True(HasCode(err, CodeUnauthorized))
	})

	s.Run("preserves retry-after of wrapped domain error", func() {
		inner := NewRateLimited("too many attempts", 5*time.Minute)
		err := Wrap(inner, CodeInternal, "login rejected")
		s.Equal(5*time.Minute, RetryAfterOf(err))
	})
}

func (s *DomainErrorsSuite) TestRetryAfter() {
	s.Run("rate limited error carries hint", func() {
		err := NewRateLimited("too many attempts", 300*time.Second)
		s.True(HasCode(err, CodeTooManyRequests))
		s.Equal(300*time.Second, RetryAfterOf(err))
	})

	s.Run("zero hint means no retry guidance", func() {
		err := NewRateLimited("blocked", 0)
		s.Zero(RetryAfterOf(err))
	})

	s.Run("non-domain errors have no hint", func() {
		s.Zero(RetryAfterOf(errors.New("plain")))
	})
}
