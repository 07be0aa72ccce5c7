package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"atelier/internal/auth/models"
	"atelier/internal/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newUser(username string) *models.User {
	user, err := models.NewUser(username, username+"@example.com", "$2a$10$hash", models.RoleAdmin, time.Now())
	s.Require().NoError(err)
	return user
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	alice := s.newUser("alice")
	s.Require().NoError(s.store.Create(s.ctx, alice))

	found, err := s.store.FindByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", found.Username)

	found, err = s.store.FindByUsername(s.ctx, "ALICE")
	s.Require().NoError(err)
	s.Equal(alice.ID, found.ID, "username lookup is case-insensitive")
}

func (s *MemoryStoreSuite) TestFindAbsent() {
	_, err := s.store.FindByID(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByUsername(s.ctx, "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestCreateDuplicateUsername() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("alice")))

	err := s.store.Create(s.ctx, s.newUser("Alice"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestUpdate() {
	alice := s.newUser("alice")
	s.Require().NoError(s.store.Create(s.ctx, alice))

	alice.Email = "new@example.com"
	s.Require().NoError(s.store.Update(s.ctx, alice))

	found, err := s.store.FindByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("new@example.com", found.Email)
}

func (s *MemoryStoreSuite) TestUpdateConflictsAndAbsence() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")
	s.Require().NoError(s.store.Create(s.ctx, alice))
	s.Require().NoError(s.store.Create(s.ctx, bob))

	bob.Username = "alice"
	s.ErrorIs(s.store.Update(s.ctx, bob), sentinel.ErrConflict)

	ghost := s.newUser("ghost")
	s.ErrorIs(s.store.Update(s.ctx, ghost), sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestReturnsCopies() {
	alice := s.newUser("alice")
	s.Require().NoError(s.store.Create(s.ctx, alice))

	found, err := s.store.FindByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	found.Username = "mallory"

	again, err := s.store.FindByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", again.Username)
}
