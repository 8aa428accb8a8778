package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/scopedev/scopepad/internal/apperr"
	"github.com/scopedev/scopepad/internal/auth"
	"github.com/scopedev/scopepad/internal/store"
)

// IdentityService owns user accounts: registration, credential checks and
// token-subject resolution for the auth middleware.
type IdentityService struct {
	dbStore *store.SQLiteStore
}

func NewIdentityService(db *store.SQLiteStore) *IdentityService {
	return &IdentityService{dbStore: db}
}

// Register creates a new user. Usernames are lower-cased before storage so
// uniqueness is case-insensitive.
func (s *IdentityService) Register(ctx context.Context, username, password string) (*store.User, error) {
	name := strings.ToLower(username)

	existing, err := s.dbStore.GetUserByUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, apperr.ErrAlreadyExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	// The unique index backstops the lookup above under concurrent signups.
	return s.dbStore.CreateUser(ctx, name, hash)
}

// Authenticate verifies a username/password pair and returns the matching
// user, or ErrUnauthorized without revealing which part was wrong.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*store.User, error) {
	name := strings.ToLower(username)

	user, err := s.dbStore.GetUserByUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.ErrUnauthorized
	}
	return user, nil
}

// GetUserByID resolves a token subject to a user. Returns nil when the
// account no longer exists.
func (s *IdentityService) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	return s.dbStore.GetUserByID(ctx, id)
}
