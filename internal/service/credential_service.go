package service

import (
	"context"

	"github.com/jonathan/skillbuddy/internal/store"
	"github.com/jonathan/skillbuddy/internal/types"
)

// PasswordHasher hashes and verifies passwords. *config.PasswordConfig implements it.
type PasswordHasher interface {
	HashPassword(pw string) (string, error)
	VerifyPassword(pw, storedHash string) bool
}

// CredentialService keeps password hashes apart from user records
type CredentialService struct {
	store  Store
	hasher PasswordHasher
	users  *UserService
}

// NewCredentialService creates a new CredentialService
func NewCredentialService(st Store, hasher PasswordHasher, users *UserService) *CredentialService {
	return &CredentialService{store: st, hasher: hasher, users: users}
}

// Register creates an account with a password. The hash is stored before the user
// record, so a failed write never leaves a user who cannot log in.
func (s *CredentialService) Register(ctx context.Context, req *types.RegisterRequest) (*types.User, error) {
	return s.users.register(ctx, req, func(ctx context.Context, uid string) error {
		return s.SetPassword(ctx, uid, req.Password)
	})
}

// SetPassword hashes and stores the password for a user.
func (s *CredentialService) SetPassword(ctx context.Context, uid, password string) error {
	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return s.users.internal(ctx, "hash password", uid, err)
	}
	if _, err := s.store.Put(ctx, store.KindCredentials, uid, &types.Credentials{UID: uid, PasswordHash: hash}); err != nil {
		return s.users.internal(ctx, "store credentials", uid, err)
	}
	return nil
}

// Verify checks a password. A missing credential record and a wrong password are
// both reported as *ErrInvalidCredentials.
func (s *CredentialService) Verify(ctx context.Context, uid, password string) error {
	var creds types.Credentials
	found, _, err := s.store.Get(ctx, store.KindCredentials, uid, &creds)
	if err != nil {
		return s.users.internal(ctx, "get credentials", uid, err)
	}
	if !found || !s.hasher.VerifyPassword(password, creds.PasswordHash) {
		return &ErrInvalidCredentials{}
	}
	return nil
}
