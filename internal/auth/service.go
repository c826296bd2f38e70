package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken is returned when a refresh token is absent from the request.
	ErrMissingToken = errors.New("refresh token is required")
	// ErrInvalidRefreshToken collapses never-issued, expired, bad-signature and
	// revoked refresh tokens into one externally visible outcome.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// CredentialStore persists user identities keyed by a generated unique id.
// Absent users are reported as sql.ErrNoRows.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (User, error)
}

// Service orchestrates registration, login, refresh and logout. It owns the
// credential store and the refresh-token registry; nothing else mutates them.
type Service struct {
	store    CredentialStore
	registry TokenRegistry
	hasher   *Hasher
	issuer   *TokenIssuer
}

func NewService(store CredentialStore, registry TokenRegistry, hasher *Hasher, issuer *TokenIssuer) *Service {
	return &Service{
		store:    store,
		registry: registry,
		hasher:   hasher,
		issuer:   issuer,
	}
}

// Register creates a user with a hashed password. The plaintext and the hash
// are never returned to the caller.
func (s *Service) Register(ctx context.Context, email, password string) error {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.store.CreateUser(ctx, email, digest); err != nil {
		if errors.Is(err, ErrDuplicateCredential) {
			return ErrDuplicateCredential
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// Login verifies credentials and, on success, issues an access/refresh token
// pair and registers the refresh token.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return TokenPair{}, ErrInvalidCredentials
	}

	access, err := s.issuer.IssueAccess(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issuer.IssueRefresh(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, err
	}

	expiresAt := time.Now().UTC().Add(s.issuer.RefreshTTL())
	if err := s.registry.Register(ctx, refresh, user.ID, expiresAt); err != nil {
		return TokenPair{}, fmt.Errorf("register refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a registered refresh token for a new access token. The
// refresh token itself is not rotated; it stays valid until logout or expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrMissingToken
	}

	// The registry is authoritative: a revoked token must fail exactly like
	// one that was never issued, regardless of its signature.
	active, err := s.registry.IsActive(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("check refresh token: %w", err)
	}
	if !active {
		return "", ErrInvalidRefreshToken
	}

	identity, err := s.issuer.Verify(refreshToken, KindRefresh)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	access, err := s.issuer.IssueAccess(identity.UserID, identity.Email)
	if err != nil {
		return "", err
	}

	return access, nil
}

// Logout revokes a single refresh token. Other tokens for the same user, if
// any, remain valid.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrMissingToken
	}

	revoked, err := s.registry.Revoke(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if !revoked {
		return ErrInvalidRefreshToken
	}

	return nil
}
