package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	TokenType string `json:"typ"`
}

// TokenIssuer mints and verifies HS256 tokens. Access and refresh tokens are
// signed with distinct secrets so one kind never verifies as the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (i *TokenIssuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *TokenIssuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *TokenIssuer) IssueAccess(userID, email string) (string, error) {
	return i.issue(userID, email, KindAccess)
}

func (i *TokenIssuer) IssueRefresh(userID, email string) (string, error) {
	return i.issue(userID, email, KindRefresh)
}

func (i *TokenIssuer) issue(userID, email string, kind TokenKind) (string, error) {
	secret, ttl := i.accessSecret, i.accessTTL
	if kind == KindRefresh {
		secret, ttl = i.refreshSecret, i.refreshTTL
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:     email,
		TokenType: string(kind),
	})

	encoded, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return encoded, nil
}

// Verify checks signature, expiry and kind, and returns the embedded identity.
func (i *TokenIssuer) Verify(tokenString string, kind TokenKind) (Identity, error) {
	secret := i.accessSecret
	if kind == KindRefresh {
		secret = i.refreshSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid || claims.TokenType != string(kind) {
		return Identity{}, jwt.ErrTokenInvalidClaims
	}

	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
