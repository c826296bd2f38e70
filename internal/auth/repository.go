package auth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateCredential is returned when registering an email that already
// has a user record.
var ErrDuplicateCredential = errors.New("credential already exists")

const uniqueViolation = "23505"

// Repository is the Postgres credential store. It also implements
// TokenRegistry: refresh tokens are stored as sha256 digests so a database
// dump never yields usable tokens.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, err
		}
		return User{}, fmt.Errorf("query user by email: %w", err)
	}

	return user, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (User, error) {
	var user User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, err
		}
		return User{}, fmt.Errorf("query user by id: %w", err)
	}

	return user, nil
}

// CreateUser inserts a new user. Email uniqueness is enforced by the database,
// so concurrent registrations of the same email leave exactly one winner.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	user := User{
		ID:           id.String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrDuplicateCredential
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (r *Repository) Register(ctx context.Context, token, userID string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_refresh_tokens (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`, hashToken(token), userID, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("register refresh token: %w", err)
	}

	return nil
}

func (r *Repository) IsActive(ctx context.Context, token string) (bool, error) {
	var active bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM auth_refresh_tokens
			WHERE token_hash = $1 AND expires_at > NOW()
		)
	`, hashToken(token)).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("check refresh token: %w", err)
	}

	return active, nil
}

func (r *Repository) Revoke(ctx context.Context, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM auth_refresh_tokens
		WHERE token_hash = $1
	`, hashToken(token))
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke rows affected: %w", err)
	}

	return affected > 0, nil
}

// PruneExpiredTokens removes expired registry rows in batches so the table
// does not grow unbounded under the no-rotation refresh policy.
func (r *Repository) PruneExpiredTokens(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	res, err := r.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT token_hash
			FROM auth_refresh_tokens
			WHERE expires_at < NOW()
			ORDER BY expires_at ASC
			LIMIT $1
		)
		DELETE FROM auth_refresh_tokens t
		USING stale
		WHERE t.token_hash = stale.token_hash
	`, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired refresh tokens rows affected: %w", err)
	}

	return affected, nil
}

func hashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
