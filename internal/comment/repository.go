package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content, post_id, sender, created_at, updated_at
		FROM comments
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Content, &c.PostID, &c.Sender, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Comment, error) {
	var c Comment
	err := r.db.QueryRowContext(ctx, `
		SELECT id, content, post_id, sender, created_at, updated_at
		FROM comments
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Content, &c.PostID, &c.Sender, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Comment{}, err
		}
		return Comment{}, fmt.Errorf("query comment: %w", err)
	}

	return c, nil
}

func (r *Repository) Create(ctx context.Context, input CreateInput, sender string) (Comment, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Comment{}, fmt.Errorf("generate comment id: %w", err)
	}

	now := time.Now().UTC()
	c := Comment{
		ID:        id.String(),
		Content:   input.Content,
		PostID:    input.PostID,
		Sender:    sender,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO comments (id, content, post_id, sender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Content, c.PostID, c.Sender, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}

	return c, nil
}

// Update changes the content only; an empty content keeps the stored value.
func (r *Repository) Update(ctx context.Context, id string, input UpdateInput) (Comment, error) {
	var c Comment
	err := r.db.QueryRowContext(ctx, `
		UPDATE comments
		SET content = COALESCE(NULLIF($2, ''), content),
		    updated_at = $3
		WHERE id = $1
		RETURNING id, content, post_id, sender, created_at, updated_at
	`, id, input.Content, time.Now().UTC()).
		Scan(&c.ID, &c.Content, &c.PostID, &c.Sender, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Comment{}, err
		}
		return Comment{}, fmt.Errorf("update comment: %w", err)
	}

	return c, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
