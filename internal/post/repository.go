package post

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

// List returns all posts, or only those by sender when it is non-empty.
func (r *Repository) List(ctx context.Context, sender string) ([]Post, error) {
	query := `
		SELECT id, title, content, sender, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC
	`
	args := []any{}
	if sender != "" {
		query = `
			SELECT id, title, content, sender, created_at, updated_at
			FROM posts
			WHERE sender = $1
			ORDER BY created_at DESC
		`
		args = append(args, sender)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]Post, 0)
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Sender, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Post, error) {
	var p Post
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, content, sender, created_at, updated_at
		FROM posts
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Content, &p.Sender, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, err
		}
		return Post{}, fmt.Errorf("query post: %w", err)
	}

	return p, nil
}

func (r *Repository) Create(ctx context.Context, input PostInput, sender string) (Post, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Post{}, fmt.Errorf("generate post id: %w", err)
	}

	now := time.Now().UTC()
	p := Post{
		ID:        id.String(),
		Title:     input.Title,
		Content:   input.Content,
		Sender:    sender,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, content, sender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Title, p.Content, p.Sender, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return Post{}, fmt.Errorf("insert post: %w", err)
	}

	return p, nil
}

// Update overwrites only the fields provided; empty strings keep the stored
// values.
func (r *Repository) Update(ctx context.Context, id string, input PostInput) (Post, error) {
	var p Post
	err := r.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = COALESCE(NULLIF($2, ''), title),
		    content = COALESCE(NULLIF($3, ''), content),
		    updated_at = $4
		WHERE id = $1
		RETURNING id, title, content, sender, created_at, updated_at
	`, id, input.Title, input.Content, time.Now().UTC()).
		Scan(&p.ID, &p.Title, &p.Content, &p.Sender, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, err
		}
		return Post{}, fmt.Errorf("update post: %w", err)
	}

	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
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
