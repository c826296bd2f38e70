package post

import "time"

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostInput carries client-supplied fields. On update, empty fields keep the
// stored values.
type PostInput struct {
	Title   string `json:"title" validate:"max=150"`
	Content string `json:"content" validate:"max=5000"`
}
