package comment

import "time"

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	PostID    string    `json:"post"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Content string `json:"content" validate:"required,max=5000"`
	PostID  string `json:"post" validate:"required,uuid"`
}

type UpdateInput struct {
	Content string `json:"content" validate:"max=5000"`
}
