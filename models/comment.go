package models

import "time"

// CommentAuthor identifies who wrote a comment.
type CommentAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Comment is attached to exactly one report. Comments are append-only; there
// is no edit or delete.
type Comment struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Author    CommentAuthor `json:"author"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CommentDraft is the input for creating a comment; ID and CreatedAt are
// assigned by the backend.
type CommentDraft struct {
	Text   string        `json:"text"`
	Author CommentAuthor `json:"author"`
}
