package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// Comment is a single comment row. ParentID is nil for top-level comments.
type Comment struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	UserID     string    `json:"user_id"`
	ParentID   *string   `json:"parent_id,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewComment is the insert payload for a comment.
type NewComment struct {
	QuestionID string
	UserID     string
	ParentID   *string
	Content    string
}

// Like is one like record. Toggling likes inserts and deletes rows rather
// than flipping a flag.
type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CommentID string    `json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the display metadata for a user. Username and AvatarURL are
// optional; missing profiles render as a placeholder.
type Profile struct {
	ID        string  `json:"id"`
	Username  *string `json:"username,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Question is one question row.
type Question struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// NewQuestion is the insert payload for a question.
type NewQuestion struct {
	UserID string
	Title  string
	Tags   []string
}

// Store defines the contract for discussion persistence.
type Store interface {
	// ListComments returns all comments for a question, ascending by
	// creation time, stable.
	ListComments(ctx context.Context, questionID string) ([]Comment, error)
	// ListLikes returns the full like table.
	ListLikes(ctx context.Context) ([]Like, error)
	// ListProfiles resolves the given user ids. An empty input yields an
	// empty result without touching the store. Missing ids are skipped.
	ListProfiles(ctx context.Context, ids []string) ([]Profile, error)

	InsertComment(ctx context.Context, c NewComment) (Comment, error)
	InsertLike(ctx context.Context, userID, commentID string) (Like, error)
	DeleteLike(ctx context.Context, likeID string) error

	ListQuestions(ctx context.Context) ([]Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	InsertQuestion(ctx context.Context, q NewQuestion) (Question, error)
}
