package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists discussions in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by Postgres.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ListComments(ctx context.Context, questionID string) ([]Comment, error) {
	const q = `SELECT id, question_id, user_id, parent_id, content, created_at
	           FROM comments
	           WHERE question_id = $1
	           ORDER BY created_at ASC, id ASC`
	rows, err := s.pool.Query(ctx, q, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.UserID, &c.ParentID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListLikes(ctx context.Context) ([]Like, error) {
	const q = `SELECT id, user_id, comment_id, created_at FROM likes`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Like{}
	for rows.Next() {
		var l Like
		if err := rows.Scan(&l.ID, &l.UserID, &l.CommentID, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListProfiles(ctx context.Context, ids []string) ([]Profile, error) {
	if len(ids) == 0 {
		return []Profile{}, nil
	}

	const q = `SELECT id, username, avatar_url FROM profiles WHERE id = ANY($1)`
	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Profile{}
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.AvatarURL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) InsertComment(ctx context.Context, c NewComment) (Comment, error) {
	const q = `INSERT INTO comments (question_id, user_id, parent_id, content)
	           VALUES ($1, $2, $3, $4)
	           RETURNING id, question_id, user_id, parent_id, content, created_at`
	row := s.pool.QueryRow(ctx, q, c.QuestionID, c.UserID, c.ParentID, c.Content)
	var out Comment
	err := row.Scan(&out.ID, &out.QuestionID, &out.UserID, &out.ParentID, &out.Content, &out.CreatedAt)
	return out, err
}

func (s *PostgresStore) InsertLike(ctx context.Context, userID, commentID string) (Like, error) {
	const q = `INSERT INTO likes (user_id, comment_id)
	           VALUES ($1, $2)
	           RETURNING id, user_id, comment_id, created_at`
	row := s.pool.QueryRow(ctx, q, userID, commentID)
	var out Like
	err := row.Scan(&out.ID, &out.UserID, &out.CommentID, &out.CreatedAt)
	return out, err
}

func (s *PostgresStore) DeleteLike(ctx context.Context, likeID string) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM likes WHERE id = $1`, likeID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListQuestions(ctx context.Context) ([]Question, error) {
	const q = `SELECT id, user_id, title, tags, created_at
	           FROM questions
	           ORDER BY created_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		var qn Question
		if err := rows.Scan(&qn.ID, &qn.UserID, &qn.Title, &qn.Tags, &qn.CreatedAt); err != nil {
			return nil, err
		}
		if qn.Tags == nil {
			qn.Tags = []string{}
		}
		out = append(out, qn)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	const q = `SELECT id, user_id, title, tags, created_at FROM questions WHERE id = $1`
	row := s.pool.QueryRow(ctx, q, id)
	var out Question
	err := row.Scan(&out.ID, &out.UserID, &out.Title, &out.Tags, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out, err
}

func (s *PostgresStore) InsertQuestion(ctx context.Context, q NewQuestion) (Question, error) {
	const sql = `INSERT INTO questions (user_id, title, tags)
	             VALUES ($1, $2, $3)
	             RETURNING id, user_id, title, tags, created_at`
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	row := s.pool.QueryRow(ctx, sql, q.UserID, q.Title, tags)
	var out Question
	err := row.Scan(&out.ID, &out.UserID, &out.Title, &out.Tags, &out.CreatedAt)
	return out, err
}
