package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a development-only in-memory implementation.
type MemoryStore struct {
	mu        sync.RWMutex
	comments  map[string]Comment
	likes     map[string]Like
	profiles  map[string]Profile
	questions map[string]Question
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		comments:  make(map[string]Comment),
		likes:     make(map[string]Like),
		profiles:  make(map[string]Profile),
		questions: make(map[string]Question),
	}
}

func (s *MemoryStore) ListComments(_ context.Context, questionID string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Comment
	for _, c := range s.comments {
		if c.QuestionID == questionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if out == nil {
		out = []Comment{}
	}
	return out, nil
}

func (s *MemoryStore) ListLikes(_ context.Context) ([]Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Like, 0, len(s.likes))
	for _, l := range s.likes {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListProfiles(_ context.Context, ids []string) ([]Profile, error) {
	if len(ids) == 0 {
		return []Profile{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// PutProfile seeds a profile. Profiles are read-only through the Store
// interface; this exists for development fixtures and tests.
func (s *MemoryStore) PutProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *MemoryStore) InsertComment(_ context.Context, c NewComment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := Comment{
		ID:         uuid.NewString(),
		QuestionID: c.QuestionID,
		UserID:     c.UserID,
		ParentID:   c.ParentID,
		Content:    c.Content,
		CreatedAt:  time.Now().UTC(),
	}
	s.comments[created.ID] = created
	return created, nil
}

func (s *MemoryStore) InsertLike(_ context.Context, userID, commentID string) (Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := Like{
		ID:        uuid.NewString(),
		UserID:    userID,
		CommentID: commentID,
		CreatedAt: time.Now().UTC(),
	}
	s.likes[l.ID] = l
	return l, nil
}

func (s *MemoryStore) DeleteLike(_ context.Context, likeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.likes[likeID]; !ok {
		return ErrNotFound
	}
	delete(s.likes, likeID)
	return nil
}

func (s *MemoryStore) ListQuestions(_ context.Context) ([]Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	// Newest first, like the question feed.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}

func (s *MemoryStore) InsertQuestion(_ context.Context, q NewQuestion) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := Question{
		ID:        uuid.NewString(),
		UserID:    q.UserID,
		Title:     q.Title,
		Tags:      q.Tags,
		CreatedAt: time.Now().UTC(),
	}
	if created.Tags == nil {
		created.Tags = []string{}
	}
	s.questions[created.ID] = created
	return created, nil
}
