package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/tanya-platform/internal/platform/api"
	"github.com/example/tanya-platform/internal/platform/auth"
	"github.com/example/tanya-platform/services/discussion/internal/store"
	"github.com/example/tanya-platform/services/discussion/internal/thread"
)

type createQuestionRequest struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}

type questionDetailResponse struct {
	Question store.Question `json:"question"`
	Asker    store.Profile  `json:"asker"`
}

// ListQuestions handles GET /v1/questions
// Optional filters: ?tag=, ?author=, ?sort=oldest (default newest first).
func ListQuestions(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := s.ListQuestions(r.Context())
		if err != nil {
			api.Internal(w, "")
			return
		}

		tag := strings.TrimSpace(r.URL.Query().Get("tag"))
		author := strings.TrimSpace(r.URL.Query().Get("author"))
		filtered := make([]store.Question, 0, len(questions))
		for _, q := range questions {
			if author != "" && q.UserID != author {
				continue
			}
			if tag != "" && !containsTag(q.Tags, tag) {
				continue
			}
			filtered = append(filtered, q)
		}

		if strings.EqualFold(r.URL.Query().Get("sort"), "oldest") {
			for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
				filtered[i], filtered[j] = filtered[j], filtered[i]
			}
		}

		api.WriteJSON(w, http.StatusOK, filtered)
	}
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

// CreateQuestion handles POST /v1/questions
func CreateQuestion(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "AUTH_REQUIRED", "authentication required", "")
			return
		}

		var req createQuestionRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		title := strings.TrimSpace(req.Title)
		if title == "" {
			api.BadRequest(w, "EMPTY_CONTENT", "title must not be empty", "", nil)
			return
		}

		created, err := s.InsertQuestion(r.Context(), store.NewQuestion{
			UserID: userID,
			Title:  title,
			Tags:   req.Tags,
		})
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetQuestion handles GET /v1/questions/{question_id}
func GetQuestion(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "question_id"))
		if id == "" {
			api.BadRequest(w, "MISSING_ID", "question_id is required", "", nil)
			return
		}

		q, err := s.GetQuestion(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "question not found", "")
				return
			}
			api.Internal(w, "")
			return
		}

		asker := thread.ResolveProfiles(r.Context(), s, []string{q.UserID}).Get(q.UserID)
		api.WriteJSON(w, http.StatusOK, questionDetailResponse{Question: q, Asker: asker})
	}
}
