package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/tanya-platform/internal/platform/api"
	"github.com/example/tanya-platform/internal/platform/auth"
	"github.com/example/tanya-platform/internal/platform/events"
	"github.com/example/tanya-platform/services/discussion/internal/session"
	"github.com/example/tanya-platform/services/discussion/internal/store"
)

type createCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id,omitempty"`
}

type threadResponse struct {
	Comments []*session.Node `json:"comments"`
}

type toggleLikeResponse struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// GetThread handles GET /v1/questions/{question_id}/thread
// Anonymous viewers get the tree without liked-by-me state.
func GetThread(s store.Store, pub *events.Publisher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID := strings.TrimSpace(chi.URLParam(r, "question_id"))
		if questionID == "" {
			api.BadRequest(w, "MISSING_ID", "question_id is required", "", nil)
			return
		}

		viewerID, _ := auth.UserIDFromContext(r.Context())
		sess := session.New(s, pub, log, questionID, viewerID)
		if err := sess.Load(r.Context()); err != nil {
			log.Error("thread load failed", zap.String("question_id", questionID), zap.Error(err))
			api.WriteError(w, http.StatusInternalServerError, "COMMENTS_UNAVAILABLE",
				"comment list unavailable: "+err.Error(), "", nil)
			return
		}
		api.WriteJSON(w, http.StatusOK, threadResponse{Comments: sess.Render()})
	}
}

// CreateComment handles POST /v1/questions/{question_id}/comments
func CreateComment(s store.Store, pub *events.Publisher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID := strings.TrimSpace(chi.URLParam(r, "question_id"))
		if questionID == "" {
			api.BadRequest(w, "MISSING_ID", "question_id is required", "", nil)
			return
		}
		viewerID, _ := auth.UserIDFromContext(r.Context())

		var req createCommentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}

		sess := session.New(s, pub, log, questionID, viewerID)
		created, err := sess.PostComment(r.Context(), req.Content, req.ParentID)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// ToggleLike handles POST /v1/comments/{comment_id}/like
func ToggleLike(s store.Store, pub *events.Publisher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if commentID == "" {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", "", nil)
			return
		}
		viewerID, _ := auth.UserIDFromContext(r.Context())
		if viewerID == "" {
			api.Unauthorized(w, "AUTH_REQUIRED", "authentication required", "")
			return
		}

		sess := session.New(s, pub, log, "", viewerID)
		if err := sess.LoadLikes(r.Context()); err != nil {
			log.Error("like snapshot load failed", zap.String("comment_id", commentID), zap.Error(err))
			api.Internal(w, "")
			return
		}
		liked, count, err := sess.ToggleLike(r.Context(), commentID)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, toggleLikeResponse{Liked: liked, Count: count})
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrAuthRequired):
		api.Unauthorized(w, "AUTH_REQUIRED", "authentication required", "")
	case errors.Is(err, session.ErrEmptyContent):
		api.BadRequest(w, "EMPTY_CONTENT", "content must not be empty", "", nil)
	default:
		api.Internal(w, "")
	}
}
