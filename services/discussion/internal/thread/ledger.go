package thread

import (
	"github.com/example/tanya-platform/services/discussion/internal/store"
)

// Ledger answers like-count and liked-by-viewer queries over a flat like
// snapshot. It indexes by comment id once so per-node queries are O(1).
type Ledger struct {
	byComment map[string][]store.Like
}

// NewLedger indexes the given likes. The input slice is not retained.
func NewLedger(likes []store.Like) *Ledger {
	l := &Ledger{byComment: make(map[string][]store.Like)}
	for _, like := range likes {
		l.byComment[like.CommentID] = append(l.byComment[like.CommentID], like)
	}
	return l
}

// Count returns the number of like records targeting the comment.
// Duplicate records from racing toggles each count individually.
func (l *Ledger) Count(commentID string) int {
	return len(l.byComment[commentID])
}

// LikedBy reports whether the viewer has a like on the comment.
// Always false for an anonymous (empty) viewer.
func (l *Ledger) LikedBy(commentID, viewerID string) bool {
	if viewerID == "" {
		return false
	}
	for _, like := range l.byComment[commentID] {
		if like.UserID == viewerID {
			return true
		}
	}
	return false
}

// Find returns the viewer's like record on the comment, if one exists.
// When racing toggles left duplicates, the first record wins; deleting it
// still leaves the pair toggleable back to a consistent state.
func (l *Ledger) Find(commentID, viewerID string) (store.Like, bool) {
	if viewerID == "" {
		return store.Like{}, false
	}
	for _, like := range l.byComment[commentID] {
		if like.UserID == viewerID {
			return like, true
		}
	}
	return store.Like{}, false
}
