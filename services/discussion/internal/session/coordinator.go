package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/tanya-platform/internal/platform/events"
	"github.com/example/tanya-platform/services/discussion/internal/store"
	"github.com/example/tanya-platform/services/discussion/internal/thread"
)

// PostComment appends one comment (top-level when parentID is nil, a reply
// otherwise) and invalidates the comment snapshot so the next Load reflects
// it. The new node is never synthesized locally. On success the relevant
// composer is cleared: the top-level draft for a root comment, only the
// addressed reply box for a reply.
func (c *Controller) PostComment(ctx context.Context, content string, parentID *string) (store.Comment, error) {
	if c.viewerID == "" {
		return store.Comment{}, ErrAuthRequired
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return store.Comment{}, ErrEmptyContent
	}

	created, err := c.store.InsertComment(ctx, store.NewComment{
		QuestionID: c.questionID,
		UserID:     c.viewerID,
		ParentID:   parentID,
		Content:    content,
	})
	if err != nil {
		return store.Comment{}, fmt.Errorf("insert comment: %w", err)
	}

	c.mu.Lock()
	c.commentsFresh = false
	if parentID == nil {
		c.draft = ""
	} else if cs, ok := c.composers[*parentID]; ok {
		cs.open = false
		cs.draft = ""
	}
	c.mu.Unlock()

	props := map[string]any{
		"question_id": c.questionID,
		"comment_id":  created.ID,
	}
	if parentID != nil {
		props["parent_id"] = *parentID
	}
	c.events.Publish(events.SubjectCommentPosted, "comment_posted", c.viewerID, props)

	return created, nil
}

// ToggleLike inverts the viewer's like on a comment: the matched record is
// deleted if the most recently fetched like snapshot holds one, otherwise a
// new record is inserted. The sequence is read-then-decide-then-write over
// the local snapshot, so two racing toggles can both insert; the duplicate
// self-corrects on the next read. The like snapshot is invalidated after
// either write. The returned count is the snapshot total adjusted for this
// toggle.
func (c *Controller) ToggleLike(ctx context.Context, commentID string) (liked bool, count int, err error) {
	if c.viewerID == "" {
		return false, 0, ErrAuthRequired
	}

	c.mu.Lock()
	ledger := thread.NewLedger(c.likes)
	existing, found := ledger.Find(commentID, c.viewerID)
	base := ledger.Count(commentID)
	c.mu.Unlock()

	if found {
		if err := c.store.DeleteLike(ctx, existing.ID); err != nil {
			return false, 0, fmt.Errorf("delete like %s: %w", existing.ID, err)
		}
		liked = false
		count = base - 1
	} else {
		if _, err := c.store.InsertLike(ctx, c.viewerID, commentID); err != nil {
			return false, 0, fmt.Errorf("insert like: %w", err)
		}
		liked = true
		count = base + 1
	}

	c.mu.Lock()
	c.likesFresh = false
	c.mu.Unlock()

	props := map[string]any{
		"comment_id": commentID,
		"liked":      liked,
	}
	if c.questionID != "" {
		props["question_id"] = c.questionID
	}
	c.events.Publish(events.SubjectLikeToggled, "like_toggled", c.viewerID, props)
	return liked, count, nil
}
