// Package session holds the per-viewer view of one question's discussion:
// cached store snapshots, the rendered tree, per-node reply composers, and
// the write operations that reconcile local state with the store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/example/tanya-platform/internal/platform/events"
	"github.com/example/tanya-platform/services/discussion/internal/store"
	"github.com/example/tanya-platform/services/discussion/internal/thread"
)

var (
	// ErrAuthRequired is returned when a write is attempted by an
	// anonymous viewer. The store is never contacted in that case.
	ErrAuthRequired = errors.New("sign-in required")
	// ErrEmptyContent is returned when submitted content is empty after
	// trimming whitespace.
	ErrEmptyContent = errors.New("content must not be empty")
)

// Node is a render-ready comment: the record, its author's display profile,
// derived like state, this session's composer state and the ordered replies.
type Node struct {
	Comment       store.Comment `json:"comment"`
	Author        store.Profile `json:"author"`
	LikeCount     int           `json:"like_count"`
	LikedByViewer bool          `json:"liked_by_viewer"`
	ReplyOpen     bool          `json:"-"`
	ReplyDraft    string        `json:"-"`
	Children      []*Node       `json:"children"`
}

// composer is the local reply-box state for one comment.
type composer struct {
	open  bool
	draft string
}

// Controller orchestrates one viewer's session on one question.
// Snapshots are invalidated, never patched: after a successful write the
// affected collection is refetched on the next Load.
type Controller struct {
	store  store.Store
	events *events.Publisher
	log    *zap.Logger

	questionID string
	viewerID   string // empty for anonymous viewers

	mu            sync.Mutex
	comments      []store.Comment
	commentsFresh bool
	likes         []store.Like
	likesFresh    bool
	profiles      thread.ProfileIndex

	draft     string // top-level composer
	composers map[string]*composer
}

// New creates a session for the given question and viewer. An empty viewerID
// means anonymous: reads work, writes fail with ErrAuthRequired.
func New(s store.Store, pub *events.Publisher, log *zap.Logger, questionID, viewerID string) *Controller {
	return &Controller{
		store:      s,
		events:     pub,
		log:        log,
		questionID: questionID,
		viewerID:   viewerID,
		profiles:   thread.ProfileIndex{},
		composers:  make(map[string]*composer),
	}
}

// Load refreshes every stale snapshot. A comment-list failure is returned to
// the caller; like and profile failures degrade to empty results so the
// thread still renders. A comment refetch resets all reply composers.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.commentsFresh {
		comments, err := c.store.ListComments(ctx, c.questionID)
		if err != nil {
			return fmt.Errorf("list comments for question %s: %w", c.questionID, err)
		}
		c.comments = comments
		c.commentsFresh = true
		c.composers = make(map[string]*composer)
		c.profiles = thread.ResolveProfiles(ctx, c.store, thread.AuthorIDs(comments))
	}

	if !c.likesFresh {
		likes, err := c.store.ListLikes(ctx)
		if err != nil {
			c.log.Warn("like snapshot unavailable, rendering without likes",
				zap.String("question_id", c.questionID), zap.Error(err))
			likes = []store.Like{}
		}
		c.likes = likes
		c.likesFresh = true
	}
	return nil
}

// LoadLikes refreshes only the like snapshot. ToggleLike decides against the
// snapshot, so callers that skip the comment list still need one.
func (c *Controller) LoadLikes(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.likesFresh {
		return nil
	}
	likes, err := c.store.ListLikes(ctx)
	if err != nil {
		return fmt.Errorf("list likes: %w", err)
	}
	c.likes = likes
	c.likesFresh = true
	return nil
}

// Render builds the tree of render-ready nodes from the current snapshots.
// Orphaned comments are excluded from the result.
func (c *Controller) Render() []*Node {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := thread.Build(c.comments)
	if orphans := t.Orphans(); len(orphans) > 0 {
		c.log.Warn("thread has orphaned comments",
			zap.String("question_id", c.questionID), zap.Strings("comment_ids", orphans))
	}
	ledger := thread.NewLedger(c.likes)

	var walk func(comments []store.Comment) []*Node
	walk = func(comments []store.Comment) []*Node {
		nodes := make([]*Node, 0, len(comments))
		for _, cm := range comments {
			n := &Node{
				Comment:       cm,
				Author:        c.profiles.Get(cm.UserID),
				LikeCount:     ledger.Count(cm.ID),
				LikedByViewer: ledger.LikedBy(cm.ID, c.viewerID),
				Children:      walk(t.Children(cm.ID)),
			}
			if cs, ok := c.composers[cm.ID]; ok {
				n.ReplyOpen = cs.open
				n.ReplyDraft = cs.draft
			}
			nodes = append(nodes, n)
		}
		return nodes
	}
	return walk(t.Roots())
}

// SetDraft updates the top-level composer text.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Draft returns the top-level composer text.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// ToggleReply opens a closed reply box or cancels an open one. Closing always
// discards the draft. Only the addressed node is affected.
func (c *Controller) ToggleReply(commentID string) error {
	if c.viewerID == "" {
		return ErrAuthRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cs, ok := c.composers[commentID]
	if !ok {
		cs = &composer{}
		c.composers[commentID] = cs
	}
	cs.open = !cs.open
	if !cs.open {
		cs.draft = ""
	}
	return nil
}

// SetReplyDraft updates the reply text for one open composer.
func (c *Controller) SetReplyDraft(commentID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cs, ok := c.composers[commentID]; ok && cs.open {
		cs.draft = text
	}
}

// ReplyState reports the composer state for a comment.
func (c *Controller) ReplyState(commentID string) (open bool, draft string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cs, ok := c.composers[commentID]; ok {
		return cs.open, cs.draft
	}
	return false, ""
}
