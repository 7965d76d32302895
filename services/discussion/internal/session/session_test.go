package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/example/tanya-platform/services/discussion/internal/store"
)

// flakyStore wraps MemoryStore to fail selected reads and count writes.
type flakyStore struct {
	*store.MemoryStore
	commentsErr error
	likesErr    error
	writes      int
}

func (f *flakyStore) ListComments(ctx context.Context, questionID string) ([]store.Comment, error) {
	if f.commentsErr != nil {
		return nil, f.commentsErr
	}
	return f.MemoryStore.ListComments(ctx, questionID)
}

func (f *flakyStore) ListLikes(ctx context.Context) ([]store.Like, error) {
	if f.likesErr != nil {
		return nil, f.likesErr
	}
	return f.MemoryStore.ListLikes(ctx)
}

func (f *flakyStore) InsertComment(ctx context.Context, c store.NewComment) (store.Comment, error) {
	f.writes++
	return f.MemoryStore.InsertComment(ctx, c)
}

func (f *flakyStore) InsertLike(ctx context.Context, userID, commentID string) (store.Like, error) {
	f.writes++
	return f.MemoryStore.InsertLike(ctx, userID, commentID)
}

func (f *flakyStore) DeleteLike(ctx context.Context, likeID string) error {
	f.writes++
	return f.MemoryStore.DeleteLike(ctx, likeID)
}

func newSession(t *testing.T, s store.Store, viewerID string) *Controller {
	t.Helper()
	return New(s, nil, zap.NewNop(), "q-1", viewerID)
}

func mustPost(t *testing.T, c *Controller, content string, parentID *string) store.Comment {
	t.Helper()
	created, err := c.PostComment(context.Background(), content, parentID)
	if err != nil {
		t.Fatalf("post comment: %v", err)
	}
	return created
}

func TestPostComment_AuthRequired(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore()}
	sess := newSession(t, fs, "")

	_, err := sess.PostComment(context.Background(), "hello", nil)
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if fs.writes != 0 {
		t.Fatalf("expected no store writes for anonymous viewer, got %d", fs.writes)
	}
}

func TestPostComment_EmptyContent(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore()}
	sess := newSession(t, fs, "u1")

	for _, content := range []string{"", "   ", "\n\t "} {
		if _, err := sess.PostComment(context.Background(), content, nil); !errors.Is(err, ErrEmptyContent) {
			t.Fatalf("expected ErrEmptyContent for %q, got %v", content, err)
		}
	}
	if fs.writes != 0 {
		t.Fatalf("expected validation before any store call, got %d writes", fs.writes)
	}
}

func TestPostComment_TopLevel(t *testing.T) {
	sess := newSession(t, store.NewMemoryStore(), "u1")
	sess.SetDraft("  hello thread  ")

	created := mustPost(t, sess, sess.Draft(), nil)

	if created.Content != "hello thread" {
		t.Fatalf("expected trimmed content, got %q", created.Content)
	}
	if created.ParentID != nil {
		t.Fatal("expected nil parent for top-level comment")
	}
	if created.UserID != "u1" || created.QuestionID != "q-1" {
		t.Fatalf("unexpected author/question: %s/%s", created.UserID, created.QuestionID)
	}
	if sess.Draft() != "" {
		t.Fatalf("expected cleared top-level draft, got %q", sess.Draft())
	}

	// The node appears only after reload, never synthesized locally.
	if len(sess.Render()) != 0 {
		t.Fatal("expected no locally synthesized node before reload")
	}
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	nodes := sess.Render()
	if len(nodes) != 1 || nodes[0].Comment.ID != created.ID {
		t.Fatalf("expected posted comment after reload, got %v", nodes)
	}
}

func TestPostComment_ReplyClearsOnlyThatComposer(t *testing.T) {
	ms := store.NewMemoryStore()
	sess := newSession(t, ms, "u1")
	root1 := mustPost(t, sess, "root one", nil)
	root2 := mustPost(t, sess, "root two", nil)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Open reply boxes on both roots, drafts in each.
	for _, id := range []string{root1.ID, root2.ID} {
		if err := sess.ToggleReply(id); err != nil {
			t.Fatalf("toggle reply: %v", err)
		}
	}
	sess.SetReplyDraft(root1.ID, "reply to one")
	sess.SetReplyDraft(root2.ID, "reply to two")
	sess.SetDraft("unrelated top-level draft")

	mustPost(t, sess, "reply to one", &root1.ID)

	open1, draft1 := sess.ReplyState(root1.ID)
	if open1 || draft1 != "" {
		t.Fatalf("expected root1 composer closed and cleared, got open=%v draft=%q", open1, draft1)
	}
	open2, draft2 := sess.ReplyState(root2.ID)
	if !open2 || draft2 != "reply to two" {
		t.Fatalf("expected root2 composer untouched, got open=%v draft=%q", open2, draft2)
	}
	if sess.Draft() != "unrelated top-level draft" {
		t.Fatalf("expected top-level draft untouched for a reply, got %q", sess.Draft())
	}
}

func TestToggleReply_AnonymousRejected(t *testing.T) {
	sess := newSession(t, store.NewMemoryStore(), "")
	if err := sess.ToggleReply("c-1"); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestToggleReply_CancelDiscardsDraft(t *testing.T) {
	sess := newSession(t, store.NewMemoryStore(), "u1")

	if err := sess.ToggleReply("c-1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	sess.SetReplyDraft("c-1", "half written")
	if err := sess.ToggleReply("c-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	open, draft := sess.ReplyState("c-1")
	if open || draft != "" {
		t.Fatalf("expected closed composer with empty draft, got open=%v draft=%q", open, draft)
	}
}

func TestComposers_ResetOnFullReload(t *testing.T) {
	sess := newSession(t, store.NewMemoryStore(), "u1")
	root := mustPost(t, sess, "root", nil)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := sess.ToggleReply(root.ID); err != nil {
		t.Fatalf("toggle reply: %v", err)
	}
	sess.SetReplyDraft(root.ID, "in progress")

	// A fresh snapshot means every node starts Closed again.
	mustPost(t, sess, "another root", nil)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	open, draft := sess.ReplyState(root.ID)
	if open || draft != "" {
		t.Fatalf("expected composer reset after reload, got open=%v draft=%q", open, draft)
	}
}

func TestToggleLike_AuthRequired(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore()}
	sess := newSession(t, fs, "")

	if _, _, err := sess.ToggleLike(context.Background(), "c-1"); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if fs.writes != 0 {
		t.Fatalf("expected no store contact for anonymous toggle, got %d writes", fs.writes)
	}
}

func TestToggleLike_PairReturnsToOriginal(t *testing.T) {
	ms := store.NewMemoryStore()
	sess := newSession(t, ms, "u1")
	root := mustPost(t, sess, "root", nil)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	liked, count, err := sess.ToggleLike(context.Background(), root.ID)
	if err != nil || !liked {
		t.Fatalf("expected first toggle to like, got liked=%v err=%v", liked, err)
	}
	if count != 1 {
		t.Fatalf("expected count 1 after first toggle, got %d", count)
	}
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	nodes := sess.Render()
	if nodes[0].LikeCount != 1 || !nodes[0].LikedByViewer {
		t.Fatalf("expected count 1 liked by viewer, got %d/%v", nodes[0].LikeCount, nodes[0].LikedByViewer)
	}

	liked, count, err = sess.ToggleLike(context.Background(), root.ID)
	if err != nil || liked {
		t.Fatalf("expected second toggle to unlike, got liked=%v err=%v", liked, err)
	}
	if count != 0 {
		t.Fatalf("expected count 0 after second toggle, got %d", count)
	}
	likes, _ := ms.ListLikes(context.Background())
	if len(likes) != 0 {
		t.Fatalf("expected like set back to original, got %d records", len(likes))
	}
}

func TestToggleLike_DecidesFromLocalSnapshot(t *testing.T) {
	ms := store.NewMemoryStore()
	poster := newSession(t, ms, "u1")
	root := mustPost(t, poster, "root", nil)

	// Two sessions for the same viewer, both loaded before either writes:
	// both observe "not liked" and both insert. The duplicate is accepted
	// and self-corrects on the next read.
	a := newSession(t, ms, "u2")
	b := newSession(t, ms, "u2")
	for _, sess := range []*Controller{a, b} {
		if err := sess.Load(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
	}

	if liked, _, err := a.ToggleLike(context.Background(), root.ID); err != nil || !liked {
		t.Fatalf("first racer: liked=%v err=%v", liked, err)
	}
	if liked, _, err := b.ToggleLike(context.Background(), root.ID); err != nil || !liked {
		t.Fatalf("second racer: liked=%v err=%v", liked, err)
	}

	likes, _ := ms.ListLikes(context.Background())
	if len(likes) != 2 {
		t.Fatalf("expected duplicate like records from the race, got %d", len(likes))
	}
}

func TestLoad_CommentFailureSurfaces(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore(), commentsErr: errors.New("store down")}
	sess := newSession(t, fs, "u1")

	err := sess.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "store down") {
		t.Fatalf("expected surfaced comment fetch failure, got %v", err)
	}
}

func TestLoad_LikeFailureDegrades(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore(), likesErr: errors.New("likes down")}
	sess := newSession(t, fs, "u1")
	root := mustPost(t, sess, "root", nil)

	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("expected like failure to degrade, got %v", err)
	}
	nodes := sess.Render()
	if len(nodes) != 1 || nodes[0].Comment.ID != root.ID {
		t.Fatalf("expected thread to render without likes, got %v", nodes)
	}
	if nodes[0].LikeCount != 0 || nodes[0].LikedByViewer {
		t.Fatal("expected empty like state when like fetch fails")
	}
}

func TestRender_TreeWithProfilesAndLikes(t *testing.T) {
	ms := store.NewMemoryStore()
	name := "sari"
	ms.PutProfile(store.Profile{ID: "u1", Username: &name})

	writer := newSession(t, ms, "u1")
	root := mustPost(t, writer, "A", nil)
	replier := newSession(t, ms, "u2")
	reply := mustPost(t, replier, "B", &root.ID)
	if _, err := ms.InsertLike(context.Background(), "u1", root.ID); err != nil {
		t.Fatalf("insert like: %v", err)
	}

	sess := newSession(t, ms, "u1")
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	nodes := sess.Render()

	if len(nodes) != 1 {
		t.Fatalf("expected 1 root, got %d", len(nodes))
	}
	n := nodes[0]
	if n.Comment.ID != root.ID || n.LikeCount != 1 || !n.LikedByViewer {
		t.Fatalf("unexpected root node state: %+v", n)
	}
	if n.Author.Username == nil || *n.Author.Username != "sari" {
		t.Fatalf("expected resolved author profile, got %+v", n.Author)
	}
	if len(n.Children) != 1 || n.Children[0].Comment.ID != reply.ID {
		t.Fatalf("expected reply B under A, got %v", n.Children)
	}
	// The replier has no profile row: placeholder, never a failure.
	if n.Children[0].Author.ID != "u2" || n.Children[0].Author.Username != nil {
		t.Fatalf("unexpected child author: %+v", n.Children[0].Author)
	}
}

func TestRender_OrphanExcluded(t *testing.T) {
	ms := store.NewMemoryStore()
	sess := newSession(t, ms, "u1")
	root := mustPost(t, sess, "A", nil)
	mustPost(t, sess, "B", &root.ID)
	ghost := "missing-parent"
	mustPost(t, sess, "orphan", &ghost)

	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	nodes := sess.Render()

	if len(nodes) != 1 {
		t.Fatalf("expected 1 root, got %d", len(nodes))
	}
	if len(nodes[0].Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(nodes[0].Children))
	}
	var count func(nodes []*Node) int
	count = func(nodes []*Node) int {
		n := len(nodes)
		for _, node := range nodes {
			n += count(node.Children)
		}
		return n
	}
	if got := count(nodes); got != 2 {
		t.Fatalf("expected orphan absent from tree, got %d nodes", got)
	}
}
