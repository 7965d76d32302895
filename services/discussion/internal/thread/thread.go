// Package thread turns flat comment and like records into a navigable
// discussion tree with derived per-node state.
package thread

import (
	"github.com/example/tanya-platform/services/discussion/internal/store"
)

// rootKey indexes top-level comments in the adjacency map. It cannot collide
// with a real id because comment ids are non-empty.
const rootKey = ""

// Thread is the parent/child index over one question's comments.
// Build it once per read cycle; it never mutates its input.
type Thread struct {
	byID     map[string]store.Comment
	children map[string][]string // parent id (rootKey for nil) -> ordered child ids
	orphans  []string
}

// Build constructs a Thread from comments ordered ascending by creation time.
// Sibling order within every node equals the input order. Building twice from
// the same input yields structurally identical trees.
func Build(comments []store.Comment) *Thread {
	t := &Thread{
		byID:     make(map[string]store.Comment, len(comments)),
		children: make(map[string][]string),
	}
	for _, c := range comments {
		t.byID[c.ID] = c
	}
	for _, c := range comments {
		switch {
		case c.ParentID == nil:
			t.children[rootKey] = append(t.children[rootKey], c.ID)
		default:
			if _, ok := t.byID[*c.ParentID]; !ok {
				// Dangling parent reference: the comment stays out of
				// every traversal but is reported via Orphans.
				t.orphans = append(t.orphans, c.ID)
				continue
			}
			t.children[*c.ParentID] = append(t.children[*c.ParentID], c.ID)
		}
	}
	return t
}

// Roots returns the top-level comments in creation order.
func (t *Thread) Roots() []store.Comment {
	return t.lookup(t.children[rootKey])
}

// Children returns the direct replies to the given comment in creation order.
// Unknown ids yield an empty slice.
func (t *Thread) Children(id string) []store.Comment {
	return t.lookup(t.children[id])
}

// Get returns the comment with the given id.
func (t *Thread) Get(id string) (store.Comment, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Len returns the number of comments indexed, orphans included.
func (t *Thread) Len() int { return len(t.byID) }

// Orphans returns the ids of comments whose declared parent is absent from
// the input set. They render nowhere but are surfaced for logging.
func (t *Thread) Orphans() []string {
	out := make([]string, len(t.orphans))
	copy(out, t.orphans)
	return out
}

func (t *Thread) lookup(ids []string) []store.Comment {
	out := make([]store.Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.byID[id])
	}
	return out
}
