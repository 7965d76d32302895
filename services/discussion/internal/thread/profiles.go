package thread

import (
	"context"

	"github.com/example/tanya-platform/services/discussion/internal/store"
)

// AuthorIDs returns the distinct comment authors in first-appearance order.
func AuthorIDs(comments []store.Comment) []string {
	seen := make(map[string]struct{}, len(comments))
	out := make([]string, 0, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		out = append(out, c.UserID)
	}
	return out
}

// ProfileIndex maps user ids to display profiles. Lookups for unresolved ids
// return a placeholder profile so a missing row never breaks a render.
type ProfileIndex map[string]store.Profile

// ResolveProfiles fetches the profiles for the given ids, at most once per
// distinct id. An empty id set skips the store call entirely. A fetch failure
// degrades to an empty index rather than an error; the thread still renders
// with placeholders.
func ResolveProfiles(ctx context.Context, s store.Store, ids []string) ProfileIndex {
	idx := make(ProfileIndex, len(ids))
	if len(ids) == 0 {
		return idx
	}
	profiles, err := s.ListProfiles(ctx, ids)
	if err != nil {
		return idx
	}
	for _, p := range profiles {
		idx[p.ID] = p
	}
	return idx
}

// Get returns the profile for the user, falling back to a placeholder that
// carries only the id.
func (idx ProfileIndex) Get(userID string) store.Profile {
	if p, ok := idx[userID]; ok {
		return p
	}
	return store.Profile{ID: userID}
}
