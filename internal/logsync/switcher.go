package logsync

import (
	"sort"

	"github.com/google/uuid"

	"github.com/csheth/agentdeck/internal/api"
)

// Switcher owns the active context id and the cursor tied to it. All mutation
// happens on the single event-processing goroutine; the switcher's job is to
// make every asynchronous result re-validate context identity before writing.
type Switcher struct {
	current string
	cursor  Cursor
}

// Current returns the active context id, empty when none is selected.
func (s *Switcher) Current() string {
	return s.current
}

// Cursor returns the sync cursor for the active context.
func (s *Switcher) Cursor() Cursor {
	return s.cursor
}

// SetCursor stores the cursor produced by a reconcile pass.
func (s *Switcher) SetCursor(c Cursor) {
	s.cursor = c
}

// Accepts reports whether a response stamped with the given context id may
// mutate state. Late responses for a previously active context fail this gate
// and are discarded unconditionally.
func (s *Switcher) Accepts(contextID string) bool {
	return contextID != "" && contextID == s.current
}

// Switch activates a context. It is a no-op when the id is already active.
// Otherwise the cursor is fully reset so nothing carries over between
// contexts. The return value tells the caller to clear the rendered
// transcript and issue an immediate out-of-band poll.
func (s *Switcher) Switch(newID string) bool {
	if newID == s.current {
		return false
	}
	s.current = newID
	s.cursor.Reset()
	return true
}

// Adopt records a server-assigned context id when the client had none, for
// example after the first contextless poll or send. Unlike Switch it is only
// valid from the empty state.
func (s *Switcher) Adopt(id string) bool {
	if s.current != "" || id == "" {
		return false
	}
	return s.Switch(id)
}

// NextAfterDelete picks the context to activate before deleting the given id:
// the earliest-created remaining context, or a freshly synthesized id when
// none remain. The client must never be left pointing at a deleted context,
// so callers switch to the result before issuing the delete request.
func NextAfterDelete(contexts []api.ContextSummary, deleting string) string {
	remaining := make([]api.ContextSummary, 0, len(contexts))
	for _, c := range contexts {
		if c.ID != deleting {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		return uuid.NewString()
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].CreatedAt.Before(remaining[j].CreatedAt)
	})
	return remaining[0].ID
}

// DisplayOrder sorts context summaries for display: CreatedAt descending.
// Ids take no part in ordering.
func DisplayOrder(contexts []api.ContextSummary) []api.ContextSummary {
	ordered := append([]api.ContextSummary(nil), contexts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})
	return ordered
}
