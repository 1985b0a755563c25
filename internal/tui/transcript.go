package tui

import (
	"strings"

	"github.com/csheth/agentdeck/internal/api"
	"github.com/csheth/agentdeck/internal/logsync"
	"github.com/csheth/agentdeck/internal/render"
)

// transcript is the rendered entry set, keyed by stable entry id. Upserts for
// known ids replace block content in place; new ids append at the end, which
// matches the backend's sequence-number ordering guarantee. Entries are only
// ever removed wholesale via ClearAll.
type transcript struct {
	order   []string
	blocks  map[string]render.Block
	entries map[string]api.LogEntry
}

func newTranscript() *transcript {
	return &transcript{
		blocks:  map[string]render.Block{},
		entries: map[string]api.LogEntry{},
	}
}

// applyResult reports what a reconcile pass did to the transcript.
type applyResult struct {
	cleared  bool
	appended bool
	updated  bool
	// added holds newly appended entries in arrival order, for narration.
	added []api.LogEntry
}

// apply executes render instructions in order.
func (t *transcript) apply(instructions []logsync.Instruction, r *render.Renderer) applyResult {
	var result applyResult
	for _, ins := range instructions {
		switch ins.Op {
		case logsync.OpClearAll:
			t.clear()
			result.cleared = true
		case logsync.OpUpsert:
			entry := ins.Entry
			prev, exists := t.entries[entry.ID]
			if exists {
				// User-authored entries render once and never again: the
				// local block may carry UI additions (attachment previews)
				// the server snapshot doesn't know about.
				if render.ParseVariant(prev.Type) == render.VariantUser {
					continue
				}
				block := r.Render(entry)
				if block.Text != t.blocks[entry.ID].Text {
					result.updated = true
				}
				t.blocks[entry.ID] = block
				t.entries[entry.ID] = entry
				continue
			}
			t.order = append(t.order, entry.ID)
			t.blocks[entry.ID] = r.Render(entry)
			t.entries[entry.ID] = entry
			result.appended = true
			result.added = append(result.added, entry)
		}
	}
	return result
}

func (t *transcript) clear() {
	t.order = nil
	t.blocks = map[string]render.Block{}
	t.entries = map[string]api.LogEntry{}
}

// size is the number of rendered entries, reported to the backend as log_from.
func (t *transcript) size() int {
	return len(t.order)
}

// content joins all blocks in order for the viewport.
func (t *transcript) content() string {
	if len(t.order) == 0 {
		return ""
	}
	parts := make([]string, 0, len(t.order))
	for _, id := range t.order {
		parts = append(parts, t.blocks[id].Text)
	}
	return strings.Join(parts, "\n\n")
}

// rerender rebuilds every block, used after a width change. User entries are
// re-rendered too: width changes rewrap everything and carry no snapshot
// content, so the render-once rule does not apply.
func (t *transcript) rerender(r *render.Renderer) {
	for id, entry := range t.entries {
		t.blocks[id] = r.Render(entry)
	}
}

// entryAt returns the raw entry for an id, for tests and export.
func (t *transcript) entryAt(id string) (api.LogEntry, bool) {
	entry, ok := t.entries[id]
	return entry, ok
}
