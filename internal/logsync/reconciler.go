package logsync

import "github.com/csheth/agentdeck/internal/api"

// Op discriminates render instructions.
type Op int

const (
	// OpClearAll removes every rendered entry. Emitted only on a log guid
	// change, which invalidates all locally cached entries.
	OpClearAll Op = iota
	// OpUpsert creates or updates the entry keyed by Entry.ID. Existing keys
	// update in place without changing position; new keys append at the end.
	OpUpsert
)

// Instruction is one step the transcript must apply, in order.
type Instruction struct {
	Op    Op
	Entry api.LogEntry
}

// Apply reconciles a freshly polled snapshot against the previous cursor and
// returns the cursor to persist plus the instructions to render, in order.
//
// The snapshot is assumed to belong to the active context; callers gate stale
// responses with Switcher.Accepts before reconciling.
func Apply(prev Cursor, snap *api.PollResponse) (Cursor, []Instruction) {
	next := prev
	var instructions []Instruction

	if snap.LogGuid != prev.LastLogGuid {
		// Entry numbering restarts with the replaced log, so the speech
		// watermark resets along with the version.
		instructions = append(instructions, Instruction{Op: OpClearAll})
		next.LastLogVersion = 0
		next.NextSpeechNo = 0
	}

	if snap.LogVersion == next.LastLogVersion && snap.LogGuid == prev.LastLogGuid {
		// Idempotent poll: nothing changed server-side, no render work.
		return prev, nil
	}

	for _, entry := range snap.Logs {
		instructions = append(instructions, Instruction{Op: OpUpsert, Entry: entry})
	}

	// Entries absent from a later same-guid snapshot are never removed: the
	// log is treated as non-shrinking under a stable guid, and a guid change
	// is the only removal mechanism. If the backend ever truncates without
	// rotating the guid this goes stale; that contract is the backend's.
	next.LastLogVersion = snap.LogVersion
	next.LastLogGuid = snap.LogGuid
	return next, instructions
}
