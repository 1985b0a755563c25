// Package logsync holds the transport-free synchronization core: the sync
// cursor, the snapshot reconciler, the active-context switcher, and the
// adaptive poll interval policy. Nothing here touches the network or the UI,
// which keeps every invariant testable in isolation.
package logsync

// Cursor is the only persisted synchronization state for the active context.
// It must be fully reset on every context switch; reusing a stale cursor
// across contexts is the bug class this package exists to prevent.
type Cursor struct {
	LastLogVersion int
	LastLogGuid    string
	// NextSpeechNo is the lowest entry number not yet offered to the
	// narrator. Entries below it are never spoken again.
	NextSpeechNo int
}

// Reset returns every field to its zero value.
func (c *Cursor) Reset() {
	*c = Cursor{}
}

// Zero reports whether the cursor carries no history.
func (c Cursor) Zero() bool {
	return c == Cursor{}
}
