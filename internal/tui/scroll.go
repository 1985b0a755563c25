package tui

// scrollState tracks whether the transcript view is pinned to the bottom.
// Pinned views auto-follow appended content; a user who scrolled up keeps
// their place. The flag is also settable by an explicit toggle, which wins
// over the computed value until the user scrolls again.
type scrollState struct {
	pinned     bool
	overridden bool
	tolerance  int
}

func newScrollState(tolerance int) scrollState {
	if tolerance < 0 {
		tolerance = 0
	}
	return scrollState{pinned: true, tolerance: tolerance}
}

// observe recomputes the pinned flag from viewport metrics after a user
// scroll. The tolerance absorbs partial-line layouts near the bottom. A user
// scroll also ends any toggle override.
func (s *scrollState) observe(yOffset, height, totalLines int) {
	s.overridden = false
	s.pinned = s.atBottom(yOffset, height, totalLines)
}

func (s *scrollState) atBottom(yOffset, height, totalLines int) bool {
	maxOffset := totalLines - height
	if maxOffset <= 0 {
		return true
	}
	return yOffset >= maxOffset-s.tolerance
}

// toggle flips the pinned flag by explicit user request.
func (s *scrollState) toggle() {
	s.pinned = !s.pinned
	s.overridden = true
}

func (s *scrollState) isPinned() bool {
	return s.pinned
}
