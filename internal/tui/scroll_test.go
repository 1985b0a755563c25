package tui

import "testing"

func TestScrollStartsPinned(t *testing.T) {
	s := newScrollState(2)
	if !s.isPinned() {
		t.Fatal("fresh scroll state should be pinned")
	}
}

func TestScrollUnpinsWhenUserScrollsUp(t *testing.T) {
	s := newScrollState(2)
	s.observe(10, 20, 100)
	if s.isPinned() {
		t.Fatal("offset far above the bottom should unpin")
	}
}

func TestScrollTolerantNearBottom(t *testing.T) {
	s := newScrollState(2)
	// maxOffset = 100-20 = 80; 78 is within the 2-line tolerance.
	s.observe(78, 20, 100)
	if !s.isPinned() {
		t.Fatal("offset within tolerance should stay pinned")
	}
	s.observe(77, 20, 100)
	if s.isPinned() {
		t.Fatal("offset past tolerance should unpin")
	}
}

func TestScrollShortContentAlwaysPinned(t *testing.T) {
	s := newScrollState(0)
	s.observe(0, 20, 5)
	if !s.isPinned() {
		t.Fatal("content shorter than the viewport is always at the bottom")
	}
}

func TestScrollToggleOverridesUntilNextObserve(t *testing.T) {
	s := newScrollState(2)
	s.toggle()
	if s.isPinned() {
		t.Fatal("toggle from pinned should unpin")
	}
	s.observe(80, 20, 100)
	if !s.isPinned() {
		t.Fatal("a real scroll to the bottom should re-pin")
	}
}
