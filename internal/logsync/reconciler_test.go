package logsync

import (
	"fmt"
	"testing"

	"github.com/csheth/agentdeck/internal/api"
)

func entry(id string, no int) api.LogEntry {
	return api.LogEntry{ID: id, No: no, Type: "agent", Content: "content " + id}
}

func snapshot(guid string, version int, entries ...api.LogEntry) *api.PollResponse {
	return &api.PollResponse{Context: "ctx-1", LogGuid: guid, LogVersion: version, Logs: entries}
}

// renderedSet mimics the transcript's upsert-by-id behaviour so reconciliation
// properties can be checked end to end without the UI.
type renderedSet struct {
	order []string
	body  map[string]string
}

func newRenderedSet() *renderedSet {
	return &renderedSet{body: map[string]string{}}
}

func (r *renderedSet) apply(instructions []Instruction) {
	for _, ins := range instructions {
		switch ins.Op {
		case OpClearAll:
			r.order = nil
			r.body = map[string]string{}
		case OpUpsert:
			if _, ok := r.body[ins.Entry.ID]; !ok {
				r.order = append(r.order, ins.Entry.ID)
			}
			r.body[ins.Entry.ID] = ins.Entry.Content
		}
	}
}

func (r *renderedSet) ids() []string {
	return r.order
}

func TestApplyFirstSnapshotUpsertsEverything(t *testing.T) {
	t.Parallel()

	snap := snapshot("g1", 3, entry("e1", 1), entry("e2", 2), entry("e3", 3))
	cursor, instructions := Apply(Cursor{}, snap)

	if cursor.LastLogGuid != "g1" || cursor.LastLogVersion != 3 {
		t.Fatalf("cursor not advanced: %+v", cursor)
	}
	// Empty previous guid differs from g1, so the first pass also clears.
	if len(instructions) != 4 || instructions[0].Op != OpClearAll {
		t.Fatalf("unexpected instructions: %#v", instructions)
	}
	for i, id := range []string{"e1", "e2", "e3"} {
		if instructions[i+1].Op != OpUpsert || instructions[i+1].Entry.ID != id {
			t.Fatalf("instruction %d mismatch: %#v", i+1, instructions[i+1])
		}
	}
}

func TestApplyVersionAdvanceUpsertsSnapshotEntries(t *testing.T) {
	t.Parallel()

	a := snapshot("g1", 3, entry("e1", 1), entry("e2", 2), entry("e3", 3))
	cursor, _ := Apply(Cursor{}, a)

	b := snapshot("g1", 5, entry("e1", 1), entry("e2", 2), entry("e3", 3), entry("e4", 4), entry("e5", 5))
	cursor, instructions := Apply(cursor, b)

	if cursor.LastLogVersion != 5 {
		t.Fatalf("cursor version not advanced: %+v", cursor)
	}
	for _, ins := range instructions {
		if ins.Op == OpClearAll {
			t.Fatal("same-guid advance must not clear")
		}
	}

	set := newRenderedSet()
	set.apply(instructions)
	// Existing ids are idempotent updates; e4 and e5 are the only additions.
	if got := set.ids(); len(got) != 5 {
		t.Fatalf("unexpected rendered ids: %v", got)
	}
}

func TestApplyIdenticalVersionIsNoOp(t *testing.T) {
	t.Parallel()

	snap := snapshot("g1", 3, entry("e1", 1))
	cursor, _ := Apply(Cursor{}, snap)

	again, instructions := Apply(cursor, snap)
	if instructions != nil {
		t.Fatalf("identical snapshot must produce no instructions, got %#v", instructions)
	}
	if again != cursor {
		t.Fatalf("cursor must be unchanged: %+v != %+v", again, cursor)
	}
}

func TestApplyGuidChangeClearsBeforeRendering(t *testing.T) {
	t.Parallel()

	a := snapshot("g1", 3, entry("e1", 1), entry("e2", 2), entry("e3", 3))
	cursor, instructions := Apply(Cursor{}, a)
	set := newRenderedSet()
	set.apply(instructions)

	c := snapshot("g2", 1, entry("f1", 1))
	cursor, instructions = Apply(cursor, c)

	if len(instructions) != 2 {
		t.Fatalf("expected ClearAll + Upsert, got %#v", instructions)
	}
	if instructions[0].Op != OpClearAll {
		t.Fatal("guid change must clear before any upsert")
	}
	if instructions[1].Op != OpUpsert || instructions[1].Entry.ID != "f1" {
		t.Fatalf("unexpected upsert: %#v", instructions[1])
	}
	if cursor.LastLogGuid != "g2" || cursor.LastLogVersion != 1 {
		t.Fatalf("cursor not rebased onto new guid: %+v", cursor)
	}

	set.apply(instructions)
	for _, id := range set.ids() {
		if id != "f1" {
			t.Fatalf("entry from prior guid still rendered: %v", set.ids())
		}
	}
}

func TestApplyGuidChangeWithSameVersionStillRenders(t *testing.T) {
	t.Parallel()

	a := snapshot("g1", 1, entry("e1", 1))
	cursor, _ := Apply(Cursor{}, a)

	// Same numeric version under a new guid must not be mistaken for a no-op.
	c := snapshot("g2", 1, entry("f1", 1))
	_, instructions := Apply(cursor, c)
	if len(instructions) != 2 || instructions[0].Op != OpClearAll {
		t.Fatalf("guid rotation at equal version mishandled: %#v", instructions)
	}
}

func TestApplyConvergesRegardlessOfChunking(t *testing.T) {
	t.Parallel()

	entries := make([]api.LogEntry, 0, 8)
	for i := 1; i <= 8; i++ {
		entries = append(entries, entry(fmt.Sprintf("e%d", i), i))
	}

	chunkings := [][]int{
		{8},
		{1, 3, 8},
		{2, 2, 4, 5, 8},
		{1, 2, 3, 4, 5, 6, 7, 8},
	}
	for _, chunks := range chunkings {
		cursor := Cursor{}
		set := newRenderedSet()
		for _, upto := range chunks {
			snap := snapshot("g1", upto, entries[:upto]...)
			var instructions []Instruction
			cursor, instructions = Apply(cursor, snap)
			set.apply(instructions)
		}
		ids := set.ids()
		if len(ids) != 8 {
			t.Fatalf("chunking %v: rendered %d entries", chunks, len(ids))
		}
		for i, id := range ids {
			if want := fmt.Sprintf("e%d", i+1); id != want {
				t.Fatalf("chunking %v: position %d is %s, want %s", chunks, i, id, want)
			}
		}
	}
}

func TestScheduleBurstsAfterActivity(t *testing.T) {
	t.Parallel()

	s := NewSchedule(0, 0)
	if got := s.Next(false, false); got != LongInterval {
		t.Fatalf("quiet start should poll at long interval, got %v", got)
	}
	if got := s.Next(true, false); got != ShortInterval {
		t.Fatalf("activity should switch to short interval, got %v", got)
	}
	for i := 0; i < burstTicks-1; i++ {
		if got := s.Next(false, false); got != ShortInterval {
			t.Fatalf("burst tick %d should stay short, got %v", i, got)
		}
	}
	if got := s.Next(false, false); got != LongInterval {
		t.Fatalf("burst should expire back to long interval, got %v", got)
	}
}

func TestScheduleActivityRefillsCountdown(t *testing.T) {
	t.Parallel()

	s := NewSchedule(0, 0)
	s.Next(true, false)
	for i := 0; i < burstTicks/2; i++ {
		s.Next(false, false)
	}
	s.Next(true, false) // refill
	for i := 0; i < burstTicks-1; i++ {
		if got := s.Next(false, false); got != ShortInterval {
			t.Fatalf("refilled burst ended early at tick %d: %v", i, got)
		}
	}
	if got := s.Next(false, false); got != LongInterval {
		t.Fatalf("expected long interval after refilled burst, got %v", got)
	}
}

func TestScheduleFailureForcesLongInterval(t *testing.T) {
	t.Parallel()

	s := NewSchedule(0, 0)
	s.Next(true, false)
	if got := s.Next(false, true); got != LongInterval {
		t.Fatalf("failure must reschedule at long interval, got %v", got)
	}
	if s.Bursting() {
		t.Fatal("failure should drop the burst window")
	}
}
