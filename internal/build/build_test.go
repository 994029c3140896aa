package build

import "testing"

func TestValidateEmpty(t *testing.T) {
	b := Build{}
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for empty build")
	}
}

func TestValidateTooLarge(t *testing.T) {
	ids := make([]string, MaxRelics+1)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}
	b := New("too-big", ids)
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for oversized build")
	}
}

func TestValidateDuplicateRelic(t *testing.T) {
	b := New("dupe", []string{"r1", "r2", "r1"})
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for duplicate relic id")
	}
}

func TestValidateDensePositions(t *testing.T) {
	b := New("ok", []string{"r1", "r2", "r3"})
	if err := b.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.Slots[2].Position = 5
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for non-dense positions")
	}
}

func TestWithRelicAppendsDensePosition(t *testing.T) {
	b := New("grow", []string{"r1", "r2"})
	b = b.WithRelic("r3")
	if len(b.Slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(b.Slots))
	}
	if b.Slots[2].Position != 2 || b.Slots[2].RelicID != "r3" {
		t.Fatalf("unexpected last slot: %+v", b.Slots[2])
	}
}

func TestWithoutRelicRenumbers(t *testing.T) {
	b := New("shrink", []string{"r1", "r2", "r3"})
	b = b.WithoutRelic("r2")
	if len(b.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(b.Slots))
	}
	for i, s := range b.Slots {
		if s.Position != i {
			t.Fatalf("slot %d has position %d, want dense", i, s.Position)
		}
	}
	if b.Slots[0].RelicID != "r1" || b.Slots[1].RelicID != "r3" {
		t.Fatalf("unexpected relic order after removal: %+v", b.Slots)
	}
}

func TestReplacingKeepsPosition(t *testing.T) {
	b := New("swap", []string{"r1", "r2"})
	b = b.Replacing("r2", "r9")
	if b.Slots[1].RelicID != "r9" || b.Slots[1].Position != 1 {
		t.Fatalf("unexpected slot after replace: %+v", b.Slots[1])
	}
}
