// Package build defines Build, a named ordered selection of relics a caller
// submits for composition, optimization, analysis, or comparison.
package build

import (
	"fmt"

	"github.com/google/uuid"

	"relicforge/internal/relic"
)

// MaxRelics is the largest number of slots a Build may hold.
const MaxRelics = 9

// Slot pairs a relic id with the position it occupies in the build and an
// optional per-slot context override (e.g. forcing a different weapon_type
// for just that slot's conditions).
type Slot struct {
	Position   int
	RelicID    string
	Conditions map[string]string
}

// Build is a named, ordered list of at most MaxRelics relic ids. Positions
// are dense — 0..len(Slots)-1 — and no relic id appears twice. ID is
// assigned once, at construction, and never recomputed — it is the
// identity a caller persists and later re-fetches a build by, independent
// of Name (which is display-only and may collide or be edited).
type Build struct {
	ID    string
	Name  string
	Slots []Slot
}

// RelicIDs returns the relic ids in slot order.
func (b Build) RelicIDs() []string {
	out := make([]string, len(b.Slots))
	for i, s := range b.Slots {
		out[i] = s.RelicID
	}
	return out
}

// Len reports the number of occupied slots.
func (b Build) Len() int {
	return len(b.Slots)
}

// Validate checks the structural invariants: size within bounds, no
// duplicate relic id, and dense 0..n-1 positions. It does not check
// relic existence, activity, or conflicts — validation.Validate does that.
func (b Build) Validate() error {
	if len(b.Slots) == 0 {
		return fmt.Errorf("build: empty relic list")
	}
	if len(b.Slots) > MaxRelics {
		return fmt.Errorf("build: %d relics exceeds limit of %d", len(b.Slots), MaxRelics)
	}
	seenRelic := make(map[string]bool, len(b.Slots))
	seenPos := make(map[int]bool, len(b.Slots))
	for _, s := range b.Slots {
		if seenRelic[s.RelicID] {
			return fmt.Errorf("build: duplicate relic %q", s.RelicID)
		}
		seenRelic[s.RelicID] = true
		if seenPos[s.Position] {
			return fmt.Errorf("build: duplicate position %d", s.Position)
		}
		seenPos[s.Position] = true
	}
	for i := 0; i < len(b.Slots); i++ {
		if !seenPos[i] {
			return fmt.Errorf("build: positions are not dense 0..%d", len(b.Slots)-1)
		}
	}
	return nil
}

// New builds a Build from an ordered slice of relic ids, assigning dense
// positions 0..n-1 in order and a fresh random id.
func New(name string, relicIDs []string) Build {
	slots := make([]Slot, len(relicIDs))
	for i, id := range relicIDs {
		slots[i] = Slot{Position: i, RelicID: id}
	}
	return Build{ID: uuid.NewString(), Name: name, Slots: slots}
}

// WithRelic returns a copy of b with relicID appended at the next dense
// position. It does not check for duplicates — callers should Validate
// the result. The copy keeps b's id: this is still logically the same
// build, being edited.
func (b Build) WithRelic(relicID string) Build {
	out := Build{ID: b.ID, Name: b.Name, Slots: make([]Slot, len(b.Slots), len(b.Slots)+1)}
	copy(out.Slots, b.Slots)
	out.Slots = append(out.Slots, Slot{Position: len(out.Slots), RelicID: relicID})
	return out
}

// WithoutRelic returns a copy of b with relicID removed and the remaining
// slots renumbered to stay dense.
func (b Build) WithoutRelic(relicID string) Build {
	out := Build{ID: b.ID, Name: b.Name, Slots: make([]Slot, 0, len(b.Slots))}
	for _, s := range b.Slots {
		if s.RelicID == relicID {
			continue
		}
		s.Position = len(out.Slots)
		out.Slots = append(out.Slots, s)
	}
	return out
}

// Replacing returns a copy of b with the relic at oldID swapped for newID in
// the same slot position.
func (b Build) Replacing(oldID, newID string) Build {
	out := Build{ID: b.ID, Name: b.Name, Slots: make([]Slot, len(b.Slots))}
	copy(out.Slots, b.Slots)
	for i, s := range out.Slots {
		if s.RelicID == oldID {
			out.Slots[i].RelicID = newID
		}
	}
	return out
}

// ResolveRelics looks up the concrete relic.Relic value for each slot, in
// slot order, using the supplied lookup map keyed by relic id.
func (b Build) ResolveRelics(byID map[string]relic.Relic) ([]relic.Relic, error) {
	out := make([]relic.Relic, 0, len(b.Slots))
	for _, s := range b.Slots {
		r, ok := byID[s.RelicID]
		if !ok {
			return nil, fmt.Errorf("build: relic %q not found", s.RelicID)
		}
		out = append(out, r)
	}
	return out, nil
}
