package extremetrack

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// End-to-end through the facade: a block crossing the longitude seam,
// tracked over three days.
func TestFacadeSeamTracking(t *testing.T) {
	g, err := NewCylindricalGrid(360, 20)
	if err != nil {
		t.Fatal(err)
	}

	masks := make([]*DayMask, 3)
	for d := range masks {
		m := NewDayMask(g)
		m.SetRange(1, 356, 360, 10, 15, true)
		m.SetRange(1, 1, 5, 10, 15, true)
		masks[d] = m
	}

	set, err := TrackMasks(context.Background(), g, &SliceSource{Masks: masks}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 1 {
		t.Fatalf("got %d tracks, want 1", set.Len())
	}

	got := set.Tracks[0]
	if diff := cmp.Diff([]int{1, 2, 3}, got.Days); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}
	if got.Objects[0].Size() != 60 {
		t.Errorf("seam object size = %d, want 60", got.Objects[0].Size())
	}

	// Second identical run reproduces the same TrackSet.
	source2 := &SliceSource{Masks: masks}
	set2, err := TrackMasks(context.Background(), g, source2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !set.Equal(set2) {
		t.Error("identical runs should produce Equal TrackSets")
	}
}

func TestFacadeOverlapKernel(t *testing.T) {
	g, err := NewCylindricalGrid(30, 30)
	if err != nil {
		t.Fatal(err)
	}
	m := NewDayMask(g)
	m.SetRange(1, 5, 14, 5, 14, true)
	objects := LabelDay(g, m, 10, 8)
	if len(objects) != 1 {
		t.Fatalf("got %d objects, want 1", len(objects))
	}
	if got := Overlap(objects[0], objects[0]); got != 1.0 {
		t.Errorf("self overlap = %g, want 1", got)
	}
}
