// Package track links per-day objects into tracks. The tracker is strictly
// sequential in day order: each day's matching depends on the active set
// left by the previous day. Splits and merges are first-class: a track
// matching several children absorbs their union and records the split; a
// child matched by several tracks ends all but the first of them.
package track

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/meridian-data/extremetrack/internal/label"
)

// Track is a time-ordered sequence of objects linked by sufficient overlap.
// Days are strictly increasing and consecutive while the track is active.
// On a split day the stored object is the union of all matching children.
type Track struct {
	ID uuid.UUID

	OriDay   int // first day
	OriOrder int // 1-based object identifier on the birth day

	Days    []int
	Objects []*label.Object

	SplitDays []int
	SplitNum  []int // child count per split day, aligned with SplitDays
}

func newTrack(day, order int, obj *label.Object) *Track {
	return &Track{
		ID:       uuid.New(),
		OriDay:   day,
		OriOrder: order,
		Days:     []int{day},
		Objects:  []*label.Object{obj},
	}
}

// LastDay returns the most recent day the track was observed.
func (t *Track) LastDay() int { return t.Days[len(t.Days)-1] }

// LastObject returns the object attached on the most recent day.
func (t *Track) LastObject() *label.Object { return t.Objects[len(t.Objects)-1] }

// Duration returns the lifetime in days, inclusive of both ends.
func (t *Track) Duration() int { return t.LastDay() - t.OriDay + 1 }

// MaxObjectSize returns the largest per-day cell count over the lifetime.
func (t *Track) MaxObjectSize() int {
	max := 0
	for _, o := range t.Objects {
		if o.Size() > max {
			max = o.Size()
		}
	}
	return max
}

func (t *Track) extend(day int, obj *label.Object) {
	t.Days = append(t.Days, day)
	t.Objects = append(t.Objects, obj)
}

func (t *Track) recordSplit(day, children int) {
	t.SplitDays = append(t.SplitDays, day)
	t.SplitNum = append(t.SplitNum, children)
}

// signature is the canonical content form used for order-insensitive
// TrackSet comparison: the day-indexed cell sequences, nothing else.
func (t *Track) signature() string {
	var b strings.Builder
	for i, day := range t.Days {
		fmt.Fprintf(&b, "d%d:", day)
		for _, c := range t.Objects[i].Cells() {
			fmt.Fprintf(&b, "%d,", c.Key())
		}
		b.WriteByte(';')
	}
	return b.String()
}

// TrackSet is the archive of completed tracks. Archive order is the order
// archival events happened in and is implementation-defined; comparisons
// must use Equal.
type TrackSet struct {
	Tracks []*Track
}

// Len returns the number of archived tracks.
func (s *TrackSet) Len() int { return len(s.Tracks) }

// Equal compares two TrackSets as unordered sets of day-indexed object
// sequences, the reproducibility contract: identical inputs and parameters
// must produce Equal TrackSets even when archive order differs.
func (s *TrackSet) Equal(other *TrackSet) bool {
	if len(s.Tracks) != len(other.Tracks) {
		return false
	}
	a := make([]string, len(s.Tracks))
	b := make([]string, len(other.Tracks))
	for i := range s.Tracks {
		a[i] = s.Tracks[i].signature()
		b[i] = other.Tracks[i].signature()
	}
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FilterDuration returns a new TrackSet keeping only tracks that lasted at
// least minDays. minDays <= 0 returns the set unchanged.
func (s *TrackSet) FilterDuration(minDays int) *TrackSet {
	if minDays <= 0 {
		return s
	}
	kept := make([]*Track, 0, len(s.Tracks))
	for _, t := range s.Tracks {
		if t.Duration() >= minDays {
			kept = append(kept, t)
		}
	}
	return &TrackSet{Tracks: kept}
}
