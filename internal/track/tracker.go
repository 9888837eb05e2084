package track

import (
	"fmt"

	"github.com/meridian-data/extremetrack/internal/label"
)

// Config holds tracker parameters.
type Config struct {
	Alpha  float64 // overlap threshold for continuation and splits
	CutOff int     // minimum archive duration in days; 0 disables
}

// DefaultConfig returns default tracker configuration.
func DefaultConfig() Config {
	return Config{Alpha: 0.5, CutOff: 0}
}

// Tracker consumes day object lists in day order and maintains the search
// set of active tracks plus the growing archive. It is agnostic to the grid
// topology: objects are opaque cell sets scored with the overlap kernel.
type Tracker struct {
	cfg Config

	search  []*Track // active tracks, insertion order
	archive []*Track

	lastStepDay int
	finalised   bool
}

// NewTracker creates a tracker. Config is validated by the caller
// (internal/config); a zero Alpha is permitted and, since every overlap
// score is >= 0, matches every object of the next day, disjoint ones
// included.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg}
}

// Step processes the objects of one day. Days must be presented in strictly
// increasing order; a gap in the day sequence ends every active track, and
// an empty day is valid input that simply matches nothing.
func (t *Tracker) Step(day int, objects []*label.Object) error {
	if t.finalised {
		return fmt.Errorf("tracker: Step after Finalise")
	}
	if t.lastStepDay != 0 && day <= t.lastStepDay {
		return fmt.Errorf("tracker: day %d not after day %d", day, t.lastStepDay)
	}
	t.lastStepDay = day

	// Adjacency gate: only tracks observed on day-1 can continue.
	usedCount := make([]int, len(objects))
	matchedBy := make([][]*Track, len(objects))

	for _, tr := range t.search {
		if tr.LastDay() != day-1 {
			continue
		}
		last := tr.LastObject()

		var matched []int
		for k, obj := range objects {
			if Overlap(last, obj) >= t.cfg.Alpha {
				matched = append(matched, k)
			}
		}

		switch {
		case len(matched) == 0:
			// Track does not continue; death is handled below.
		case len(matched) == 1:
			k := matched[0]
			tr.extend(day, objects[k])
			usedCount[k]++
			matchedBy[k] = append(matchedBy[k], tr)
		default:
			// Split: the union of all matching children becomes the
			// track's object for this day.
			children := make([]*label.Object, len(matched))
			for i, k := range matched {
				children[i] = objects[k]
				usedCount[k]++
				matchedBy[k] = append(matchedBy[k], tr)
			}
			tr.extend(day, label.Union(children...))
			tr.recordSplit(day, len(matched))
		}
	}

	// Merge handling: a child claimed by several tracks keeps the first of
	// them in search order; the rest are completed on this day.
	mergedOut := make(map[*Track]bool)
	for k := range objects {
		if usedCount[k] <= 1 {
			continue
		}
		for _, loser := range matchedBy[k][1:] {
			mergedOut[loser] = true
		}
	}

	// Birth: unclaimed objects seed new tracks with this day's 1-based
	// object identifier as their origin order.
	for k, obj := range objects {
		if usedCount[k] == 0 {
			t.search = append(t.search, newTrack(day, k+1, obj))
		}
	}

	// Death: anything not observed today (or pushed out by a merge) is
	// archived and removed from the search set.
	remaining := t.search[:0]
	for _, tr := range t.search {
		if tr.LastDay() < day || mergedOut[tr] && tr.LastDay() == day {
			// A merged-out track already carries today's observation; it
			// archives with last day = merge day.
			t.archive = append(t.archive, tr)
			continue
		}
		remaining = append(remaining, tr)
	}
	t.search = remaining

	return nil
}

// Active returns the number of tracks still in the search set.
func (t *Tracker) Active() int { return len(t.search) }

// Archived returns the number of tracks archived so far.
func (t *Tracker) Archived() int { return len(t.archive) }

// Finalise archives every remaining active track, applies the cut_off
// duration filter, and returns the TrackSet. The tracker cannot be stepped
// afterwards. Calling Finalise early (cooperative cancellation) yields a
// valid TrackSet truncated at the last completed day.
func (t *Tracker) Finalise() *TrackSet {
	if !t.finalised {
		t.archive = append(t.archive, t.search...)
		t.search = nil
		t.finalised = true
	}
	set := &TrackSet{Tracks: t.archive}
	return set.FilterDuration(t.cfg.CutOff)
}
