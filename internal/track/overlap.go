package track

import "github.com/meridian-data/extremetrack/internal/label"

// Overlap is the matching kernel: |A ∩ B| / min(|A|, |B|). The denominator
// is min, not max or union, so a small child scores fully against a large
// parent. Symmetric, in [0, 1], and exactly 1 iff one operand is a subset
// of the other.
func Overlap(a, b *label.Object) float64 {
	if a.Size() == 0 || b.Size() == 0 {
		return 0
	}
	smaller := a.Size()
	if b.Size() < smaller {
		smaller = b.Size()
	}
	return float64(a.IntersectCount(b)) / float64(smaller)
}
