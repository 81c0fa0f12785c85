// Package textedit provides the immutable text-edit primitives the nextedit
// core is built on: offset ranges, atomic multi-replacement edits with
// compose/inverse/swap algebra, tagged edits for history bookkeeping, and
// line-granularity edits derived from them.
package textedit

import "fmt"

// OffsetRange is a half-open character range [Start, EndEx) over a flat text.
type OffsetRange struct {
	Start int
	EndEx int
}

// NewOffsetRange creates a range. Panics if start > endEx; an inverted range
// is a programming error, not an input condition.
func NewOffsetRange(start, endEx int) OffsetRange {
	if start > endEx {
		panic(fmt.Sprintf("textedit: inverted range [%d, %d)", start, endEx))
	}
	return OffsetRange{Start: start, EndEx: endEx}
}

// EmptyRangeAt returns the empty range at the given offset.
func EmptyRangeAt(offset int) OffsetRange {
	return OffsetRange{Start: offset, EndEx: offset}
}

// Len returns the number of characters covered by the range.
func (r OffsetRange) Len() int { return r.EndEx - r.Start }

// IsEmpty reports whether the range covers no characters.
func (r OffsetRange) IsEmpty() bool { return r.Start == r.EndEx }

// Contains reports whether the offset lies inside the range.
func (r OffsetRange) Contains(offset int) bool {
	return r.Start <= offset && offset < r.EndEx
}

// ContainsRange reports whether other lies fully inside r (boundaries may
// coincide).
func (r OffsetRange) ContainsRange(other OffsetRange) bool {
	return r.Start <= other.Start && other.EndEx <= r.EndEx
}

// StrictlyContains reports whether other lies inside r and r is larger.
func (r OffsetRange) StrictlyContains(other OffsetRange) bool {
	return r.ContainsRange(other) && r != other
}

// Intersects reports whether the two ranges share at least one character, or
// one is an empty range lying strictly inside the other.
func (r OffsetRange) Intersects(other OffsetRange) bool {
	start := max(r.Start, other.Start)
	end := min(r.EndEx, other.EndEx)
	if start < end {
		return true
	}
	// An empty range strictly inside a non-empty one still intersects.
	if r.IsEmpty() && other.Start < r.Start && r.Start < other.EndEx {
		return true
	}
	if other.IsEmpty() && r.Start < other.Start && other.Start < r.EndEx {
		return true
	}
	return false
}

// Touches reports whether the ranges intersect or are directly adjacent.
func (r OffsetRange) Touches(other OffsetRange) bool {
	return r.Start <= other.EndEx && other.Start <= r.EndEx
}

// Intersect returns the overlapping part of the two ranges, if any.
func (r OffsetRange) Intersect(other OffsetRange) (OffsetRange, bool) {
	start := max(r.Start, other.Start)
	end := min(r.EndEx, other.EndEx)
	if start > end {
		return OffsetRange{}, false
	}
	return OffsetRange{Start: start, EndEx: end}, true
}

// Delta returns the range shifted by d.
func (r OffsetRange) Delta(d int) OffsetRange {
	return OffsetRange{Start: r.Start + d, EndEx: r.EndEx + d}
}

func (r OffsetRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.EndEx)
}
