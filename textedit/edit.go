package textedit

import (
	"fmt"
	"strings"
)

// Replacement is a single replacement operation: the characters covered by
// Range are replaced with NewText.
type Replacement struct {
	Range   OffsetRange
	NewText string
}

// IsEmpty reports whether the replacement changes nothing.
func (r Replacement) IsEmpty() bool {
	return r.Range.IsEmpty() && r.NewText == ""
}

// LenDelta returns the change in text length caused by the replacement.
func (r Replacement) LenDelta() int {
	return len(r.NewText) - r.Range.Len()
}

// NewRange returns the range the new text occupies after the edit, given the
// cumulative length delta of all preceding replacements.
func (r Replacement) newRange(deltaBefore int) OffsetRange {
	start := r.Range.Start + deltaBefore
	return OffsetRange{Start: start, EndEx: start + len(r.NewText)}
}

// StringEdit is an ordered, non-overlapping set of replacements applied
// atomically to one text snapshot. The zero value is the empty edit.
//
// StringEdit is an immutable value type: all operations return new edits.
type StringEdit struct {
	reps []Replacement
}

// NewStringEdit creates an edit from replacements. Replacements must be
// sorted ascending by offset and non-overlapping; a violation is a
// programming error and panics. Empty replacements are dropped.
func NewStringEdit(reps ...Replacement) StringEdit {
	kept := make([]Replacement, 0, len(reps))
	for _, r := range reps {
		if r.IsEmpty() {
			continue
		}
		if n := len(kept); n > 0 && kept[n-1].Range.EndEx > r.Range.Start {
			panic(fmt.Sprintf("textedit: replacements out of order or overlapping: %v then %v",
				kept[n-1].Range, r.Range))
		}
		kept = append(kept, r)
	}
	return StringEdit{reps: kept}
}

// SingleReplacement creates an edit with one replacement.
func SingleReplacement(rng OffsetRange, newText string) StringEdit {
	return NewStringEdit(Replacement{Range: rng, NewText: newText})
}

// Insert creates an edit inserting text at the given offset.
func Insert(offset int, text string) StringEdit {
	return SingleReplacement(EmptyRangeAt(offset), text)
}

// Replacements returns the replacement operations in order.
func (e StringEdit) Replacements() []Replacement { return e.reps }

// IsEmpty reports whether the edit changes nothing.
func (e StringEdit) IsEmpty() bool { return len(e.reps) == 0 }

// LenDelta returns the total change in text length.
func (e StringEdit) LenDelta() int {
	d := 0
	for _, r := range e.reps {
		d += r.LenDelta()
	}
	return d
}

// InsertedLen returns the total number of inserted characters.
func (e StringEdit) InsertedLen() int {
	n := 0
	for _, r := range e.reps {
		n += len(r.NewText)
	}
	return n
}

// DeletedLen returns the total number of removed characters.
func (e StringEdit) DeletedLen() int {
	n := 0
	for _, r := range e.reps {
		n += r.Range.Len()
	}
	return n
}

// AffectedRange returns the outer range spanning all replacements in the
// original text, or false for the empty edit.
func (e StringEdit) AffectedRange() (OffsetRange, bool) {
	if len(e.reps) == 0 {
		return OffsetRange{}, false
	}
	return OffsetRange{
		Start: e.reps[0].Range.Start,
		EndEx: e.reps[len(e.reps)-1].Range.EndEx,
	}, true
}

// NewRanges returns the ranges the replacements occupy after the edit has
// been applied, in order.
func (e StringEdit) NewRanges() []OffsetRange {
	out := make([]OffsetRange, len(e.reps))
	delta := 0
	for i, r := range e.reps {
		out[i] = r.newRange(delta)
		delta += r.LenDelta()
	}
	return out
}

// Apply applies the edit to text and returns the result. Replacement ranges
// reaching past the end of text are a programming error and panic.
func (e StringEdit) Apply(text string) string {
	if len(e.reps) == 0 {
		return text
	}
	last := e.reps[len(e.reps)-1]
	if last.Range.EndEx > len(text) {
		panic(fmt.Sprintf("textedit: edit range %v exceeds text length %d", last.Range, len(text)))
	}
	var sb strings.Builder
	sb.Grow(len(text) + e.LenDelta())
	pos := 0
	for _, r := range e.reps {
		sb.WriteString(text[pos:r.Range.Start])
		sb.WriteString(r.NewText)
		pos = r.Range.EndEx
	}
	sb.WriteString(text[pos:])
	return sb.String()
}

// Inverse returns the edit that undoes this edit when applied to the
// post-edit text. original is the text this edit was applied to.
func (e StringEdit) Inverse(original string) StringEdit {
	reps := make([]Replacement, 0, len(e.reps))
	delta := 0
	for _, r := range e.reps {
		start := r.Range.Start + delta
		reps = append(reps, Replacement{
			Range:   OffsetRange{Start: start, EndEx: start + len(r.NewText)},
			NewText: original[r.Range.Start:r.Range.EndEx],
		})
		delta += r.LenDelta()
	}
	return StringEdit{reps: reps}
}

// Compose returns the edit equivalent to applying e and then other to the
// same base text. other's ranges refer to the text after e has been applied.
func (e StringEdit) Compose(other StringEdit) StringEdit {
	a := annotate[struct{}](e.reps)
	b := annotate[struct{}](other.reps)
	merged := composeTagged(a, b, func(_, _ struct{}) struct{} { return struct{}{} })
	return StringEdit{reps: stripTags(merged)}
}

// Equals reports whether two edits have identical replacements.
func (e StringEdit) Equals(other StringEdit) bool {
	if len(e.reps) != len(other.reps) {
		return false
	}
	for i := range e.reps {
		if e.reps[i] != other.reps[i] {
			return false
		}
	}
	return true
}

func (e StringEdit) String() string {
	if len(e.reps) == 0 {
		return "{}"
	}
	parts := make([]string, len(e.reps))
	for i, r := range e.reps {
		parts[i] = fmt.Sprintf("%v -> %q", r.Range, r.NewText)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// TrySwap reorders two sequentially applied edits onto a common base.
// Given e1 applied to a base text and e2 applied to the result, it produces
// (e1', e2') such that applying e2' to the base and then e1' to that result
// yields the same final text. Returns ok == false when the edits overlap in a
// way that cannot be reordered without losing information; this is a normal
// outcome, not an error.
func TrySwap(e1, e2 StringEdit) (e1p, e2p StringEdit, ok bool) {
	// Map e2's ranges from post-e1 coordinates back to base coordinates.
	mapped := make([]Replacement, 0, len(e2.reps))
	newRanges := e1.NewRanges()
	for _, r := range e2.reps {
		for _, nr := range newRanges {
			// e2 must not consume text e1 inserted, and must not insert
			// into its interior.
			if ov, has := r.Range.Intersect(nr); has && !ov.IsEmpty() {
				return StringEdit{}, StringEdit{}, false
			}
			if r.Range.IsEmpty() && nr.Start < r.Range.Start && r.Range.Start < nr.EndEx {
				return StringEdit{}, StringEdit{}, false
			}
		}
		start, okS := mapOffsetToBase(e1.reps, r.Range.Start)
		end, okE := mapOffsetToBase(e1.reps, r.Range.EndEx)
		if !okS || !okE {
			return StringEdit{}, StringEdit{}, false
		}
		base := OffsetRange{Start: start, EndEx: end}
		for _, a := range e1.reps {
			if ov, has := base.Intersect(a.Range); has && !ov.IsEmpty() {
				return StringEdit{}, StringEdit{}, false
			}
			if a.Range.IsEmpty() && base.Start < a.Range.Start && a.Range.Start < base.EndEx {
				return StringEdit{}, StringEdit{}, false
			}
		}
		mapped = append(mapped, Replacement{Range: base, NewText: r.NewText})
	}

	e2p = StringEdit{reps: mapped}

	// Shift e1's ranges by the deltas of e2' replacements that now precede
	// them on the base.
	shifted := make([]Replacement, 0, len(e1.reps))
	for _, a := range e1.reps {
		delta := 0
		for _, b := range mapped {
			if b.Range.EndEx <= a.Range.Start {
				delta += b.LenDelta()
			}
		}
		shifted = append(shifted, Replacement{Range: a.Range.Delta(delta), NewText: a.NewText})
	}
	e1p = StringEdit{reps: shifted}
	return e1p, e2p, true
}

// mapOffsetToBase maps an offset in post-edit coordinates back to the base
// text. Offsets strictly inside inserted text cannot be mapped.
func mapOffsetToBase(reps []Replacement, p int) (int, bool) {
	delta := 0
	for _, r := range reps {
		nr := r.newRange(delta)
		if p < nr.Start {
			return p - delta, true
		}
		if p == nr.Start {
			return r.Range.Start, true
		}
		if p < nr.EndEx {
			return 0, false
		}
		if p == nr.EndEx {
			return r.Range.EndEx, true
		}
		delta += r.LenDelta()
	}
	return p - delta, true
}
