package textedit

import "fmt"

// LineRange is a half-open range of zero-based line numbers.
type LineRange struct {
	Start int
	EndEx int
}

// Len returns the number of lines covered.
func (r LineRange) Len() int { return r.EndEx - r.Start }

// IsEmpty reports whether the range covers no lines.
func (r LineRange) IsEmpty() bool { return r.Start == r.EndEx }

// Touches reports whether the ranges overlap or are adjacent.
func (r LineRange) Touches(other LineRange) bool {
	return r.Start <= other.EndEx && other.Start <= r.EndEx
}

func (r LineRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.EndEx)
}

// LineReplacement replaces a range of original lines with new lines.
type LineReplacement struct {
	Range    LineRange
	NewLines []string
}

// IsEmpty reports whether the replacement changes nothing.
func (r LineReplacement) IsEmpty() bool {
	return r.Range.IsEmpty() && len(r.NewLines) == 0
}

// ChangedLines returns the larger of removed and inserted line counts.
func (r LineReplacement) ChangedLines() int {
	return max(r.Range.Len(), len(r.NewLines))
}

// StripCommon removes leading and trailing lines that are identical between
// the replaced lines and the new lines, shrinking the replacement to the
// minimal differing region. beforeLines must be the full original line slice.
func (r LineReplacement) StripCommon(beforeLines []string) LineReplacement {
	start, endEx := r.Range.Start, r.Range.EndEx
	newLines := r.NewLines
	for start < endEx && len(newLines) > 0 && beforeLines[start] == newLines[0] {
		start++
		newLines = newLines[1:]
	}
	for start < endEx && len(newLines) > 0 && beforeLines[endEx-1] == newLines[len(newLines)-1] {
		endEx--
		newLines = newLines[:len(newLines)-1]
	}
	return LineReplacement{Range: LineRange{Start: start, EndEx: endEx}, NewLines: newLines}
}

// LineEdit is an ordered, non-overlapping set of line replacements.
type LineEdit struct {
	reps []LineReplacement
}

// NewLineEdit creates a line edit; replacements must be sorted and
// non-overlapping or it panics.
func NewLineEdit(reps ...LineReplacement) LineEdit {
	kept := make([]LineReplacement, 0, len(reps))
	for _, r := range reps {
		if r.IsEmpty() {
			continue
		}
		if n := len(kept); n > 0 && kept[n-1].Range.EndEx > r.Range.Start {
			panic(fmt.Sprintf("textedit: line replacements out of order or overlapping: %v then %v",
				kept[n-1].Range, r.Range))
		}
		kept = append(kept, r)
	}
	return LineEdit{reps: kept}
}

// Replacements returns the line replacements in order.
func (e LineEdit) Replacements() []LineReplacement { return e.reps }

// IsEmpty reports whether the edit changes nothing.
func (e LineEdit) IsEmpty() bool { return len(e.reps) == 0 }

// Count returns the number of line replacements.
func (e LineEdit) Count() int { return len(e.reps) }

// AffectedLineSpan returns the outer line range across all replacements in
// original-line coordinates, or false for the empty edit.
func (e LineEdit) AffectedLineSpan() (LineRange, bool) {
	if len(e.reps) == 0 {
		return LineRange{}, false
	}
	return LineRange{
		Start: e.reps[0].Range.Start,
		EndEx: e.reps[len(e.reps)-1].Range.EndEx,
	}, true
}

// ChangedLines returns the largest per-replacement changed-line count.
func (e LineEdit) ChangedLines() int {
	n := 0
	for _, r := range e.reps {
		n = max(n, r.ChangedLines())
	}
	return n
}

// LineEditFromEdit converts a character edit into the equivalent
// line-granularity edit. before is the snapshot the edit applies to and
// after the snapshot it produces. Replacements landing on touching line
// ranges are merged; each resulting replacement is stripped to its minimal
// differing lines.
func LineEditFromEdit(before *Snapshot, edit StringEdit, after *Snapshot) LineEdit {
	if edit.IsEmpty() {
		return LineEdit{}
	}

	type span struct {
		before LineRange
		after  LineRange
	}
	var spans []span
	delta := 0
	for _, r := range edit.Replacements() {
		// A deletion consuming a newline joins the following line into the
		// affected region, so the region always extends through the line
		// containing EndEx.
		bStart := before.LineOf(r.Range.Start)
		bEndEx := before.LineOf(r.Range.EndEx) + 1

		nlDelta := countByte(r.NewText, '\n') -
			countByte(before.Text()[r.Range.Start:r.Range.EndEx], '\n')
		aStart := after.LineOf(r.Range.Start + delta)
		aEndEx := aStart + (bEndEx - bStart) + nlDelta
		delta += r.LenDelta()

		cur := span{
			before: LineRange{Start: bStart, EndEx: bEndEx},
			after:  LineRange{Start: aStart, EndEx: aEndEx},
		}
		if n := len(spans); n > 0 && cur.before.Start <= spans[n-1].before.EndEx {
			spans[n-1].before.EndEx = max(spans[n-1].before.EndEx, cur.before.EndEx)
			spans[n-1].after.EndEx = max(spans[n-1].after.EndEx, cur.after.EndEx)
		} else {
			spans = append(spans, cur)
		}
	}

	beforeLines := before.Lines()
	afterLines := after.Lines()
	reps := make([]LineReplacement, 0, len(spans))
	for _, sp := range spans {
		lr := LineReplacement{
			Range:    sp.before,
			NewLines: afterLines[sp.after.Start:sp.after.EndEx],
		}
		lr = lr.StripCommon(beforeLines)
		if !lr.IsEmpty() {
			reps = append(reps, lr)
		}
	}
	return LineEdit{reps: reps}
}

func countByte(s string, b byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			n++
		}
	}
	return n
}
