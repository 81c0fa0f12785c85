// Package streamdiff computes line-level edits between an original document
// and a modified version that arrives incrementally, line by line. Edits are
// emitted as soon as the stream has revealed enough to decide, so callers can
// apply them before the stream finishes.
package streamdiff

import (
	"unicode"

	"github.com/nextedit-lsp/nextedit/textedit"
)

// Options tune convergence detection.
type Options struct {
	// EmitFastCursorLineChange emits a single-line replacement immediately
	// when the line under the cursor diverges, without waiting for
	// surrounding context.
	EmitFastCursorLineChange bool
	// LinesToConverge is the number of consecutive matching lines that end
	// a divergence.
	LinesToConverge int
	// SignificantLinesToConverge is the number of consecutive matching
	// lines containing at least one alphanumeric character that end a
	// divergence. Whichever threshold is hit first wins.
	SignificantLinesToConverge int
}

// DefaultOptions are the thresholds used by the suggestion pipeline.
func DefaultOptions() Options {
	return Options{
		LinesToConverge:            3,
		SignificantLinesToConverge: 2,
	}
}

// Differ is a push-style incremental line differ. Feed modified lines with
// Push, then call Finish once the stream ends; each call returns the line
// replacements that became decidable. Replacements cover the original line
// range exactly once, in ascending order. A Differ is single-use and not
// safe for concurrent use.
type Differ struct {
	original   []string
	cursorLine int
	opts       Options

	origIdx      int // next original line not yet covered by output
	diverged     bool
	divergeStart int
	buffer       []string
	finished     bool
}

// New creates a Differ over the original lines. cursorLine is the zero-based
// original line the user's cursor is on.
func New(original []string, cursorLine int, opts Options) *Differ {
	if opts.LinesToConverge <= 0 {
		opts.LinesToConverge = DefaultOptions().LinesToConverge
	}
	if opts.SignificantLinesToConverge <= 0 {
		opts.SignificantLinesToConverge = DefaultOptions().SignificantLinesToConverge
	}
	return &Differ{
		original:   original,
		cursorLine: cursorLine,
		opts:       opts,
	}
}

// Push feeds the next modified line and returns any replacement that became
// decidable, or nil.
func (d *Differ) Push(line string) []textedit.LineReplacement {
	if d.finished {
		panic("streamdiff: Push after Finish")
	}

	if !d.diverged {
		if d.origIdx < len(d.original) && d.original[d.origIdx] == line {
			d.origIdx++
			return nil
		}
		d.diverged = true
		d.divergeStart = d.origIdx
		d.buffer = append(d.buffer[:0], line)

		if d.opts.EmitFastCursorLineChange &&
			d.divergeStart == d.cursorLine &&
			len(d.candidates(line)) == 0 {
			// The cursor's own line changed and the new line matches
			// nothing ahead: update it immediately for low latency.
			rep := textedit.LineReplacement{
				Range:    textedit.LineRange{Start: d.cursorLine, EndEx: d.cursorLine + 1},
				NewLines: []string{line},
			}
			d.origIdx = d.cursorLine + 1
			d.diverged = false
			d.buffer = nil
			return []textedit.LineReplacement{rep}
		}
		return d.tryConverge()
	}

	d.buffer = append(d.buffer, line)
	return d.tryConverge()
}

// Finish signals the end of the modified stream and returns the replacement
// covering whatever original range is still undecided, if any.
func (d *Differ) Finish() []textedit.LineReplacement {
	if d.finished {
		panic("streamdiff: Finish called twice")
	}
	d.finished = true

	if d.diverged {
		rep := textedit.LineReplacement{
			Range:    textedit.LineRange{Start: d.divergeStart, EndEx: len(d.original)},
			NewLines: append([]string(nil), d.buffer...),
		}
		d.buffer = nil
		d.diverged = false
		d.origIdx = len(d.original)
		return []textedit.LineReplacement{rep}
	}
	if d.origIdx < len(d.original) {
		// Stream ended before the original did: the tail was deleted.
		rep := textedit.LineReplacement{
			Range: textedit.LineRange{Start: d.origIdx, EndEx: len(d.original)},
		}
		d.origIdx = len(d.original)
		return []textedit.LineReplacement{rep}
	}
	return nil
}

// candidates returns the original line indices at or after the cursor that
// equal line.
func (d *Differ) candidates(line string) []int {
	var out []int
	for j := d.origIdx; j < len(d.original); j++ {
		if d.original[j] == line {
			out = append(out, j)
		}
	}
	return out
}

// tryConverge checks whether the buffered divergence has converged back onto
// the original and, if so, emits the replacement and realigns.
func (d *Differ) tryConverge() []textedit.LineReplacement {
	last := d.buffer[len(d.buffer)-1]
	for _, j := range d.candidates(last) {
		total, significant := d.matchBackward(j)
		inserted := len(d.buffer) - total
		deleted := (j - total + 1) - d.divergeStart

		converged := total >= d.opts.LinesToConverge ||
			significant >= d.opts.SignificantLinesToConverge
		if !converged && total == 1 && (inserted == deleted || inserted == deleted-1) {
			// A one-line match right where the insertion has caught up
			// with the deletion: N lines replaced by N converge here.
			converged = true
		}
		if !converged {
			continue
		}
		if deleted-inserted > 1 && inserted >= 1 {
			// Deletion-dominated: the stream probably has not produced
			// the replacement text yet. Keep buffering.
			continue
		}

		rep := textedit.LineReplacement{
			Range:    textedit.LineRange{Start: d.divergeStart, EndEx: j - total + 1},
			NewLines: append([]string(nil), d.buffer[:inserted]...),
		}
		d.origIdx = j + 1
		d.diverged = false
		d.buffer = nil
		return []textedit.LineReplacement{rep}
	}
	return nil
}

// matchBackward counts how many consecutive buffered lines, ending at the
// last one, match the original lines ending at index j. significant counts
// those containing an alphanumeric character.
func (d *Differ) matchBackward(j int) (total, significant int) {
	for total < len(d.buffer) && j-total >= d.divergeStart {
		if d.buffer[len(d.buffer)-1-total] != d.original[j-total] {
			break
		}
		if isSignificant(d.original[j-total]) {
			significant++
		}
		total++
	}
	return total, significant
}

func isSignificant(line string) bool {
	for _, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
