package textedit

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is an immutable text value with a precomputed line index.
// Offset/line conversions are O(log n). Edits never mutate a snapshot; they
// produce a new one via Apply.
type Snapshot struct {
	text       string
	lineStarts []int
}

// NewSnapshot creates a snapshot of the given text.
func NewSnapshot(text string) *Snapshot {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Snapshot{text: text, lineStarts: starts}
}

// Text returns the full text.
func (s *Snapshot) Text() string { return s.text }

// Len returns the text length in bytes.
func (s *Snapshot) Len() int { return len(s.text) }

// LineCount returns the number of lines. A trailing newline starts a final
// empty line, matching the editor's line model.
func (s *Snapshot) LineCount() int { return len(s.lineStarts) }

// Line returns the content of line i without its trailing newline. Panics on
// an out-of-range index.
func (s *Snapshot) Line(i int) string {
	if i < 0 || i >= len(s.lineStarts) {
		panic(fmt.Sprintf("textedit: line %d out of range (%d lines)", i, len(s.lineStarts)))
	}
	start := s.lineStarts[i]
	if i+1 < len(s.lineStarts) {
		return s.text[start : s.lineStarts[i+1]-1]
	}
	return s.text[start:]
}

// Lines returns all lines without trailing newlines.
func (s *Snapshot) Lines() []string {
	return strings.Split(s.text, "\n")
}

// LineStart returns the offset of the first character of line i.
func (s *Snapshot) LineStart(i int) int {
	if i < 0 || i >= len(s.lineStarts) {
		panic(fmt.Sprintf("textedit: line %d out of range (%d lines)", i, len(s.lineStarts)))
	}
	return s.lineStarts[i]
}

// LineOf returns the zero-based line containing the given offset. Offsets
// past the end map to the last line.
func (s *Snapshot) LineOf(offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(s.text) {
		return len(s.lineStarts) - 1
	}
	// First line start greater than offset, minus one.
	i := sort.SearchInts(s.lineStarts, offset+1)
	return i - 1
}

// PositionOf converts an offset to a (line, byte column) pair.
func (s *Snapshot) PositionOf(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.text) {
		offset = len(s.text)
	}
	line = s.LineOf(offset)
	return line, offset - s.lineStarts[line]
}

// OffsetOf converts a (line, byte column) pair to an offset, clamping the
// column to the line length.
func (s *Snapshot) OffsetOf(line, col int) int {
	if line < 0 {
		return 0
	}
	if line >= len(s.lineStarts) {
		return len(s.text)
	}
	start := s.lineStarts[line]
	end := len(s.text)
	if line+1 < len(s.lineStarts) {
		end = s.lineStarts[line+1] - 1
	}
	if col < 0 {
		col = 0
	}
	if start+col > end {
		return end
	}
	return start + col
}

// Apply returns the snapshot produced by applying the edit to this one.
func (s *Snapshot) Apply(edit StringEdit) *Snapshot {
	if edit.IsEmpty() {
		return s
	}
	return NewSnapshot(edit.Apply(s.text))
}
