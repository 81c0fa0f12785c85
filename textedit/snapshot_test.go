package textedit

import "testing"

func TestSnapshotLines(t *testing.T) {
	s := NewSnapshot("a\nbb\nccc")
	if got := s.LineCount(); got != 3 {
		t.Fatalf("LineCount = %d, want 3", got)
	}
	for i, want := range []string{"a", "bb", "ccc"} {
		if got := s.Line(i); got != want {
			t.Errorf("Line(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestSnapshotTrailingNewline(t *testing.T) {
	s := NewSnapshot("a\nb\n")
	if got := s.LineCount(); got != 3 {
		t.Fatalf("LineCount = %d, want 3", got)
	}
	if got := s.Line(2); got != "" {
		t.Errorf("Line(2) = %q, want empty", got)
	}
}

func TestSnapshotLineOf(t *testing.T) {
	s := NewSnapshot("a\nbb\nccc")
	tests := []struct {
		offset int
		want   int
	}{
		{0, 0}, {1, 0}, {2, 1}, {4, 1}, {5, 2}, {7, 2}, {8, 2}, {100, 2},
	}
	for _, tt := range tests {
		if got := s.LineOf(tt.offset); got != tt.want {
			t.Errorf("LineOf(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

func TestSnapshotPositionRoundTrip(t *testing.T) {
	s := NewSnapshot("hello\nworld\nfoo")
	for off := 0; off <= s.Len(); off++ {
		line, col := s.PositionOf(off)
		if got := s.OffsetOf(line, col); got != off {
			t.Errorf("offset %d -> (%d, %d) -> %d", off, line, col, got)
		}
	}
}

func TestSnapshotApply(t *testing.T) {
	s := NewSnapshot("a\nb\nc")
	edited := s.Apply(SingleReplacement(NewOffsetRange(2, 3), "B2"))
	if got := edited.Text(); got != "a\nB2\nc" {
		t.Errorf("Apply produced %q", got)
	}
	if s.Text() != "a\nb\nc" {
		t.Error("original snapshot mutated")
	}
}

func TestLineEditFromEdit(t *testing.T) {
	tests := []struct {
		name      string
		before    string
		edit      StringEdit
		wantReps  int
		wantRange LineRange
		wantNew   []string
	}{
		{
			"single line change",
			"a\nb\nc\nd\ne",
			SingleReplacement(NewOffsetRange(2, 3), "b2"),
			1, LineRange{Start: 1, EndEx: 2}, []string{"b2"},
		},
		{
			"full line insertion",
			"a\nb\nc",
			Insert(2, "x\n"),
			1, LineRange{Start: 1, EndEx: 1}, []string{"x"},
		},
		{
			"full line deletion",
			"a\nb\nc",
			SingleReplacement(NewOffsetRange(2, 4), ""),
			1, LineRange{Start: 1, EndEx: 2}, nil,
		},
		{
			"multi line replace",
			"a\nb\nc\nd",
			SingleReplacement(NewOffsetRange(2, 5), "X\nY\nZ"),
			1, LineRange{Start: 1, EndEx: 3}, []string{"X", "Y", "Z"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := NewSnapshot(tt.before)
			after := before.Apply(tt.edit)
			le := LineEditFromEdit(before, tt.edit, after)
			reps := le.Replacements()
			if len(reps) != tt.wantReps {
				t.Fatalf("got %d replacements, want %d: %v", len(reps), tt.wantReps, reps)
			}
			r := reps[0]
			if r.Range != tt.wantRange {
				t.Errorf("range = %v, want %v", r.Range, tt.wantRange)
			}
			if len(r.NewLines) != len(tt.wantNew) {
				t.Fatalf("new lines = %v, want %v", r.NewLines, tt.wantNew)
			}
			for i := range tt.wantNew {
				if r.NewLines[i] != tt.wantNew[i] {
					t.Errorf("new line %d = %q, want %q", i, r.NewLines[i], tt.wantNew[i])
				}
			}
		})
	}
}

func TestLineEditFromEditMergesTouching(t *testing.T) {
	before := NewSnapshot("aaa\nbbb\nccc")
	edit := NewStringEdit(rep(0, 1, "X"), rep(5, 6, "Y"))
	after := before.Apply(edit)
	le := LineEditFromEdit(before, edit, after)
	// Lines 0 and 1 are touched by separate replacements on adjacent lines;
	// the derived edit keeps them as separate line replacements only if the
	// ranges do not touch. Here lines 0 and 1 are adjacent, so they merge.
	if le.Count() != 1 {
		t.Fatalf("got %d replacements, want 1: %v", le.Count(), le.Replacements())
	}
	r := le.Replacements()[0]
	if r.Range != (LineRange{Start: 0, EndEx: 2}) {
		t.Errorf("range = %v, want [0, 2)", r.Range)
	}
}

func TestStripCommon(t *testing.T) {
	beforeLines := []string{"a", "b", "c", "d"}
	r := LineReplacement{
		Range:    LineRange{Start: 0, EndEx: 4},
		NewLines: []string{"a", "B2", "c", "d"},
	}
	got := r.StripCommon(beforeLines)
	if got.Range != (LineRange{Start: 1, EndEx: 2}) {
		t.Errorf("range = %v, want [1, 2)", got.Range)
	}
	if len(got.NewLines) != 1 || got.NewLines[0] != "B2" {
		t.Errorf("new lines = %v, want [B2]", got.NewLines)
	}
}
