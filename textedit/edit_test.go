package textedit

import "testing"

func rep(start, end int, text string) Replacement {
	return Replacement{Range: NewOffsetRange(start, end), NewText: text}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		text string
		edit StringEdit
		want string
	}{
		{"empty edit", "hello", StringEdit{}, "hello"},
		{"single replace", "hello world", SingleReplacement(NewOffsetRange(0, 5), "goodbye"), "goodbye world"},
		{"insert", "ab", Insert(1, "X"), "aXb"},
		{"delete", "abcdef", SingleReplacement(NewOffsetRange(2, 4), ""), "abef"},
		{"multiple", "abcdef", NewStringEdit(rep(0, 1, "A"), rep(3, 5, "DE")), "AbcDEf"},
		{"adjacent", "abcd", NewStringEdit(rep(1, 2, "X"), rep(2, 3, "Y")), "aXYd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.edit.Apply(tt.text); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNewStringEditPanicsOnOverlap(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for overlapping replacements")
		}
	}()
	NewStringEdit(rep(0, 5, "x"), rep(3, 8, "y"))
}

func TestInverseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
		edit StringEdit
	}{
		{"replace", "hello world", SingleReplacement(NewOffsetRange(0, 5), "goodbye")},
		{"insert", "abc", Insert(2, "XYZ")},
		{"delete", "abcdef", SingleReplacement(NewOffsetRange(1, 4), "")},
		{"multi", "abcdefgh", NewStringEdit(rep(0, 2, "Z"), rep(4, 4, "ins"), rep(6, 8, ""))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied := tt.edit.Apply(tt.text)
			inv := tt.edit.Inverse(tt.text)
			if got := inv.Apply(applied); got != tt.text {
				t.Errorf("inverse round trip: got %q, want %q", got, tt.text)
			}
		})
	}
}

func TestComposeEquivalence(t *testing.T) {
	tests := []struct {
		name string
		text string
		e1   StringEdit
		e2   StringEdit
	}{
		{
			"disjoint",
			"hello world",
			SingleReplacement(NewOffsetRange(0, 5), "goodbye"),
			SingleReplacement(NewOffsetRange(8, 13), "moon"),
		},
		{
			"overlapping",
			"abcdef",
			SingleReplacement(NewOffsetRange(1, 3), "XY"),
			SingleReplacement(NewOffsetRange(2, 4), "Z"),
		},
		{
			"insert then delete insert",
			"abc",
			Insert(1, "XX"),
			SingleReplacement(NewOffsetRange(1, 3), ""),
		},
		{
			"second extends past first",
			"abcdef",
			SingleReplacement(NewOffsetRange(0, 2), "Q"),
			SingleReplacement(NewOffsetRange(3, 5), "RS"),
		},
		{
			"delete covering insert",
			"abcdef",
			Insert(3, "XYZ"),
			SingleReplacement(NewOffsetRange(2, 7), ""),
		},
		{
			"multi with multi",
			"abcdefghij",
			NewStringEdit(rep(1, 2, "B"), rep(5, 7, "")),
			NewStringEdit(rep(0, 3, "z"), rep(4, 6, "w")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sequential := tt.e2.Apply(tt.e1.Apply(tt.text))
			composed := tt.e1.Compose(tt.e2).Apply(tt.text)
			if composed != sequential {
				t.Errorf("compose: got %q, want %q", composed, sequential)
			}
		})
	}
}

func TestComposeWithEmpty(t *testing.T) {
	e := SingleReplacement(NewOffsetRange(1, 3), "XY")
	if got := e.Compose(StringEdit{}); !got.Equals(e) {
		t.Errorf("compose with empty: got %v, want %v", got, e)
	}
	if got := (StringEdit{}).Compose(e); !got.Equals(e) {
		t.Errorf("empty compose: got %v, want %v", got, e)
	}
}

func TestTrySwapDisjoint(t *testing.T) {
	text := "hello world"
	e1 := SingleReplacement(NewOffsetRange(0, 5), "goodbye")
	e2 := SingleReplacement(NewOffsetRange(8, 13), "moon") // post-e1 coords

	e1p, e2p, ok := TrySwap(e1, e2)
	if !ok {
		t.Fatal("expected swap to succeed for disjoint edits")
	}
	want := e2.Apply(e1.Apply(text))
	got := e1p.Apply(e2p.Apply(text))
	if got != want {
		t.Errorf("swapped application: got %q, want %q", got, want)
	}
}

func TestTrySwapSecondEditBeforeFirst(t *testing.T) {
	text := "abcdef"
	e1 := SingleReplacement(NewOffsetRange(4, 6), "XY")
	e2 := SingleReplacement(NewOffsetRange(0, 2), "Q") // before e1's range

	e1p, e2p, ok := TrySwap(e1, e2)
	if !ok {
		t.Fatal("expected swap to succeed")
	}
	want := e2.Apply(e1.Apply(text))
	got := e1p.Apply(e2p.Apply(text))
	if got != want {
		t.Errorf("swapped application: got %q, want %q", got, want)
	}
}

func TestTrySwapConflicts(t *testing.T) {
	tests := []struct {
		name string
		e1   StringEdit
		e2   StringEdit
	}{
		{
			"edit inside inserted text",
			SingleReplacement(NewOffsetRange(0, 5), "hi"),
			SingleReplacement(NewOffsetRange(0, 2), "yo"),
		},
		{
			"delete spanning insertion",
			Insert(3, "XYZ"),
			SingleReplacement(NewOffsetRange(2, 7), ""),
		},
		{
			"insert into inserted text",
			Insert(2, "ABCD"),
			Insert(4, "!"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := TrySwap(tt.e1, tt.e2); ok {
				t.Error("expected swap to fail")
			}
		})
	}
}

func TestAnnotatedDecomposeSplit(t *testing.T) {
	text := "abcdefghij"
	edit := NewAnnotatedEdit(
		TaggedReplacement[int]{Replacement: rep(0, 2, "AA"), Tag: 1},
		TaggedReplacement[int]{Replacement: rep(4, 5, ""), Tag: 2},
		TaggedReplacement[int]{Replacement: rep(7, 9, "ZZZZ"), Tag: 3},
	)

	rest, matched := edit.DecomposeSplit(func(tag int) bool { return tag >= 2 })

	if got := len(rest.Replacements()); got != 1 {
		t.Fatalf("rest has %d replacements, want 1", got)
	}
	if got := len(matched.Replacements()); got != 2 {
		t.Fatalf("matched has %d replacements, want 2", got)
	}
	want := edit.Apply(text)
	got := matched.Apply(rest.Apply(text))
	if got != want {
		t.Errorf("decomposed application: got %q, want %q", got, want)
	}
}

func TestAnnotatedComposeMergesTags(t *testing.T) {
	latest := func(a, b int) int { return max(a, b) }
	e1 := Annotate(SingleReplacement(NewOffsetRange(1, 3), "XY"), 1)
	e2 := Annotate(SingleReplacement(NewOffsetRange(2, 4), "Z"), 2)

	composed := e1.Compose(e2, latest)
	reps := composed.Replacements()
	if len(reps) != 1 {
		t.Fatalf("composed has %d replacements, want 1", len(reps))
	}
	if reps[0].Tag != 2 {
		t.Errorf("merged tag = %d, want 2", reps[0].Tag)
	}
	want := e2.Apply(e1.Apply("abcdef"))
	if got := composed.Apply("abcdef"); got != want {
		t.Errorf("composed application: got %q, want %q", got, want)
	}
}

func TestNewRanges(t *testing.T) {
	edit := NewStringEdit(rep(1, 3, "WXYZ"), rep(5, 6, ""))
	got := edit.NewRanges()
	want := []OffsetRange{{Start: 1, EndEx: 5}, {Start: 7, EndEx: 7}}
	if len(got) != len(want) {
		t.Fatalf("NewRanges returned %d ranges, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NewRanges[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
