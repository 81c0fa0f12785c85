package nestest

import (
	"testing"

	"github.com/nextedit-lsp/nextedit/textedit"
	"github.com/nextedit-lsp/nextedit/treesitter"
)

// AssertLineReplacements asserts replacements match in range and content.
func AssertLineReplacements(t testing.TB, got, want []textedit.LineReplacement) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d replacements, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Range != want[i].Range {
			t.Errorf("replacement %d range = %v, want %v", i, got[i].Range, want[i].Range)
		}
		if len(got[i].NewLines) != len(want[i].NewLines) {
			t.Errorf("replacement %d has %d lines, want %d", i, len(got[i].NewLines), len(want[i].NewLines))
			continue
		}
		for j := range want[i].NewLines {
			if got[i].NewLines[j] != want[i].NewLines[j] {
				t.Errorf("replacement %d line %d = %q, want %q", i, j, got[i].NewLines[j], want[i].NewLines[j])
			}
		}
	}
}

// AssertCaptureTexts asserts the captures' texts in order.
func AssertCaptureTexts(t testing.TB, captures []treesitter.Capture, want ...string) {
	t.Helper()
	if len(captures) != len(want) {
		t.Fatalf("got %d captures, want %d", len(captures), len(want))
	}
	for i, w := range want {
		if captures[i].Text != w {
			t.Errorf("capture %d = %q, want %q", i, captures[i].Text, w)
		}
	}
}

// AssertText asserts a snapshot's full text.
func AssertText(t testing.TB, snap *textedit.Snapshot, want string) {
	t.Helper()
	if snap == nil {
		t.Fatal("snapshot is nil")
	}
	if snap.Text() != want {
		t.Errorf("text = %q, want %q", snap.Text(), want)
	}
}
