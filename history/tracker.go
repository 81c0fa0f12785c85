// Package history tracks recent edits per document and assembles
// cross-document edit-history context for model prompting. Each open
// document gets a Tracker holding a rolling window of edits between a base
// snapshot and the current snapshot; the Provider maintains the trackers,
// the recently-touched ordering across documents, and git-checkout
// invalidation.
package history

import (
	"fmt"
	"time"

	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/textedit"
)

// Budgets for the per-document edit window. These are deliberately fixed:
// they bound the size of the context handed to the model, not user
// preferences.
const (
	maxEntryAge         = 10 * time.Minute
	maxComposedLineSpan = 100
	maxEntryLineDelta   = 10
	maxEntryCharDelta   = 5000
	smallInsertLimit    = 200
)

type entry struct {
	before   *textedit.Snapshot // snapshot the edit applies to
	edit     textedit.StringEdit
	lineEdit textedit.LineEdit
	at       time.Time
}

// Tracker is the per-document edit history. It is not safe for concurrent
// use; the Provider serializes access to it.
type Tracker struct {
	uri        protocol.DocumentURI
	languageID string

	base    *textedit.Snapshot
	current *textedit.Snapshot
	entries []entry

	selection    protocol.Selection
	userDocument bool

	clock         func() time.Time
	cooldownUntil time.Time
}

// NewTracker creates a tracker for a document whose current content is snap.
func NewTracker(uri protocol.DocumentURI, languageID string, snap *textedit.Snapshot, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		uri:        uri,
		languageID: languageID,
		base:       snap,
		current:    snap,
		clock:      clock,
	}
}

// URI returns the tracked document's URI.
func (t *Tracker) URI() protocol.DocumentURI { return t.uri }

// LanguageID returns the tracked document's language.
func (t *Tracker) LanguageID() string { return t.languageID }

// Selection returns the last observed selection.
func (t *Tracker) Selection() protocol.Selection { return t.selection }

// IsUserDocument reports whether a selection event has ever been observed.
// Documents edited purely programmatically never become user documents and
// are excluded from history context.
func (t *Tracker) IsUserDocument() bool { return t.userDocument }

// HandleSelection records a selection event.
func (t *Tracker) HandleSelection(sel protocol.Selection) {
	t.selection = sel
	t.userDocument = true
}

// HandleEdit appends an edit to the history. before must be the snapshot
// the edit applies to and after the snapshot it produces.
func (t *Tracker) HandleEdit(edit textedit.StringEdit, before, after *textedit.Snapshot) {
	if edit.IsEmpty() {
		return
	}
	prev := t.current
	t.current = after

	// Right after a branch checkout the incoming edits are assumed to be
	// the checkout's own diff, not the user's work: fold them straight into
	// the base so they never show up as recent edits.
	if t.clock().Before(t.cooldownUntil) {
		t.base = after
		t.entries = nil
		return
	}

	// Merge into the previous entry when this edit continues it: the
	// previous entry is small and every new range touches text the previous
	// entry produced. This keeps a typing run as one entry.
	if n := len(t.entries); n > 0 {
		last := &t.entries[n-1]
		if last.edit.InsertedLen() < smallInsertLimit && editTouches(edit, last.edit) {
			last.edit = last.edit.Compose(edit)
			last.at = t.clock()
			if last.edit.IsEmpty() {
				t.entries = t.entries[:n-1]
				return
			}
			last.lineEdit = textedit.LineEditFromEdit(last.before, last.edit, after)
			return
		}
	}

	t.entries = append(t.entries, entry{
		before:   prev,
		edit:     edit,
		lineEdit: textedit.LineEditFromEdit(prev, edit, after),
		at:       t.clock(),
	})
}

// editTouches reports whether every replacement of edit touches at least one
// of the ranges prev's replacements occupy after prev has been applied.
func editTouches(edit, prev textedit.StringEdit) bool {
	newRanges := prev.NewRanges()
	for _, r := range edit.Replacements() {
		touched := false
		for _, nr := range newRanges {
			if r.Range.Touches(nr) {
				touched = true
				break
			}
		}
		if !touched {
			return false
		}
	}
	return true
}

// Flush folds the entire history into the base, leaving no recent edits.
func (t *Tracker) Flush() {
	t.base = t.current
	t.entries = nil
}

// setCooldown makes edits bypass history until the deadline.
func (t *Tracker) setCooldown(until time.Time) {
	t.cooldownUntil = until
}

// RecentEdits describes the retained edit window of one document.
type RecentEdits struct {
	// EditCount is the number of retained history entries.
	EditCount int
	// Before is the snapshot preceding the retained window.
	Before *textedit.Snapshot
	// After is the current snapshot.
	After *textedit.Snapshot
	// Composed maps Before to After in one edit.
	Composed textedit.StringEdit
	// LineEdit is Composed at line granularity with common prefix and
	// suffix lines removed.
	LineEdit textedit.LineEdit
}

// RecentEdits trims the history against the budgets and returns the
// surviving window. maxLineReplacements bounds the line-replacement count of
// the composed result; entries that would push past it are folded into the
// base. Trimming happens here, on read, not on every write.
func (t *Tracker) RecentEdits(maxLineReplacements int) RecentEdits {
	t.applyStaleEdits(maxLineReplacements)

	composed := textedit.StringEdit{}
	for _, e := range t.entries {
		composed = composed.Compose(e.edit)
	}
	if !composed.IsEmpty() {
		if _, ok := composed.AffectedRange(); !ok {
			panic(fmt.Sprintf("history: composed edit for %s is non-empty but has no affected range", t.uri))
		}
	}
	return RecentEdits{
		EditCount: len(t.entries),
		Before:    t.base,
		After:     t.current,
		Composed:  composed,
		LineEdit:  textedit.LineEditFromEdit(t.base, composed, t.current),
	}
}

// applyStaleEdits walks the history newest to oldest accumulating a
// composed candidate and freezes at the first entry violating a budget.
// Everything older than the freeze point is folded into the base.
func (t *Tracker) applyStaleEdits(maxLineReplacements int) {
	now := t.clock()
	acc := textedit.StringEdit{}
	freeze := len(t.entries)

	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		if now.Sub(e.at) > maxEntryAge {
			break
		}
		if e.lineEdit.ChangedLines() > maxEntryLineDelta {
			break
		}
		if e.edit.InsertedLen() > maxEntryCharDelta || e.edit.DeletedLen() > maxEntryCharDelta {
			break
		}
		if _, _, ok := textedit.TrySwap(e.edit, acc); !ok && e.lineEdit.ChangedLines() >= 2 {
			// The entry cannot be cleanly reordered against the newer
			// edits. Small single-line entries are still folded in so
			// trivial recent edits are not lost.
			break
		}
		candidate := e.edit.Compose(acc)
		candLines := textedit.LineEditFromEdit(e.before, candidate, t.current)
		if span, ok := candLines.AffectedLineSpan(); ok && span.Len() > maxComposedLineSpan {
			break
		}
		if candLines.Count() > maxLineReplacements {
			break
		}
		acc = candidate
		freeze = i
	}

	if freeze > 0 {
		if freeze < len(t.entries) {
			t.base = t.entries[freeze].before
		} else {
			t.base = t.current
		}
		t.entries = append([]entry(nil), t.entries[freeze:]...)
	}
}
