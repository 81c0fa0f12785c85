package document

import (
	"sync"

	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/textedit"
)

// Document represents a single managed text document. Its content is an
// immutable snapshot, replaced wholesale on every change; readers holding a
// snapshot are never affected by later edits.
type Document struct {
	mu         sync.RWMutex
	uri        protocol.DocumentURI
	languageID string
	version    int32
	snap       *textedit.Snapshot

	selection    protocol.Selection
	hasSelection bool
}

// New creates a new Document from a TextDocumentItem.
func New(item protocol.TextDocumentItem) *Document {
	return &Document{
		uri:        item.URI,
		languageID: item.LanguageID,
		version:    item.Version,
		snap:       textedit.NewSnapshot(item.Text),
	}
}

// URI returns the document's URI.
func (d *Document) URI() protocol.DocumentURI {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.uri
}

// LanguageID returns the language identifier (e.g., "go", "python").
func (d *Document) LanguageID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.languageID
}

// Version returns the document's current version number.
func (d *Document) Version() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Snapshot returns the current immutable content snapshot.
func (d *Document) Snapshot() *textedit.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// Text returns the full text content of the document.
func (d *Document) Text() string {
	return d.Snapshot().Text()
}

// Selection returns the last reported selection and whether one has been
// reported at all. Documents that never report a selection are treated as
// programmatic/background documents by the history layer.
func (d *Document) Selection() (protocol.Selection, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selection, d.hasSelection
}

// OffsetAt converts a protocol position to a byte offset in the document.
func (d *Document) OffsetAt(pos protocol.Position) int {
	return OffsetAt(d.Snapshot(), pos)
}

// PositionAt converts a byte offset to a protocol position.
func (d *Document) PositionAt(offset int) protocol.Position {
	return PositionAt(d.Snapshot(), offset)
}

// applyChanges converts the content changes to a single edit against the
// current snapshot, applies it, and bumps the version. It returns the edit
// and the snapshots on either side of it.
func (d *Document) applyChanges(version int32, changes []protocol.TextDocumentContentChangeEvent) (edit textedit.StringEdit, before, after *textedit.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	before = d.snap
	edit = ChangesToEdit(before, changes)
	after = before.Apply(edit)
	d.snap = after
	d.version = version
	return edit, before, after
}

func (d *Document) setSelection(sel protocol.Selection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection = sel
	d.hasSelection = true
}
