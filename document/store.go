// Package document provides a thread-safe document store and position
// utilities for managed text documents. Documents are tracked via
// didOpen/didChange/didClose notifications plus selection-change events, and
// every change is surfaced as an immutable textedit.StringEdit between two
// snapshots.
package document

import (
	"sync"

	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/textedit"
)

// ChangeFunc is called after a document change has been applied. edit maps
// before to after.
type ChangeFunc func(doc *Document, edit textedit.StringEdit, before, after *textedit.Snapshot)

// SelectionFunc is called when a document's primary selection moves.
type SelectionFunc func(doc *Document, sel protocol.Selection)

// Store is a thread-safe store of open text documents.
type Store struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentURI]*Document

	onOpen      []func(doc *Document)
	onChange    []ChangeFunc
	onClose     []func(uri protocol.DocumentURI)
	onSelection []SelectionFunc
}

// NewStore creates a new empty document store.
func NewStore() *Store {
	return &Store{
		docs: make(map[protocol.DocumentURI]*Document),
	}
}

// OnOpen registers a callback called when a document is opened. Multiple
// callbacks can be registered; they fire in registration order.
func (s *Store) OnOpen(fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpen = append(s.onOpen, fn)
}

// OnChange registers a callback called after each applied change.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// OnClose registers a callback called when a document is closed.
func (s *Store) OnClose(fn func(uri protocol.DocumentURI)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = append(s.onClose, fn)
}

// OnSelection registers a callback called on selection changes.
func (s *Store) OnSelection(fn SelectionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSelection = append(s.onSelection, fn)
}

// Get returns the document for the given URI, or nil if not found.
func (s *Store) Get(uri protocol.DocumentURI) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// URIs returns all open document URIs.
func (s *Store) URIs() []protocol.DocumentURI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]protocol.DocumentURI, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	return uris
}

// Open adds a document to the store from a didOpen notification.
func (s *Store) Open(params *protocol.DidOpenTextDocumentParams) {
	doc := New(params.TextDocument)

	s.mu.Lock()
	s.docs[params.TextDocument.URI] = doc
	callbacks := make([]func(doc *Document), len(s.onOpen))
	copy(callbacks, s.onOpen)
	s.mu.Unlock()

	// Fire outside the lock; callbacks may read back through the store.
	for _, cb := range callbacks {
		cb(doc)
	}
}

// Change applies edits from a didChange notification.
func (s *Store) Change(params *protocol.DidChangeTextDocumentParams) {
	s.mu.RLock()
	doc := s.docs[params.TextDocument.URI]
	callbacks := make([]ChangeFunc, len(s.onChange))
	copy(callbacks, s.onChange)
	s.mu.RUnlock()

	if doc == nil {
		return
	}
	edit, before, after := doc.applyChanges(params.TextDocument.Version, params.ContentChanges)
	for _, cb := range callbacks {
		cb(doc, edit, before, after)
	}
}

// SelectionChanged records a selection change and notifies listeners.
func (s *Store) SelectionChanged(params *protocol.SelectionChangeParams) {
	s.mu.RLock()
	doc := s.docs[params.TextDocument.URI]
	callbacks := make([]SelectionFunc, len(s.onSelection))
	copy(callbacks, s.onSelection)
	s.mu.RUnlock()

	if doc == nil {
		return
	}
	doc.setSelection(params.Selection)
	for _, cb := range callbacks {
		cb(doc, params.Selection)
	}
}

// Close removes a document from the store.
func (s *Store) Close(params *protocol.DidCloseTextDocumentParams) {
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	callbacks := make([]func(uri protocol.DocumentURI), len(s.onClose))
	copy(callbacks, s.onClose)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(params.TextDocument.URI)
	}
}
