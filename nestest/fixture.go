// Package nestest provides testing utilities for nextedit embeddings:
// document event builders, a manual clock, a fake branch signal, an
// in-memory worker harness, and assertion helpers.
package nestest

import (
	"fmt"
	"strings"

	"github.com/nextedit-lsp/nextedit/protocol"
)

// FileURI creates a file:// URI from a path.
func FileURI(path string) protocol.DocumentURI {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return protocol.DocumentURI(fmt.Sprintf("file://%s", path))
}

// Pos creates a protocol.Position from line and character (0-indexed).
func Pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

// Rng creates a protocol.Range from start and end positions.
func Rng(startLine, startChar, endLine, endChar uint32) protocol.Range {
	return protocol.Range{
		Start: Pos(startLine, startChar),
		End:   Pos(endLine, endChar),
	}
}

// Caret creates an empty selection at a position.
func Caret(line, char uint32) protocol.Selection {
	p := Pos(line, char)
	return protocol.Selection{Anchor: p, Active: p}
}

// OpenParams builds a didOpen for a document at version 1.
func OpenParams(uri protocol.DocumentURI, languageID, text string) *protocol.DidOpenTextDocumentParams {
	return &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	}
}

// ChangeParams builds an incremental didChange replacing rng with text.
func ChangeParams(uri protocol.DocumentURI, version int32, rng protocol.Range, text string) *protocol.DidChangeTextDocumentParams {
	return &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Range: &rng, Text: text},
		},
	}
}

// InsertParams builds an incremental didChange inserting text at a position.
func InsertParams(uri protocol.DocumentURI, version int32, line, char uint32, text string) *protocol.DidChangeTextDocumentParams {
	return ChangeParams(uri, version, Rng(line, char, line, char), text)
}

// SelectionParams builds a selectionChange with a caret at a position.
func SelectionParams(uri protocol.DocumentURI, line, char uint32) *protocol.SelectionChangeParams {
	return &protocol.SelectionChangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Selection:    Caret(line, char),
	}
}

// CloseParams builds a didClose.
func CloseParams(uri protocol.DocumentURI) *protocol.DidCloseTextDocumentParams {
	return &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}
}
