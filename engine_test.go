package nextedit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nextedit-lsp/nextedit/nestest"
	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/streamdiff"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func openDoc(e *Engine, uri protocol.DocumentURI, languageID, text string) {
	e.Documents().Open(&protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	})
}

func insertAt(e *Engine, uri protocol.DocumentURI, version int32, line, char uint32, text string) {
	pos := protocol.Position{Line: line, Character: char}
	e.Documents().Change(&protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Range: &protocol.Range{Start: pos, End: pos}, Text: text},
		},
	})
}

func selectAt(e *Engine, uri protocol.DocumentURI, line, char uint32) {
	pos := protocol.Position{Line: line, Character: char}
	e.Documents().SelectionChanged(&protocol.SelectionChangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Selection:    protocol.Selection{Anchor: pos, Active: pos},
	})
}

func TestEngineRecentEditsFlow(t *testing.T) {
	e := newTestEngine(t)
	uri := protocol.DocumentURI("file:///tmp/a.txt")

	openDoc(e, uri, "text", "hello\n")
	insertAt(e, uri, 2, 0, 5, "!")

	re := e.RecentEdits(uri)
	if re.EditCount != 1 {
		t.Fatalf("EditCount = %d, want 1", re.EditCount)
	}
	if got := re.After.Text(); got != "hello!\n" {
		t.Errorf("After = %q, want %q", got, "hello!\n")
	}
}

func TestEngineHistoryContext(t *testing.T) {
	e := newTestEngine(t)
	uri := protocol.DocumentURI("file:///tmp/b.txt")

	openDoc(e, uri, "text", "one\ntwo\n")
	selectAt(e, uri, 0, 0)
	insertAt(e, uri, 2, 1, 3, "!")

	ctx := e.HistoryContext(uri)
	if len(ctx) != 1 || ctx[0].URI != uri {
		t.Fatalf("HistoryContext = %v, want the target document", ctx)
	}
}

func TestEngineParseDocument(t *testing.T) {
	e := newTestEngine(t)
	uri := protocol.DocumentURI("file:///tmp/m.go")

	openDoc(e, uri, "go", "package m\n\nfunc F() {}\n")
	res, err := e.ParseDocument(context.Background(), uri)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if !res.Supported || res.ErrorCount != 0 {
		t.Errorf("result = %+v, want supported with no errors", res)
	}

	res, err = e.ParseDocument(context.Background(), "file:///tmp/unknown.go")
	if err != nil {
		t.Fatalf("ParseDocument unknown: %v", err)
	}
	if res.Supported {
		t.Error("Supported = true for unopened document, want false")
	}
}

func TestEngineLanguageForPath(t *testing.T) {
	e := newTestEngine(t)
	if got := e.LanguageForPath("/src/tool.py"); got != "python" {
		t.Errorf("LanguageForPath = %q, want python", got)
	}
	if got := e.LanguageForPath("/src/readme.txt"); got != "" {
		t.Errorf("LanguageForPath = %q, want empty", got)
	}
}

func TestEngineConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nextedit.toml")
	if err := os.WriteFile(path, []byte(`log_level = "debug"`), 0o644); err != nil {
		t.Fatal(err)
	}

	e := newTestEngine(t, WithConfigFile(path))
	if got := e.Settings().LogLevel; got != "debug" {
		t.Errorf("LogLevel = %q, want debug", got)
	}
}

func TestEngineStreamDiffPassthrough(t *testing.T) {
	e := newTestEngine(t)

	d := e.StreamDiff([]string{"a", "b"}, 0, streamdiff.DefaultOptions())
	if reps := d.Push("a"); len(reps) != 0 {
		t.Errorf("Push(a) = %v, want none", reps)
	}
	if reps := d.Push("b"); len(reps) != 0 {
		t.Errorf("Push(b) = %v, want none", reps)
	}
	if reps := d.Finish(); len(reps) != 0 {
		t.Errorf("Finish = %v, want none", reps)
	}
}

func TestEngineWithRemoteParseEngine(t *testing.T) {
	remote := nestest.StartWorker(t)
	e := newTestEngine(t, WithParseEngine(remote))

	uri := protocol.DocumentURI("file:///tmp/r.go")
	openDoc(e, uri, "go", "package r\n")

	res, err := e.ParseDocument(context.Background(), uri)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if !res.Supported {
		t.Error("Supported = false over remote engine, want true")
	}
}

func TestEngineCloseIdempotent(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Close()
	e.Close()
}
