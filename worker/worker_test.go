package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nextedit-lsp/nextedit/transport"
	"github.com/nextedit-lsp/nextedit/treesitter"
)

const workerSource = `package calc

func Add(a, b int) int {
	return a + b
}
`

// startWorker runs a server over an in-memory pipe and returns the client
// side plus the server's exit channel.
func startWorker(t *testing.T) (*Remote, chan error) {
	t.Helper()
	clientT, serverT := transport.MemoryPipe()
	cache := treesitter.NewCache(treesitter.DefaultRegistry())

	done := make(chan error, 1)
	go func() {
		done <- Serve(context.Background(), serverT, cache)
	}()

	remote := NewRemote(clientT)
	t.Cleanup(func() {
		remote.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("worker did not stop after Close")
		}
		cache.Close()
	})
	return remote, done
}

func TestParseRoundTrip(t *testing.T) {
	remote, _ := startWorker(t)

	res, err := remote.Parse(context.Background(), ParseParams{LanguageID: "go", Source: workerSource})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !res.Supported {
		t.Fatal("Supported = false, want true")
	}
	if res.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", res.ErrorCount)
	}
	if res.RootStart != 0 || res.RootEnd != len(workerSource) {
		t.Errorf("root span = [%d,%d), want [0,%d)", res.RootStart, res.RootEnd, len(workerSource))
	}
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	remote, _ := startWorker(t)

	res, err := remote.Parse(context.Background(), ParseParams{LanguageID: "go", Source: "func {{{"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.ErrorCount == 0 {
		t.Error("ErrorCount = 0 for broken source, want > 0")
	}
}

func TestParseUnsupportedLanguage(t *testing.T) {
	remote, _ := startWorker(t)

	res, err := remote.Parse(context.Background(), ParseParams{LanguageID: "cobol", Source: "x"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Supported {
		t.Error("Supported = true for unregistered language, want false")
	}
}

func TestCapturesRoundTrip(t *testing.T) {
	remote, _ := startWorker(t)

	res, err := remote.Captures(context.Background(), CapturesParams{
		LanguageID: "go",
		Source:     workerSource,
		Query:      `(function_declaration name: (identifier) @name)`,
	})
	if err != nil {
		t.Fatalf("Captures: %v", err)
	}
	if !res.Supported {
		t.Fatal("Supported = false, want true")
	}
	if len(res.Captures) != 1 {
		t.Fatalf("len(Captures) = %d, want 1", len(res.Captures))
	}
	c := res.Captures[0]
	if c.Name != "name" || c.Text != "Add" {
		t.Errorf("capture = %q/%q, want name/Add", c.Name, c.Text)
	}
}

func TestCapturesInvalidQueryFails(t *testing.T) {
	remote, _ := startWorker(t)

	_, err := remote.Captures(context.Background(), CapturesParams{
		LanguageID: "go",
		Source:     workerSource,
		Query:      "(((",
	})
	if err == nil {
		t.Fatal("expected error for malformed query")
	}
}

func TestStructureFromGrammar(t *testing.T) {
	remote, _ := startWorker(t)

	res, err := remote.Structure(context.Background(), StructureParams{
		LanguageID: "go",
		Source:     workerSource,
		Query:      `(function_declaration) @decl`,
	})
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if !res.Supported {
		t.Fatal("Supported = false, want true")
	}
	if len(res.Roots) != 1 {
		t.Fatalf("len(Roots) = %d, want 1", len(res.Roots))
	}
	got := res.Roots[0]
	if got.Kind != "function_declaration" {
		t.Errorf("Kind = %s, want function_declaration", got.Kind)
	}
	if got.Start != strings.Index(workerSource, "func") {
		t.Errorf("Start = %d, want start of func", got.Start)
	}
	if got.End != len(workerSource) {
		t.Errorf("End = %d, want %d (extended past newline)", got.End, len(workerSource))
	}
}

func TestStructureIndentFallback(t *testing.T) {
	remote, _ := startWorker(t)

	res, err := remote.Structure(context.Background(), StructureParams{
		LanguageID: "text",
		Source:     "top:\n    child\n",
	})
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if res.Supported {
		t.Error("Supported = true for indentation fallback, want false")
	}
	if len(res.Roots) != 1 || len(res.Roots[0].Children) != 1 {
		t.Fatalf("Roots = %v, want one root with one child", res.Roots)
	}
	if res.Roots[0].Kind != "block" {
		t.Errorf("Kind = %s, want block", res.Roots[0].Kind)
	}
}

func TestBlockNamesRoundTrip(t *testing.T) {
	remote, _ := startWorker(t)

	res, err := remote.BlockNames(context.Background(), BlockNamesParams{
		LanguageID: "go",
		Source:     workerSource,
		Query:      `(function_declaration name: (identifier) @name) @definition`,
	})
	if err != nil {
		t.Fatalf("BlockNames: %v", err)
	}
	if !res.Supported {
		t.Fatal("Supported = false, want true")
	}
	if len(res.Names) != 1 || res.Names[0].Name != "Add" {
		t.Fatalf("Names = %v, want [Add]", res.Names)
	}
}

func TestUnknownMethodRejected(t *testing.T) {
	remote, _ := startWorker(t)

	err := remote.call(context.Background(), "worker/bogus", nil, nil)
	if err == nil {
		t.Fatal("expected method-not-found error")
	}
}

func TestCloseStopsServerCleanly(t *testing.T) {
	clientT, serverT := transport.MemoryPipe()
	cache := treesitter.NewCache(treesitter.DefaultRegistry())
	defer cache.Close()

	done := make(chan error, 1)
	go func() {
		done <- Serve(context.Background(), serverT, cache)
	}()

	remote := NewRemote(clientT)
	remote.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestLocalAndRemoteAgree(t *testing.T) {
	remote, _ := startWorker(t)

	cache := treesitter.NewCache(treesitter.DefaultRegistry())
	defer cache.Close()
	local := NewLocal(cache, nil)
	defer local.Close()

	p := CapturesParams{
		LanguageID: "go",
		Source:     workerSource,
		Query:      `(function_declaration) @decl`,
	}
	lres, err := local.Captures(context.Background(), p)
	if err != nil {
		t.Fatalf("local Captures: %v", err)
	}
	rres, err := remote.Captures(context.Background(), p)
	if err != nil {
		t.Fatalf("remote Captures: %v", err)
	}
	if len(lres.Captures) != len(rres.Captures) {
		t.Fatalf("capture counts differ: local %d, remote %d", len(lres.Captures), len(rres.Captures))
	}
	for i := range lres.Captures {
		if lres.Captures[i] != rres.Captures[i] {
			t.Errorf("capture %d differs: %+v vs %+v", i, lres.Captures[i], rres.Captures[i])
		}
	}
}
