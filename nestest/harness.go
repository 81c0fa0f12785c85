package nestest

import (
	"context"
	"testing"
	"time"

	"github.com/nextedit-lsp/nextedit/transport"
	"github.com/nextedit-lsp/nextedit/treesitter"
	"github.com/nextedit-lsp/nextedit/worker"
)

// StartWorker runs a parse worker over an in-memory pipe and returns the
// client side. The worker uses the built-in grammar registry and is stopped
// when the test completes.
func StartWorker(t testing.TB) *worker.Remote {
	t.Helper()
	clientT, serverT := transport.MemoryPipe()
	cache := treesitter.NewCache(treesitter.DefaultRegistry())

	done := make(chan error, 1)
	go func() {
		done <- worker.Serve(context.Background(), serverT, cache)
	}()

	remote := worker.NewRemote(clientT)
	t.Cleanup(func() {
		remote.Close()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("worker exited with error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("worker did not stop")
		}
		cache.Close()
	})
	return remote
}
