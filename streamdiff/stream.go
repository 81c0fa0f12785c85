package streamdiff

import (
	"context"

	"github.com/nextedit-lsp/nextedit/textedit"
)

// Stream runs a Differ over a channel of modified lines and delivers
// replacements on the returned channel as they become decidable. The output
// channel is closed once the input closes and the tail has been emitted, or
// when ctx is cancelled.
func Stream(ctx context.Context, original []string, cursorLine int, opts Options, lines <-chan string) <-chan textedit.LineReplacement {
	out := make(chan textedit.LineReplacement)
	go func() {
		defer close(out)
		d := New(original, cursorLine, opts)
		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-lines:
				if !ok {
					for _, rep := range d.Finish() {
						select {
						case out <- rep:
						case <-ctx.Done():
						}
					}
					return
				}
				for _, rep := range d.Push(line) {
					select {
					case out <- rep:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out
}
