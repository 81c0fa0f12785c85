package config

import (
	"log/slog"
)

// Reloader keeps a Store in sync with a TOML file: Reload re-reads and swaps,
// Watch wires Reload to file changes.
type Reloader[T any] struct {
	store    *Store[T]
	path     string
	defaults *T
	logger   *slog.Logger
}

// NewReloader creates a reloader for the given store and file.
func NewReloader[T any](store *Store[T], path string, defaults *T, logger *slog.Logger) *Reloader[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader[T]{store: store, path: path, defaults: defaults, logger: logger}
}

// Reload re-reads the file and swaps the result into the store. A load or
// validation failure leaves the current value in place.
func (r *Reloader[T]) Reload() error {
	cfg, err := LoadTOML[T](r.path, r.defaults)
	if err != nil {
		return err
	}
	r.store.Swap(cfg)
	return nil
}

// Watch starts a file watcher that reloads on change. Reload failures are
// logged and the previous config stays active.
func (r *Reloader[T]) Watch(opts ...WatcherOption) (*Watcher, error) {
	return NewWatcher(r.path, func() {
		if err := r.Reload(); err != nil {
			r.logger.Warn("config reload failed", "path", r.path, "error", err)
		}
	}, opts...)
}
