package nextedit

import (
	"log/slog"
	"time"

	"github.com/nextedit-lsp/nextedit/config"
	"github.com/nextedit-lsp/nextedit/history"
	"github.com/nextedit-lsp/nextedit/treesitter"
	"github.com/nextedit-lsp/nextedit/worker"
)

type engineOptions struct {
	logger     *slog.Logger
	clock      func() time.Time
	registry   *treesitter.Registry
	parse      worker.Engine
	branch     history.BranchSignal
	settings   *config.Settings
	configPath string
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithLogger sets the engine logger. Without it the engine builds a text
// handler on stderr at the configured log level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) { o.logger = logger }
}

// WithClock injects the time source used by the history layer. Tests pass a
// manual clock.
func WithClock(clock func() time.Time) Option {
	return func(o *engineOptions) { o.clock = clock }
}

// WithRegistry replaces the built-in grammar registry.
func WithRegistry(r *treesitter.Registry) Option {
	return func(o *engineOptions) { o.registry = r }
}

// WithParseEngine injects a parse engine, overriding the worker settings.
// The engine does not close an injected parse engine.
func WithParseEngine(e worker.Engine) Option {
	return func(o *engineOptions) { o.parse = e }
}

// WithBranchSignal subscribes the history layer to branch-change events so
// checkout churn is not reported as user edits.
func WithBranchSignal(sig history.BranchSignal) Option {
	return func(o *engineOptions) { o.branch = sig }
}

// WithSettings uses the given settings instead of loading a file.
func WithSettings(s *config.Settings) Option {
	return func(o *engineOptions) { o.settings = s }
}

// WithConfigFile loads settings from a TOML file and hot-reloads it on
// change. A missing file means defaults.
func WithConfigFile(path string) Option {
	return func(o *engineOptions) { o.configPath = path }
}
