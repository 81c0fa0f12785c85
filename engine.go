package nextedit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/nextedit-lsp/nextedit/config"
	"github.com/nextedit-lsp/nextedit/document"
	"github.com/nextedit-lsp/nextedit/history"
	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/streamdiff"
	"github.com/nextedit-lsp/nextedit/textedit"
	"github.com/nextedit-lsp/nextedit/treesitter"
	"github.com/nextedit-lsp/nextedit/worker"
)

// Engine is the facade over the whole pipeline: the document store feeds the
// history provider, the parse engine serves structural queries over the
// shared cache, and the stream differ converges rewrites. One Engine serves
// one editor session.
type Engine struct {
	logger   *slog.Logger
	level    *slog.LevelVar
	settings *config.Store[config.Settings]
	watcher  *config.Watcher

	docs     *document.Store
	history  *history.Provider
	registry *treesitter.Registry
	cache    *treesitter.Cache
	analyzer *treesitter.Analyzer

	parse     worker.Engine
	ownsParse bool

	closeOnce sync.Once
}

// New builds an engine. Without options it runs fully in-process with the
// built-in grammars and default settings.
func New(opts ...Option) (*Engine, error) {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}

	settings := o.settings
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if o.configPath != "" {
		loaded, err := config.LoadTOML(o.configPath, settings)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		settings = loaded
	}

	e := &Engine{
		level:    new(slog.LevelVar),
		settings: config.NewStore(settings),
	}
	e.level.Set(settings.SlogLevel())

	e.logger = o.logger
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: e.level}))
	}

	e.registry = o.registry
	if e.registry == nil {
		e.registry = treesitter.DefaultRegistry()
	}
	e.cache = treesitter.NewCache(e.registry, treesitter.WithCacheLogger(e.logger))
	e.analyzer = treesitter.NewAnalyzer(e.cache, treesitter.NewQueries(), e.logger)

	e.docs = document.NewStore()
	provOpts := []history.ProviderOption{history.WithLogger(e.logger)}
	if o.clock != nil {
		provOpts = append(provOpts, history.WithClock(o.clock))
	}
	if o.branch != nil {
		provOpts = append(provOpts, history.WithBranchSignal(o.branch))
	}
	e.history = history.NewProvider(e.docs, provOpts...)

	if o.parse != nil {
		e.parse = o.parse
	} else {
		parse, err := e.startParseEngine(settings.Worker)
		if err != nil {
			e.history.Close()
			e.cache.Close()
			return nil, err
		}
		e.parse = parse
		e.ownsParse = true
	}

	if o.configPath != "" {
		if err := e.watchConfig(o.configPath, settings); err != nil {
			e.logger.Warn("config watch unavailable", "path", o.configPath, "error", err)
		}
	}

	return e, nil
}

// watchConfig hot-reloads the settings file; a changed log level takes
// effect immediately through the shared level var.
func (e *Engine) watchConfig(path string, defaults *config.Settings) error {
	e.settings.OnChange(func(_, next *config.Settings) {
		e.level.Set(next.SlogLevel())
	})
	r := config.NewReloader(e.settings, path, defaults, e.logger)
	w, err := r.Watch(config.WithWatcherLogger(e.logger))
	if err != nil {
		return err
	}
	e.watcher = w
	return nil
}

// Documents returns the document store; feed editor open/change/selection/
// close events into it.
func (e *Engine) Documents() *document.Store { return e.docs }

// History returns the edit-history provider.
func (e *Engine) History() *history.Provider { return e.history }

// Analyzer returns the query-derived accessors over cached parses.
func (e *Engine) Analyzer() *treesitter.Analyzer { return e.analyzer }

// Cache returns the shared parse cache.
func (e *Engine) Cache() *treesitter.Cache { return e.cache }

// Parse returns the parse engine, in-process or remote per configuration.
func (e *Engine) Parse() worker.Engine { return e.parse }

// Settings returns the current configuration value.
func (e *Engine) Settings() *config.Settings { return e.settings.Get() }

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// RecentEdits returns the budget-trimmed recent edits for a document.
func (e *Engine) RecentEdits(uri protocol.DocumentURI) history.RecentEdits {
	return e.history.GetRecentEdits(uri)
}

// HistoryContext returns cross-document edit context for a target document,
// oldest first, target last.
func (e *Engine) HistoryContext(uri protocol.DocumentURI) []history.DocumentHistory {
	return e.history.GetHistoryContext(uri)
}

// StreamDiff starts a push-style convergence run against the original lines.
func (e *Engine) StreamDiff(original []string, cursorLine int, opts streamdiff.Options) *streamdiff.Differ {
	return streamdiff.New(original, cursorLine, opts)
}

// StreamLines runs convergence over a channel of generated lines.
func (e *Engine) StreamLines(ctx context.Context, original []string, cursorLine int, opts streamdiff.Options, lines <-chan string) <-chan textedit.LineReplacement {
	return streamdiff.Stream(ctx, original, cursorLine, opts, lines)
}

// LanguageForPath maps a file path to a language ID via the configured
// matchers, or "" when none applies.
func (e *Engine) LanguageForPath(path string) string {
	return e.settings.Get().LanguageFor(path)
}

// ParseDocument parses the current snapshot of an open document through the
// parse engine. An unopened document yields a zero result.
func (e *Engine) ParseDocument(ctx context.Context, uri protocol.DocumentURI) (worker.ParseResult, error) {
	doc := e.docs.Get(uri)
	if doc == nil {
		return worker.ParseResult{}, nil
	}
	return e.parse.Parse(ctx, worker.ParseParams{
		LanguageID: doc.LanguageID(),
		Source:     doc.Text(),
	})
}

// Close tears the engine down: config watcher, history subscriptions, the
// parse engine when the engine started it, and the parse cache. Safe to call
// more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		if e.watcher != nil {
			e.watcher.Close()
		}
		e.history.Close()
		if e.ownsParse {
			if err := e.parse.Close(); err != nil {
				e.logger.Warn("closing parse engine", "error", err)
			}
		}
		e.cache.Close()
	})
}
