package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nextedit-lsp/nextedit/structure"
	"github.com/nextedit-lsp/nextedit/treesitter"
)

const errorCountQuery = `(ERROR) @error`

// Local serves the Engine interface directly from a parse cache, with no
// process boundary. The cache is owned by the caller and survives Close.
type Local struct {
	cache   *treesitter.Cache
	queries *treesitter.Queries
	logger  *slog.Logger
}

// NewLocal creates an in-process engine over the given cache.
func NewLocal(cache *treesitter.Cache, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{
		cache:   cache,
		queries: treesitter.NewQueries(),
		logger:  logger,
	}
}

// Parse parses the source and reports the root span and syntax error count.
func (l *Local) Parse(ctx context.Context, p ParseParams) (ParseResult, error) {
	ref, err := l.cache.Parse(ctx, p.LanguageID, p.Source)
	if err != nil {
		return ParseResult{}, err
	}
	if ref == nil {
		return ParseResult{}, nil
	}
	defer ref.Dispose()

	root := ref.Tree().RootNode()
	res := ParseResult{
		Supported: true,
		RootStart: int(root.StartByte()),
		RootEnd:   int(root.EndByte()),
	}

	lang, err := l.cache.Registry().Language(p.LanguageID)
	if err != nil || lang == nil {
		return res, nil
	}
	errs, err := l.queries.Captures(lang, errorCountQuery, ref.Tree(), p.Source)
	if err != nil {
		l.logger.Warn("error count query failed", "language", p.LanguageID, "error", err)
		return res, nil
	}
	res.ErrorCount = len(errs)
	return res, nil
}

// Captures runs a query and returns its flat captures. An invalid query is a
// caller error and surfaces as one.
func (l *Local) Captures(ctx context.Context, p CapturesParams) (CapturesResult, error) {
	captures, supported, err := l.captures(ctx, p.LanguageID, p.Source, p.Query)
	if err != nil {
		return CapturesResult{}, err
	}
	return CapturesResult{Supported: supported, Captures: captures}, nil
}

// Structure derives the structural overlay. Languages without a grammar fall
// back to indentation nesting, reported with Supported false.
func (l *Local) Structure(ctx context.Context, p StructureParams) (StructureResult, error) {
	if !l.cache.Registry().Supports(p.LanguageID) {
		roots := structure.FromIndentation(p.Source)
		return StructureResult{Roots: toStructureNodes(roots)}, nil
	}
	captures, _, err := l.captures(ctx, p.LanguageID, p.Source, p.Query)
	if err != nil {
		return StructureResult{}, err
	}
	wrappers := make(map[string]bool, len(p.WrapperKinds))
	for _, k := range p.WrapperKinds {
		wrappers[k] = true
	}
	roots := structure.Overlay(p.Source, captures, wrappers)
	return StructureResult{Supported: true, Roots: toStructureNodes(roots)}, nil
}

// BlockNames derives the block-name tree from a definition query.
func (l *Local) BlockNames(ctx context.Context, p BlockNamesParams) (BlockNamesResult, error) {
	captures, supported, err := l.captures(ctx, p.LanguageID, p.Source, p.Query)
	if err != nil {
		return BlockNamesResult{}, err
	}
	if !supported {
		return BlockNamesResult{}, nil
	}
	defName := p.DefinitionCapture
	if defName == "" {
		defName = "definition"
	}
	groups := structure.GroupMatches(captures, func(c treesitter.Capture) bool {
		return c.Name == defName
	})
	names := structure.BlockNameTree(groups)
	return BlockNamesResult{Supported: true, Names: toBlockNameNodes(names)}, nil
}

// Close releases the compiled queries. The cache belongs to the caller and
// stays open.
func (l *Local) Close() error {
	l.queries.Close()
	return nil
}

func (l *Local) captures(ctx context.Context, languageID, source, query string) ([]treesitter.Capture, bool, error) {
	ref, err := l.cache.Parse(ctx, languageID, source)
	if err != nil {
		return nil, false, err
	}
	if ref == nil {
		return nil, false, nil
	}
	defer ref.Dispose()

	lang, err := l.cache.Registry().Language(languageID)
	if err != nil {
		return nil, false, fmt.Errorf("loading grammar for %s: %w", languageID, err)
	}
	if lang == nil {
		return nil, false, nil
	}
	captures, err := l.queries.Captures(lang, query, ref.Tree(), source)
	if err != nil {
		return nil, true, fmt.Errorf("running query: %w", err)
	}
	return captures, true, nil
}
