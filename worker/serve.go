package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/nextedit-lsp/nextedit/jsonrpc"
	"github.com/nextedit-lsp/nextedit/middleware"
	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/transport"
	"github.com/nextedit-lsp/nextedit/treesitter"
)

type serveConfig struct {
	logger  *slog.Logger
	metrics *middleware.Metrics
	extra   []middleware.Middleware
}

// ServeOption configures the worker server.
type ServeOption func(*serveConfig)

// WithServeLogger sets the logger for the dispatch middleware.
func WithServeLogger(logger *slog.Logger) ServeOption {
	return func(c *serveConfig) { c.logger = logger }
}

// WithTelemetry collects per-method request counts and latencies.
func WithTelemetry(metrics *middleware.Metrics) ServeOption {
	return func(c *serveConfig) { c.metrics = metrics }
}

// WithServeMiddleware appends middleware inside the built-in chain.
func WithServeMiddleware(mws ...middleware.Middleware) ServeOption {
	return func(c *serveConfig) { c.extra = append(c.extra, mws...) }
}

// Serve runs the worker side of the protocol over the transport until the
// context is cancelled, the client sends a shutdown notification, or the
// connection drops. A clean peer disconnect returns nil.
func Serve(ctx context.Context, t transport.Transport, cache *treesitter.Cache, opts ...ServeOption) error {
	cfg := serveConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	engine := NewLocal(cache, cfg.logger)
	defer engine.Close()

	mws := []middleware.Middleware{
		middleware.Tracing(),
		middleware.Recovery(cfg.logger),
		middleware.Logging(cfg.logger),
	}
	if cfg.metrics != nil {
		mws = append(mws, middleware.Telemetry(cfg.metrics))
	}
	mws = append(mws, cfg.extra...)
	handler := middleware.Chain(mws...)(dispatch(engine))

	var conn *jsonrpc.Conn
	notif := func(ctx context.Context, method string, params jsonrpc.RawMessage) {
		if method == protocol.MethodWorkerShutdown {
			conn.Close()
		}
	}
	conn = jsonrpc.NewConn(jsonrpc.NewCodec(t, t), jsonrpc.Handler(handler), notif)

	err := conn.Run(ctx)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// dispatch routes worker methods to the engine.
func dispatch(engine Engine) middleware.Handler {
	return func(ctx context.Context, method string, params jsonrpc.RawMessage) (interface{}, error) {
		switch method {
		case protocol.MethodWorkerParse:
			var p ParseParams
			if err := unmarshalParams(params, &p); err != nil {
				return nil, err
			}
			return engine.Parse(ctx, p)
		case protocol.MethodWorkerCaptures:
			var p CapturesParams
			if err := unmarshalParams(params, &p); err != nil {
				return nil, err
			}
			return engine.Captures(ctx, p)
		case protocol.MethodWorkerStructure:
			var p StructureParams
			if err := unmarshalParams(params, &p); err != nil {
				return nil, err
			}
			return engine.Structure(ctx, p)
		case protocol.MethodWorkerBlockNames:
			var p BlockNamesParams
			if err := unmarshalParams(params, &p); err != nil {
				return nil, err
			}
			return engine.BlockNames(ctx, p)
		default:
			return nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: "unknown method: " + method}
		}
	}
}

func unmarshalParams(params jsonrpc.RawMessage, v interface{}) error {
	if err := json.Unmarshal(params, v); err != nil {
		return &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
