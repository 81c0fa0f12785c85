package worker

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nextedit-lsp/nextedit/jsonrpc"
	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/transport"
)

// Remote is the client side of an out-of-process engine: every call is a
// JSON-RPC request over the transport.
type Remote struct {
	conn      *jsonrpc.Conn
	transport transport.Transport
	closeOnce sync.Once
	runErr    chan error
}

// NewRemote wraps a connected transport as an Engine. The read loop starts
// immediately; Close shuts the worker down and tears the transport down.
func NewRemote(t transport.Transport) *Remote {
	codec := jsonrpc.NewCodec(t, t)
	conn := jsonrpc.NewConn(codec, rejectRequests, nil)
	r := &Remote{
		conn:      conn,
		transport: t,
		runErr:    make(chan error, 1),
	}
	go func() {
		r.runErr <- conn.Run(context.Background())
	}()
	return r
}

// rejectRequests handles server-to-client traffic; the worker protocol has
// none, so any request is a protocol violation.
func rejectRequests(ctx context.Context, method string, params jsonrpc.RawMessage) (interface{}, error) {
	return nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: "unexpected request from worker: " + method}
}

func (r *Remote) call(ctx context.Context, method string, params, out interface{}) error {
	resp, err := r.conn.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}

// Parse implements Engine.
func (r *Remote) Parse(ctx context.Context, p ParseParams) (ParseResult, error) {
	var res ParseResult
	err := r.call(ctx, protocol.MethodWorkerParse, p, &res)
	return res, err
}

// Captures implements Engine.
func (r *Remote) Captures(ctx context.Context, p CapturesParams) (CapturesResult, error) {
	var res CapturesResult
	err := r.call(ctx, protocol.MethodWorkerCaptures, p, &res)
	return res, err
}

// Structure implements Engine.
func (r *Remote) Structure(ctx context.Context, p StructureParams) (StructureResult, error) {
	var res StructureResult
	err := r.call(ctx, protocol.MethodWorkerStructure, p, &res)
	return res, err
}

// BlockNames implements Engine.
func (r *Remote) BlockNames(ctx context.Context, p BlockNamesParams) (BlockNamesResult, error) {
	var res BlockNamesResult
	err := r.call(ctx, protocol.MethodWorkerBlockNames, p, &res)
	return res, err
}

// Close asks the worker to shut down, then closes the connection and
// transport. Safe to call more than once.
func (r *Remote) Close() error {
	r.closeOnce.Do(func() {
		r.conn.Notify(context.Background(), protocol.MethodWorkerShutdown, nil)
		r.conn.Close()
		r.transport.Close()
	})
	return nil
}
