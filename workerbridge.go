package nextedit

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/nextedit-lsp/nextedit/config"
	"github.com/nextedit-lsp/nextedit/transport"
	"github.com/nextedit-lsp/nextedit/worker"
)

// startParseEngine builds the parse engine the worker settings describe:
// in-process when the worker is disabled, otherwise a remote engine over the
// configured transport. Settings are validated at load time, so an unknown
// transport here is a programming error.
func (e *Engine) startParseEngine(ws config.WorkerSettings) (worker.Engine, error) {
	if !ws.Enabled {
		return worker.NewLocal(e.cache, e.logger), nil
	}

	var (
		t   transport.Transport
		err error
	)
	switch ws.Transport {
	case "stdio":
		t, err = spawnWorker(ws.Command)
	case "pipe":
		t, err = transport.DialPipe(ws.Address)
	case "tcp":
		t, err = transport.DialTCP(ws.Address)
	case "websocket":
		t, err = transport.DialWebSocket(ws.Address, "http://localhost/")
	default:
		panic("unvalidated worker transport: " + ws.Transport)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to parse worker: %w", err)
	}

	e.logger.Info("parse worker connected", "transport", ws.Transport)
	return worker.NewRemote(t), nil
}

// spawnWorker starts the worker binary and speaks the protocol over its
// stdin/stdout.
func spawnWorker(command []string) (transport.Transport, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("stdio worker requires a command")
	}
	cmd := exec.Command(command[0], command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting worker %s: %w", command[0], err)
	}
	return &processTransport{cmd: cmd, in: stdin, out: stdout}, nil
}

// processTransport is the parent side of a spawned worker process.
type processTransport struct {
	cmd *exec.Cmd
	in  io.WriteCloser
	out io.ReadCloser
}

func (p *processTransport) Read(b []byte) (int, error)  { return p.out.Read(b) }
func (p *processTransport) Write(b []byte) (int, error) { return p.in.Write(b) }

// Close closes the worker's stdin and reaps the process. Workers exit on the
// shutdown notification, so Wait normally returns promptly.
func (p *processTransport) Close() error {
	p.in.Close()
	p.out.Close()
	return p.cmd.Wait()
}
