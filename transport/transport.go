// Package transport provides pluggable byte streams between the core and a
// parse worker process: stdio, TCP, Unix domain sockets (named pipes),
// WebSocket, and an in-memory pair for tests.
package transport

import "io"

// Transport is a bidirectional byte stream carrying framed JSON-RPC
// messages. Each implementation wraps one communication mechanism and
// exposes it as a reader/writer pair.
type Transport interface {
	io.ReadWriteCloser
}
