package transport

import (
	"io"
	"net"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"
)

// ListenWebSocket starts an HTTP server with WebSocket upgrade on addr and
// returns the first WebSocket connection as a transport. Used when the
// worker runs behind a browser-hosted or remote editor surface.
func ListenWebSocket(addr string) (Transport, error) {
	connCh := make(chan *websocket.Conn, 1)

	handler := websocket.Handler(func(ws *websocket.Conn) {
		connCh <- ws
		// Hold the handler open; the transport owns the close.
		select {}
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Handler: handler}
	go func() {
		srv.Serve(ln)
	}()

	ws := <-connCh
	return &wsTransport{conn: ws, srv: srv}, nil
}

// DialWebSocket connects to a worker serving WebSocket at url. The origin is
// required by the handshake but carries no meaning between local processes.
func DialWebSocket(url, origin string) (Transport, error) {
	ws, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return &wsTransport{conn: ws}, nil
}

type wsTransport struct {
	conn *websocket.Conn
	srv  *http.Server

	closeOnce sync.Once
}

func (w *wsTransport) Read(p []byte) (int, error) {
	var msg []byte
	if err := websocket.Message.Receive(w.conn, &msg); err != nil {
		return 0, err
	}
	n := copy(p, msg)
	if n < len(msg) {
		return n, io.ErrShortBuffer
	}
	return n, nil
}

func (w *wsTransport) Write(p []byte) (int, error) {
	if err := websocket.Message.Send(w.conn, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsTransport) Close() error {
	w.closeOnce.Do(func() {
		w.conn.Close()
		if w.srv != nil {
			w.srv.Close()
		}
	})
	return nil
}
