package transport

import (
	"net"
	"os"
)

// ListenPipe starts a Unix domain socket listener at path and returns the
// first accepted connection as a transport. The worker side listens; the
// core dials.
func ListenPipe(path string) (Transport, error) {
	os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	return &pipeTransport{conn: conn, path: path}, nil
}

// DialPipe connects to an existing Unix domain socket.
func DialPipe(path string) (Transport, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, err
	}
	return &pipeTransport{conn: conn}, nil
}

type pipeTransport struct {
	conn net.Conn
	path string
}

func (p *pipeTransport) Read(b []byte) (int, error)  { return p.conn.Read(b) }
func (p *pipeTransport) Write(b []byte) (int, error) { return p.conn.Write(b) }
func (p *pipeTransport) Close() error {
	err := p.conn.Close()
	if p.path != "" {
		os.Remove(p.path)
	}
	return err
}
