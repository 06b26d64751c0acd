// Package nettransport implements capability.Transport over a
// multi-client KISS-over-TCP listener, the network counterpart to
// internal/serialtransport's single-peer serial link: one accept loop,
// one per-client read goroutine feeding a per-client inbound buffer,
// client ID keyed by the connection's remote address, matching
// capability.Transport's "clients() → [ids]" multi-client contract.
package nettransport

import (
	"net"
	"sync"
	"time"
)

// TCPTransport is a capability.Transport that accepts any number of KISS
// client connections on one TCP listener. Each accepted connection is one
// client, identified by its RemoteAddr string.
type TCPTransport struct {
	addr string

	mu       sync.Mutex
	listener net.Listener
	clients  map[string]*client
	enabled  bool
	dataCond chan struct{}
}

type client struct {
	conn  net.Conn
	inbox []byte
}

// New constructs a TCPTransport that will listen on addr (e.g.
// "0.0.0.0:8001") once Start is called.
func New(addr string) *TCPTransport {
	return &TCPTransport{addr: addr, enabled: true, clients: make(map[string]*client), dataCond: make(chan struct{}, 1)}
}

// Start opens the listener and begins accepting clients in the
// background.
func (t *TCPTransport) Start() error {
	l, err := net.Listen("tcp", t.addr)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.listener = l
	t.mu.Unlock()
	go t.acceptLoop()
	return nil
}

// Stop closes the listener and every accepted client connection.
func (t *TCPTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener != nil {
		_ = t.listener.Close()
		t.listener = nil
	}
	for id, c := range t.clients {
		_ = c.conn.Close()
		delete(t.clients, id)
	}
	return nil
}

func (t *TCPTransport) acceptLoop() {
	for {
		t.mu.Lock()
		l := t.listener
		t.mu.Unlock()
		if l == nil {
			return
		}
		conn, err := l.Accept()
		if err != nil {
			return
		}
		id := conn.RemoteAddr().String()
		c := &client{conn: conn}
		t.mu.Lock()
		t.clients[id] = c
		t.mu.Unlock()
		go t.readLoop(id, c)
	}
}

func (t *TCPTransport) readLoop(id string, c *client) {
	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			t.mu.Lock()
			c.inbox = append(c.inbox, buf[:n]...)
			t.mu.Unlock()
			select {
			case t.dataCond <- struct{}{}:
			default:
			}
		}
		if err != nil {
			t.mu.Lock()
			delete(t.clients, id)
			t.mu.Unlock()
			return
		}
	}
}

// Write broadcasts data to every currently connected client: a
// KISS-over-TCP write reaches every listening application.
func (t *TCPTransport) Write(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var firstErr error
	for _, c := range t.clients {
		if _, err := c.conn.Write(data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return len(data), firstErr
}

// Read drains bytes accumulated from one client's connection.
func (t *TCPTransport) Read(id string, buf []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.clients[id]
	if !ok {
		return 0, nil
	}
	n := copy(buf, c.inbox)
	c.inbox = c.inbox[n:]
	return n, nil
}

// Clients lists currently connected client IDs.
func (t *TCPTransport) Clients() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.clients))
	for id := range t.clients {
		ids = append(ids, id)
	}
	return ids
}

// Flush is a no-op: writes go straight to the TCP socket.
func (t *TCPTransport) Flush() error { return nil }

// WaitDataReceived blocks up to timeout for new inbound bytes from any
// client.
func (t *TCPTransport) WaitDataReceived(timeout time.Duration) bool {
	if timeout < 0 {
		<-t.dataCond
		return true
	}
	select {
	case <-t.dataCond:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (t *TCPTransport) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *TCPTransport) SetEnabled(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = on
}
