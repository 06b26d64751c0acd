//go:build linux

// Package serialtransport implements capability.Transport and
// capability.PTT over a real termios-backed serial port, using
// github.com/daedaluz/goserial. A serial link has exactly one peer, so
// Transport always reports a single client ID ("serial"): one fixed
// client, raw byte passthrough, no line discipline. PTT keys the RTS
// line, the classic way of keying a transmitter over a serial port.
package serialtransport

import (
	"errors"
	"sync"
	"time"

	serial "github.com/daedaluz/goserial"
)

// clientID is the fixed, single client identifier a point-to-point serial
// link exposes through capability.Transport.
const clientID = "serial"

// ErrClosed is returned by Write/Read after Stop has closed the port.
var ErrClosed = errors.New("serialtransport: port closed")

// Transport is a capability.Transport over one serial device. It has no
// multi-client notion; Clients always returns either [] or [clientID].
type Transport struct {
	path string

	mu       sync.Mutex
	port     *serial.Port
	enabled  bool
	inbox    []byte
	dataCond chan struct{}
}

// New constructs a Transport bound to the serial device at path (e.g.
// "/dev/ttyUSB0"). The port is opened on Start, not here.
func New(path string) *Transport {
	return &Transport{path: path, enabled: true, dataCond: make(chan struct{}, 1)}
}

// Start opens the serial device in raw mode.
func (t *Transport) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	opts := serial.NewOptions().SetReadTimeout(50 * time.Millisecond)
	p, err := serial.Open(t.path, opts)
	if err != nil {
		return err
	}
	t.port = p
	go t.readLoop()
	return nil
}

// Stop closes the serial device.
func (t *Transport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

func (t *Transport) readLoop() {
	buf := make([]byte, 4096)
	for {
		t.mu.Lock()
		p := t.port
		t.mu.Unlock()
		if p == nil {
			return
		}
		n, err := p.Read(buf)
		if err != nil {
			continue
		}
		if n > 0 {
			t.mu.Lock()
			t.inbox = append(t.inbox, buf[:n]...)
			t.mu.Unlock()
			select {
			case t.dataCond <- struct{}{}:
			default:
			}
		}
	}
}

// Write writes data to the serial port verbatim (the caller has already
// KISS-framed it).
func (t *Transport) Write(data []byte) (int, error) {
	t.mu.Lock()
	p := t.port
	t.mu.Unlock()
	if p == nil {
		return 0, ErrClosed
	}
	return p.Write(data)
}

// Read drains bytes accumulated from the single serial peer. The clientID
// argument is ignored beyond validating it matches the fixed client ID; a
// mismatched (non-empty) ID returns 0 bytes.
func (t *Transport) Read(id string, buf []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id != "" && id != clientID {
		return 0, nil
	}
	n := copy(buf, t.inbox)
	t.inbox = t.inbox[n:]
	return n, nil
}

// Clients reports the single serial peer whenever the port is open,
// whether or not any byte has arrived from it yet.
func (t *Transport) Clients() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}
	return []string{clientID}
}

// Flush is a no-op: the underlying syscall write is unbuffered.
func (t *Transport) Flush() error { return nil }

// WaitDataReceived blocks up to timeout for new inbound bytes.
func (t *Transport) WaitDataReceived(timeout time.Duration) bool {
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

func (t *Transport) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *Transport) SetEnabled(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = on
}

// PTT keys the serial port's RTS line, the classic PTT-over-serial
// approach.
type PTT struct {
	mu   sync.Mutex
	port *serial.Port
	on   bool
}

// NewPTT wraps an already-open serial port for RTS-line PTT keying. The
// port is typically the same one backing a Transport sharing the device,
// or a second handle to a dedicated control line.
func NewPTT(port *serial.Port) *PTT {
	return &PTT{port: port}
}

// Set raises or lowers RTS.
func (p *PTT) Set(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if on {
		err = p.port.EnableModemLines(serial.TIOCM_RTS)
	} else {
		err = p.port.DisableModemLines(serial.TIOCM_RTS)
	}
	if err == nil {
		p.on = on
	}
	return err
}

// Get reports the last commanded RTS state.
func (p *PTT) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}
