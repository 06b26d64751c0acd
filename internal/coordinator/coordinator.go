// Package coordinator implements the transmit/receive coordinator: a
// background worker owning a bounded outbound FIFO, that polls a
// transport for inbound frames, drives a modem on transmit, fires
// observer callbacks, and isolates faults by disabling itself rather than
// crashing.
package coordinator

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/n0call/aprsmodem/internal/ax25"
	"github.com/n0call/aprsmodem/internal/capability"
)

// ErrAlreadyRunning is returned by Start when the coordinator is already
// running.
var ErrAlreadyRunning = errors.New("coordinator: already running")

// pollInterval bounds how long the worker waits for new transport data
// between receive/transmit passes.
const pollInterval = 10 * time.Millisecond

// readChunkSize is the per-client transport read buffer size.
const readChunkSize = 4096

// Modem is the transmit capability the coordinator drives; satisfied by
// *modem.Driver. Declared locally (rather than importing package modem)
// to keep the dependency a non-owning borrow.
type Modem interface {
	Transmit(frame ax25.Frame) error
}

// Coordinator is the transmit/receive coordinator: it owns the single
// worker goroutine that alternates polling inbound transport data and
// draining the outbound queue. Transport, Formatter, and Modem are
// non-owning borrows bound at construction; the coordinator does not own
// their lifetimes.
type Coordinator struct {
	transport capability.Transport
	formatter capability.Formatter
	modem     Modem
	observer  capability.Observer

	queue *outboundQueue

	enabled      atomic.Bool
	running      atomic.Bool
	transmitting atomic.Bool

	audioStreamErrors atomic.Int64

	clientMu         sync.Mutex
	clientFormatters map[string]capability.Formatter

	stopCh chan struct{}
	doneCh chan struct{}
}

// New constructs a Coordinator bound to transport, formatter (the
// prototype cloned per client), and modem. observer may be nil.
func New(transport capability.Transport, formatter capability.Formatter, modem Modem, observer capability.Observer) *Coordinator {
	c := &Coordinator{
		transport:        transport,
		formatter:        formatter,
		modem:            modem,
		observer:         observer,
		queue:            newOutboundQueue(),
		clientFormatters: make(map[string]capability.Formatter),
	}
	if c.observer == nil {
		c.observer = capability.NopObserver{}
	}
	c.enabled.Store(true)
	return c
}

// Enqueue submits a packet for transmission, subject to the outbound
// queue's bounded, drop-oldest capacity.
func (c *Coordinator) Enqueue(frame ax25.Frame) {
	c.queue.Push(frame)
}

// Enabled reports whether the coordinator currently drains the outbound
// queue. A hard transmit fault sets this false.
func (c *Coordinator) Enabled() bool { return c.enabled.Load() }

// SetEnabled re-arms the coordinator after a fault has disabled it, or
// disables it administratively.
func (c *Coordinator) SetEnabled(on bool) { c.enabled.Store(on) }

// Running reports whether the worker goroutine is active.
func (c *Coordinator) Running() bool { return c.running.Load() }

// AudioStreamErrorCount reports how many transmit faults were specifically
// audio-sink failures, as opposed to encode or PTT errors.
func (c *Coordinator) AudioStreamErrorCount() int64 { return c.audioStreamErrors.Load() }

// Start spawns the single worker goroutine. Calling Start
// while already running returns ErrAlreadyRunning without side effects.
func (c *Coordinator) Start() error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	if err := c.transport.Start(); err != nil {
		c.running.Store(false)
		return err
	}
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	go c.run()
	return nil
}

// Stop signals the worker to exit and joins it.
func (c *Coordinator) Stop() {
	if !c.running.Load() {
		return
	}
	close(c.stopCh)
	<-c.doneCh
	_ = c.transport.Stop()
}

func (c *Coordinator) run() {
	defer close(c.doneCh)
	defer c.running.Store(false)
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		c.pollReceive()

		if c.enabled.Load() && c.queue.Len() > 0 {
			c.drainOutbound()
		}

		c.transport.WaitDataReceived(pollInterval)
	}
}

// pollReceive reads from every connected
// client's transport buffer through that client's cloned formatter, and on
// a decoded frame, enqueue it (mirroring this system's igate/digipeat
// convention of feeding received traffic back through the same outbound
// FIFO) and fire OnPacketReceived. It also reaps formatters for clients
// that disconnected, draining any frame still pending in their decoder
// first.
func (c *Coordinator) pollReceive() {
	if !c.transport.Enabled() {
		return
	}

	clients := c.transport.Clients()
	present := make(map[string]bool, len(clients))
	buf := make([]byte, readChunkSize)

	for _, id := range clients {
		present[id] = true
		cf := c.clientFormatter(id)

		n, err := c.transport.Read(id, buf)
		if err != nil || n == 0 {
			continue
		}
		chunk := buf[:n]
		for {
			frame, ok, _ := cf.TryDecode(chunk)
			if !ok {
				break
			}
			c.queue.Push(frame)
			c.observer.OnPacketReceived(id, frame)
			chunk = nil // one chunk may carry several frames; drain them all
		}
	}

	c.reapDisconnected(present)
}

func (c *Coordinator) clientFormatter(id string) capability.Formatter {
	c.clientMu.Lock()
	defer c.clientMu.Unlock()
	cf, ok := c.clientFormatters[id]
	if !ok {
		cf = c.formatter.Clone()
		c.clientFormatters[id] = cf
		c.observer.OnClientConnected(id)
	}
	return cf
}

func (c *Coordinator) reapDisconnected(present map[string]bool) {
	c.clientMu.Lock()
	defer c.clientMu.Unlock()
	for id, cf := range c.clientFormatters {
		if present[id] {
			continue
		}
		for {
			frame, ok, _ := cf.TryDecode(nil)
			if !ok {
				break
			}
			c.queue.Push(frame)
			c.observer.OnPacketReceived(id, frame)
		}
		delete(c.clientFormatters, id)
		c.observer.OnClientDisconnected(id)
	}
}

// drainOutbound transmits queued packets in
// order until the queue empties or a transmission fails, in which case the
// coordinator disables itself and stops draining, leaving the failed
// packet (and everything behind it) in the queue.
func (c *Coordinator) drainOutbound() {
	c.setTransmitting(true)
	defer c.setTransmitting(false)

	for {
		frame, ok := c.queue.Front()
		if !ok {
			return
		}
		c.observer.OnTransmitStarted(frame)
		if err := c.modem.Transmit(frame); err != nil {
			var sinkErr *capability.AudioSinkError
			if errors.As(err, &sinkErr) {
				c.audioStreamErrors.Add(1)
			}
			c.enabled.Store(false)
			c.observer.OnFault("transmit", err)
			return
		}
		c.queue.Pop()
		c.observer.OnTransmitCompleted(frame)
	}
}

func (c *Coordinator) setTransmitting(on bool) {
	c.transmitting.Store(on)
}

// idlePollInterval bounds how often WaitTransmitIdle/WaitStopped re-check
// their condition; the same bounded-sleep pattern the worker's own receive
// poll uses.
const idlePollInterval = 5 * time.Millisecond

// WaitTransmitIdle blocks until the worker is not mid-drain, or timeout
// elapses. A negative timeout blocks indefinitely.
func (c *Coordinator) WaitTransmitIdle(timeout time.Duration) bool {
	return waitUntil(timeout, func() bool { return !c.transmitting.Load() })
}

// WaitStopped blocks until the worker goroutine has exited, or timeout
// elapses. A negative timeout blocks indefinitely.
func (c *Coordinator) WaitStopped(timeout time.Duration) bool {
	return waitUntil(timeout, func() bool { return !c.running.Load() })
}

func waitUntil(timeout time.Duration, done func() bool) bool {
	if done() {
		return true
	}
	if timeout == 0 {
		return false
	}
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		time.Sleep(idlePollInterval)
		if done() {
			return true
		}
		if timeout >= 0 && time.Now().After(deadline) {
			return false
		}
	}
}
