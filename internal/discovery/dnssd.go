// Package discovery advertises a KISS-over-TCP endpoint via mDNS/DNS-SD
// using github.com/brutella/dnssd (dnssd.Config/NewService/NewResponder/Add),
// so a client app can find the modem on the LAN without a hardcoded
// host:port. This is convenience wiring for cmd/modemctl's
// network-transport mode, not part of the packet pipeline core.
package discovery

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

// ServiceType is the DNS-SD service type this package advertises.
const ServiceType = "_kiss-tnc._tcp"

// Advertiser wraps a running dnssd responder for one advertised service.
type Advertiser struct {
	responder dnssd.Responder
	cancel    context.CancelFunc
	done      chan struct{}
}

// Announce advertises name (or "aprsmodem" if empty) as a
// _kiss-tnc._tcp service on port. The responder runs in a background
// goroutine until Stop is called.
func Announce(name string, port int) (*Advertiser, error) {
	if name == "" {
		name = "aprsmodem"
	}
	cfg := dnssd.Config{
		Name: name,
		Type: ServiceType,
		Port: port,
	}
	svc, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery: create service: %w", err)
	}
	rp, err := dnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("discovery: create responder: %w", err)
	}
	if _, err := rp.Add(svc); err != nil {
		return nil, fmt.Errorf("discovery: add service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &Advertiser{responder: rp, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(a.done)
		_ = rp.Respond(ctx)
	}()
	return a, nil
}

// Stop cancels the responder and waits for its goroutine to exit.
func (a *Advertiser) Stop() {
	a.cancel()
	<-a.done
}
