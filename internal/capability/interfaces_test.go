package capability

import (
	"testing"

	"github.com/n0call/aprsmodem/internal/ax25"
	"github.com/stretchr/testify/assert"
)

type countingObserver struct{ packets, faults int }

func (c *countingObserver) OnPacketReceived(string, ax25.Frame) { c.packets++ }
func (c *countingObserver) OnTransmitStarted(ax25.Frame)        {}
func (c *countingObserver) OnTransmitCompleted(ax25.Frame)      {}
func (c *countingObserver) OnClientConnected(string)            {}
func (c *countingObserver) OnClientDisconnected(string)         {}
func (c *countingObserver) OnCommand(string, int, []byte)       {}
func (c *countingObserver) OnFault(string, error)               { c.faults++ }
func (c *countingObserver) OnRecovered(string)                  {}

func TestMultiObserverFansOutToEveryMember(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	m := MultiObserver{a, b}

	m.OnPacketReceived("client1", ax25.Frame{})
	m.OnFault("transmit", nil)

	assert.Equal(t, 1, a.packets)
	assert.Equal(t, 1, b.packets)
	assert.Equal(t, 1, a.faults)
	assert.Equal(t, 1, b.faults)
}

func TestAudioSinkErrorUnwraps(t *testing.T) {
	inner := assert.AnError
	err := &AudioSinkError{Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), inner.Error())
}
