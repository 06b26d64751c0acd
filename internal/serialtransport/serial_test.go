//go:build linux

package serialtransport

import (
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/n0call/aprsmodem/internal/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pty pairs stand in for a real serial port here, using the same
// github.com/creack/pty package a KISS pty-over-serial mode would use,
// giving Transport a real path to open without requiring physical
// hardware in CI.
func newTestPair(t *testing.T) (*Transport, *os.File) {
	t.Helper()
	ptmx, pts, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { ptmx.Close(); pts.Close() })

	tr := New(pts.Name())
	require.NoError(t, tr.Start())
	t.Cleanup(func() { tr.Stop() })
	return tr, ptmx
}

func TestTransportSatisfiesCapability(t *testing.T) {
	var _ capability.Transport = New("/dev/ttyUSB0")
	var _ capability.PTT = (*PTT)(nil)
}

func TestTransportReceivesBytesFromPeer(t *testing.T) {
	tr, ptmx := newTestPair(t)

	_, err := ptmx.Write([]byte{0xC0, 0x00, 'h', 'i', 0xC0})
	require.NoError(t, err)

	assert.True(t, tr.WaitDataReceived(time.Second))

	buf := make([]byte, 64)
	n, err := tr.Read(clientID, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC0, 0x00, 'h', 'i', 0xC0}, buf[:n])
}

func TestTransportWritesToPeer(t *testing.T) {
	tr, ptmx := newTestPair(t)

	_, err := tr.Write([]byte{0xC0, 0x00, 'h', 'i', 0xC0})
	require.NoError(t, err)

	buf := make([]byte, 64)
	ptmx.SetReadDeadline(time.Now().Add(time.Second))
	n, err := ptmx.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC0, 0x00, 'h', 'i', 0xC0}, buf[:n])
}
