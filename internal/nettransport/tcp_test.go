package nettransport

import (
	"net"
	"testing"
	"time"

	"github.com/n0call/aprsmodem/internal/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPTransportSatisfiesCapability(t *testing.T) {
	var _ capability.Transport = New("127.0.0.1:0")
}

func TestTCPTransportAcceptsAndBuffersClientData(t *testing.T) {
	addr := "127.0.0.1:18921"
	tr2 := New(addr)
	require.NoError(t, tr2.Start())
	defer tr2.Stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte{0xC0, 0x00, 'h', 'i', 0xC0})
	require.NoError(t, err)

	require.True(t, tr2.WaitDataReceived(time.Second))

	clients := tr2.Clients()
	require.Len(t, clients, 1)

	buf := make([]byte, 64)
	n, err := tr2.Read(clients[0], buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC0, 0x00, 'h', 'i', 0xC0}, buf[:n])
}

func TestTCPTransportWriteBroadcastsToClients(t *testing.T) {
	addr := "127.0.0.1:18922"
	tr := New(addr)
	require.NoError(t, tr.Start())
	defer tr.Stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// Give the accept loop a moment to register the client.
	time.Sleep(20 * time.Millisecond)

	_, err = tr.Write([]byte{0xC0, 0x00, 'x', 0xC0})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC0, 0x00, 'x', 0xC0}, buf[:n])
}
