package wsupgrade_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/wsupgrade"
)

// serverSideWrite writes a raw, unmasked server→client frame directly
// to simulate the peer, since this package only implements the
// client role (RFC 6455 mandates servers never mask).
func serverSideWrite(t *testing.T, conn net.Conn, fin bool, op wsupgrade.Opcode, payload []byte) {
	t.Helper()
	b0 := byte(op)
	if fin {
		b0 |= 0x80
	}
	frame := []byte{b0, byte(len(payload))}
	frame = append(frame, payload...)
	_, err := conn.Write(frame)
	require.NoError(t, err)
}

func TestWriteMessageMasksPayload(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := wsupgrade.NewConn(client, wsupgrade.DefaultConfig())

	done := make(chan struct{})
	var gotHeader [2]byte
	var gotMaskKey [4]byte
	var gotPayload []byte
	go func() {
		defer close(done)
		server.Read(gotHeader[:])
		server.Read(gotMaskKey[:])
		gotPayload = make([]byte, gotHeader[1]&0x7f)
		server.Read(gotPayload)
	}()

	require.NoError(t, c.WriteMessage(wsupgrade.OpText, []byte("hello")))
	<-done

	assert.Equal(t, byte(0x80|0x1), gotHeader[0]) // fin + text opcode
	assert.Equal(t, byte(0x80|5), gotHeader[1])   // masked + length 5
	assert.NotEqual(t, "hello", string(gotPayload))

	unmasked := append([]byte(nil), gotPayload...)
	for i := range unmasked {
		unmasked[i] ^= gotMaskKey[i%4]
	}
	assert.Equal(t, "hello", string(unmasked))
}

func TestReadMessageSingleFrame(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := wsupgrade.NewConn(client, wsupgrade.DefaultConfig())

	go serverSideWrite(t, server, true, wsupgrade.OpText, []byte("world"))

	op, payload, err := c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, wsupgrade.OpText, op)
	assert.Equal(t, "world", string(payload))
}

func TestReadMessageFragmented(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := wsupgrade.NewConn(client, wsupgrade.DefaultConfig())

	go func() {
		serverSideWrite(t, server, false, wsupgrade.OpText, []byte("hel"))
		serverSideWrite(t, server, true, wsupgrade.OpContinuation, []byte("lo"))
	}()

	op, payload, err := c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, wsupgrade.OpText, op)
	assert.Equal(t, "hello", string(payload))
}

func TestReadMessageAutoPong(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := wsupgrade.NewConn(client, wsupgrade.DefaultConfig())

	go func() {
		serverSideWrite(t, server, true, wsupgrade.OpPing, []byte("ping-data"))
		serverSideWrite(t, server, true, wsupgrade.OpText, []byte("after-ping"))
	}()

	var pongHeader [2]byte
	var pongMaskKey [4]byte
	var pongPayload []byte
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		server.Read(pongHeader[:])
		server.Read(pongMaskKey[:])
		pongPayload = make([]byte, pongHeader[1]&0x7f)
		server.Read(pongPayload)
		for i := range pongPayload {
			pongPayload[i] ^= pongMaskKey[i%4]
		}
	}()

	op, payload, err := c.ReadMessage()
	require.NoError(t, err)
	<-readDone

	assert.Equal(t, wsupgrade.OpPong, wsupgrade.Opcode(pongHeader[0]&0x0f))
	assert.Equal(t, "ping-data", string(pongPayload))
	assert.Equal(t, wsupgrade.OpText, op)
	assert.Equal(t, "after-ping", string(payload))
}
