package connect_test

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/connect"
)

// fakeConnectProxy accepts a single CONNECT request on ln and replies
// with the given status line, then leaves the connection open so the
// caller can observe any pipelined bytes.
func fakeConnectProxy(t *testing.T, ln net.Listener, status string, trailer []byte) {
	t.Helper()
	conn, err := ln.Accept()
	require.NoError(t, err)
	defer conn.Close()

	br := bufio.NewReader(conn)
	req, err := http.ReadRequest(br)
	require.NoError(t, err)
	require.Equal(t, "CONNECT", req.Method)

	_, err = conn.Write([]byte("HTTP/1.1 " + status + "\r\n\r\n"))
	require.NoError(t, err)
	if len(trailer) > 0 {
		_, _ = conn.Write(trailer)
	}
	time.Sleep(50 * time.Millisecond)
}

func TestTunnelSuccess(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go fakeConnectProxy(t, ln, "200 Connection Established", []byte("hello"))

	raw, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := connect.Tunnel(ctx, raw, "example.com:443", nil, "test-agent/1.0")
	require.NoError(t, err)
	defer conn.Close()

	buf := make([]byte, 5)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestTunnelProxyAuthRequired(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go fakeConnectProxy(t, ln, "407 Proxy Authentication Required", nil)

	raw, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = connect.Tunnel(ctx, raw, "example.com:443", nil, "")
	require.Error(t, err)

	var tErr *connect.TunnelError
	require.ErrorAs(t, err, &tErr)
	require.Equal(t, connect.TunnelProxyAuthRequired, tErr.Kind)
}

func TestTunnelMissingHost(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c2.Close()

	_, err := connect.Tunnel(context.Background(), c1, ":443", nil, "")
	require.Error(t, err)
	var tErr *connect.TunnelError
	require.ErrorAs(t, err, &tErr)
	require.Equal(t, connect.TunnelMissingHost, tErr.Kind)
}
