package connect_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/connect"
)

func TestDialDirectPlain(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.Write([]byte("ok"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req := &connect.Request{
		Scheme:      "http",
		Host:        ln.Addr().String(),
		DialTimeout: time.Second,
	}
	conn, err := connect.Dial(ctx, req)
	require.NoError(t, err)
	defer conn.Close()

	buf := make([]byte, 2)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "ok", string(buf[:n]))
	require.False(t, conn.Poisoned())

	<-done
}
