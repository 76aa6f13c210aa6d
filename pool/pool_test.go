package pool_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/connect"
	"github.com/corvidhttp/impersonate/pool"
)

func fakeConn() *connect.Conn {
	c1, _ := net.Pipe()
	return connect.NewConn(c1, false)
}

func testKey() pool.Key {
	return pool.Key{Scheme: "https", Authority: "example.com:443", Fingerprint: "abc123"}
}

func TestCheckinThenCheckoutReusesConn(t *testing.T) {
	p := pool.New(pool.Options{MaxIdlePerHost: 2})
	defer p.Close()

	key := testKey()
	conn := fakeConn()
	p.Checkin(key, conn)

	dialed := false
	got, err := p.Checkout(context.Background(), key, func(ctx context.Context, k pool.Key) (*connect.Conn, error) {
		dialed = true
		return fakeConn(), nil
	})
	require.NoError(t, err)
	assert.False(t, dialed)
	assert.Same(t, conn, got)
}

func TestCheckoutDialsWhenPoolEmpty(t *testing.T) {
	p := pool.New(pool.Options{MaxIdlePerHost: 2})
	defer p.Close()

	dialed := fakeConn()
	got, err := p.Checkout(context.Background(), testKey(), func(ctx context.Context, k pool.Key) (*connect.Conn, error) {
		return dialed, nil
	})
	require.NoError(t, err)
	assert.Same(t, dialed, got)
}

func TestCheckinSkipsPoisonedConn(t *testing.T) {
	p := pool.New(pool.Options{MaxIdlePerHost: 2})
	defer p.Close()

	key := testKey()
	conn := fakeConn()
	conn.Pill.Poison()
	p.Checkin(key, conn)

	var dials int32
	_, err := p.Checkout(context.Background(), key, func(ctx context.Context, k pool.Key) (*connect.Conn, error) {
		atomic.AddInt32(&dials, 1)
		return fakeConn(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), dials)
}

func TestCheckinEvictsOverCapacity(t *testing.T) {
	p := pool.New(pool.Options{MaxIdlePerHost: 1})
	defer p.Close()

	key := testKey()
	first := fakeConn()
	second := fakeConn()
	p.Checkin(key, first)
	p.Checkin(key, second)

	got, err := p.Checkout(context.Background(), key, func(ctx context.Context, k pool.Key) (*connect.Conn, error) {
		t.Fatal("should not dial; second conn should still be idle")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestCloseClosesIdleConns(t *testing.T) {
	p := pool.New(pool.Options{MaxIdlePerHost: 2})
	key := testKey()
	conn := fakeConn()
	p.Checkin(key, conn)
	require.NoError(t, p.Close())

	_, err := conn.Write([]byte("x"))
	assert.Error(t, err)
}

func TestCheckoutAfterCloseErrors(t *testing.T) {
	p := pool.New(pool.Options{})
	require.NoError(t, p.Close())

	_, err := p.Checkout(context.Background(), testKey(), func(ctx context.Context, k pool.Key) (*connect.Conn, error) {
		return fakeConn(), nil
	})
	assert.ErrorIs(t, err, pool.ErrClosed)
}

func TestIdleTimeoutReaping(t *testing.T) {
	p := pool.New(pool.Options{MaxIdlePerHost: 2, IdleTimeout: 20 * time.Millisecond, ReapInterval: 10 * time.Millisecond})
	defer p.Close()

	key := testKey()
	conn := fakeConn()
	p.Checkin(key, conn)

	time.Sleep(80 * time.Millisecond)

	var dials int32
	_, err := p.Checkout(context.Background(), key, func(ctx context.Context, k pool.Key) (*connect.Conn, error) {
		atomic.AddInt32(&dials, 1)
		return fakeConn(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), dials)
}
