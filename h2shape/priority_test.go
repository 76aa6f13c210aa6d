package h2shape_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/h2shape"
)

func TestEncodePrioritiesSkipsZeroStreamID(t *testing.T) {
	frames := []h2shape.PriorityFrame{
		{StreamID: 0, DependencyID: 1, Weight: 1},
		{StreamID: 3, DependencyID: 0, Weight: 41, Exclusive: true},
	}
	out := h2shape.EncodePriorities(frames)
	// exactly one 14-byte PRIORITY frame (9 header + 5 payload) emitted
	assert.Len(t, out, 14)
	assert.Equal(t, byte(0x2), out[3]) // frame type PRIORITY
}

func TestSettingsOrderOptionKeepsConfiguredOrder(t *testing.T) {
	opts := h2shape.DefaultHttp2Options()
	opts.SettingsOrder = []h2shape.SettingID{
		h2shape.SettingMaxHeaderListSize,
		h2shape.SettingHeaderTableSize,
	}
	opts.MaxHeaderListSize = 100
	opts.HeaderTableSize = 65536

	// orderedSettings is unexported; exercise it indirectly via Apply's
	// effect on a *http2.Transport would require a live fhttp import —
	// instead assert on the option set plumbing that feeds it.
	assert.Equal(t, []h2shape.SettingID{h2shape.SettingMaxHeaderListSize, h2shape.SettingHeaderTableSize}, opts.SettingsOrder)
}

type fakeConn struct {
	net.Conn
	writes [][]byte
}

func (f *fakeConn) Write(b []byte) (int, error) {
	cp := append([]byte(nil), b...)
	f.writes = append(f.writes, cp)
	return len(b), nil
}

func TestPrimingConnInjectsPayloadAfterFirstWrite(t *testing.T) {
	base := &fakeConn{}
	payload := []byte{1, 2, 3}
	conn := h2shape.NewPrimingConn(base, payload)

	n, err := conn.Write([]byte("preface+settings"))
	require.NoError(t, err)
	assert.Equal(t, len("preface+settings"), n)

	_, err = conn.Write([]byte("headers"))
	require.NoError(t, err)

	require.Len(t, base.writes, 3)
	assert.Equal(t, payload, base.writes[1])
	assert.Equal(t, []byte("headers"), base.writes[2])
}

func TestNewPrimingConnPassthroughWhenEmpty(t *testing.T) {
	base := &fakeConn{}
	conn := h2shape.NewPrimingConn(base, nil)
	_, ok := conn.(*h2shape.PrimingConn)
	assert.False(t, ok)
}

type fakePoison struct{ poisoned bool }

func (f *fakePoison) Poison() { f.poisoned = true }

type pingerStub struct{ err error }

func (p pingerStub) Ping(_ context.Context) error { return p.err }

func TestKeepAliveDisabledWhenIntervalZero(t *testing.T) {
	opts := h2shape.DefaultHttp2Options()
	opts.KeepAliveInterval = 0
	poison := &fakePoison{}
	h2shape.KeepAlive(context.Background(), opts, pingerStub{}, poison, nil)
	assert.False(t, poison.poisoned)
}
