package h2shape

import (
	"net"
	"sync"
)

const framePriority = 0x2

// encodePriorityFrame hand-encodes a single HTTP/2 PRIORITY frame (RFC
// 7540 §6.3): a 9-byte frame header followed by a 5-byte payload
// (stream dependency + exclusive bit, weight).
func encodePriorityFrame(p PriorityFrame) []byte {
	buf := make([]byte, 9+5)
	// length = 5, spread across 3 bytes
	buf[0], buf[1], buf[2] = 0, 0, 5
	buf[3] = framePriority
	buf[4] = 0 // flags
	putStreamID(buf[5:9], p.StreamID)

	dep := p.DependencyID
	if p.Exclusive {
		dep |= 0x80000000
	}
	putStreamID(buf[9:13], dep)
	buf[13] = p.Weight
	return buf
}

func putStreamID(b []byte, id uint32) {
	b[0] = byte(id >> 24)
	b[1] = byte(id >> 16)
	b[2] = byte(id >> 8)
	b[3] = byte(id)
}

// EncodePriorities returns the wire bytes for every entry in frames
// whose StreamID is non-zero, in list order — entries with StreamID==0
// are silently skipped, per spec.md §4.2 point 2.
func EncodePriorities(frames []PriorityFrame) []byte {
	var out []byte
	for _, f := range frames {
		if f.StreamID == 0 {
			continue
		}
		out = append(out, encodePriorityFrame(f)...)
	}
	return out
}

// PrimingConn wraps a dialed net.Conn so that the first Write the HTTP/2
// engine performs — which carries the connection preface plus the
// initial SETTINGS frame as a single write in the fhttp/http2 fork — is
// immediately followed by the hand-encoded PRIORITY frame burst from
// Priorities, before the write returns to the engine. This lets a
// profile's priority tree be placed on the wire without the underlying
// engine supporting PRIORITY frames natively (spec.md §4.2's hardest
// requirement, point 2), at the cost of only covering the common case
// where the engine emits preface+SETTINGS in one write.
type PrimingConn struct {
	net.Conn
	payload []byte
	once    sync.Once
	primed  bool
}

// NewPrimingConn returns conn unmodified when payload is empty.
func NewPrimingConn(conn net.Conn, payload []byte) net.Conn {
	if len(payload) == 0 {
		return conn
	}
	return &PrimingConn{Conn: conn, payload: payload}
}

func (p *PrimingConn) Write(b []byte) (int, error) {
	n, err := p.Conn.Write(b)
	if err != nil {
		return n, err
	}
	p.once.Do(func() {
		if _, werr := p.Conn.Write(p.payload); werr == nil {
			p.primed = true
		}
	})
	return n, nil
}
