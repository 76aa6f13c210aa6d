package pool

import (
	"container/list"
	"context"
	"fmt"
	"time"

	"github.com/corvidhttp/impersonate/connect"
)

// ErrClosed is returned by Checkout once the pool has been closed.
var ErrClosed = fmt.Errorf("pool: closed")

// Checkout returns an idle connection for key if one is available and
// still healthy (not poisoned); otherwise it dials a fresh one via
// dial. Concurrent checkouts for the same key that all miss the idle
// pool coalesce onto a single in-flight dial (spec.md §4.6
// "at-most-one-dial-per-key").
func (p *Pool) Checkout(ctx context.Context, key Key, dial DialFunc) (*connect.Conn, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClosed
		}

		if b, ok := p.buckets[key]; ok {
			for e := b.lru.Front(); e != nil; {
				next := e.Next()
				ic := e.Value.(*idleConn)
				b.lru.Remove(e)
				e = next
				if ic.conn.Poisoned() {
					ic.conn.Close()
					continue
				}
				p.mu.Unlock()
				return ic.conn, nil
			}
		}

		if w, ok := p.inflight[key]; ok {
			p.mu.Unlock()
			select {
			case <-w.done:
				if w.err == nil {
					return w.conn, nil
				}
				// The leader's dial failed; fall through and retry as a
				// new leader rather than propagating a stale error to
				// every follower forever.
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		w := &dialWaiters{done: make(chan struct{})}
		p.inflight[key] = w
		p.mu.Unlock()

		conn, err := dial(ctx, key)

		p.mu.Lock()
		delete(p.inflight, key)
		p.mu.Unlock()

		w.conn, w.err = conn, err
		close(w.done)

		return conn, err
	}
}

// Checkin returns conn to the idle pool under key for reuse. conn is
// closed instead when it is poisoned, the pool is closed, or idle
// retention is disabled. When the per-key idle cap is already full, the
// least-recently-returned idle entry is evicted and closed and conn is kept.
func (p *Pool) Checkin(key Key, conn *connect.Conn) {
	if conn.Poisoned() {
		conn.Close()
		return
	}

	p.mu.Lock()
	if p.closed || p.maxIdlePerHost == 0 {
		p.mu.Unlock()
		conn.Close()
		return
	}

	b, ok := p.buckets[key]
	if !ok {
		b = &bucket{lru: list.New()}
		p.buckets[key] = b
	}

	if b.lru.Len() >= p.maxIdlePerHost {
		// Evict the least-recently-returned entry to make room.
		back := b.lru.Back()
		evicted := back.Value.(*idleConn)
		b.lru.Remove(back)
		p.mu.Unlock()
		evicted.conn.Close()
		p.mu.Lock()
	}

	ic := &idleConn{conn: conn, key: key, idleFrom: time.Now()}
	ic.elem = b.lru.PushFront(ic)
	p.mu.Unlock()
}

// Close stops the reaper and closes every idle connection. In-flight
// dials are left to complete; their results are simply never pooled.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	buckets := p.buckets
	p.buckets = make(map[Key]*bucket)
	p.mu.Unlock()

	close(p.closeCh)
	p.closeWg.Wait()

	for _, b := range buckets {
		for e := b.lru.Front(); e != nil; e = e.Next() {
			e.Value.(*idleConn).conn.Close()
		}
	}
	return nil
}
