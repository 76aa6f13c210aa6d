package pool

import "time"

// reapLoop runs on its own goroutine for the lifetime of the pool,
// periodically closing idle connections that have exceeded idleTimeout
// (spec.md §4.6 "pool_idle_timeout reaping").
func (p *Pool) reapLoop(interval time.Duration) {
	defer p.closeWg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.reapOnce()
		case <-p.closeCh:
			return
		}
	}
}

func (p *Pool) reapOnce() {
	cutoff := time.Now().Add(-p.idleTimeout)

	var toClose []*idleConn

	p.mu.Lock()
	for _, b := range p.buckets {
		for e := b.lru.Back(); e != nil; {
			ic := e.Value.(*idleConn)
			prev := e.Prev()
			if ic.idleFrom.Before(cutoff) {
				b.lru.Remove(e)
				toClose = append(toClose, ic)
			}
			e = prev
		}
	}
	p.mu.Unlock()

	for _, ic := range toClose {
		ic.conn.Close()
	}
}
