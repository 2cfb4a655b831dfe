package storekv

import "sync/atomic"

// evictIfNeeded implements spec.md's eviction coupling: after a
// mutating operation that may grow the map, ask EP for a victim while
// the live count exceeds capacity, removing each victim and appending
// a DEL record. Called after the triggering operation's own DCL
// append so eviction DELs are ordered after the mutation that caused
// them (spec.md §4.1 "Eviction coupling").
func (s *Store) evictIfNeeded() {
	for {
		n := int(atomic.LoadInt64(&s.count))
		victim, ok := s.ep.EvictIfNeeded(n)
		if !ok {
			return
		}

		st := s.stripeFor(victim)
		st.mu.Lock()
		_, existed := st.items[victim]
		delete(st.items, victim)
		st.mu.Unlock()

		if !existed {
			// Already gone (raced with a DEL/expiry); EP already
			// dropped its bookkeeping by returning it as a victim.
			continue
		}

		atomic.AddInt64(&s.count, -1)
		atomic.AddUint64(&s.evictions, 1)
		s.log.Append("DEL", victim)
	}
}
