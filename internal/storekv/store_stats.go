package storekv

import "sync/atomic"

// Stats is a point-in-time snapshot of the counters the /metrics
// endpoint and Prometheus gauges report, grounded on the teacher's
// internal/engine/store_stats.go Stats/Snapshot pair.
type Stats struct {
	Keys      int64
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats reports the current counters. Keys is the number of entries
// held in the map, which includes expired entries not yet removed by
// the sweeper or by a lazy-expiry read; Count returns the live number.
func (s *Store) Stats() Stats {
	return Stats{
		Keys:      atomic.LoadInt64(&s.count),
		Capacity:  s.capacity,
		Hits:      atomic.LoadUint64(&s.hits),
		Misses:    atomic.LoadUint64(&s.misses),
		Evictions: atomic.LoadUint64(&s.evictions),
	}
}

// Snapshot returns a key/value copy of every live entry, decoded, for
// the /insights endpoint. It does not lazily expire or touch EP/
// counters beyond what reading under RLock requires; expired keys are
// simply skipped.
func (s *Store) Snapshot() map[string][]byte {
	out := make(map[string][]byte)
	now := nowMillis()
	for _, st := range s.stripes {
		st.mu.RLock()
		for k, ent := range st.items {
			if ent.expiredAt(now) {
				continue
			}
			if raw, err := decodeValue(ent.value); err == nil {
				out[k] = raw
			}
		}
		st.mu.RUnlock()
	}
	return out
}
