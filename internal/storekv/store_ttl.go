package storekv

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"
)

// TTL implements spec.md's TTL: milliseconds remaining, noExpiry (-1)
// if the key has no TTL, or -2 if the key is missing or expired.
func (s *Store) TTL(key string) int64 {
	st := s.stripeFor(key)
	now := nowMillis()

	st.mu.Lock()
	ent, ok := st.items[key]
	if !ok {
		st.mu.Unlock()
		return -2
	}
	if ent.expiredAt(now) {
		delete(st.items, key)
		st.mu.Unlock()
		atomic.AddInt64(&s.count, -1)
		s.ep.RecordRemove(key)
		return -2
	}
	if ent.expireAt == noExpiry {
		st.mu.Unlock()
		return -1
	}
	remain := ent.expireAt - now
	st.mu.Unlock()
	if remain < 0 {
		remain = 0
	}
	return remain
}

// Persist implements PERSIST: clears an existing key's TTL. Returns
// true iff a live key's TTL was actually cleared (a key with no TTL
// already, or a missing/expired key, reports false per spec.md's
// "true iff TTL was cleared on an existing key").
func (s *Store) Persist(key string) bool {
	return s.persist(key, false)
}

func (s *Store) persist(key string, replay bool) bool {
	st := s.stripeFor(key)
	now := nowMillis()

	st.mu.Lock()
	ent, ok := st.items[key]
	if ok && ent.expiredAt(now) {
		delete(st.items, key)
		ok = false
		st.mu.Unlock()
		atomic.AddInt64(&s.count, -1)
		s.ep.RecordRemove(key)
	} else if ok {
		if ent.expireAt == noExpiry {
			st.mu.Unlock()
			return false
		}
		ent.expireAt = noExpiry
		st.mu.Unlock()
	} else {
		st.mu.Unlock()
	}

	if !ok {
		return false
	}

	if !replay {
		s.log.Append("PERSIST", key)
	}
	return true
}

// Expire implements EXPIRE: sets key's TTL to seconds from now.
// Returns true iff set (key present and live), false if missing or
// expired.
func (s *Store) Expire(key string, seconds int64) bool {
	return s.expire(key, seconds, false)
}

func (s *Store) expire(key string, seconds int64, replay bool) bool {
	st := s.stripeFor(key)
	now := nowMillis()

	st.mu.Lock()
	ent, ok := st.items[key]
	if ok && ent.expiredAt(now) {
		delete(st.items, key)
		ok = false
		st.mu.Unlock()
		atomic.AddInt64(&s.count, -1)
		s.ep.RecordRemove(key)
	} else if ok {
		ent.expireAt = now + seconds*1000
		st.mu.Unlock()
	} else {
		st.mu.Unlock()
	}

	if !ok {
		return false
	}

	if !replay {
		s.log.Append("EXPIRE", key, strconv.FormatInt(seconds, 10))
	}
	return true
}

// StartSweeper runs the active-expiration background task (spec.md
// §4.1 "Active") every interval until ctx is cancelled, matching the
// teacher's StartCleanup/CleanupExpired pair in
// internal/engine/store_ttl.go, but driven by a single global store
// rather than per-tenant instances.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepExpired()
			}
		}
	}()
}

// sweepExpired removes entries whose expiry has passed. It does not
// write to DCL: expirations are implicit, and replay rebuilds each
// key's expiry from the relative TTL its SET (PX ms) or EXPIRE
// (seconds) record carries, counted from replay time (see
// ApplyReplay).
func (s *Store) sweepExpired() int {
	now := nowMillis()
	cleaned := 0

	for _, st := range s.stripes {
		st.mu.Lock()
		var expiredKeys []string
		for k, ent := range st.items {
			if ent.expiredAt(now) {
				expiredKeys = append(expiredKeys, k)
			}
		}
		for _, k := range expiredKeys {
			delete(st.items, k)
		}
		st.mu.Unlock()

		for _, k := range expiredKeys {
			s.ep.RecordRemove(k)
		}
		cleaned += len(expiredKeys)
	}

	if cleaned > 0 {
		atomic.AddInt64(&s.count, -int64(cleaned))
	}
	return cleaned
}
