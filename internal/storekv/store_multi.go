package storekv

import (
	"regexp"
	"strings"
	"sync/atomic"
)

// MGet implements MGET: one slot per input key, nil for a miss. Per
// spec.md, each key gets the same hit/miss/EP treatment as a single
// GET; there is no cross-key atomicity.
func (s *Store) MGet(keys []string) [][]byte {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := s.Get(k); ok {
			out[i] = v
		}
	}
	return out
}

// MSet implements MSET: kvs must have an even length (key, value,
// key, value, ...). An odd-length input is a silent no-op, matching
// the source's documented behavior and spec.md's open-question
// decision to preserve it. All pairs share a single combined DCL
// record instead of one record per pair.
func (s *Store) MSet(kvs []string) {
	if len(kvs)%2 != 0 || len(kvs) == 0 {
		return
	}

	for i := 0; i < len(kvs); i += 2 {
		_ = s.set(kvs[i], []byte(kvs[i+1]), 0, true)
	}

	s.log.Append("MSET", kvs...)
	s.evictIfNeeded()
}

// Rename implements RENAME: returns true iff src existed and was
// live, overwriting dst unconditionally on success.
func (s *Store) Rename(src, dst string) bool {
	return s.rename(src, dst, false)
}

func (s *Store) rename(src, dst string, replay bool) bool {
	srcSt := s.stripeFor(src)
	now := nowMillis()

	srcSt.mu.Lock()
	ent, ok := srcSt.items[src]
	expired := ok && ent.expiredAt(now)
	if expired {
		delete(srcSt.items, src)
		ok = false
	}
	var value []byte
	var expireAt int64
	if ok {
		delete(srcSt.items, src)
		value = ent.value
		expireAt = ent.expireAt
	}
	srcSt.mu.Unlock()

	if expired {
		atomic.AddInt64(&s.count, -1)
		s.ep.RecordRemove(src)
	}
	if !ok {
		return false
	}

	atomic.AddInt64(&s.count, -1)
	s.ep.RecordRemove(src)

	dstSt := s.stripeFor(dst)
	dstSt.mu.Lock()
	_, dstExisted := dstSt.items[dst]
	dstSt.items[dst] = &entry{value: value, expireAt: expireAt}
	dstSt.mu.Unlock()

	if !dstExisted {
		atomic.AddInt64(&s.count, 1)
	}
	s.ep.RecordPut(dst)

	if !replay {
		s.log.Append("RENAME", src, dst)
	}
	return true
}

// FlushAll implements FLUSHALL: clears every key.
func (s *Store) FlushAll() {
	s.flushAll(false)
}

func (s *Store) flushAll(replay bool) {
	for _, st := range s.stripes {
		st.mu.Lock()
		keys := make([]string, 0, len(st.items))
		for k := range st.items {
			keys = append(keys, k)
		}
		st.items = make(map[string]*entry)
		st.mu.Unlock()

		for _, k := range keys {
			s.ep.RecordRemove(k)
		}
		atomic.AddInt64(&s.count, -int64(len(keys)))
	}

	if !replay {
		s.log.Append("FLUSHALL")
	}
}

// Keys implements the pattern form of KEYS: live keys matching pat,
// where '*' is the only wildcard. An empty pattern behaves as "*".
// Per spec.md §9 this does not snapshot the map before scanning, so a
// concurrent SET may or may not be observed; that is documented and
// intentional, not a bug.
func (s *Store) Keys(pattern string) []string {
	re := compileGlob(pattern)
	now := nowMillis()

	var out []string
	for _, st := range s.stripes {
		st.mu.RLock()
		for k, ent := range st.items {
			if ent.expiredAt(now) {
				continue
			}
			if re.MatchString(k) {
				out = append(out, k)
			}
		}
		st.mu.RUnlock()
	}
	return out
}

// Count implements the niladic KEYS(): the number of live keys.
func (s *Store) Count() int64 {
	now := nowMillis()
	var live int64
	for _, st := range s.stripes {
		st.mu.RLock()
		for _, ent := range st.items {
			if !ent.expiredAt(now) {
				live++
			}
		}
		st.mu.RUnlock()
	}
	return live
}

// compileGlob turns a '*'-wildcard pattern into an anchored regexp:
// split on '*', escape every literal segment, join with ".*". Matches
// spec.md §4.1's documented algorithm.
func compileGlob(pattern string) *regexp.Regexp {
	if pattern == "" {
		pattern = "*"
	}
	segments := strings.Split(pattern, "*")
	for i, seg := range segments {
		segments[i] = regexp.QuoteMeta(seg)
	}
	return regexp.MustCompile("^" + strings.Join(segments, ".*") + "$")
}
