package storekv

import (
	"strconv"
	"sync/atomic"
)

// Append implements APPEND: if key is missing or expired it behaves
// like SET(key, suffix, no ttl); otherwise the suffix bytes are
// concatenated onto the existing value, preserving the existing TTL.
// Returns the new length in bytes.
func (s *Store) Append(key string, suffix []byte) (int, error) {
	return s.appendOp(key, suffix, false)
}

func (s *Store) appendOp(key string, suffix []byte, replay bool) (int, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	st := s.stripeFor(key)
	now := nowMillis()

	st.mu.Lock()
	ent, existed := st.items[key]
	wasExpired := existed && ent.expiredAt(now)
	if wasExpired {
		delete(st.items, key)
	}

	var newLen int
	if !existed || wasExpired {
		stored := encodeValue(suffix, s.compressThreshold)
		st.items[key] = &entry{value: stored, expireAt: noExpiry}
		newLen = len(suffix)
		st.mu.Unlock()

		// An expired entry was physically removed above; reconcile
		// count/EP for that removal before accounting for the fresh
		// insert below (spec.md I1/I2) — otherwise a delete-then-insert
		// of the same key nets a phantom +1.
		if wasExpired {
			atomic.AddInt64(&s.count, -1)
			s.ep.RecordRemove(key)
		}
		atomic.AddInt64(&s.count, 1)
		s.ep.RecordPut(key)
	} else {
		existing, err := decodeValue(ent.value)
		if err != nil {
			st.mu.Unlock()
			return 0, err
		}
		combined := append(append([]byte{}, existing...), suffix...)
		ent.value = encodeValue(combined, s.compressThreshold)
		newLen = len(combined)
		st.mu.Unlock()
		s.ep.RecordPut(key)
	}

	if !replay {
		s.log.Append("APPEND", key, string(suffix))
		s.evictIfNeeded()
	}
	return newLen, nil
}

// Incr implements INCR (delta=1) and Decr implements DECR (delta=-1):
// if key is missing or expired, the new value is "1" or "-1"; else the
// existing value is parsed as a signed 64-bit integer and adjusted by
// delta. ErrNotInteger is returned when an existing value isn't
// numeric.
func (s *Store) Incr(key string) (int64, error) { return s.incrBy(key, 1, false) }
func (s *Store) Decr(key string) (int64, error) { return s.incrBy(key, -1, false) }

func (s *Store) incrBy(key string, delta int64, replay bool) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	st := s.stripeFor(key)
	now := nowMillis()

	st.mu.Lock()
	ent, existed := st.items[key]
	wasExpired := existed && ent.expiredAt(now)
	if wasExpired {
		delete(st.items, key)
	}

	var newVal int64
	if !existed || wasExpired {
		newVal = delta
		st.items[key] = &entry{value: encodeValue([]byte(strconv.FormatInt(newVal, 10)), s.compressThreshold), expireAt: noExpiry}
		st.mu.Unlock()

		// See appendOp: reconcile the expired entry's removal before
		// accounting for the fresh insert, so count/EP never drift
		// (spec.md I1/I2).
		if wasExpired {
			atomic.AddInt64(&s.count, -1)
			s.ep.RecordRemove(key)
		}
		atomic.AddInt64(&s.count, 1)
		s.ep.RecordPut(key)
	} else {
		raw, err := decodeValue(ent.value)
		if err != nil {
			st.mu.Unlock()
			return 0, err
		}
		cur, perr := strconv.ParseInt(string(raw), 10, 64)
		if perr != nil {
			st.mu.Unlock()
			return 0, ErrNotInteger
		}
		newVal = cur + delta
		ent.value = encodeValue([]byte(strconv.FormatInt(newVal, 10)), s.compressThreshold)
		st.mu.Unlock()
		s.ep.RecordPut(key)
	}

	if !replay {
		verb := "INCR"
		if delta < 0 {
			verb = "DECR"
		}
		s.log.Append(verb, key)
		s.evictIfNeeded()
	}
	return newVal, nil
}

// Strlen implements STRLEN: length in bytes, 0 if missing or expired.
func (s *Store) Strlen(key string) int {
	val, ok := s.peek(key)
	if !ok {
		return 0
	}
	return len(val)
}

// Type implements TYPE: "none", "string", "number", or "ttl_key".
func (s *Store) Type(key string) string {
	st := s.stripeFor(key)
	now := nowMillis()

	st.mu.Lock()
	ent, ok := st.items[key]
	if ok && ent.expiredAt(now) {
		delete(st.items, key)
		st.mu.Unlock()
		atomic.AddInt64(&s.count, -1)
		s.ep.RecordRemove(key)
		return "none"
	}
	if !ok {
		st.mu.Unlock()
		return "none"
	}

	hasTTL := ent.expireAt != noExpiry
	raw, err := decodeValue(ent.value)
	st.mu.Unlock()
	if err != nil {
		return "none"
	}
	if hasTTL {
		return "ttl_key"
	}
	if isNumeric(raw) {
		return "number"
	}
	return "string"
}

func isNumeric(raw []byte) bool {
	s := string(raw)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}

// peek reads the live decoded value for key without touching hit/miss
// counters or EP recency (used by STRLEN). It still lazily expires.
func (s *Store) peek(key string) ([]byte, bool) {
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
		return nil, false
	}
	if !ok {
		st.mu.Unlock()
		return nil, false
	}
	raw, err := decodeValue(ent.value)
	st.mu.Unlock()
	if err != nil {
		return nil, false
	}
	return raw, true
}
