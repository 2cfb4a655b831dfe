package storekv

// entry is the storage unit for one key, matching spec.md §3: an
// opaque byte string plus an absolute expiry in epoch milliseconds, or
// noExpiry when the key never expires. value is replaced wholesale by
// SET and by APPEND/INCR/DECR's read-modify-write, never mutated in
// place, so a concurrent reader under the stripe's read path always
// observes either the whole old value or the whole new one.
type entry struct {
	value    []byte
	expireAt int64 // epoch millis, noExpiry (-1) means no TTL
}

const noExpiry int64 = -1

func (e *entry) expiredAt(nowMillis int64) bool {
	return e.expireAt != noExpiry && e.expireAt <= nowMillis
}
