// Package storekv is the key-value engine (KVE): the concurrent map
// with TTL, the counters, and the dispatcher that keeps the eviction
// policy and the durable command log in sync with the map (spec.md
// §4.1). The map itself is striped the way the teacher's
// internal/engine.Store shards its container/list-backed shards
// (internal/engine/store.go getShard/hashToShardIndex), but recency
// tracking lives entirely in the eviction.Policy so that LRU order is
// global and deterministic rather than per-stripe-approximate.
package storekv

import (
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AutoCookies/atomkv/internal/eviction"
)

const stripeCount = 32

type stripe struct {
	mu    sync.RWMutex
	items map[string]*entry
}

// Appender is the subset of dcl.Log the store needs: enqueue a
// mutation record. Kept as a narrow interface so storekv has no
// compile-time dependency on the dcl package, and so tests can supply
// a no-op/fake appender.
type Appender interface {
	Append(verb string, args ...string)
}

type noopAppender struct{}

func (noopAppender) Append(string, ...string) {}

// Store is the KVE: a striped concurrent map plus the counters and
// collaborators (EP, DCL) spec.md §3-4.1 describe together.
type Store struct {
	stripes   []*stripe
	capacity  int
	count     int64 // atomic: live-or-not-yet-swept entries across all stripes
	hits      uint64
	misses    uint64
	evictions uint64

	ep  eviction.Policy
	log Appender

	compressThreshold int
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithAppender wires a durable command log. Without this option the
// store runs with DCL disabled (every Append is a no-op), matching
// spec.md's "if DCL is enabled" qualifier on invariant I3.
func WithAppender(a Appender) Option {
	return func(s *Store) { s.log = a }
}

// WithCompressionThreshold enables the transparent snappy codec (see
// codec.go) for values at or above n bytes. n <= 0 disables it.
func WithCompressionThreshold(n int) Option {
	return func(s *Store) { s.compressThreshold = n }
}

// WithEvictionPolicy overrides the default LRU policy. EP is
// polymorphic over {RecordAccess, RecordPut, RecordRemove,
// EvictIfNeeded, Capacity} per spec.md §4.2/§9 ("Eviction as a
// capability").
func WithEvictionPolicy(p eviction.Policy) Option {
	return func(s *Store) { s.ep = p }
}

// New constructs a Store with the given capacity (clamped to >= 1 by
// the eviction policy) and options.
func New(capacity int, opts ...Option) *Store {
	s := &Store{
		stripes:  make([]*stripe, stripeCount),
		capacity: capacity,
		log:      noopAppender{},
	}
	for i := range s.stripes {
		s.stripes[i] = &stripe{items: make(map[string]*entry)}
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ep == nil {
		s.ep = eviction.NewLRU(capacity)
	}
	return s
}

func (s *Store) stripeFor(key string) *stripe {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.stripes[h.Sum32()%uint32(len(s.stripes))]
}

func nowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// Get implements spec.md's GET: returns the value and true on a live
// hit, or (nil, false) on a miss (missing or lazily-expired key).
func (s *Store) Get(key string) ([]byte, bool) {
	st := s.stripeFor(key)
	now := nowMillis()

	st.mu.Lock()
	ent, ok := st.items[key]
	if !ok {
		st.mu.Unlock()
		atomic.AddUint64(&s.misses, 1)
		return nil, false
	}
	if ent.expiredAt(now) {
		delete(st.items, key)
		st.mu.Unlock()
		atomic.AddInt64(&s.count, -1)
		s.ep.RecordRemove(key)
		atomic.AddUint64(&s.misses, 1)
		return nil, false
	}
	raw, err := decodeValue(ent.value)
	st.mu.Unlock()

	if err != nil {
		atomic.AddUint64(&s.misses, 1)
		return nil, false
	}

	s.ep.RecordAccess(key)
	atomic.AddUint64(&s.hits, 1)
	return raw, true
}

// Set implements SET: replaces (or creates) key, resetting its TTL to
// ttl (ttl <= 0 means no expiration).
func (s *Store) Set(key string, value []byte, ttl time.Duration) error {
	return s.set(key, value, ttl, false)
}

func (s *Store) set(key string, value []byte, ttl time.Duration, replay bool) error {
	if key == "" {
		return ErrEmptyKey
	}

	expireAt := noExpiry
	if ttl > 0 {
		expireAt = nowMillis() + ttl.Milliseconds()
	}

	stored := encodeValue(value, s.compressThreshold)

	st := s.stripeFor(key)
	st.mu.Lock()
	_, existed := st.items[key]
	st.items[key] = &entry{value: stored, expireAt: expireAt}
	st.mu.Unlock()

	if !existed {
		atomic.AddInt64(&s.count, 1)
	}
	s.ep.RecordPut(key)

	if !replay {
		if ttl > 0 {
			s.log.Append("SET", key, string(value), "PX", strconv.FormatInt(ttl.Milliseconds(), 10))
		} else {
			s.log.Append("SET", key, string(value))
		}
		s.evictIfNeeded()
	}

	return nil
}

// Del implements DEL: returns true iff a live key was removed.
func (s *Store) Del(key string) bool {
	return s.del(key, false)
}

func (s *Store) del(key string, replay bool) bool {
	st := s.stripeFor(key)
	now := nowMillis()

	st.mu.Lock()
	ent, existed := st.items[key]
	expired := existed && ent.expiredAt(now)
	if existed {
		delete(st.items, key)
	}
	st.mu.Unlock()

	if !existed {
		return false
	}

	// The key was physically in the map (live or not-yet-swept), so the
	// removal above must be reconciled against count/EP either way
	// (spec.md I1). An expired key reports "not removed" to the caller
	// and is not logged: it wasn't live, so DEL didn't do anything a
	// client could observe.
	atomic.AddInt64(&s.count, -1)
	s.ep.RecordRemove(key)

	if expired {
		return false
	}

	if !replay {
		s.log.Append("DEL", key)
	}
	return true
}

// Exists implements EXISTS: lazily expires the key on read. It does
// not touch the hit/miss counters or EP recency; an expired key it
// removes is dropped from EP like any other lazy expiry.
func (s *Store) Exists(key string) bool {
	st := s.stripeFor(key)
	now := nowMillis()

	st.mu.Lock()
	ent, ok := st.items[key]
	expired := ok && ent.expiredAt(now)
	if expired {
		delete(st.items, key)
	}
	st.mu.Unlock()

	if !ok {
		return false
	}
	if expired {
		atomic.AddInt64(&s.count, -1)
		s.ep.RecordRemove(key)
		return false
	}
	return true
}
