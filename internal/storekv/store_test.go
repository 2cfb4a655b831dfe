package storekv

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestSetGetDel(t *testing.T) {
	s := New(16)
	key := "hello"
	val := []byte("world")

	if err := s.Set(key, val, 0); err != nil {
		t.Fatalf("unexpected Set error: %v", err)
	}

	got, ok := s.Get(key)
	if !ok {
		t.Fatalf("expected key present")
	}
	if string(got) != "world" {
		t.Fatalf("unexpected value: %s", got)
	}

	if !s.Del(key) {
		t.Fatalf("expected Del to report removal")
	}
	if _, ok := s.Get(key); ok {
		t.Fatalf("expected key deleted")
	}
	if s.Del(key) {
		t.Fatalf("expected second Del to report no-op")
	}
}

func TestGetMissIncrementsMisses(t *testing.T) {
	s := New(16)
	_, _ = s.Get("absent")
	_, _ = s.Get("absent")
	_ = s.Set("present", []byte("v"), 0)
	_, _ = s.Get("present")

	stats := s.Stats()
	if stats.Misses != 2 {
		t.Fatalf("expected 2 misses, got %d", stats.Misses)
	}
	if stats.Hits != 1 {
		t.Fatalf("expected 1 hit, got %d", stats.Hits)
	}
}

func TestTTLExpiration(t *testing.T) {
	s := New(8)
	key := "temp"
	_ = s.Set(key, []byte("v"), 30*time.Millisecond)

	if _, ok := s.Get(key); !ok {
		t.Fatalf("expected key present immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := s.Get(key); ok {
		t.Fatalf("expected key expired")
	}
	if ttl := s.TTL(key); ttl != -2 {
		t.Fatalf("expected TTL -2 for expired key, got %d", ttl)
	}
}

func TestTTLNoExpiry(t *testing.T) {
	s := New(8)
	_ = s.Set("k", []byte("v"), 0)
	if ttl := s.TTL("k"); ttl != -1 {
		t.Fatalf("expected -1 for key with no TTL, got %d", ttl)
	}
	if ttl := s.TTL("missing"); ttl != -2 {
		t.Fatalf("expected -2 for missing key, got %d", ttl)
	}
}

func TestPersistClearsTTL(t *testing.T) {
	s := New(8)
	_ = s.Set("k", []byte("v"), time.Minute)

	if !s.Persist("k") {
		t.Fatalf("expected Persist to report TTL cleared")
	}
	if s.Persist("k") {
		t.Fatalf("expected second Persist on already-persistent key to report false")
	}
	if s.TTL("k") != -1 {
		t.Fatalf("expected no TTL after Persist")
	}
	if s.Persist("missing") {
		t.Fatalf("expected Persist on missing key to report false")
	}
}

func TestExpireSetsTTL(t *testing.T) {
	s := New(8)
	_ = s.Set("k", []byte("v"), 0)

	if !s.Expire("k", 100) {
		t.Fatalf("expected Expire to report success")
	}
	ttl := s.TTL("k")
	if ttl <= 0 || ttl > 100*1000 {
		t.Fatalf("unexpected TTL after Expire: %d", ttl)
	}
	if s.Expire("missing", 10) {
		t.Fatalf("expected Expire on missing key to report false")
	}
}

func TestAppend(t *testing.T) {
	s := New(8)

	n, err := s.Append("k", []byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected length 5, got %d", n)
	}

	n, err = s.Append("k", []byte(" world"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 11 {
		t.Fatalf("expected length 11, got %d", n)
	}

	v, _ := s.Get("k")
	if string(v) != "hello world" {
		t.Fatalf("unexpected value: %s", v)
	}
}

func TestIncrDecr(t *testing.T) {
	s := New(8)

	v, err := s.Incr("counter")
	if err != nil || v != 1 {
		t.Fatalf("expected 1, got %d, err %v", v, err)
	}

	v, err = s.Incr("counter")
	if err != nil || v != 2 {
		t.Fatalf("expected 2, got %d, err %v", v, err)
	}

	v, err = s.Decr("counter")
	if err != nil || v != 1 {
		t.Fatalf("expected 1, got %d, err %v", v, err)
	}

	_ = s.Set("notanumber", []byte("abc"), 0)
	if _, err := s.Incr("notanumber"); err != ErrNotInteger {
		t.Fatalf("expected ErrNotInteger, got %v", err)
	}
}

func TestStrlenAndType(t *testing.T) {
	s := New(8)
	_ = s.Set("str", []byte("hello"), 0)
	_ = s.Set("num", []byte("42"), 0)
	_ = s.Set("ttlk", []byte("x"), time.Minute)

	if s.Strlen("str") != 5 {
		t.Fatalf("unexpected strlen")
	}
	if s.Strlen("missing") != 0 {
		t.Fatalf("expected 0 strlen for missing key")
	}

	if typ := s.Type("str"); typ != "string" {
		t.Fatalf("expected string, got %s", typ)
	}
	if typ := s.Type("num"); typ != "number" {
		t.Fatalf("expected number, got %s", typ)
	}
	if typ := s.Type("ttlk"); typ != "ttl_key" {
		t.Fatalf("expected ttl_key, got %s", typ)
	}
	if typ := s.Type("missing"); typ != "none" {
		t.Fatalf("expected none, got %s", typ)
	}
}

func TestMGetMSet(t *testing.T) {
	s := New(8)
	s.MSet([]string{"a", "1", "b", "2"})

	vals := s.MGet([]string{"a", "b", "c"})
	if string(vals[0]) != "1" || string(vals[1]) != "2" || vals[2] != nil {
		t.Fatalf("unexpected MGet result: %v", vals)
	}

	// odd length is a silent no-op.
	s.MSet([]string{"x", "1", "y"})
	if _, ok := s.Get("x"); ok {
		t.Fatalf("expected odd-length MSet to be a no-op")
	}
}

func TestRename(t *testing.T) {
	s := New(8)
	_ = s.Set("src", []byte("v"), time.Minute)

	if !s.Rename("src", "dst") {
		t.Fatalf("expected Rename to succeed")
	}
	if _, ok := s.Get("src"); ok {
		t.Fatalf("expected src gone after rename")
	}
	v, ok := s.Get("dst")
	if !ok || string(v) != "v" {
		t.Fatalf("expected dst to hold renamed value")
	}
	if s.TTL("dst") <= 0 {
		t.Fatalf("expected dst to preserve TTL")
	}

	if s.Rename("missing", "other") {
		t.Fatalf("expected Rename on missing src to fail")
	}
}

func TestFlushAll(t *testing.T) {
	s := New(8)
	_ = s.Set("a", []byte("1"), 0)
	_ = s.Set("b", []byte("2"), 0)

	s.FlushAll()

	if s.Count() != 0 {
		t.Fatalf("expected 0 keys after FlushAll")
	}
	if _, ok := s.Get("a"); ok {
		t.Fatalf("expected a gone after FlushAll")
	}
}

func TestKeysPattern(t *testing.T) {
	s := New(8)
	_ = s.Set("user:1", []byte("a"), 0)
	_ = s.Set("user:2", []byte("b"), 0)
	_ = s.Set("order:1", []byte("c"), 0)

	matches := s.Keys("user:*")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %v", len(matches), matches)
	}

	all := s.Keys("")
	if len(all) != 3 {
		t.Fatalf("expected empty pattern to match all, got %d", len(all))
	}
}

func TestEvictionRespectsCapacity(t *testing.T) {
	s := New(3)
	_ = s.Set("a", []byte("1"), 0)
	_ = s.Set("b", []byte("2"), 0)
	_ = s.Set("c", []byte("3"), 0)

	// touch "a" so it becomes the most recently used.
	_, _ = s.Get("a")

	_ = s.Set("d", []byte("4"), 0)

	if s.Count() > 3 {
		t.Fatalf("expected capacity to be respected, count=%d", s.Count())
	}
	if _, ok := s.Get("a"); !ok {
		t.Fatalf("expected recently-touched key a to survive eviction")
	}
	if _, ok := s.Get("b"); ok {
		t.Fatalf("expected least-recently-used key b to be evicted")
	}
}

func TestEvictionRespectsCapacityAcrossIncrAndAppend(t *testing.T) {
	s := New(2)

	_, _ = s.Incr("counter-1")
	_, _ = s.Incr("counter-2")
	_, err := s.Append("fresh-key", []byte("v"))
	if err != nil {
		t.Fatalf("unexpected Append error: %v", err)
	}

	if s.Count() > 2 {
		t.Fatalf("expected INCR/APPEND growth to respect capacity, count=%d", s.Count())
	}
	if _, ok := s.Get("counter-1"); ok {
		t.Fatalf("expected the oldest key (counter-1) to have been evicted")
	}
}

func TestDelOnExpiredKeyReconcilesCountAndEP(t *testing.T) {
	s := New(8)
	_ = s.Set("k", []byte("v"), 20*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	// k is physically still in the map (not yet swept) but logically
	// expired: Del must report false (nothing live was removed) while
	// still reconciling count/EP for the entry it deletes.
	if s.Del("k") {
		t.Fatalf("expected Del on an expired key to report false")
	}
	if got := s.Stats().Keys; got != 0 {
		t.Fatalf("expected count to be reconciled after deleting an expired entry, got %d", got)
	}
	if victim, ok := s.ep.EvictIfNeeded(s.capacity + 1); ok {
		t.Fatalf("expected EP to no longer track the deleted expired entry, got victim %q", victim)
	}
}

func TestAppendOnExpiredKeyDoesNotInflateCount(t *testing.T) {
	s := New(8)
	_ = s.Set("k", []byte("old"), 20*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	n, err := s.Append("k", []byte("new"))
	if err != nil {
		t.Fatalf("unexpected Append error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected fresh value length 3, got %d", n)
	}
	if got := s.Stats().Keys; got != 1 {
		t.Fatalf("expected count to stay at 1 key, got %d", got)
	}
}

func TestIncrOnExpiredKeyDoesNotInflateCount(t *testing.T) {
	s := New(8)
	_ = s.Set("k", []byte("99"), 20*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	v, err := s.Incr("k")
	if err != nil || v != 1 {
		t.Fatalf("expected Incr on expired key to reset to 1, got %d, err %v", v, err)
	}
	if got := s.Stats().Keys; got != 1 {
		t.Fatalf("expected count to stay at 1 key, got %d", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New(32)
	const goroutines = 50
	const opsPer = 500

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < opsPer; i++ {
				k := fmt.Sprintf("k-%d", i%100)
				v := []byte(strconv.Itoa(id*opsPer + i))
				_ = s.Set(k, v, 0)
				_, _ = s.Get(k)
				if i%10 == 0 {
					s.Del(k)
				}
			}
		}(g)
	}
	wg.Wait()

	stats := s.Stats()
	if stats.Keys < 0 {
		t.Fatalf("invalid key count")
	}
}
