package tcpapi

import (
	"errors"
	"testing"
	"time"

	"github.com/AutoCookies/atomkv/internal/storekv"
)

// fakeOps is a minimal in-memory stand-in for storekv.Store, just
// enough to exercise the dispatcher's parsing and reply framing
// without touching the real engine.
type fakeOps struct {
	data map[string]string
}

func newFakeOps() *fakeOps { return &fakeOps{data: make(map[string]string)} }

func (f *fakeOps) Get(key string) ([]byte, bool) {
	v, ok := f.data[key]
	if !ok {
		return nil, false
	}
	return []byte(v), true
}
func (f *fakeOps) Set(key string, value []byte, ttl time.Duration) error {
	f.data[key] = string(value)
	return nil
}
func (f *fakeOps) Del(key string) bool {
	_, ok := f.data[key]
	delete(f.data, key)
	return ok
}
func (f *fakeOps) Exists(key string) bool { _, ok := f.data[key]; return ok }
func (f *fakeOps) TTL(key string) int64 {
	if _, ok := f.data[key]; ok {
		return -1
	}
	return -2
}
func (f *fakeOps) Persist(key string) bool { return false }
func (f *fakeOps) Expire(key string, seconds int64) bool {
	_, ok := f.data[key]
	return ok
}
func (f *fakeOps) Append(key string, suffix []byte) (int, error) {
	f.data[key] += string(suffix)
	return len(f.data[key]), nil
}
func (f *fakeOps) Incr(key string) (int64, error) { return 0, errors.New("not implemented") }
func (f *fakeOps) Decr(key string) (int64, error) { return 0, storekv.ErrNotInteger }
func (f *fakeOps) Strlen(key string) int           { return len(f.data[key]) }
func (f *fakeOps) Type(key string) string {
	if _, ok := f.data[key]; ok {
		return "string"
	}
	return "none"
}
func (f *fakeOps) Keys(pattern string) []string {
	var out []string
	for k := range f.data {
		out = append(out, k)
	}
	return out
}
func (f *fakeOps) MGet(keys []string) [][]byte {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := f.data[k]; ok {
			out[i] = []byte(v)
		}
	}
	return out
}
func (f *fakeOps) MSet(kvs []string) {
	for i := 0; i+1 < len(kvs); i += 2 {
		f.data[kvs[i]] = kvs[i+1]
	}
}
func (f *fakeOps) Rename(src, dst string) bool {
	v, ok := f.data[src]
	if !ok {
		return false
	}
	delete(f.data, src)
	f.data[dst] = v
	return true
}
func (f *fakeOps) FlushAll() { f.data = make(map[string]string) }

func TestDispatcherBasicCommands(t *testing.T) {
	ops := newFakeOps()
	d := NewDispatcher(ops)

	if reply, quit := d.Handle("PING"); reply != replyPong || quit {
		t.Fatalf("PING: got %q, quit=%v", reply, quit)
	}

	if reply, _ := d.Handle("SET foo bar"); reply != replyOK {
		t.Fatalf("SET: got %q", reply)
	}

	if reply, _ := d.Handle("GET foo"); reply != "+bar\n" {
		t.Fatalf("GET: got %q", reply)
	}

	if reply, _ := d.Handle("GET missing"); reply != replyNil {
		t.Fatalf("GET miss: got %q", reply)
	}

	if reply, _ := d.Handle("DEL foo"); reply != ":1\n" {
		t.Fatalf("DEL: got %q", reply)
	}

	if reply, _ := d.Handle("DEL foo"); reply != ":0\n" {
		t.Fatalf("DEL miss: got %q", reply)
	}
}

func TestDispatcherWrongArgs(t *testing.T) {
	d := NewDispatcher(newFakeOps())
	if reply, _ := d.Handle("GET"); reply != errWrongArgs {
		t.Fatalf("expected wrong-args error, got %q", reply)
	}
	if reply, _ := d.Handle("SET onlykey"); reply != errWrongArgs {
		t.Fatalf("expected wrong-args error, got %q", reply)
	}
}

func TestDispatcherRenameNoSuchKey(t *testing.T) {
	d := NewDispatcher(newFakeOps())
	if reply, _ := d.Handle("RENAME a b"); reply != errNoSuchKey {
		t.Fatalf("expected no-such-key error, got %q", reply)
	}
}

func TestDispatcherUnknownCommand(t *testing.T) {
	d := NewDispatcher(newFakeOps())
	if reply, _ := d.Handle("BOGUS a b"); reply != errUnknownVerb {
		t.Fatalf("expected unknown-command error, got %q", reply)
	}
}

func TestDispatcherQuit(t *testing.T) {
	d := NewDispatcher(newFakeOps())
	reply, quit := d.Handle("QUIT")
	if reply != replyBye || !quit {
		t.Fatalf("QUIT: got %q, quit=%v", reply, quit)
	}
}

func TestDispatcherSetWithPX(t *testing.T) {
	ops := newFakeOps()
	d := NewDispatcher(ops)
	if reply, _ := d.Handle("SET k v PX 1000"); reply != replyOK {
		t.Fatalf("SET with PX: got %q", reply)
	}
	if v, ok := ops.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("expected k=v to be set")
	}
}

func TestDispatcherBlankLine(t *testing.T) {
	d := NewDispatcher(newFakeOps())
	if reply, quit := d.Handle(""); reply != "" || quit {
		t.Fatalf("expected blank line to be silently ignored, got %q quit=%v", reply, quit)
	}
}
