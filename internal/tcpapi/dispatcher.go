package tcpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/AutoCookies/atomkv/internal/storekv"
	"github.com/AutoCookies/atomkv/internal/telemetry"
)

// Ops is the subset of storekv.Store the TCP protocol drives. Kept as
// an interface so dispatcher tests can supply a fake store.
type Ops interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Del(key string) bool
	Exists(key string) bool
	TTL(key string) int64
	Persist(key string) bool
	Expire(key string, seconds int64) bool
	Append(key string, suffix []byte) (int, error)
	Incr(key string) (int64, error)
	Decr(key string) (int64, error)
	Strlen(key string) int
	Type(key string) string
	Keys(pattern string) []string
	MGet(keys []string) [][]byte
	MSet(kvs []string)
	Rename(src, dst string) bool
	FlushAll()
}

// Dispatcher turns one protocol line into a RESP-lite reply, per
// spec.md §6, grounded on the Java original's ClientHandler.run
// switch statement line by line.
type Dispatcher struct {
	ops Ops
}

func NewDispatcher(ops Ops) *Dispatcher {
	return &Dispatcher{ops: ops}
}

const (
	errWrongArgs   = "-ERR wrong number of args\n"
	errInvalidNum  = "-ERR invalid number\n"
	errNotInteger  = "-ERR value is not an integer\n"
	errNoSuchKey   = "-ERR no such key\n"
	errUnknownVerb = "-ERR unknown command\n"
	replyOK        = "+OK\n"
	replyNil       = "$-1\n"
	replyPong      = "+PONG\n"
	replyBye       = "+BYE\n"
)

// Handle parses and executes one line, returning the reply to write
// (may be empty for a malformed blank line) and whether the
// connection should close (QUIT).
func (d *Dispatcher) Handle(line string) (reply string, quit bool) {
	line = strings.TrimRight(line, "\r")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	// Cap of 4 tokens per spec.md §6: the 4th token carries the
	// entire "PX <ms>" tail for SET unsplit.
	parts := strings.SplitN(line, " ", 4)
	verb := strings.ToUpper(parts[0])

	defer func() {
		telemetry.CommandsTotal.WithLabelValues(verb, outcome(reply)).Inc()
	}()

	switch verb {
	case "PING":
		return replyPong, false

	case "QUIT":
		return replyBye, true

	case "GET":
		if len(parts) < 2 {
			return errWrongArgs, false
		}
		val, ok := d.ops.Get(parts[1])
		if !ok {
			return replyNil, false
		}
		return "+" + string(val) + "\n", false

	case "SET":
		if len(parts) < 3 {
			return errWrongArgs, false
		}
		ttl, ok := parsePX(parts, 3)
		if !ok {
			return errInvalidNum, false
		}
		if err := d.ops.Set(parts[1], []byte(parts[2]), ttl); err != nil {
			return errReply(err), false
		}
		return replyOK, false

	case "DEL":
		if len(parts) < 2 {
			return errWrongArgs, false
		}
		return boolReply(d.ops.Del(parts[1])), false

	case "EXISTS":
		if len(parts) < 2 {
			return errWrongArgs, false
		}
		return boolReply(d.ops.Exists(parts[1])), false

	case "TTL":
		if len(parts) < 2 {
			return errWrongArgs, false
		}
		return ":" + strconv.FormatInt(d.ops.TTL(parts[1]), 10) + "\n", false

	case "PERSIST":
		if len(parts) < 2 {
			return errWrongArgs, false
		}
		return boolReply(d.ops.Persist(parts[1])), false

	case "EXPIRE":
		if len(parts) < 3 {
			return errWrongArgs, false
		}
		secs, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return errInvalidNum, false
		}
		return boolReply(d.ops.Expire(parts[1], secs)), false

	case "APPEND":
		if len(parts) < 3 {
			return errWrongArgs, false
		}
		n, err := d.ops.Append(parts[1], []byte(parts[2]))
		if err != nil {
			return errReply(err), false
		}
		return ":" + strconv.Itoa(n) + "\n", false

	case "INCR":
		if len(parts) < 2 {
			return errWrongArgs, false
		}
		v, err := d.ops.Incr(parts[1])
		if err != nil {
			return errReply(err), false
		}
		return ":" + strconv.FormatInt(v, 10) + "\n", false

	case "DECR":
		if len(parts) < 2 {
			return errWrongArgs, false
		}
		v, err := d.ops.Decr(parts[1])
		if err != nil {
			return errReply(err), false
		}
		return ":" + strconv.FormatInt(v, 10) + "\n", false

	case "STRLEN":
		if len(parts) < 2 {
			return errWrongArgs, false
		}
		return ":" + strconv.Itoa(d.ops.Strlen(parts[1])) + "\n", false

	case "TYPE":
		if len(parts) < 2 {
			return errWrongArgs, false
		}
		return "+" + d.ops.Type(parts[1]) + "\n", false

	case "KEYS":
		pattern := "*"
		if len(parts) >= 2 {
			pattern = parts[1]
		}
		keys := d.ops.Keys(pattern)
		if len(keys) == 0 {
			return replyNil, false
		}
		var sb strings.Builder
		for _, k := range keys {
			sb.WriteByte('+')
			sb.WriteString(k)
			sb.WriteByte('\n')
		}
		return sb.String(), false

	case "MGET":
		if len(parts) < 2 {
			return errWrongArgs, false
		}
		keys := strings.Fields(strings.Join(parts[1:], " "))
		vals := d.ops.MGet(keys)
		var sb strings.Builder
		for _, v := range vals {
			if v == nil {
				sb.WriteString(replyNil)
			} else {
				sb.WriteByte('+')
				sb.Write(v)
				sb.WriteByte('\n')
			}
		}
		return sb.String(), false

	case "MSET":
		if len(parts) < 3 {
			return errWrongArgs, false
		}
		kv := strings.Fields(strings.Join(parts[1:], " "))
		if len(kv)%2 != 0 {
			return errWrongArgs, false
		}
		d.ops.MSet(kv)
		return replyOK, false

	case "RENAME":
		if len(parts) < 3 {
			return errWrongArgs, false
		}
		dst := parts[2]
		if idx := strings.IndexByte(dst, ' '); idx >= 0 {
			dst = dst[:idx]
		}
		if d.ops.Rename(parts[1], dst) {
			return replyOK, false
		}
		return errNoSuchKey, false

	case "FLUSHALL":
		d.ops.FlushAll()
		return replyOK, false

	default:
		return errUnknownVerb, false
	}
}

// parsePX parses an optional "PX <ms>" tail starting at parts[idx]
// (the already-capped 4th token, itself unsplit). Absent tail means
// no TTL; a malformed PX value is reported to the caller as invalid.
func parsePX(parts []string, idx int) (time.Duration, bool) {
	if len(parts) <= idx {
		return 0, true
	}
	toks := strings.Fields(parts[idx])
	if len(toks) < 2 || !strings.EqualFold(toks[0], "PX") {
		return 0, true
	}
	ms, err := strconv.ParseInt(toks[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

func boolReply(b bool) string {
	if b {
		return ":1\n"
	}
	return ":0\n"
}

func errReply(err error) string {
	if errors.Is(err, storekv.ErrNotInteger) {
		return errNotInteger
	}
	return "-ERR " + err.Error() + "\n"
}

// outcome classifies a reply for the atomkv_tcp_commands_total counter.
func outcome(reply string) string {
	if strings.HasPrefix(reply, "-ERR") {
		return "error"
	}
	return "ok"
}
