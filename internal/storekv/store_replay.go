package storekv

import (
	"fmt"
	"strconv"
	"time"
)

// ApplyReplay dispatches one decoded DCL record during startup replay.
// It matches dcl.Handler's signature without storekv importing dcl, so
// main.go wires it as dcl.Replay(path, store.ApplyReplay). Every branch
// calls the unexported, non-appending twin of the public operation
// (spec.md §9's "replay mode": mutations must not re-enqueue to DCL,
// or the log doubles on every restart).
func (s *Store) ApplyReplay(verb string, args []string) error {
	switch verb {
	case "SET":
		if len(args) < 2 {
			return fmt.Errorf("SET: want at least 2 args, got %d", len(args))
		}
		var ttl time.Duration
		if len(args) >= 4 && args[2] == "PX" {
			ms, err := strconv.ParseInt(args[3], 10, 64)
			if err != nil {
				return fmt.Errorf("SET: bad PX value %q: %w", args[3], err)
			}
			// Known ambiguity (spec.md §4.3): PX stores a relative
			// duration, not an absolute deadline, so replaying a log
			// long after it was written extends the effective
			// deadline relative to real time. Preserved intentionally.
			ttl = time.Duration(ms) * time.Millisecond
		}
		return s.set(args[0], []byte(args[1]), ttl, true)

	case "DEL":
		if len(args) < 1 {
			return fmt.Errorf("DEL: want 1 arg, got %d", len(args))
		}
		s.del(args[0], true)
		return nil

	case "PERSIST":
		if len(args) < 1 {
			return fmt.Errorf("PERSIST: want 1 arg, got %d", len(args))
		}
		s.persist(args[0], true)
		return nil

	case "APPEND":
		if len(args) < 2 {
			return fmt.Errorf("APPEND: want 2 args, got %d", len(args))
		}
		_, err := s.appendOp(args[0], []byte(args[1]), true)
		return err

	case "INCR":
		if len(args) < 1 {
			return fmt.Errorf("INCR: want 1 arg, got %d", len(args))
		}
		_, err := s.incrBy(args[0], 1, true)
		return err

	case "DECR":
		if len(args) < 1 {
			return fmt.Errorf("DECR: want 1 arg, got %d", len(args))
		}
		_, err := s.incrBy(args[0], -1, true)
		return err

	case "MSET":
		if len(args)%2 != 0 || len(args) == 0 {
			return nil
		}
		for i := 0; i < len(args); i += 2 {
			_ = s.set(args[i], []byte(args[i+1]), 0, true)
		}
		return nil

	case "EXPIRE":
		if len(args) < 2 {
			return fmt.Errorf("EXPIRE: want 2 args, got %d", len(args))
		}
		secs, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("EXPIRE: bad seconds %q: %w", args[1], err)
		}
		s.expire(args[0], secs, true)
		return nil

	case "RENAME":
		if len(args) < 2 {
			return fmt.Errorf("RENAME: want 2 args, got %d", len(args))
		}
		s.rename(args[0], args[1], true)
		return nil

	case "FLUSHALL":
		s.flushAll(true)
		return nil

	default:
		return fmt.Errorf("unknown verb %q", verb)
	}
}
