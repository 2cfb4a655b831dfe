package dcl

import (
	"fmt"
	"strings"
)

// Encode renders verb and args as a single DCL record line (without
// the trailing newline). Each field is trimmed; a field containing a
// space, '\n' or '\r' is wrapped in double quotes with embedded quotes
// backslash-escaped. A null/empty field serializes as an empty token
// (matches spec.md §4.3 and the Java original's `escape`).
func Encode(verb string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, verb)
	for _, a := range args {
		parts = append(parts, escapeField(a))
	}
	return strings.Join(parts, " ")
}

func escapeField(s string) string {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, " \n\r") {
		s = strings.ReplaceAll(s, `"`, `\"`)
		return `"` + s + `"`
	}
	return s
}

// Decode splits a DCL record line into its verb and arguments,
// honoring double-quoted regions (a quote character toggles quoted
// mode; it is retained during splitting and stripped, with embedded
// `\"` unescaped, once a field is extracted). Mirrors the Java
// original's splitPreserveQuotes + unescape pair.
func Decode(line string) (verb string, args []string, err error) {
	fields := splitPreserveQuotes(line)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty record")
	}

	verb = strings.ToUpper(fields[0])
	args = make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		args = append(args, unescapeField(f))
	}
	return verb, args, nil
}

func unescapeField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		inner := s[1 : len(s)-1]
		return strings.ReplaceAll(inner, `\"`, `"`)
	}
	return s
}

func splitPreserveQuotes(line string) []string {
	var parts []string
	var cur strings.Builder
	inQuotes := false

	for _, c := range line {
		switch {
		case c == '"':
			inQuotes = !inQuotes
			cur.WriteRune(c)
		case c == ' ' && !inQuotes:
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(c)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
