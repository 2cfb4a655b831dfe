package storekv

import "errors"

// Sentinel errors mutating operations can return. Adapters (tcpapi)
// map these to protocol-specific replies instead of string-matching
// error text.
var (
	// ErrNotInteger is returned by INCR/DECR when the existing value
	// cannot be parsed as a signed 64-bit integer.
	ErrNotInteger = errors.New("value is not an integer")
	// ErrEmptyKey is returned when an operation is given an empty key.
	ErrEmptyKey = errors.New("key must not be empty")
)
