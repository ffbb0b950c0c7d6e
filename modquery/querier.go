// Package modquery talks to the operating system's loaded-module query
// facility. Results come back through a packed-buffer protocol: callers
// supply the buffer, the querier reports ENOSPC when it is too small,
// and the Grow helper retries with doubled capacity until the answer
// fits or the query fails for a different reason.
package modquery

import (
	"errors"
)

// ErrNotSupported is returned when the running kernel has no loadable
// module subsystem. Callers treat this as an informational condition,
// not a failure.
var ErrNotSupported = errors.New("kernel module subsystem not available")

// ErrBufferLimit is returned by Grow when the responder keeps asking
// for more space past MaxBufferSize.
var ErrBufferLimit = errors.New("module query buffer limit exceeded")

// MaxBufferSize caps the growth of any single query buffer.
const MaxBufferSize = 64 << 20

// Info is the fixed-size metadata record for one loaded module.
type Info struct {
	// Base is the load address of the module text.
	Base uint64
	// Pages is the mapped size in 4096-byte pages.
	Pages uint64
}

// Symbol is one exported symbol as reported by the OS, with the name
// copied out of the transport buffer into an owned string.
type Symbol struct {
	Value uint64
	Name  string
}

// Querier enumerates loaded modules and their exported symbols.
//
// QueryModules and QuerySymbols fill the caller-owned buf with the
// packed encodings of this package and return the number of items
// written. They return unix.ENOSPC when buf is too small for the full
// answer; every attempt is a fresh fill, no partial contents are
// preserved across retries.
type Querier interface {
	QueryModules(buf []byte) (int, error)
	QueryInfo(name string) (Info, error)
	QuerySymbols(name string, buf []byte) (int, error)
}
