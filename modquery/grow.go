package modquery

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Initial buffer capacities, doubled on every ENOSPC answer. The module
// list is small on typical systems; symbol lists for large modules can
// run to hundreds of kilobytes.
const (
	InitialModuleBuffer = 64
	InitialSymbolBuffer = 256
)

// Grow runs query against a fresh buffer, doubling its capacity on
// unix.ENOSPC until the query succeeds or fails with a different error.
// Growth stops at MaxBufferSize; breaching it is reported as
// ErrBufferLimit. On success the filled buffer and the item count are
// returned.
func Grow(initial int, query func(buf []byte) (int, error)) ([]byte, int, error) {
	for size := initial; ; size *= 2 {
		if size > MaxBufferSize {
			return nil, 0, fmt.Errorf("query answer exceeds %d bytes: %w",
				MaxBufferSize, ErrBufferLimit)
		}
		buf := make([]byte, size)
		n, err := query(buf)
		if err == nil {
			return buf, n, nil
		}
		if !errors.Is(err, unix.ENOSPC) {
			return nil, 0, err
		}
	}
}
