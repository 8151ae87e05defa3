//go:build windows

package region

import "blockheap/internal/errs"

// NewMMap is not implemented on Windows, matching the teacher repo's own
// mmap package, which never grew a Windows implementation either.
func NewMMap(capacity int64) (Provider, error) {
	return nil, errs.ErrRegionUnsupported
}
