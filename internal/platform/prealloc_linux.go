//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves size bytes for the destination so a full volume is
// reported before any data moves. Filesystems without fallocate(2) are
// tolerated; only ENOSPC and EDQUOT are returned.
//
//nolint:gosec // G115: fd values are small non-negative integers
func preallocate(f *os.File, size int64) error {
	if size <= 0 {
		return nil
	}
	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	if errors.Is(err, unix.ENOSPC) || errors.Is(err, unix.EDQUOT) {
		return err
	}
	return nil
}
