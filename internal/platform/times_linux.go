//go:build linux

package platform

import (
	"io/fs"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// fileTimesFromInfo reads atime/mtime from the stat result and the birth
// time through statx(2) when the filesystem records one.
func fileTimesFromInfo(path string, info fs.FileInfo) FileTimes {
	t := FileTimes{LastWrite: info.ModTime().UTC()}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		t.LastAccess = time.Unix(st.Atim.Sec, st.Atim.Nsec).UTC()
	}

	var sx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &sx); err == nil &&
		sx.Mask&unix.STATX_BTIME != 0 {
		t.Creation = time.Unix(sx.Btime.Sec, int64(sx.Btime.Nsec)).UTC()
	}
	return t
}
