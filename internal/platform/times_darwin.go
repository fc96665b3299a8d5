//go:build darwin

package platform

import (
	"io/fs"
	"syscall"
	"time"
)

func fileTimesFromInfo(_ string, info fs.FileInfo) FileTimes {
	t := FileTimes{LastWrite: info.ModTime().UTC()}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		t.LastAccess = time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec).UTC()
		t.Creation = time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec).UTC()
	}
	return t
}
