//go:build unix

package platform

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func detect() Capabilities {
	caps := Capabilities{OSVersion: runtime.GOOS}
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		caps.OSVersion = runtime.GOOS + " " + unix.ByteSliceToString(uts.Release[:])
	}
	return caps
}
