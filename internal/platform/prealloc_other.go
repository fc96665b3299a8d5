//go:build unix && !linux

package platform

import "os"

// preallocate is a no-op where fallocate(2) is unavailable; a full volume
// surfaces from the first failing write instead.
func preallocate(*os.File, int64) error { return nil }
