//go:build unix && !linux && !darwin

package platform

import "io/fs"

// fileTimesFromInfo falls back to mtime for the access time; the stat layout
// differs across the remaining BSDs.
func fileTimesFromInfo(_ string, info fs.FileInfo) FileTimes {
	mtime := info.ModTime().UTC()
	return FileTimes{LastAccess: mtime, LastWrite: mtime}
}
