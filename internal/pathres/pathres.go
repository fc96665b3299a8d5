// Package pathres turns caller-supplied paths into the form handed to the
// native copy and move primitives.
package pathres

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Format selects how a path is resolved before the native call.
type Format int

const (
	// RelativePath accepts a path relative to the working directory and
	// resolves it to the canonical absolute form, extended-length on Windows.
	RelativePath Format = iota
	// FullPath makes the path absolute and clean.
	FullPath
	// LongFullPath is FullPath plus the Windows extended-length prefix, which
	// lifts the MAX_PATH limit. Elsewhere it equals FullPath.
	LongFullPath
)

var formatNames = [...]string{
	RelativePath: "relative",
	FullPath:     "full",
	LongFullPath: "long",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat accepts the names printed by Format.String.
func ParseFormat(s string) (Format, error) {
	for i, n := range formatNames {
		if strings.EqualFold(s, n) {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown path format %q (want relative, full or long)", s)
}

const (
	longPrefix    = `\\?\`
	longUNCPrefix = `\\?\UNC\`
	devicePrefix  = `\\.\`
)

const windowsPaths = runtime.GOOS == "windows"

// ErrEmptyPath is returned for an empty path.
var ErrEmptyPath = errors.New("pathres: empty path")

// Resolve converts path according to f.
func Resolve(path string, f Format) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	switch f {
	case RelativePath, FullPath, LongFullPath:
		if windowsPaths && strings.HasPrefix(path, longPrefix) {
			return path, nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", path, err)
		}
		if f != FullPath && windowsPaths {
			return LongPath(abs), nil
		}
		return abs, nil
	default:
		return "", fmt.Errorf("resolving %s: unknown format %d", path, int(f))
	}
}

// LongPath adds the extended-length prefix to an absolute Windows path:
// `C:\x` becomes `\\?\C:\x` and `\\server\share\x` becomes
// `\\?\UNC\server\share\x`. Paths already prefixed, device paths and
// anything else are returned unchanged.
func LongPath(path string) string {
	switch {
	case strings.HasPrefix(path, longPrefix), strings.HasPrefix(path, devicePrefix):
		return path
	case isUNC(path):
		return longUNCPrefix + strings.ReplaceAll(path[2:], "/", `\`)
	case hasDrive(path) && len(path) > 2 && isSep(path[2]):
		return longPrefix + strings.ReplaceAll(path, "/", `\`)
	default:
		return path
	}
}

// StripLongPrefix undoes LongPath.
func StripLongPrefix(path string) string {
	switch {
	case strings.HasPrefix(path, longUNCPrefix):
		return `\\` + path[len(longUNCPrefix):]
	case strings.HasPrefix(path, longPrefix):
		return path[len(longPrefix):]
	default:
		return path
	}
}

// IsNetwork reports whether path names a remote location: a UNC path, in
// plain or extended-length form, or on Windows a drive mapped to a share.
func IsNetwork(path string) bool {
	if strings.HasPrefix(path, longUNCPrefix) || isUNC(path) {
		return true
	}
	p := StripLongPrefix(path)
	if hasDrive(p) {
		return isRemoteDrive(p[:2] + `\`)
	}
	return false
}

// isUNC matches `\\server\share`, but not the `\\?\` and `\\.\` namespaces.
func isUNC(path string) bool {
	if len(path) < 3 || !isSep(path[0]) || !isSep(path[1]) {
		return false
	}
	return path[2] != '?' && path[2] != '.' && !isSep(path[2])
}

func hasDrive(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}
	c := path[0] | 0x20
	return c >= 'a' && c <= 'z'
}

func isSep(c byte) bool { return c == '\\' || c == '/' }
