//go:build unix

package platform

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// codeFromError maps a POSIX errno onto the Win32 code the Windows
// primitives would have reported for the same condition.
func codeFromError(err error) ErrorCode {
	var en unix.Errno
	if !errors.As(err, &en) {
		return ErrorGenFailure
	}
	switch en {
	case unix.ENOENT:
		return ErrorFileNotFound
	case unix.ENOTDIR, unix.ENAMETOOLONG:
		return ErrorPathNotFound
	case unix.EACCES, unix.EPERM, unix.EISDIR, unix.EROFS:
		return ErrorAccessDenied
	case unix.EEXIST:
		return ErrorAlreadyExists
	case unix.EXDEV:
		return ErrorNotSameDevice
	case unix.ENOSPC, unix.EDQUOT:
		return ErrorDiskFull
	case unix.EBUSY, unix.ETXTBSY:
		return ErrorSharingViolation
	case unix.ENOTEMPTY:
		return ErrorDirNotEmpty
	case unix.ENOTSUP, unix.ENOSYS:
		return ErrorNotSupported
	case unix.EINVAL:
		return ErrorInvalidParameter
	case unix.EIO, unix.ENXIO, unix.ENODEV:
		return ErrorNotReady
	default:
		return ErrorGenFailure
	}
}

func errnoFor(op, path string, err error) *Errno {
	return NewErrno(op, path, codeFromError(err), err)
}

// missingErrno distinguishes a missing leaf (file not found) from a missing
// parent directory (path not found), as Win32 does.
func missingErrno(op, path string, err error) *Errno {
	if _, perr := os.Stat(filepath.Dir(path)); perr != nil {
		return NewErrno(op, path, ErrorPathNotFound, err)
	}
	return NewErrno(op, path, ErrorFileNotFound, err)
}

// statErrno converts an lstat/stat failure on path.
func statErrno(op, path string, err error) *Errno {
	if errors.Is(err, os.ErrNotExist) {
		return missingErrno(op, path, err)
	}
	return errnoFor(op, path, err)
}
