//go:build unix

package platform

import (
	"io"
	"io/fs"
	"os"
)

// portable emulates the Win32 copy/move primitives on top of POSIX calls,
// reporting the same error codes and driving progress routines the same way.
// Kernel transactions do not exist here; Detect reports that so the engine
// never selects a *Transacted primitive.
type portable struct{}

// NewNative returns the native layer for the running platform.
//
//nolint:ireturn // platform factory returns interface by design
func NewNative() Native {
	return portable{}
}

func (portable) Invoke(call Call) error {
	switch call.Primitive {
	case CopyFileEx:
		return copyFileEx(call.Src, call.Dst, call.Flags, call.Progress)
	case MoveFileWithProgress:
		return moveFileWithProgress(call.Src, call.Dst, call.Flags, call.Progress)
	default:
		return NewErrno(call.Primitive.String(), call.Src, ErrorNotSupported, ErrUnsupported)
	}
}

func (portable) Attributes(_ uintptr, path string) (Attributes, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, statErrno("GetFileAttributes", path, err)
	}
	return attributesFromInfo(info), nil
}

// SetAttributes honours only the read-only bit, the one attribute POSIX can
// express; AttrNormal restores owner write permission.
func (portable) SetAttributes(_ uintptr, path string, attrs Attributes) error {
	info, err := os.Stat(path)
	if err != nil {
		return statErrno("SetFileAttributes", path, err)
	}
	perm := info.Mode().Perm()
	if attrs&AttrReadOnly != 0 {
		perm &^= 0o222
	} else {
		perm |= 0o200
	}
	if err := os.Chmod(path, perm); err != nil {
		return errnoFor("SetFileAttributes", path, err)
	}
	return nil
}

func (portable) FileTimes(_ uintptr, path string) (FileTimes, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileTimes{}, statErrno("GetFileTime", path, err)
	}
	return fileTimesFromInfo(path, info), nil
}

func (portable) SetFileTimes(_ uintptr, path string, times FileTimes) error {
	info, err := os.Stat(path)
	if err != nil {
		return statErrno("SetFileTime", path, err)
	}
	current := fileTimesFromInfo(path, info)
	if times.LastAccess.IsZero() {
		times.LastAccess = current.LastAccess
	}
	if times.LastWrite.IsZero() {
		times.LastWrite = current.LastWrite
	}
	if err := os.Chtimes(path, times.LastAccess, times.LastWrite); err != nil {
		return errnoFor("SetFileTime", path, err)
	}
	return nil
}

func (portable) Size(_ uintptr, path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, statErrno("GetFileSize", path, err)
	}
	return info.Size(), nil
}

func (portable) OpenRead(_ uintptr, path string) (io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, statErrno("CreateFile", path, err)
	}
	return f, nil
}

func attributesFromInfo(info fs.FileInfo) Attributes {
	var attrs Attributes
	mode := info.Mode()
	if mode.IsDir() {
		attrs |= AttrDirectory
	}
	if mode&fs.ModeSymlink != 0 {
		attrs |= AttrReparsePoint
	}
	if mode&fs.ModeSymlink == 0 && mode.Perm()&0o200 == 0 {
		attrs |= AttrReadOnly
	}
	if attrs == 0 {
		attrs = AttrNormal
	}
	return attrs
}
