//go:build windows

package platform

import (
	"errors"
	"io"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")
	modktmw32   = windows.NewLazySystemDLL("ktmw32.dll")

	procCopyFileExW                  = modkernel32.NewProc("CopyFileExW")
	procMoveFileWithProgressW        = modkernel32.NewProc("MoveFileWithProgressW")
	procCopyFileTransactedW          = modkernel32.NewProc("CopyFileTransactedW")
	procMoveFileTransactedW          = modkernel32.NewProc("MoveFileTransactedW")
	procGetFileAttributesTransactedW = modkernel32.NewProc("GetFileAttributesTransactedW")
	procSetFileAttributesTransactedW = modkernel32.NewProc("SetFileAttributesTransactedW")
	procCreateFileTransactedW        = modkernel32.NewProc("CreateFileTransactedW")
	procCreateHardLinkTransactedW    = modkernel32.NewProc("CreateHardLinkTransactedW")

	procCreateTransaction   = modktmw32.NewProc("CreateTransaction")
	procCommitTransaction   = modktmw32.NewProc("CommitTransaction")
	procRollbackTransaction = modktmw32.NewProc("RollbackTransaction")
)

var primitiveProcs = [...]*windows.LazyProc{
	CopyFileEx:           procCopyFileExW,
	MoveFileWithProgress: procMoveFileWithProgressW,
	CopyFileTransacted:   procCopyFileTransactedW,
	MoveFileTransacted:   procMoveFileTransactedW,
}

// win32 calls the kernel32 file primitives directly.
type win32 struct{}

// NewNative returns the native layer for the running platform.
//
//nolint:ireturn // platform factory returns interface by design
func NewNative() Native {
	return win32{}
}

func (win32) Invoke(call Call) error {
	op := call.Primitive.String()
	if call.Primitive < CopyFileEx || call.Primitive > MoveFileTransacted {
		return NewErrno(op, call.Src, ErrorInvalidParameter, nil)
	}
	proc := primitiveProcs[call.Primitive]
	if err := proc.Find(); err != nil {
		return NewErrno(op, call.Src, ErrorNotSupported, err)
	}

	src, err := windows.UTF16PtrFromString(call.Src)
	if err != nil {
		return NewErrno(op, call.Src, ErrorInvalidName, err)
	}
	dst, err := windows.UTF16PtrFromString(call.Dst)
	if err != nil {
		return NewErrno(op, call.Dst, ErrorInvalidName, err)
	}

	var routine, data uintptr
	if call.Progress != nil {
		data = progressRoutines.add(call.Progress)
		defer progressRoutines.remove(data)
		routine = progressTrampoline()
	}

	var r1 uintptr
	var e1 error
	switch call.Primitive {
	case CopyFileEx:
		r1, _, e1 = proc.Call(
			uintptr(unsafe.Pointer(src)), uintptr(unsafe.Pointer(dst)),
			routine, data, 0, uintptr(call.Flags))
	case MoveFileWithProgress:
		r1, _, e1 = proc.Call(
			uintptr(unsafe.Pointer(src)), uintptr(unsafe.Pointer(dst)),
			routine, data, uintptr(call.Flags))
	case CopyFileTransacted:
		r1, _, e1 = proc.Call(
			uintptr(unsafe.Pointer(src)), uintptr(unsafe.Pointer(dst)),
			routine, data, 0, uintptr(call.Flags), call.Transaction)
	case MoveFileTransacted:
		r1, _, e1 = proc.Call(
			uintptr(unsafe.Pointer(src)), uintptr(unsafe.Pointer(dst)),
			routine, data, uintptr(call.Flags), call.Transaction)
	}
	if r1 == 0 {
		return errnoFromCall(op, call.Src, e1)
	}
	return nil
}

func (win32) Attributes(tx uintptr, path string) (Attributes, error) {
	data, err := attributeData(tx, path)
	if err != nil {
		return 0, err
	}
	return Attributes(data.FileAttributes), nil
}

func (win32) SetAttributes(tx uintptr, path string, attrs Attributes) error {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return NewErrno("SetFileAttributes", path, ErrorInvalidName, err)
	}
	if tx == 0 {
		if err := windows.SetFileAttributes(name, uint32(attrs)); err != nil {
			return errnoFromCall("SetFileAttributes", path, err)
		}
		return nil
	}
	if err := procSetFileAttributesTransactedW.Find(); err != nil {
		return NewErrno("SetFileAttributesTransacted", path, ErrorNotSupported, err)
	}
	r1, _, e1 := procSetFileAttributesTransactedW.Call(
		uintptr(unsafe.Pointer(name)), uintptr(attrs), tx)
	if r1 == 0 {
		return errnoFromCall("SetFileAttributesTransacted", path, e1)
	}
	return nil
}

func (win32) FileTimes(tx uintptr, path string) (FileTimes, error) {
	data, err := attributeData(tx, path)
	if err != nil {
		return FileTimes{}, err
	}
	return FileTimes{
		Creation:   filetimeToTime(data.CreationTime),
		LastAccess: filetimeToTime(data.LastAccessTime),
		LastWrite:  filetimeToTime(data.LastWriteTime),
	}, nil
}

func (win32) SetFileTimes(tx uintptr, path string, times FileTimes) error {
	h, err := openHandle(tx, path, windows.FILE_WRITE_ATTRIBUTES)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h) //nolint:errcheck // handle opened for attribute write only

	if err := windows.SetFileTime(h,
		timeToFiletime(times.Creation),
		timeToFiletime(times.LastAccess),
		timeToFiletime(times.LastWrite),
	); err != nil {
		return errnoFromCall("SetFileTime", path, err)
	}
	return nil
}

func (win32) Size(tx uintptr, path string) (int64, error) {
	data, err := attributeData(tx, path)
	if err != nil {
		return 0, err
	}
	return int64(data.FileSizeHigh)<<32 | int64(data.FileSizeLow), nil
}

func (win32) OpenRead(tx uintptr, path string) (io.Closer, error) {
	h, err := openHandle(tx, path, windows.GENERIC_READ)
	if err != nil {
		return nil, err
	}
	return handleCloser(h), nil
}

type handleCloser windows.Handle

func (h handleCloser) Close() error { return windows.CloseHandle(windows.Handle(h)) }

func attributeData(tx uintptr, path string) (*windows.Win32FileAttributeData, error) {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, NewErrno("GetFileAttributesEx", path, ErrorInvalidName, err)
	}
	var data windows.Win32FileAttributeData
	if tx == 0 {
		err := windows.GetFileAttributesEx(name, windows.GetFileExInfoStandard, (*byte)(unsafe.Pointer(&data)))
		if err != nil {
			return nil, errnoFromCall("GetFileAttributesEx", path, err)
		}
		return &data, nil
	}
	if err := procGetFileAttributesTransactedW.Find(); err != nil {
		return nil, NewErrno("GetFileAttributesTransacted", path, ErrorNotSupported, err)
	}
	r1, _, e1 := procGetFileAttributesTransactedW.Call(
		uintptr(unsafe.Pointer(name)), uintptr(windows.GetFileExInfoStandard),
		uintptr(unsafe.Pointer(&data)), tx)
	if r1 == 0 {
		return nil, errnoFromCall("GetFileAttributesTransacted", path, e1)
	}
	return &data, nil
}

// openHandle opens path for probing or metadata updates. Directories open too.
func openHandle(tx uintptr, path string, access uint32) (windows.Handle, error) {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return windows.InvalidHandle, NewErrno("CreateFile", path, ErrorInvalidName, err)
	}
	const share = windows.FILE_SHARE_READ | windows.FILE_SHARE_WRITE | windows.FILE_SHARE_DELETE
	if tx == 0 {
		h, err := windows.CreateFile(name, access, share, nil,
			windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
		if err != nil {
			return windows.InvalidHandle, errnoFromCall("CreateFile", path, err)
		}
		return h, nil
	}
	if err := procCreateFileTransactedW.Find(); err != nil {
		return windows.InvalidHandle, NewErrno("CreateFileTransacted", path, ErrorNotSupported, err)
	}
	r1, _, e1 := procCreateFileTransactedW.Call(
		uintptr(unsafe.Pointer(name)), uintptr(access), uintptr(share), 0,
		uintptr(windows.OPEN_EXISTING), uintptr(windows.FILE_FLAG_BACKUP_SEMANTICS),
		0, tx, 0, 0)
	if windows.Handle(r1) == windows.InvalidHandle {
		return windows.InvalidHandle, errnoFromCall("CreateFileTransacted", path, e1)
	}
	return windows.Handle(r1), nil
}

func filetimeToTime(ft windows.Filetime) time.Time {
	if ft.HighDateTime == 0 && ft.LowDateTime == 0 {
		return time.Time{}
	}
	return time.Unix(0, ft.Nanoseconds()).UTC()
}

// timeToFiletime returns nil for a zero time so SetFileTime leaves it alone.
func timeToFiletime(t time.Time) *windows.Filetime {
	if t.IsZero() {
		return nil
	}
	ft := windows.NsecToFiletime(t.UnixNano())
	return &ft
}

// errnoFromCall converts the last-error value captured by a proc call.
func errnoFromCall(op, path string, err error) *Errno {
	var en windows.Errno
	if errors.As(err, &en) && en != 0 {
		return NewErrno(op, path, ErrorCode(en), en)
	}
	return NewErrno(op, path, ErrorGenFailure, err)
}
