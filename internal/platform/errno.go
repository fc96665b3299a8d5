package platform

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorCode is a Win32 system error code. The portable implementation maps
// POSIX errno values onto the same codes so classification is uniform.
type ErrorCode uint32

const (
	ErrorSuccess          ErrorCode = 0
	ErrorFileNotFound     ErrorCode = 2
	ErrorPathNotFound     ErrorCode = 3
	ErrorAccessDenied     ErrorCode = 5
	ErrorNotSameDevice    ErrorCode = 17
	ErrorNotReady         ErrorCode = 21
	ErrorGenFailure       ErrorCode = 31
	ErrorSharingViolation ErrorCode = 32
	ErrorNotSupported     ErrorCode = 50
	ErrorFileExists       ErrorCode = 80
	ErrorInvalidParameter ErrorCode = 87
	ErrorDiskFull         ErrorCode = 112
	ErrorInvalidName      ErrorCode = 123
	ErrorDirNotEmpty      ErrorCode = 145
	ErrorAlreadyExists    ErrorCode = 183
	ErrorRequestAborted   ErrorCode = 1235
)

var codeNames = map[ErrorCode]string{
	ErrorSuccess:          "ERROR_SUCCESS",
	ErrorFileNotFound:     "ERROR_FILE_NOT_FOUND",
	ErrorPathNotFound:     "ERROR_PATH_NOT_FOUND",
	ErrorAccessDenied:     "ERROR_ACCESS_DENIED",
	ErrorNotSameDevice:    "ERROR_NOT_SAME_DEVICE",
	ErrorNotReady:         "ERROR_NOT_READY",
	ErrorGenFailure:       "ERROR_GEN_FAILURE",
	ErrorSharingViolation: "ERROR_SHARING_VIOLATION",
	ErrorNotSupported:     "ERROR_NOT_SUPPORTED",
	ErrorFileExists:       "ERROR_FILE_EXISTS",
	ErrorInvalidParameter: "ERROR_INVALID_PARAMETER",
	ErrorDiskFull:         "ERROR_DISK_FULL",
	ErrorInvalidName:      "ERROR_INVALID_NAME",
	ErrorDirNotEmpty:      "ERROR_DIR_NOT_EMPTY",
	ErrorAlreadyExists:    "ERROR_ALREADY_EXISTS",
	ErrorRequestAborted:   "ERROR_REQUEST_ABORTED",
}

func (c ErrorCode) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("ERROR_%d", uint32(c))
}

// Errno is the error returned by a failed native call. Code is captured
// immediately after the call returns.
type Errno struct {
	Err  error // underlying OS error, may be nil
	Op   string
	Path string
	Code ErrorCode
}

func (e *Errno) Error() string {
	msg := e.Code.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %s (code %d)", e.Op, msg, uint32(e.Code))
	}
	return fmt.Sprintf("%s %s: %s (code %d)", e.Op, e.Path, msg, uint32(e.Code))
}

func (e *Errno) Unwrap() error { return e.Err }

// Is lets errors.Is match the io/fs sentinels by code.
func (e *Errno) Is(target error) bool {
	switch target {
	case fs.ErrNotExist:
		return e.Code == ErrorFileNotFound || e.Code == ErrorPathNotFound
	case fs.ErrExist:
		return e.Code == ErrorFileExists || e.Code == ErrorAlreadyExists
	case fs.ErrPermission:
		return e.Code == ErrorAccessDenied
	}
	return false
}

// NewErrno builds an *Errno for op on path.
func NewErrno(op, path string, code ErrorCode, err error) *Errno {
	return &Errno{Op: op, Path: path, Code: code, Err: err}
}

// CodeOf extracts the Win32 code carried by err. It returns ErrorSuccess for
// nil and ErrorGenFailure for errors that did not come from the native layer.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrorSuccess
	}
	var en *Errno
	if errors.As(err, &en) {
		return en.Code
	}
	return ErrorGenFailure
}
