//go:build unix

package platform

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

const chunkSize = 1 << 20 // 1 MiB, also the progress notification granularity

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, chunkSize)
		return &b
	},
}

// CopyMethod identifies which syscall moved the bytes of a portable copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
	Sendfile                 // Linux sendfile(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a data transfer.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyFileParams describes a whole-file transfer into an already open
// destination. OnChunk, when set, runs after every chunk with the running
// total; a non-nil return aborts the transfer with that error.
type CopyFileParams struct {
	DstFd   *os.File
	OnChunk func(written int64) error
	SrcPath string
	SrcSize int64
}

func (p CopyFileParams) chunkDone(written int64) error {
	if p.OnChunk == nil {
		return nil
	}
	return p.OnChunk(written)
}

// step returns how many bytes one syscall may move: everything when nobody
// is watching, one chunk when progress is reported.
func (p CopyFileParams) step(remaining int64) int64 {
	if p.OnChunk != nil && remaining > chunkSize {
		return chunkSize
	}
	return remaining
}

// copyReadWrite copies data using pread/pwrite with a pooled buffer.
func copyReadWrite(params CopyFileParams) (CopyResult, error) {
	srcFd, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer srcFd.Close()

	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	var offset int64
	remaining := params.SrcSize
	srcRawFd := int(srcFd.Fd())
	dstRawFd := int(params.DstFd.Fd())

	for remaining > 0 {
		toRead := min(remaining, chunkSize)

		n, err := unix.Pread(srcRawFd, buf[:toRead], offset)
		if err != nil {
			return CopyResult{BytesWritten: offset, Method: ReadWrite}, err
		}
		if n == 0 {
			break
		}

		written := 0
		for written < n {
			w, err := unix.Pwrite(dstRawFd, buf[written:n], offset+int64(written))
			if err != nil {
				return CopyResult{BytesWritten: offset + int64(written), Method: ReadWrite}, err
			}
			written += w
		}

		offset += int64(n)
		remaining -= int64(n)
		if err := params.chunkDone(offset); err != nil {
			return CopyResult{BytesWritten: offset, Method: ReadWrite}, err
		}
	}

	return CopyResult{BytesWritten: offset, Method: ReadWrite}, nil
}

// CopyReadWrite is the exported version for use by other packages during testing.
func CopyReadWrite(params CopyFileParams) (CopyResult, error) {
	return copyReadWrite(params)
}

// isFallbackErr reports whether err should send the copy to the next strategy.
func isFallbackErr(err error) bool {
	switch err {
	case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP:
		return true
	}
	if e, ok := err.(*os.PathError); ok {
		return isFallbackErr(e.Err)
	}
	return false
}
