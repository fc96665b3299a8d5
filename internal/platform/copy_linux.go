//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile tries the most efficient transfer available on Linux. A strategy
// is abandoned for the next one only if it failed before writing anything.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	if err := preallocate(params.DstFd, params.SrcSize); err != nil {
		return CopyResult{}, err
	}

	result, err := copyFileRange(params)
	if err == nil || result.BytesWritten > 0 || !isFallbackErr(err) {
		return result, err
	}

	result, err = copySendfile(params)
	if err == nil || result.BytesWritten > 0 || !isFallbackErr(err) {
		return result, err
	}

	return copyReadWrite(params)
}

func copyFileRange(params CopyFileParams) (CopyResult, error) {
	srcFd, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer srcFd.Close()

	remaining := params.SrcSize
	var roff, woff int64

	var totalWritten int64
	for remaining > 0 {
		n, err := unix.CopyFileRange(int(srcFd.Fd()), &roff, int(params.DstFd.Fd()), &woff, int(params.step(remaining)), 0)
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		totalWritten += int64(n)
		if err := params.chunkDone(totalWritten); err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, err
		}
	}

	return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, nil
}

func copySendfile(params CopyFileParams) (CopyResult, error) {
	srcFd, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer srcFd.Close()

	remaining := params.SrcSize
	var offset int64

	var totalWritten int64
	for remaining > 0 {
		n, err := unix.Sendfile(int(params.DstFd.Fd()), int(srcFd.Fd()), &offset, int(params.step(remaining)))
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: Sendfile}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		totalWritten += int64(n)
		if err := params.chunkDone(totalWritten); err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: Sendfile}, err
		}
	}

	return CopyResult{BytesWritten: totalWritten, Method: Sendfile}, nil
}
