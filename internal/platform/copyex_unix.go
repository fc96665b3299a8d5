//go:build unix

package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const opCopy = "CopyFileEx"

var errAborted = errors.New("progress routine requested abort")

// copyFileEx follows CopyFileExW: the destination keeps the source's
// permissions and last write time, an existing destination is refused when
// it is a directory or read-only, and a Cancel or Stop from the progress
// routine removes the partial file and fails with ERROR_REQUEST_ABORTED.
func copyFileEx(src, dst string, flags uint32, progress ProgressRoutine) error {
	srcInfo, err := os.Lstat(src)
	if err != nil {
		return statErrno(opCopy, src, err)
	}
	if srcInfo.Mode()&fs.ModeSymlink != 0 {
		if flags&CopyFlagSymlink != 0 {
			return copySymlink(src, dst, flags)
		}
		if srcInfo, err = os.Stat(src); err != nil {
			return statErrno(opCopy, src, err)
		}
	}
	if srcInfo.IsDir() {
		return NewErrno(opCopy, src, ErrorAccessDenied, fs.ErrPermission)
	}
	if err := checkCopyTarget(dst, flags); err != nil {
		return err
	}

	tmp := tmpName(dst)
	registerTmp(tmp)
	defer func() {
		deregisterTmp(tmp)
		_ = os.Remove(tmp) // no-op once renamed
	}()

	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return errnoFor(opCopy, dst, err)
	}

	if err := transfer(src, out, srcInfo.Size(), progress); err != nil {
		out.Close()
		return err
	}
	if err := out.Chmod(srcInfo.Mode().Perm()); err != nil {
		out.Close()
		return errnoFor(opCopy, dst, err)
	}
	if err := out.Close(); err != nil {
		return errnoFor(opCopy, dst, err)
	}
	if err := os.Chtimes(tmp, time.Time{}, srcInfo.ModTime()); err != nil {
		return errnoFor(opCopy, dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return errnoFor(opCopy, dst, err)
	}
	return nil
}

func transfer(src string, out *os.File, size int64, progress ProgressRoutine) error {
	n := &notifier{routine: progress, total: size}
	if progress != nil {
		n.dst = out.Fd()
	}

	if err := n.notify(0, StreamSwitch); err != nil {
		return NewErrno(opCopy, src, ErrorRequestAborted, err)
	}

	params := CopyFileParams{DstFd: out, SrcPath: src, SrcSize: size}
	if progress != nil {
		params.OnChunk = func(written int64) error {
			return n.notify(written, ChunkFinished)
		}
	}
	if _, err := CopyFile(params); err != nil {
		if errors.Is(err, errAborted) {
			return NewErrno(opCopy, src, ErrorRequestAborted, err)
		}
		return errnoFor(opCopy, src, err)
	}

	if size == 0 {
		if err := n.notify(0, ChunkFinished); err != nil {
			return NewErrno(opCopy, src, ErrorRequestAborted, err)
		}
	}
	return nil
}

// notifier drives a progress routine the way the Windows copy engine does:
// Quiet silences it for the rest of the transfer, Cancel and Stop abort.
type notifier struct {
	routine ProgressRoutine
	total   int64
	dst     uintptr
	quiet   bool
}

func (n *notifier) notify(transferred int64, reason CallbackReason) error {
	if n.routine == nil || n.quiet {
		return nil
	}
	switch n.routine(n.total, transferred, n.total, transferred, 1, reason, 0, n.dst) {
	case Cancel, Stop:
		return errAborted
	case Quiet:
		n.quiet = true
	}
	return nil
}

func checkCopyTarget(dst string, flags uint32) error {
	info, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		if _, perr := os.Stat(filepath.Dir(dst)); perr != nil {
			return NewErrno(opCopy, dst, ErrorPathNotFound, perr)
		}
		return nil
	}
	if err != nil {
		return errnoFor(opCopy, dst, err)
	}
	if flags&CopyFlagFailIfExists != 0 {
		return NewErrno(opCopy, dst, ErrorFileExists, fs.ErrExist)
	}
	if info.IsDir() || attributesFromInfo(info).Protected() {
		return NewErrno(opCopy, dst, ErrorAccessDenied, fs.ErrPermission)
	}
	return nil
}

func copySymlink(src, dst string, flags uint32) error {
	target, err := os.Readlink(src)
	if err != nil {
		return errnoFor(opCopy, src, err)
	}
	if err := checkCopyTarget(dst, flags); err != nil {
		return err
	}
	tmp := tmpName(dst)
	if err := os.Symlink(target, tmp); err != nil {
		return errnoFor(opCopy, dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return errnoFor(opCopy, dst, err)
	}
	return nil
}

func tmpName(dst string) string {
	return filepath.Join(
		filepath.Dir(dst),
		fmt.Sprintf(".%s.%s.fileops-tmp", filepath.Base(dst), uuid.New().String()[:8]),
	)
}
