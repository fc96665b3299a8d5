//go:build unix

package platform

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const opMove = "MoveFileWithProgress"

// moveFileWithProgress follows MoveFileWithProgressW: a same-volume move is a
// rename and reports no progress; a cross-volume file move needs
// MoveFlagCopyAllowed and is carried out as copy plus delete.
func moveFileWithProgress(src, dst string, flags uint32, progress ProgressRoutine) error {
	if flags&MoveFlagDelayUntilReboot != 0 {
		return NewErrno(opMove, src, ErrorNotSupported, ErrUnsupported)
	}

	srcInfo, err := os.Lstat(src)
	if err != nil {
		return statErrno(opMove, src, err)
	}
	if err := checkMoveTarget(srcInfo, dst, flags); err != nil {
		return err
	}

	err = os.Rename(src, dst)
	if err == nil {
		return writeThrough(dst, flags)
	}
	if !errors.Is(err, unix.EXDEV) {
		return errnoFor(opMove, src, err)
	}
	if flags&MoveFlagCopyAllowed == 0 || srcInfo.IsDir() {
		return NewErrno(opMove, src, ErrorNotSameDevice, err)
	}

	if err := copyFileEx(src, dst, 0, progress); err != nil {
		return err
	}
	if err := writeThrough(dst, flags); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return errnoFor(opMove, src, err)
	}
	return nil
}

func checkMoveTarget(srcInfo fs.FileInfo, dst string, flags uint32) error {
	info, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		if _, perr := os.Stat(filepath.Dir(dst)); perr != nil {
			return NewErrno(opMove, dst, ErrorPathNotFound, perr)
		}
		return nil
	}
	if err != nil {
		return errnoFor(opMove, dst, err)
	}
	if flags&MoveFlagReplaceExisting == 0 {
		return NewErrno(opMove, dst, ErrorAlreadyExists, fs.ErrExist)
	}
	if info.IsDir() || srcInfo.IsDir() || attributesFromInfo(info).Protected() {
		return NewErrno(opMove, dst, ErrorAccessDenied, fs.ErrPermission)
	}
	return nil
}

// writeThrough flushes the destination directory entry when requested.
func writeThrough(dst string, flags uint32) error {
	if flags&MoveFlagWriteThrough == 0 {
		return nil
	}
	dir, err := os.Open(filepath.Dir(dst))
	if err != nil {
		return errnoFor(opMove, dst, err)
	}
	defer dir.Close()
	if err := dir.Sync(); err != nil {
		return errnoFor(opMove, dst, err)
	}
	return nil
}
