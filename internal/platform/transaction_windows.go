//go:build windows

package platform

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

func createTransaction(description string, timeout time.Duration) (uintptr, error) {
	if err := procCreateTransaction.Find(); err != nil {
		return 0, NewErrno("CreateTransaction", "", ErrorNotSupported, err)
	}
	desc, err := windows.UTF16PtrFromString(description)
	if err != nil {
		return 0, NewErrno("CreateTransaction", "", ErrorInvalidParameter, err)
	}
	r1, _, e1 := procCreateTransaction.Call(
		0, 0, 0, 0, 0,
		uintptr(timeout.Milliseconds()),
		uintptr(unsafe.Pointer(desc)))
	if windows.Handle(r1) == windows.InvalidHandle {
		return 0, errnoFromCall("CreateTransaction", "", e1)
	}
	return r1, nil
}

func commitTransaction(h uintptr) error {
	r1, _, e1 := procCommitTransaction.Call(h)
	if r1 == 0 {
		return errnoFromCall("CommitTransaction", "", e1)
	}
	return nil
}

func rollbackTransaction(h uintptr) error {
	r1, _, e1 := procRollbackTransaction.Call(h)
	if r1 == 0 {
		return errnoFromCall("RollbackTransaction", "", e1)
	}
	return nil
}

func closeTransaction(h uintptr) error {
	if err := windows.CloseHandle(windows.Handle(h)); err != nil {
		return errnoFromCall("CloseHandle", "", err)
	}
	return nil
}
