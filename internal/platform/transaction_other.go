//go:build !windows

package platform

import "time"

func createTransaction(string, time.Duration) (uintptr, error) {
	return 0, NewErrno("CreateTransaction", "", ErrorNotSupported, ErrUnsupported)
}

func commitTransaction(uintptr) error {
	return NewErrno("CommitTransaction", "", ErrorNotSupported, ErrUnsupported)
}

func rollbackTransaction(uintptr) error {
	return NewErrno("RollbackTransaction", "", ErrorNotSupported, ErrUnsupported)
}

func closeTransaction(uintptr) error { return nil }
