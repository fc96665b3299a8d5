//go:build windows

package platform

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// CreateHardLink creates link as a new name for existing, inside tx when non-zero.
func CreateHardLink(tx uintptr, link, existing string) error {
	linkp, err := windows.UTF16PtrFromString(link)
	if err != nil {
		return NewErrno("CreateHardLink", link, ErrorInvalidName, err)
	}
	existingp, err := windows.UTF16PtrFromString(existing)
	if err != nil {
		return NewErrno("CreateHardLink", existing, ErrorInvalidName, err)
	}
	if tx == 0 {
		if err := windows.CreateHardLink(linkp, existingp, 0); err != nil {
			return errnoFromCall("CreateHardLink", link, err)
		}
		return nil
	}
	if err := procCreateHardLinkTransactedW.Find(); err != nil {
		return NewErrno("CreateHardLinkTransacted", link, ErrorNotSupported, err)
	}
	r1, _, e1 := procCreateHardLinkTransactedW.Call(
		uintptr(unsafe.Pointer(linkp)), uintptr(unsafe.Pointer(existingp)), 0, tx)
	if r1 == 0 {
		return errnoFromCall("CreateHardLinkTransacted", link, e1)
	}
	return nil
}

// CreateSymbolicLink creates link pointing at target. Unprivileged creation
// is requested so developer-mode systems do not need elevation.
func CreateSymbolicLink(link, target string, isDir bool) error {
	linkp, err := windows.UTF16PtrFromString(link)
	if err != nil {
		return NewErrno("CreateSymbolicLink", link, ErrorInvalidName, err)
	}
	targetp, err := windows.UTF16PtrFromString(target)
	if err != nil {
		return NewErrno("CreateSymbolicLink", target, ErrorInvalidName, err)
	}
	flags := uint32(windows.SYMBOLIC_LINK_FLAG_ALLOW_UNPRIVILEGED_CREATE)
	if isDir {
		flags |= windows.SYMBOLIC_LINK_FLAG_DIRECTORY
	}
	if err := windows.CreateSymbolicLink(linkp, targetp, flags); err != nil {
		return errnoFromCall("CreateSymbolicLink", link, err)
	}
	return nil
}
