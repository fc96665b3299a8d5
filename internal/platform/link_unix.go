//go:build unix

package platform

import "os"

// CreateHardLink creates link as a new name for existing. Transactions are
// not available here, so a non-zero tx is refused.
func CreateHardLink(tx uintptr, link, existing string) error {
	if tx != 0 {
		return NewErrno("CreateHardLinkTransacted", link, ErrorNotSupported, ErrUnsupported)
	}
	if err := os.Link(existing, link); err != nil {
		return linkErrno("CreateHardLink", link, existing, err)
	}
	return nil
}

// CreateSymbolicLink creates link pointing at target. isDir only matters on Windows.
func CreateSymbolicLink(link, target string, _ bool) error {
	if err := os.Symlink(target, link); err != nil {
		return errnoFor("CreateSymbolicLink", link, err)
	}
	return nil
}

func linkErrno(op, link, existing string, err error) *Errno {
	if _, serr := os.Lstat(existing); serr != nil {
		return statErrno(op, existing, serr)
	}
	return errnoFor(op, link, err)
}
