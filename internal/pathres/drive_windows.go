//go:build windows

package pathres

import "golang.org/x/sys/windows"

func isRemoteDrive(root string) bool {
	p, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return false
	}
	return windows.GetDriveType(p) == windows.DRIVE_REMOTE
}
