//go:build !windows

package pathres

// Drive letters carry no meaning here.
func isRemoteDrive(string) bool { return false }
