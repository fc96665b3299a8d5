//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func detect() Capabilities {
	v := windows.RtlGetVersion()
	caps := Capabilities{
		OSVersion: fmt.Sprintf("windows %d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber),
	}
	caps.Transactions = v.MajorVersion >= 6 &&
		procCreateTransaction.Find() == nil &&
		procCopyFileTransactedW.Find() == nil &&
		procMoveFileTransactedW.Find() == nil
	return caps
}
