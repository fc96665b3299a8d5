package engine

import (
	"fmt"
	"strings"

	"github.com/bamsammich/fileops/internal/platform"
)

// CopyOptions selects CopyFileEx behavior. Values match COPY_FILE_*.
type CopyOptions uint32

const (
	CopyFailIfExists              = CopyOptions(platform.CopyFlagFailIfExists)
	CopyRestartable               = CopyOptions(platform.CopyFlagRestartable)
	CopyOpenSourceForWrite        = CopyOptions(platform.CopyFlagOpenSourceForWrite)
	CopyAllowDecryptedDestination = CopyOptions(platform.CopyFlagAllowDecryptedDestination)
	CopySymlink                   = CopyOptions(platform.CopyFlagSymlink)
	CopyNoBuffering               = CopyOptions(platform.CopyFlagNoBuffering)
	CopyRequestSecurityPrivileges = CopyOptions(platform.CopyFlagRequestSecurityPrivileges)
	CopyResumeFromPause           = CopyOptions(platform.CopyFlagResumeFromPause)
	CopyNoOffload                 = CopyOptions(platform.CopyFlagNoOffload)
	CopyRequestCompressedTraffic  = CopyOptions(platform.CopyFlagRequestCompressedTraffic)

	// CopyResetReadOnlyTarget lets a copy clear a read-only or hidden
	// destination and retry, as a move with MoveReplaceExisting does. It is
	// consumed by the engine and never reaches the native call.
	CopyResetReadOnlyTarget CopyOptions = 0x80000000
)

// MoveOptions selects MoveFileWithProgress behavior. Values match MOVEFILE_*.
type MoveOptions uint32

const (
	MoveReplaceExisting    = MoveOptions(platform.MoveFlagReplaceExisting)
	MoveCopyAllowed        = MoveOptions(platform.MoveFlagCopyAllowed)
	MoveDelayUntilReboot   = MoveOptions(platform.MoveFlagDelayUntilReboot)
	MoveWriteThrough       = MoveOptions(platform.MoveFlagWriteThrough)
	MoveCreateHardlink     = MoveOptions(platform.MoveFlagCreateHardlink)
	MoveFailIfNotTrackable = MoveOptions(platform.MoveFlagFailIfNotTrackable)
)

type optionName[T ~uint32] struct {
	opt  T
	name string
}

var copyOptionNames = []optionName[CopyOptions]{
	{CopyFailIfExists, "fail-if-exists"},
	{CopyRestartable, "restartable"},
	{CopyOpenSourceForWrite, "open-source-for-write"},
	{CopyAllowDecryptedDestination, "allow-decrypted-destination"},
	{CopySymlink, "copy-symlink"},
	{CopyNoBuffering, "no-buffering"},
	{CopyRequestSecurityPrivileges, "request-security-privileges"},
	{CopyResumeFromPause, "resume-from-pause"},
	{CopyNoOffload, "no-offload"},
	{CopyRequestCompressedTraffic, "request-compressed-traffic"},
	{CopyResetReadOnlyTarget, "reset-read-only-target"},
}

var moveOptionNames = []optionName[MoveOptions]{
	{MoveReplaceExisting, "replace-existing"},
	{MoveCopyAllowed, "copy-allowed"},
	{MoveDelayUntilReboot, "delay-until-reboot"},
	{MoveWriteThrough, "write-through"},
	{MoveCreateHardlink, "create-hardlink"},
	{MoveFailIfNotTrackable, "fail-if-not-trackable"},
}

// Has reports whether every bit of f is set.
func (o CopyOptions) Has(f CopyOptions) bool { return o&f == f }

func (o CopyOptions) String() string { return formatOptions(o, copyOptionNames) }

// native strips the engine-only bits.
func (o CopyOptions) native() uint32 { return uint32(o &^ CopyResetReadOnlyTarget) }

// Has reports whether every bit of f is set.
func (o MoveOptions) Has(f MoveOptions) bool { return o&f == f }

func (o MoveOptions) String() string { return formatOptions(o, moveOptionNames) }

func (o MoveOptions) native() uint32 { return uint32(o) }

// ParseCopyOptions parses a comma-separated list such as
// "fail-if-exists,no-buffering". An empty string or "none" yields zero.
func ParseCopyOptions(s string) (CopyOptions, error) {
	return parseOptions(s, copyOptionNames)
}

// ParseMoveOptions parses a comma-separated list such as
// "replace-existing,copy-allowed". An empty string or "none" yields zero.
func ParseMoveOptions(s string) (MoveOptions, error) {
	return parseOptions(s, moveOptionNames)
}

// CopyOptionNames lists every name ParseCopyOptions accepts.
func CopyOptionNames() []string { return optionList(copyOptionNames) }

// MoveOptionNames lists every name ParseMoveOptions accepts.
func MoveOptionNames() []string { return optionList(moveOptionNames) }

func formatOptions[T ~uint32](o T, names []optionName[T]) string {
	if o == 0 {
		return "none"
	}
	var parts []string
	rest := o
	for _, n := range names {
		if o&n.opt != 0 {
			parts = append(parts, n.name)
			rest &^= n.opt
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

func parseOptions[T ~uint32](s string, names []optionName[T]) (T, error) {
	var o T
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		field = strings.ToLower(strings.TrimSpace(field))
		if field == "" || field == "none" {
			continue
		}
		found := false
		for _, n := range names {
			if n.name == field {
				o |= n.opt
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown option %q (valid: %s)", field, strings.Join(optionList(names), ", "))
		}
	}
	return o, nil
}

func optionList[T ~uint32](names []optionName[T]) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.name
	}
	return out
}
