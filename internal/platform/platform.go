package platform

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Primitive identifies which native entry point services a copy or move.
type Primitive int

const (
	CopyFileEx           Primitive = iota // CopyFileExW
	MoveFileWithProgress                  // MoveFileWithProgressW
	CopyFileTransacted                    // CopyFileTransactedW (KTM)
	MoveFileTransacted                    // MoveFileTransactedW (KTM)
)

func (p Primitive) String() string {
	switch p {
	case CopyFileEx:
		return "CopyFileEx"
	case MoveFileWithProgress:
		return "MoveFileWithProgress"
	case CopyFileTransacted:
		return "CopyFileTransacted"
	case MoveFileTransacted:
		return "MoveFileTransacted"
	default:
		return "unknown"
	}
}

// IsMove reports whether p relocates the source rather than duplicating it.
func (p Primitive) IsMove() bool {
	return p == MoveFileWithProgress || p == MoveFileTransacted
}

// Copy flags accepted by CopyFileEx and CopyFileTransacted (COPY_FILE_*).
const (
	CopyFlagFailIfExists              uint32 = 0x00000001
	CopyFlagRestartable               uint32 = 0x00000002
	CopyFlagOpenSourceForWrite        uint32 = 0x00000004
	CopyFlagAllowDecryptedDestination uint32 = 0x00000008
	CopyFlagSymlink                   uint32 = 0x00000800
	CopyFlagNoBuffering               uint32 = 0x00001000
	CopyFlagRequestSecurityPrivileges uint32 = 0x00002000
	CopyFlagResumeFromPause           uint32 = 0x00004000
	CopyFlagNoOffload                 uint32 = 0x00040000
	CopyFlagRequestCompressedTraffic  uint32 = 0x10000000
)

// Move flags accepted by MoveFileWithProgress and MoveFileTransacted (MOVEFILE_*).
const (
	MoveFlagReplaceExisting    uint32 = 0x00000001
	MoveFlagCopyAllowed        uint32 = 0x00000002
	MoveFlagDelayUntilReboot   uint32 = 0x00000004
	MoveFlagWriteThrough       uint32 = 0x00000008
	MoveFlagCreateHardlink     uint32 = 0x00000010
	MoveFlagFailIfNotTrackable uint32 = 0x00000020
)

// Attributes mirrors the FILE_ATTRIBUTE_* bitset.
type Attributes uint32

const (
	AttrReadOnly     Attributes = 0x00000001
	AttrHidden       Attributes = 0x00000002
	AttrSystem       Attributes = 0x00000004
	AttrDirectory    Attributes = 0x00000010
	AttrArchive      Attributes = 0x00000020
	AttrNormal       Attributes = 0x00000080
	AttrTemporary    Attributes = 0x00000100
	AttrSparseFile   Attributes = 0x00000200
	AttrReparsePoint Attributes = 0x00000400
	AttrCompressed   Attributes = 0x00000800
	AttrOffline      Attributes = 0x00001000
	AttrEncrypted    Attributes = 0x00004000
)

var attrNames = []struct {
	attr Attributes
	name string
}{
	{AttrReadOnly, "ReadOnly"},
	{AttrHidden, "Hidden"},
	{AttrSystem, "System"},
	{AttrDirectory, "Directory"},
	{AttrArchive, "Archive"},
	{AttrNormal, "Normal"},
	{AttrTemporary, "Temporary"},
	{AttrSparseFile, "SparseFile"},
	{AttrReparsePoint, "ReparsePoint"},
	{AttrCompressed, "Compressed"},
	{AttrOffline, "Offline"},
	{AttrEncrypted, "Encrypted"},
}

// Has reports whether every bit of f is set.
func (a Attributes) Has(f Attributes) bool { return a&f == f }

// IsDir reports whether the directory bit is set.
func (a Attributes) IsDir() bool { return a&AttrDirectory != 0 }

// Protected reports whether the entry carries an attribute that makes the
// native copy/move primitives refuse to overwrite it.
func (a Attributes) Protected() bool { return a&(AttrReadOnly|AttrHidden) != 0 }

func (a Attributes) String() string {
	if a == 0 {
		return "0"
	}
	var parts []string
	rest := a
	for _, n := range attrNames {
		if a&n.attr != 0 {
			parts = append(parts, n.name)
			rest &^= n.attr
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// FileTimes holds the three NTFS timestamps in UTC. A zero value means the
// timestamp is unknown (when read) or should be left unchanged (when written).
type FileTimes struct {
	Creation   time.Time
	LastAccess time.Time
	LastWrite  time.Time
}

// CallbackReason tells a progress routine why it was invoked.
type CallbackReason uint32

const (
	ChunkFinished CallbackReason = 0 // CALLBACK_CHUNK_FINISHED
	StreamSwitch  CallbackReason = 1 // CALLBACK_STREAM_SWITCH
)

func (r CallbackReason) String() string {
	switch r {
	case ChunkFinished:
		return "ChunkFinished"
	case StreamSwitch:
		return "StreamSwitch"
	default:
		return "Unknown"
	}
}

// Disposition is the value a progress routine returns to steer the transfer.
type Disposition uint32

const (
	Continue Disposition = 0 // PROGRESS_CONTINUE
	Cancel   Disposition = 1 // PROGRESS_CANCEL
	Stop     Disposition = 2 // PROGRESS_STOP
	Quiet    Disposition = 3 // PROGRESS_QUIET
)

func (d Disposition) String() string {
	switch d {
	case Continue:
		return "Continue"
	case Cancel:
		return "Cancel"
	case Stop:
		return "Stop"
	case Quiet:
		return "Quiet"
	default:
		return "Unknown"
	}
}

// ProgressRoutine receives per-chunk notifications from a native copy or move.
// src and dst are the native handles of the open files (0 when unavailable).
type ProgressRoutine func(
	totalSize int64,
	transferred int64,
	streamSize int64,
	streamTransferred int64,
	streamNumber uint32,
	reason CallbackReason,
	src uintptr,
	dst uintptr,
) Disposition

// Call describes one invocation of a native copy/move primitive.
type Call struct {
	Progress    ProgressRoutine // nil: no routine is registered
	Src         string
	Dst         string
	Transaction uintptr // kernel transaction handle for the *Transacted primitives
	Primitive   Primitive
	Flags       uint32
}

// Native is the operating-system boundary. Every method reports failures as
// *Errno so callers can classify them by Win32 error code. tx is a kernel
// transaction handle, or 0 for non-transacted access.
type Native interface {
	Invoke(call Call) error
	Attributes(tx uintptr, path string) (Attributes, error)
	SetAttributes(tx uintptr, path string, attrs Attributes) error
	FileTimes(tx uintptr, path string) (FileTimes, error)
	SetFileTimes(tx uintptr, path string, times FileTimes) error
	Size(tx uintptr, path string) (int64, error)
	OpenRead(tx uintptr, path string) (io.Closer, error)
}

var (
	// ErrUnsupported is returned for primitives the running platform cannot provide.
	ErrUnsupported = errors.New("platform: operation not supported")
	// ErrTransactionClosed is returned when committing or rolling back a closed transaction.
	ErrTransactionClosed = errors.New("platform: transaction closed")
)
