package engine

import (
	"github.com/bamsammich/fileops/internal/pathres"
)

// ErrorMode decides how a failed operation reaches the caller.
type ErrorMode int

const (
	// RaiseErrors returns failures as a typed error.
	RaiseErrors ErrorMode = iota
	// ReportErrors returns a nil error; the caller inspects Result.ErrorCode
	// and Result.Err instead.
	ReportErrors
)

func (m ErrorMode) String() string {
	if m == ReportErrors {
		return "report"
	}
	return "raise"
}

// Transaction is a kernel transaction the caller owns. The engine only
// reads its handle.
type Transaction interface {
	Handle() uintptr
}

// Request describes one copy or move. Exactly one of Copy and Move is set.
type Request struct {
	Transaction        Transaction
	Copy               *CopyOptions
	Move               *MoveOptions
	Progress           ProgressFunc
	UserContext        any
	Source             string
	Destination        string
	PathFormat         pathres.Format
	Mode               ErrorMode
	PreserveTimestamps bool
}

type opKind int

const (
	kindCopy opKind = iota
	kindMove
)

func (k opKind) String() string {
	if k == kindMove {
		return "move"
	}
	return "copy"
}

func (r *Request) kind() opKind {
	if r.Move != nil {
		return kindMove
	}
	return kindCopy
}

// nativeFlags returns the flag word handed to the primitive.
func (r *Request) nativeFlags() uint32 {
	if r.Move != nil {
		return r.Move.native()
	}
	return r.Copy.native()
}

// recoveryAllowed reports whether a read-only or hidden destination may be
// reset to normal and the call retried.
func (r *Request) recoveryAllowed() bool {
	if r.Move != nil {
		return r.Move.Has(MoveReplaceExisting)
	}
	return r.Copy.Has(CopyResetReadOnlyTarget)
}

func (r *Request) validate() error {
	switch {
	case r.Copy == nil && r.Move == nil:
		return &InvalidRequestError{Reason: "neither copy nor move options set"}
	case r.Copy != nil && r.Move != nil:
		return &InvalidRequestError{Reason: "both copy and move options set"}
	case r.Source == "":
		return &InvalidRequestError{Reason: "empty source path"}
	case r.Destination == "":
		return &InvalidRequestError{Reason: "empty destination path"}
	}
	if r.Move != nil {
		if r.PreserveTimestamps {
			return &InvalidRequestError{Reason: "timestamp preservation applies to copies only"}
		}
		if r.Move.Has(MoveDelayUntilReboot) {
			if r.Move.Has(MoveCopyAllowed) {
				return &InvalidRequestError{Reason: "delay-until-reboot cannot be combined with copy-allowed"}
			}
			if r.networkSource() {
				return &InvalidRequestError{Reason: "delay-until-reboot cannot move a network source: " + r.Source}
			}
		}
	}
	return nil
}

// networkSource reports whether the source lives on a network volume, as
// written or once resolved against the working directory.
func (r *Request) networkSource() bool {
	if pathres.IsNetwork(r.Source) {
		return true
	}
	abs, err := pathres.Resolve(r.Source, r.PathFormat)
	return err == nil && pathres.IsNetwork(abs)
}

func txHandle(tx Transaction) uintptr {
	if tx == nil {
		return 0
	}
	return tx.Handle()
}
