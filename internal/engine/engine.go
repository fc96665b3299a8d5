// Package engine implements single-file copy and move on top of the native
// primitives, with progress reporting, one-shot recovery from read-only
// destinations and timestamp preservation.
package engine

import (
	"log/slog"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/pathres"
	"github.com/bamsammich/fileops/internal/platform"
	"github.com/bamsammich/fileops/internal/stats"
)

// Config wires an Engine to its collaborators. Zero values pick the running
// platform's native layer, the detected capabilities and slog.Default.
type Config struct {
	Native       platform.Native
	Capabilities *platform.Capabilities
	Logger       *slog.Logger
	Events       chan<- event.Event // optional, non-blocking
	Stats        stats.Writer       // optional
}

// Engine runs copy and move requests. It holds no per-call state and may be
// shared between goroutines.
type Engine struct {
	native platform.Native
	log    *slog.Logger
	events chan<- event.Event
	stats  stats.Writer
	caps   platform.Capabilities
}

// New builds an Engine from cfg.
func New(cfg Config) *Engine {
	e := &Engine{
		native: cfg.Native,
		log:    cfg.Logger,
		events: cfg.Events,
		stats:  cfg.Stats,
	}
	if e.native == nil {
		e.native = platform.NewNative()
	}
	if cfg.Capabilities != nil {
		e.caps = *cfg.Capabilities
	} else {
		e.caps = platform.Detect()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.stats == nil {
		e.stats = nopStats{}
	}
	return e
}

// Capabilities returns what the engine assumes the platform supports.
func (e *Engine) Capabilities() platform.Capabilities { return e.caps }

// Execute runs req and always returns its Result. The error is non-nil for
// invalid requests and, in RaiseErrors mode, for failed operations.
func (e *Engine) Execute(req Request) (*Result, error) {
	res := newResult(req.Source, req.Destination, req.kind() == kindMove)
	defer res.finish()

	if err := req.validate(); err != nil {
		res.ErrorCode = platform.ErrorInvalidParameter
		res.Err = err
		return res, err
	}
	err := e.executeInto(&req, res)
	if req.Mode == ReportErrors {
		return res, nil
	}
	return res, err
}

// executeInto runs one validated request and folds its outcome into res.
func (e *Engine) executeInto(req *Request, res *Result) error {
	src, err := pathres.Resolve(req.Source, req.PathFormat)
	if err != nil {
		return e.reject(res, err)
	}
	dst, err := pathres.Resolve(req.Destination, req.PathFormat)
	if err != nil {
		return e.reject(res, err)
	}
	if req.Transaction != nil && !e.caps.Transactions {
		e.log.Warn("kernel transactions unavailable, running untransacted",
			"os", e.caps.OSVersion, "src", src)
	}

	kind := req.kind()
	tx := e.txHandle(req.Transaction)
	event.Send(e.events, event.Event{
		Type: event.OperationStarted, Source: src, Destination: dst, Op: kind.String(),
	})

	var adapter *progressAdapter
	if req.Progress != nil {
		adapter = &progressAdapter{
			fn:      req.Progress,
			userCtx: req.UserContext,
			events:  e.events,
			stats:   e.stats,
			src:     src,
			dst:     dst,
		}
	}
	cls := &classifier{eng: e, req: req, src: src, dst: dst, tx: tx}

	preserve := kind == kindCopy && req.PreserveTimestamps
	var snap sourceTimes
	if preserve {
		snap = e.snapshotTimes(tx, src)
	}

	for attempt := 1; ; attempt++ {
		nerr := e.invoke(req, src, dst, adapter)
		if nerr == nil {
			break
		}
		code := platform.CodeOf(nerr)
		if code == platform.ErrorRequestAborted {
			res.IsCanceled = true
			res.ErrorCode = code
			e.stats.AddFilesCanceled(1)
			event.Send(e.events, event.Event{
				Type: event.OperationCanceled, Source: src, Destination: dst,
				Op: kind.String(), Attempt: attempt, Code: uint32(code),
			})
			e.log.Debug("operation canceled", "src", src, "dst", dst)
			return nil
		}

		out, cerr := cls.classify(nerr)
		if out == outcomeRecovered {
			res.Retries++
			e.stats.AddRetries(1)
			e.log.Debug("retrying after attribute reset", "dst", dst, "attempt", attempt+1)
			continue
		}
		res.ErrorCode = code
		res.Err = cerr
		e.stats.AddFilesFailed(1)
		event.Send(e.events, event.Event{
			Type: event.OperationFailed, Source: src, Destination: dst,
			Op: kind.String(), Attempt: attempt, Code: uint32(code), Error: cerr,
		})
		e.log.Debug("operation failed", "src", src, "dst", dst, "code", code, "error", cerr)
		return cerr
	}

	e.record(res, tx, dst, adapter)

	if preserve {
		if err := e.preserveTimestamps(tx, src, dst, snap); err != nil {
			res.Err = err
			return err
		}
	}
	event.Send(e.events, event.Event{
		Type: event.OperationCompleted, Source: src, Destination: dst,
		Op: kind.String(), Size: res.TotalBytes,
	})
	return nil
}

// record counts a successful native call.
func (e *Engine) record(res *Result, tx uintptr, dst string, adapter *progressAdapter) {
	if attrs, err := e.native.Attributes(tx, dst); err == nil && attrs.IsDir() {
		res.IsFolder = true
		res.TotalFolders++
		return
	}
	res.TotalFiles++
	e.stats.AddFilesTransferred(1)
	size, err := e.native.Size(tx, dst)
	if err != nil {
		e.log.Debug("destination size unavailable", "dst", dst, "error", err)
		return
	}
	res.TotalBytes += size
	reported := int64(0)
	if adapter != nil {
		reported = adapter.reported
	}
	if size > reported {
		e.stats.AddBytesTransferred(size - reported)
	}
}

func (e *Engine) reject(res *Result, err error) error {
	ierr := &InvalidRequestError{Reason: err.Error()}
	res.ErrorCode = platform.ErrorInvalidParameter
	res.Err = ierr
	return ierr
}

// txHandle returns the handle to pass to native calls, or 0 when the
// platform has no kernel transactions.
func (e *Engine) txHandle(tx Transaction) uintptr {
	if !e.caps.Transactions {
		return 0
	}
	return txHandle(tx)
}

// Copy duplicates src onto dst. Failures are returned as typed errors.
func (e *Engine) Copy(src, dst string, opts CopyOptions, preserveTimestamps bool) (*Result, error) {
	return e.Execute(Request{
		Source: src, Destination: dst, Copy: &opts,
		PreserveTimestamps: preserveTimestamps, Mode: RaiseErrors,
	})
}

// CopyWithProgress duplicates src onto dst, calling progress per chunk.
// Failures are reported through Result.ErrorCode and Result.Err.
func (e *Engine) CopyWithProgress(
	src, dst string, opts CopyOptions, preserveTimestamps bool, progress ProgressFunc, userCtx any,
) *Result {
	res, _ := e.Execute(Request{
		Source: src, Destination: dst, Copy: &opts,
		PreserveTimestamps: preserveTimestamps,
		Progress:           progress, UserContext: userCtx, Mode: ReportErrors,
	})
	return res
}

// Move relocates src to dst. Failures are returned as typed errors.
func (e *Engine) Move(src, dst string, opts MoveOptions) (*Result, error) {
	return e.Execute(Request{Source: src, Destination: dst, Move: &opts, Mode: RaiseErrors})
}

// MoveWithProgress relocates src to dst, calling progress when the move
// falls back to a copy. Failures are reported through the Result.
func (e *Engine) MoveWithProgress(
	src, dst string, opts MoveOptions, progress ProgressFunc, userCtx any,
) *Result {
	res, _ := e.Execute(Request{
		Source: src, Destination: dst, Move: &opts,
		Progress: progress, UserContext: userCtx, Mode: ReportErrors,
	})
	return res
}

// CopyTransacted is Copy scoped to tx.
func (e *Engine) CopyTransacted(
	tx Transaction, src, dst string, opts CopyOptions, preserveTimestamps bool,
) (*Result, error) {
	return e.Execute(Request{
		Source: src, Destination: dst, Copy: &opts, Transaction: tx,
		PreserveTimestamps: preserveTimestamps, Mode: RaiseErrors,
	})
}

// CopyTransactedWithProgress is CopyWithProgress scoped to tx.
func (e *Engine) CopyTransactedWithProgress(
	tx Transaction, src, dst string, opts CopyOptions, preserveTimestamps bool,
	progress ProgressFunc, userCtx any,
) *Result {
	res, _ := e.Execute(Request{
		Source: src, Destination: dst, Copy: &opts, Transaction: tx,
		PreserveTimestamps: preserveTimestamps,
		Progress:           progress, UserContext: userCtx, Mode: ReportErrors,
	})
	return res
}

// MoveTransacted is Move scoped to tx.
func (e *Engine) MoveTransacted(tx Transaction, src, dst string, opts MoveOptions) (*Result, error) {
	return e.Execute(Request{
		Source: src, Destination: dst, Move: &opts, Transaction: tx, Mode: RaiseErrors,
	})
}

// MoveTransactedWithProgress is MoveWithProgress scoped to tx.
func (e *Engine) MoveTransactedWithProgress(
	tx Transaction, src, dst string, opts MoveOptions, progress ProgressFunc, userCtx any,
) *Result {
	res, _ := e.Execute(Request{
		Source: src, Destination: dst, Move: &opts, Transaction: tx,
		Progress: progress, UserContext: userCtx, Mode: ReportErrors,
	})
	return res
}

// Attributes returns the attribute set of path.
func (e *Engine) Attributes(tx Transaction, path string) (platform.Attributes, error) {
	return e.native.Attributes(e.txHandle(tx), path)
}

// SetAttributes replaces the attribute set of path.
func (e *Engine) SetAttributes(tx Transaction, path string, attrs platform.Attributes) error {
	return e.native.SetAttributes(e.txHandle(tx), path, attrs)
}

// FileTimes returns the timestamps of path.
func (e *Engine) FileTimes(tx Transaction, path string) (platform.FileTimes, error) {
	return e.native.FileTimes(e.txHandle(tx), path)
}

// SetFileTimes updates the timestamps of path. Zero fields are left alone.
func (e *Engine) SetFileTimes(tx Transaction, path string, times platform.FileTimes) error {
	return e.native.SetFileTimes(e.txHandle(tx), path, times)
}

// Exists reports whether path names an existing entry.
func (e *Engine) Exists(tx Transaction, path string) bool {
	_, err := e.native.Attributes(e.txHandle(tx), path)
	return err == nil
}

// CreateHardLink creates link as a hard link to existing.
func (e *Engine) CreateHardLink(tx Transaction, link, existing string) error {
	return platform.CreateHardLink(e.txHandle(tx), link, existing)
}

// CreateSymbolicLink creates link pointing at target.
func (e *Engine) CreateSymbolicLink(link, target string, isDir bool) error {
	return platform.CreateSymbolicLink(link, target, isDir)
}

type nopStats struct{}

func (nopStats) AddFilesTransferred(int64)  {}
func (nopStats) AddFilesFailed(int64)       {}
func (nopStats) AddFilesCanceled(int64)     {}
func (nopStats) AddBytesTransferred(int64)  {}
func (nopStats) AddDirsCreated(int64)       {}
func (nopStats) AddRetries(int64)           {}
func (nopStats) AddFilesVerified(int64)     {}
func (nopStats) AddFilesVerifyFailed(int64) {}
