package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/pathres"
	"github.com/bamsammich/fileops/internal/platform"
)

// TreeOptions configures CopyTree and MoveTree. Copy and Move apply to the
// per-file calls; only the one matching the operation is read.
type TreeOptions struct {
	Transaction        Transaction
	Copy               *CopyOptions
	Move               *MoveOptions
	Progress           ProgressFunc
	UserContext        any
	PathFormat         pathres.Format
	Mode               ErrorMode
	Verify             Algorithm
	PreserveTimestamps bool
}

var errStopWalk = errors.New("stop walk")

// CopyTree copies src onto dst. A directory source is walked and every
// entry is copied with a single-file call; all calls share one Result.
// A canceled ctx or progress callback stops the walk and marks the Result
// canceled.
func (e *Engine) CopyTree(ctx context.Context, src, dst string, opts TreeOptions) (*Result, error) {
	res := newResult(src, dst, false)
	defer res.finish()

	var copyOpts CopyOptions
	if opts.Copy != nil {
		copyOpts = *opts.Copy
	}
	err := e.copyTree(ctx, src, dst, copyOpts, opts, res)
	return res, treeError(opts.Mode, err)
}

func treeError(mode ErrorMode, err error) error {
	if mode == ReportErrors && !errors.Is(err, ErrInvalidRequest) {
		return nil
	}
	return err
}

func (e *Engine) copyTree(
	ctx context.Context, src, dst string, copyOpts CopyOptions, opts TreeOptions, res *Result,
) error {
	info, err := os.Lstat(src)
	if err != nil || !info.IsDir() {
		req := opts.fileRequest(src, dst, copyOpts)
		if verr := req.validate(); verr != nil {
			res.ErrorCode = platform.ErrorInvalidParameter
			res.Err = verr
			return verr
		}
		if err := e.executeInto(&req, res); err != nil {
			return err
		}
		return e.verifyCopied(req.Source, req.Destination, opts.Verify, res)
	}
	res.IsFolder = true
	if nestedTarget(src, dst) {
		ierr := &InvalidRequestError{Reason: fmt.Sprintf("destination %s is inside source %s", dst, src)}
		res.ErrorCode = platform.ErrorInvalidParameter
		res.Err = ierr
		return ierr
	}

	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return e.createDir(path, target, res)
		}
		fileOpts := copyOpts
		if d.Type()&fs.ModeSymlink != 0 {
			fileOpts |= CopySymlink
		}
		req := opts.fileRequest(path, target, fileOpts)
		if err := e.executeInto(&req, res); err != nil {
			return err
		}
		if res.IsCanceled {
			return errStopWalk
		}
		if d.Type().IsRegular() {
			return e.verifyCopied(path, target, opts.Verify, res)
		}
		return nil
	})

	switch {
	case walkErr == nil, errors.Is(walkErr, errStopWalk):
		return nil
	case errors.Is(walkErr, context.Canceled), errors.Is(walkErr, context.DeadlineExceeded):
		res.IsCanceled = true
		res.ErrorCode = platform.ErrorRequestAborted
		e.log.Debug("tree copy canceled", "src", src, "error", walkErr)
		return nil
	case res.Err != nil:
		return walkErr
	}
	err = &IOError{Source: src, Destination: dst, Code: platform.CodeOf(walkErr), Err: walkErr}
	res.ErrorCode = platform.CodeOf(walkErr)
	res.Err = err
	return err
}

// nestedTarget reports whether dst is src itself or lies beneath it. Walking
// such a tree would descend into the directories the copy creates.
func nestedTarget(src, dst string) bool {
	s, err := pathres.Resolve(src, pathres.FullPath)
	if err != nil {
		return false
	}
	d, err := pathres.Resolve(dst, pathres.FullPath)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(s, d)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (o TreeOptions) fileRequest(src, dst string, copyOpts CopyOptions) Request {
	return Request{
		Source:             src,
		Destination:        dst,
		Copy:               &copyOpts,
		Transaction:        o.Transaction,
		Progress:           o.Progress,
		UserContext:        o.UserContext,
		PathFormat:         o.PathFormat,
		PreserveTimestamps: o.PreserveTimestamps,
	}
}

func (e *Engine) createDir(src, dst string, res *Result) error {
	perm := fs.FileMode(0o755)
	if info, err := os.Stat(src); err == nil {
		perm = info.Mode().Perm() | 0o700
	}
	if info, err := os.Stat(dst); err == nil {
		if !info.IsDir() {
			err := &TypeConflictError{Path: dst, IsDir: false}
			res.ErrorCode = platform.ErrorAlreadyExists
			res.Err = err
			return err
		}
		return nil
	}
	if err := os.MkdirAll(dst, perm); err != nil {
		ierr := &IOError{Path: dst, Source: src, Destination: dst, Code: platform.CodeOf(err), Err: err}
		res.ErrorCode = platform.CodeOf(err)
		res.Err = ierr
		return ierr
	}
	res.TotalFolders++
	e.stats.AddDirsCreated(1)
	event.Send(e.events, event.Event{Type: event.DirCreated, Source: src, Destination: dst})
	return nil
}

func (e *Engine) verifyCopied(src, dst string, algo Algorithm, res *Result) error {
	if algo == VerifyNone || res.IsCanceled {
		return nil
	}
	if err := verifyOne(src, dst, algo, e.events, e.stats); err != nil {
		res.Err = err
		return err
	}
	return nil
}

// MoveTree relocates src to dst. A directory that cannot be renamed across
// volumes is copied and then removed when MoveCopyAllowed is set.
func (e *Engine) MoveTree(ctx context.Context, src, dst string, opts TreeOptions) (*Result, error) {
	res := newResult(src, dst, true)
	defer res.finish()

	var moveOpts MoveOptions
	if opts.Move != nil {
		moveOpts = *opts.Move
	}
	req := Request{
		Source:      src,
		Destination: dst,
		Move:        &moveOpts,
		Transaction: opts.Transaction,
		Progress:    opts.Progress,
		UserContext: opts.UserContext,
		PathFormat:  opts.PathFormat,
	}
	if err := req.validate(); err != nil {
		res.ErrorCode = platform.ErrorInvalidParameter
		res.Err = err
		return res, err
	}

	err := e.executeInto(&req, res)
	if err == nil || res.ErrorCode != platform.ErrorNotSameDevice || !moveOpts.Has(MoveCopyAllowed) {
		return res, treeError(opts.Mode, err)
	}
	info, serr := os.Lstat(src)
	if serr != nil || !info.IsDir() {
		return res, treeError(opts.Mode, err)
	}

	e.log.Debug("directory move crosses volumes, copying", "src", src, "dst", dst)
	res.Err = nil
	res.ErrorCode = platform.ErrorSuccess

	copyOpts := CopyFailIfExists
	if moveOpts.Has(MoveReplaceExisting) {
		copyOpts = CopyResetReadOnlyTarget
	}
	copyOpts |= CopySymlink
	treeOpts := opts
	treeOpts.PreserveTimestamps = true
	if err := e.copyTree(ctx, src, dst, copyOpts, treeOpts, res); err != nil || res.IsCanceled {
		return res, treeError(opts.Mode, err)
	}
	if err := os.RemoveAll(src); err != nil {
		ierr := &IOError{Path: src, Source: src, Destination: dst, Code: platform.CodeOf(err), Err: fmt.Errorf("remove source: %w", err)}
		res.ErrorCode = platform.CodeOf(err)
		res.Err = ierr
		return res, treeError(opts.Mode, ierr)
	}
	return res, nil
}
