package engine

import (
	"fmt"
	"time"

	"github.com/bamsammich/fileops/internal/platform"
)

// Result accumulates the outcome of a copy or move. Tree operations thread
// one Result through every per-entry call so the counts add up.
type Result struct {
	started     time.Time
	Err         error
	Source      string
	Destination string
	TotalBytes  int64
	Duration    time.Duration
	TotalFiles  int
	// TotalFolders counts directories moved or created.
	TotalFolders int
	Retries      int
	ErrorCode    platform.ErrorCode
	IsFolder     bool
	IsMove       bool
	IsCanceled   bool
	finished     bool
}

func newResult(src, dst string, isMove bool) *Result {
	return &Result{
		Source:      src,
		Destination: dst,
		IsMove:      isMove,
		started:     time.Now(),
	}
}

// finish stops the stopwatch. Later calls have no effect.
func (r *Result) finish() {
	if r.finished {
		return
	}
	r.finished = true
	r.Duration = time.Since(r.started)
}

// Success reports whether the operation completed without error or cancellation.
func (r *Result) Success() bool {
	return r.Err == nil && r.ErrorCode == platform.ErrorSuccess && !r.IsCanceled
}

func (r *Result) String() string {
	op := "copy"
	if r.IsMove {
		op = "move"
	}
	status := "ok"
	switch {
	case r.IsCanceled:
		status = "canceled"
	case r.Err != nil:
		status = "failed: " + r.Err.Error()
	case r.ErrorCode != platform.ErrorSuccess:
		status = "failed: " + r.ErrorCode.String()
	}
	return fmt.Sprintf("%s %s -> %s: %s (files=%d folders=%d bytes=%d retries=%d in %s)",
		op, r.Source, r.Destination, status,
		r.TotalFiles, r.TotalFolders, r.TotalBytes, r.Retries, r.Duration.Round(time.Millisecond))
}
