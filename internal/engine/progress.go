package engine

import (
	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/platform"
	"github.com/bamsammich/fileops/internal/stats"
)

type (
	CallbackReason = platform.CallbackReason
	Disposition    = platform.Disposition
)

const (
	ChunkFinished = platform.ChunkFinished
	StreamSwitch  = platform.StreamSwitch

	Continue = platform.Continue
	Cancel   = platform.Cancel
	Stop     = platform.Stop
	Quiet    = platform.Quiet
)

// ProgressFunc is called by the native layer while a copy or move runs.
// Returning Cancel or Stop aborts the transfer; Quiet keeps it running
// without further calls.
type ProgressFunc func(
	totalBytes int64,
	transferred int64,
	streamBytes int64,
	streamTransferred int64,
	streamNumber int,
	reason CallbackReason,
	userCtx any,
) Disposition

// progressAdapter bridges the native routine signature to a ProgressFunc.
// One adapter serves every attempt of a call, so reported spans retries.
type progressAdapter struct {
	fn       ProgressFunc
	userCtx  any
	events   chan<- event.Event
	stats    stats.Writer
	src, dst string
	reported int64 // bytes already added to stats
}

func (a *progressAdapter) routine(
	total, transferred, streamSize, streamTransferred int64,
	streamNumber uint32,
	reason CallbackReason,
	_, _ uintptr,
) Disposition {
	if delta := transferred - a.reported; delta > 0 {
		a.stats.AddBytesTransferred(delta)
		a.reported = transferred
	}
	event.Send(a.events, event.Event{
		Type:        event.ChunkProgress,
		Source:      a.src,
		Destination: a.dst,
		Size:        transferred,
		Total:       total,
	})
	return a.fn(total, transferred, streamSize, streamTransferred, int(streamNumber), reason, a.userCtx)
}
