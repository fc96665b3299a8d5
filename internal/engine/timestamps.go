package engine

import (
	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/platform"
)

// sourceTimes holds the source timestamps captured before the native call.
// Reading the source during the copy can move its access time.
type sourceTimes struct {
	err   error
	times platform.FileTimes
}

func (e *Engine) snapshotTimes(tx uintptr, src string) sourceTimes {
	times, err := e.native.FileTimes(tx, src)
	return sourceTimes{times: times, err: err}
}

// preserveTimestamps applies the pre-copy creation, access and write times
// of src to dst. Creation time is read-only outside Windows and is skipped
// there by the native layer.
func (e *Engine) preserveTimestamps(tx uintptr, src, dst string, snap sourceTimes) error {
	if snap.err != nil {
		return &IOError{Path: src, Source: src, Destination: dst, Code: platform.CodeOf(snap.err), Err: snap.err}
	}
	if err := e.native.SetFileTimes(tx, dst, snap.times); err != nil {
		return &IOError{Path: dst, Source: src, Destination: dst, Code: platform.CodeOf(err), Err: err}
	}
	event.Send(e.events, event.Event{
		Type:        event.TimestampsPreserved,
		Source:      src,
		Destination: dst,
		Op:          kindCopy.String(),
	})
	return nil
}
