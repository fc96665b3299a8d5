package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	OperationStarted Type = iota + 1
	ChunkProgress
	AttributesReset
	TimestampsPreserved
	OperationCompleted
	OperationFailed
	OperationCanceled
	DirCreated
	VerifyStarted
	VerifyOK
	VerifyFailed
)

var typeNames = [...]string{
	OperationStarted:    "OperationStarted",
	ChunkProgress:       "ChunkProgress",
	AttributesReset:     "AttributesReset",
	TimestampsPreserved: "TimestampsPreserved",
	OperationCompleted:  "OperationCompleted",
	OperationFailed:     "OperationFailed",
	OperationCanceled:   "OperationCanceled",
	DirCreated:          "DirCreated",
	VerifyStarted:       "VerifyStarted",
	VerifyOK:            "VerifyOK",
	VerifyFailed:        "VerifyFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a lifecycle notification from the copy/move engine.
type Event struct {
	Timestamp   time.Time
	Error       error
	Type        Type
	Source      string
	Destination string
	Op          string // "copy" or "move"
	Size        int64  // bytes transferred so far, or final size
	Total       int64  // total bytes of the current file
	Attempt     int    // 1 for the first native call, +1 per recovery
	Code        uint32 // native error code, 0 on success
}

// Send delivers e without blocking. Events are dropped when ch is nil or
// full; the engine never waits on a slow consumer.
func Send(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case ch <- e:
	default:
	}
}
