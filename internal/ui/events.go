package ui

import "github.com/bamsammich/fileops/internal/event"

// Event is the engine's lifecycle event.
type Event = event.Event

// Re-export event types for convenience.
const (
	OperationStarted    = event.OperationStarted
	ChunkProgress       = event.ChunkProgress
	AttributesReset     = event.AttributesReset
	TimestampsPreserved = event.TimestampsPreserved
	OperationCompleted  = event.OperationCompleted
	OperationFailed     = event.OperationFailed
	OperationCanceled   = event.OperationCanceled
	DirCreated          = event.DirCreated
	VerifyStarted       = event.VerifyStarted
	VerifyOK            = event.VerifyOK
	VerifyFailed        = event.VerifyFailed
)
