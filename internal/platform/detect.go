package platform

import "sync"

// Capabilities describes what the running system supports. It is resolved
// once per process and injected into the engine.
type Capabilities struct {
	OSVersion    string
	Transactions bool // kernel transactions (Vista / Server 2008 and later)
}

// Detect inspects the running system once and caches the answer.
var Detect = sync.OnceValue(detect)
