//go:build windows

package platform

import (
	"sync"

	"golang.org/x/sys/windows"
)

// The native copy engine hands lpData back to the trampoline untouched. It
// carries a registry key rather than a Go pointer, so nothing the collector
// manages crosses the boundary.
type routineRegistry struct {
	routines map[uintptr]ProgressRoutine
	mu       sync.Mutex
	next     uintptr
}

var progressRoutines = &routineRegistry{routines: make(map[uintptr]ProgressRoutine)}

func (r *routineRegistry) add(fn ProgressRoutine) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.routines[r.next] = fn
	return r.next
}

func (r *routineRegistry) get(key uintptr) ProgressRoutine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.routines[key]
}

func (r *routineRegistry) remove(key uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routines, key)
}

// progressTrampoline is the single LPPROGRESS_ROUTINE shared by every call.
// windows.NewCallback slots are never released, so it is created once.
var progressTrampoline = sync.OnceValue(func() uintptr {
	return windows.NewCallback(progressThunk)
})

func dispatchProgress(
	total, transferred, streamSize, streamTransferred int64,
	stream, reason uint32,
	src, dst, data uintptr,
) uintptr {
	fn := progressRoutines.get(data)
	if fn == nil {
		return uintptr(Continue)
	}
	return uintptr(fn(total, transferred, streamSize, streamTransferred,
		stream, CallbackReason(reason), src, dst))
}
