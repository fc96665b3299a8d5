package platform

import (
	"os"
	"sync"
)

// tmpRegistry tracks temp files written by in-flight portable copies so an
// interrupted process can still remove them.
var globalTmpRegistry = &tmpRegistry{}

type tmpRegistry struct {
	paths map[string]struct{}
	mu    sync.Mutex
}

func registerTmp(path string) {
	globalTmpRegistry.mu.Lock()
	defer globalTmpRegistry.mu.Unlock()
	if globalTmpRegistry.paths == nil {
		globalTmpRegistry.paths = make(map[string]struct{})
	}
	globalTmpRegistry.paths[path] = struct{}{}
}

func deregisterTmp(path string) {
	globalTmpRegistry.mu.Lock()
	defer globalTmpRegistry.mu.Unlock()
	delete(globalTmpRegistry.paths, path)
}

// PendingTmpFiles returns the temp files of copies that have not finished.
func PendingTmpFiles() []string {
	globalTmpRegistry.mu.Lock()
	defer globalTmpRegistry.mu.Unlock()
	paths := make([]string, 0, len(globalTmpRegistry.paths))
	for p := range globalTmpRegistry.paths {
		paths = append(paths, p)
	}
	return paths
}

// CleanupTmpFiles removes all registered temp files. Called on interrupt.
func CleanupTmpFiles() {
	paths := PendingTmpFiles()

	globalTmpRegistry.mu.Lock()
	globalTmpRegistry.paths = nil
	globalTmpRegistry.mu.Unlock()

	for _, p := range paths {
		_ = os.Remove(p)
	}
}
