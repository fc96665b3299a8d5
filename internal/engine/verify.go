package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/stats"
)

// Verify compares the digests of src and dst. A difference is reported as
// *VerifyMismatchError.
func Verify(src, dst string, algo Algorithm) error {
	srcSum, err := HashFile(src, algo)
	if err != nil {
		return err
	}
	dstSum, err := HashFile(dst, algo)
	if err != nil {
		return err
	}
	if srcSum != dstSum {
		return &VerifyMismatchError{
			Source:            src,
			Destination:       dst,
			Algorithm:         algo,
			SourceDigest:      srcSum,
			DestinationDigest: dstSum,
		}
	}
	return nil
}

// Verify is the package-level Verify plus events and stats.
func (e *Engine) Verify(src, dst string, algo Algorithm) error {
	return verifyOne(src, dst, algo, e.events, e.stats)
}

func verifyOne(src, dst string, algo Algorithm, events chan<- event.Event, sw stats.Writer) error {
	if algo == VerifyNone {
		return nil
	}
	event.Send(events, event.Event{Type: event.VerifyStarted, Source: src, Destination: dst})
	if err := Verify(src, dst, algo); err != nil {
		sw.AddFilesVerifyFailed(1)
		event.Send(events, event.Event{
			Type: event.VerifyFailed, Source: src, Destination: dst, Error: err,
		})
		return err
	}
	sw.AddFilesVerified(1)
	event.Send(events, event.Event{Type: event.VerifyOK, Source: src, Destination: dst})
	return nil
}

// VerifyResult holds the outcome of a tree verification pass.
type VerifyResult struct {
	Errors   []error
	Verified int64
	Failed   int64
}

// VerifyTree walks dstRoot and compares every regular file that also exists
// under srcRoot, fanning out to workers goroutines.
func (e *Engine) VerifyTree(ctx context.Context, srcRoot, dstRoot string, algo Algorithm, workers int) VerifyResult {
	if workers <= 0 {
		workers = 4
	}
	files := collectVerifyFiles(ctx, srcRoot, dstRoot)

	taskCh := make(chan string, workers*2)
	var (
		mu     sync.Mutex
		result VerifyResult
		wg     sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range taskCh {
				if ctx.Err() != nil {
					continue
				}
				err := verifyOne(filepath.Join(srcRoot, rel), filepath.Join(dstRoot, rel), algo, e.events, e.stats)
				mu.Lock()
				if err != nil {
					result.Failed++
					result.Errors = append(result.Errors, err)
				} else {
					result.Verified++
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, f := range files {
		select {
		case <-ctx.Done():
			break feed
		case taskCh <- f:
		}
	}
	close(taskCh)
	wg.Wait()
	return result
}

// collectVerifyFiles returns the relative paths of regular files present in
// both trees.
func collectVerifyFiles(ctx context.Context, srcRoot, dstRoot string) []string {
	var files []string
	_ = filepath.WalkDir(dstRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dstRoot, path)
		if err != nil {
			return nil //nolint:nilerr // unreachable for paths under dstRoot
		}
		if _, err := os.Lstat(filepath.Join(srcRoot, rel)); err != nil {
			return nil //nolint:nilerr // only files present in both trees
		}
		files = append(files, rel)
		return nil
	})
	return files
}
