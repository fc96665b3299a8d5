package engine

import (
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/platform"
	"github.com/bamsammich/fileops/internal/stats"
)

// fakeNative scripts Invoke results and serves attributes from a map. It
// records every native call so tests can assert what reached the OS layer.
type fakeNative struct {
	mu         sync.Mutex
	results    []error // consumed one per Invoke; nil once exhausted
	chunks     []int64 // transferred values reported to the progress routine
	chunkFirst bool    // report chunks before returning a scripted error
	calls      []platform.Call
	attrs      map[string]platform.Attributes
	sizes      map[string]int64
	times      map[string]platform.FileTimes
	setAttrs   []string
	readAtime  time.Time // when set, Invoke moves the source access time here
	setAttrErr error
	setTimeErr error
	openErr    error
	opened     int
	closed     int
}

func newFakeNative() *fakeNative {
	return &fakeNative{
		attrs: map[string]platform.Attributes{},
		sizes: map[string]int64{},
		times: map[string]platform.FileTimes{},
	}
}

func (f *fakeNative) Invoke(call platform.Call) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	var err error
	if len(f.results) > 0 {
		err, f.results = f.results[0], f.results[1:]
	}
	chunks := f.chunks
	chunkFirst := f.chunkFirst
	f.mu.Unlock()

	if err != nil && !chunkFirst {
		return err
	}
	if call.Progress != nil {
		total := int64(0)
		if len(chunks) > 0 {
			total = chunks[len(chunks)-1]
		}
		if call.Progress(total, 0, total, 0, 1, platform.StreamSwitch, 0, 0) != platform.Continue {
			return platform.NewErrno(call.Primitive.String(), call.Src, platform.ErrorRequestAborted, nil)
		}
		for _, c := range chunks {
			switch call.Progress(total, c, total, c, 1, platform.ChunkFinished, 0, 0) {
			case platform.Cancel, platform.Stop:
				return platform.NewErrno(call.Primitive.String(), call.Src, platform.ErrorRequestAborted, nil)
			}
		}
	}
	if err != nil {
		return err
	}
	f.mu.Lock()
	if !f.readAtime.IsZero() {
		t := f.times[call.Src]
		t.LastAccess = f.readAtime
		f.times[call.Src] = t
	}
	if _, ok := f.attrs[call.Dst]; !ok {
		f.attrs[call.Dst] = platform.AttrNormal
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeNative) Attributes(_ uintptr, path string) (platform.Attributes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attrs[path]
	if !ok {
		return 0, platform.NewErrno("GetFileAttributes", path, platform.ErrorFileNotFound, fs.ErrNotExist)
	}
	return a, nil
}

func (f *fakeNative) SetAttributes(_ uintptr, path string, attrs platform.Attributes) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setAttrs = append(f.setAttrs, path)
	if f.setAttrErr != nil {
		return f.setAttrErr
	}
	f.attrs[path] = attrs
	return nil
}

func (f *fakeNative) FileTimes(_ uintptr, path string) (platform.FileTimes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.times[path], nil
}

func (f *fakeNative) SetFileTimes(_ uintptr, path string, times platform.FileTimes) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setTimeErr != nil {
		return f.setTimeErr
	}
	f.times[path] = times
	return nil
}

func (f *fakeNative) Size(_ uintptr, path string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sizes[path], nil
}

func (f *fakeNative) OpenRead(_ uintptr, path string) (io.Closer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return closerFunc(func() error {
		f.mu.Lock()
		f.closed++
		f.mu.Unlock()
		return nil
	}), nil
}

func (f *fakeNative) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

func errno(code platform.ErrorCode) error {
	return platform.NewErrno("fake", "", code, nil)
}

type fakeTx uintptr

func (t fakeTx) Handle() uintptr { return uintptr(t) }

type engineOpt func(*Config)

func withTransactions() engineOpt {
	return func(c *Config) { c.Capabilities = &platform.Capabilities{OSVersion: "test", Transactions: true} }
}

func withEvents(ch chan<- event.Event) engineOpt {
	return func(c *Config) { c.Events = ch }
}

func withStats(s stats.Writer) engineOpt {
	return func(c *Config) { c.Stats = s }
}

func newTestEngine(t *testing.T, native platform.Native, opts ...engineOpt) *Engine {
	t.Helper()
	cfg := Config{
		Native:       native,
		Capabilities: &platform.Capabilities{OSVersion: "test"},
		Logger:       slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(&cfg)
	}
	return New(cfg)
}
