package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Writer is the side of a Collector the engine feeds.
type Writer interface {
	AddFilesTransferred(n int64)
	AddFilesFailed(n int64)
	AddFilesCanceled(n int64)
	AddBytesTransferred(n int64)
	AddDirsCreated(n int64)
	AddRetries(n int64)
	AddFilesVerified(n int64)
	AddFilesVerifyFailed(n int64)
}

// Reader is the side of a Collector presenters read.
type Reader interface {
	Snapshot() Snapshot
	RollingSpeed(seconds int) float64
	SpeedHistory(n int) []float64
	ETA() time.Duration
}

// ReadTicker is a Reader whose throughput ring is advanced by the caller.
type ReadTicker interface {
	Reader
	Tick()
}

// Collector tracks copy and move statistics using lock-free atomic counters.
type Collector struct {
	startTime         time.Time
	filesTransferred  atomic.Int64
	filesFailed       atomic.Int64
	filesCanceled     atomic.Int64
	bytesTransferred  atomic.Int64
	dirsCreated       atomic.Int64
	retries           atomic.Int64
	filesVerified     atomic.Int64
	filesVerifyFailed atomic.Int64
	bytesTotal        atomic.Int64
	filesTotal        atomic.Int64

	// Ring buffer, written only by Tick.
	mu          sync.Mutex
	throughput  [ringSize]int64 // bytes delta per tick
	filesPerSec [ringSize]int64 // files delta per tick
	ringIdx     int
	ringCount   int // samples written, capped at ringSize
	lastBytes   int64
	lastFiles   int64
}

var (
	_ Writer     = (*Collector)(nil)
	_ ReadTicker = (*Collector)(nil)
)

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotals records the expected amount of work.
func (c *Collector) SetTotals(files, bytes int64) {
	c.filesTotal.Store(files)
	c.bytesTotal.Store(bytes)
}

// AddFilesTotal grows the expected file count while a tree is being walked.
func (c *Collector) AddFilesTotal(n int64) { c.filesTotal.Add(n) }

// AddBytesTotal grows the expected byte count while a tree is being walked.
func (c *Collector) AddBytesTotal(n int64) { c.bytesTotal.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesTransferred  int64
	FilesFailed       int64
	FilesCanceled     int64
	BytesTransferred  int64
	DirsCreated       int64
	Retries           int64
	FilesVerified     int64
	FilesVerifyFailed int64
	BytesTotal        int64
	FilesTotal        int64
	Elapsed           time.Duration
}

func (c *Collector) AddFilesTransferred(n int64)  { c.filesTransferred.Add(n) }
func (c *Collector) AddFilesFailed(n int64)       { c.filesFailed.Add(n) }
func (c *Collector) AddFilesCanceled(n int64)     { c.filesCanceled.Add(n) }
func (c *Collector) AddBytesTransferred(n int64)  { c.bytesTransferred.Add(n) }
func (c *Collector) AddDirsCreated(n int64)       { c.dirsCreated.Add(n) }
func (c *Collector) AddRetries(n int64)           { c.retries.Add(n) }
func (c *Collector) AddFilesVerified(n int64)     { c.filesVerified.Add(n) }
func (c *Collector) AddFilesVerifyFailed(n int64) { c.filesVerifyFailed.Add(n) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesTransferred:  c.filesTransferred.Load(),
		FilesFailed:       c.filesFailed.Load(),
		FilesCanceled:     c.filesCanceled.Load(),
		BytesTransferred:  c.bytesTransferred.Load(),
		DirsCreated:       c.dirsCreated.Load(),
		Retries:           c.retries.Load(),
		FilesVerified:     c.filesVerified.Load(),
		FilesVerifyFailed: c.filesVerifyFailed.Load(),
		BytesTotal:        c.bytesTotal.Load(),
		FilesTotal:        c.filesTotal.Load(),
		Elapsed:           c.Elapsed(),
	}
}

// Tick snapshots byte/file deltas into the ring buffer. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	currentBytes := c.bytesTransferred.Load()
	currentFiles := c.filesTransferred.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = currentBytes - c.lastBytes
	c.filesPerSec[c.ringIdx] = currentFiles - c.lastFiles
	c.lastBytes = currentBytes
	c.lastFiles = currentFiles

	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.throughput[:], seconds)
}

// RollingFilesPerSec returns average files/sec over the last n seconds.
func (c *Collector) RollingFilesPerSec(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.filesPerSec[:], seconds)
}

// SpeedHistory returns up to n throughput samples, oldest first.
func (c *Collector) SpeedHistory(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := min(n, c.ringCount)
	out := make([]float64, count)
	for i := range count {
		idx := (c.ringIdx - count + i + ringSize) % ringSize
		out[i] = float64(c.throughput[idx])
	}
	return out
}

func (c *Collector) rollingAvg(buf []int64, n int) float64 {
	count := min(n, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += buf[idx]
	}
	return float64(sum) / float64(count)
}

// ETA estimates remaining time based on rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesTransferred.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"files=%d failed=%d canceled=%d bytes=%d dirs=%d retries=%d",
		s.FilesTransferred, s.FilesFailed, s.FilesCanceled,
		s.BytesTransferred, s.DirsCreated, s.Retries,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
