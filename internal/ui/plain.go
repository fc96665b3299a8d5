package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/fileops/internal/stats"
)

// plainPresenter outputs one line per finished operation to stdout,
// and periodic progress to stderr when not a TTY.
type plainPresenter struct {
	w       io.Writer
	errW    io.Writer
	stats   stats.ReadTicker
	dstRoot string
	verbose bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	path := StripRoot(p.dstRoot, ev.Destination)
	switch ev.Type {
	case OperationCompleted:
		fmt.Fprintf(p.w, "%s  %s\n", path, FormatBytes(ev.Size))
	case OperationFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s\n", path, errMsg)
	case OperationCanceled:
		fmt.Fprintf(p.w, "%s  canceled\n", path)
	case AttributesReset:
		if p.verbose {
			fmt.Fprintf(p.w, "%s  attributes reset\n", path)
		}
	case DirCreated:
		if p.verbose {
			fmt.Fprintf(p.w, "mkdir: %s\n", path)
		}
	case VerifyStarted:
		if p.verbose {
			fmt.Fprintf(p.w, "verifying: %s\n", path)
		}
	case VerifyFailed:
		fmt.Fprintf(p.w, "MISMATCH: %s\n", path)
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesTransferred) / float64(snap.BytesTotal) * 100
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s files %s eta %s\n",
			pct,
			FormatBytes(snap.BytesTransferred), FormatBytes(snap.BytesTotal),
			FormatCount(snap.FilesTransferred),
			FormatRate(p.stats.RollingSpeed(10)),
			FormatETA(p.stats.ETA()),
		)
		return
	}
	fmt.Fprintf(p.errW, "progress: %s transferred %s files\n",
		FormatBytes(snap.BytesTransferred),
		FormatCount(snap.FilesTransferred),
	)
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
