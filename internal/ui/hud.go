package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bamsammich/fileops/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

// hudPresenter provides a TTY display: a scrolling feed of finished
// operations and a 2-line HUD for the file in flight that redraws in place.
type hudPresenter struct {
	w       io.Writer
	stats   stats.ReadTicker
	dstRoot string // destination root, stripped from displayed paths
	width   int    // terminal columns, 0 for the default
	verbose bool

	// Internal state.
	hudDrawn    bool
	current     string // destination of the file in flight
	curDone     int64
	curTotal    int64
	lastHUDDraw time.Time
}

const (
	sparklineWidth   = 20
	progressBarWidth = 20
	hudLines         = 2
	hudMinInterval   = 50 * time.Millisecond // don't redraw faster than this
)

func (p *hudPresenter) Run(events <-chan Event) error {
	// Fire first tick quickly to seed the ring buffer, then settle at 1s.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	// Redraw ticker for when no events are flowing (e.g., large file copy).
	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDrawHUD()

		case <-redrawTicker.C:
			p.drawHUD()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case OperationStarted:
		p.current = ev.Destination
		p.curDone, p.curTotal = 0, 0

	case ChunkProgress:
		p.current = ev.Destination
		p.curDone, p.curTotal = ev.Size, ev.Total

	case OperationCompleted:
		p.feed("✓  %s  %10s", p.styledPath(ev.Destination), FormatBytes(ev.Size))
		p.current = ""

	case OperationFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		p.feed("✗  %s  %s", p.styledPath(ev.Destination), errMsg)
		p.current = ""

	case OperationCanceled:
		p.feed("–  %s  %scanceled%s", p.styledPath(ev.Destination), ansiDim, ansiReset)
		p.current = ""

	case AttributesReset:
		if p.verbose {
			p.feed("↺  %s  %sattributes reset%s", p.styledPath(ev.Destination), ansiDim, ansiReset)
		}

	case DirCreated:
		if p.verbose {
			p.feed("+  %s/", p.styledPath(ev.Destination))
		}

	case VerifyFailed:
		p.feed("✗  %s  CHECKSUM MISMATCH", p.styledPath(ev.Destination))
	}
}

// feed prints one line above the HUD.
func (p *hudPresenter) feed(format string, args ...any) {
	p.clearHUD()
	fmt.Fprintf(p.w, format+"\n", args...)
	p.drawHUD()
}

// maybeDrawHUD redraws the HUD if enough time has passed since the last draw.
func (p *hudPresenter) maybeDrawHUD() {
	if time.Since(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	snap := p.stats.Snapshot()
	p.clearHUD()

	// Line 1: throughput sparkline + speed + byte totals.
	spark := Sparkline(p.stats.SpeedHistory(sparklineWidth), sparklineWidth)
	fmt.Fprintf(p.w, "       %s   %s   %s   %s files\n",
		spark, FormatRate(p.stats.RollingSpeed(10)),
		FormatBytes(snap.BytesTransferred), FormatCount(snap.FilesTransferred))

	// Line 2: progress of the file in flight.
	var pct float64
	if p.curTotal > 0 {
		pct = float64(p.curDone) / float64(p.curTotal)
	}
	name := truncPath(StripRoot(p.dstRoot, p.current), hudNameWidth(p.width))
	fmt.Fprintf(p.w, " %3.0f%%  %s   %s / %s   %s\n",
		pct*100, ProgressBar(pct, progressBarWidth),
		FormatBytes(p.curDone), FormatBytes(p.curTotal), name)

	p.hudDrawn = true
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	// Move cursor up and clear to end of screen.
	fmt.Fprintf(p.w, "\033[%dA\033[J", hudLines)
	p.hudDrawn = false
}

func (p *hudPresenter) Summary() string {
	return StyledSummary(p.stats.Snapshot())
}

// styledPath returns the path with the directory portion dimmed so the
// file name stands out.
func (p *hudPresenter) styledPath(path string) string {
	path = StripRoot(p.dstRoot, path)
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == "." || dir == "" {
		return base
	}
	return fmt.Sprintf("%s%s/%s%s", ansiDim, dir, ansiReset, base)
}

// truncPath shortens a path to fit within maxLen characters.
func truncPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:maxLen]
	}
	return "..." + path[len(path)-maxLen+3:]
}

// StripRoot removes a root prefix from a path, returning a clean relative path.
func StripRoot(root, path string) string {
	if root == "" {
		return path
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	if strings.HasPrefix(path, root) {
		return path[len(root):]
	}
	return path
}
