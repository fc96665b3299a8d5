package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bamsammich/fileops/internal/stats"
)

var rateUnits = []string{"B/s", "KB/s", "MB/s", "GB/s", "TB/s"}

// FormatRate formats a bytes-per-second rate with three significant digits.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	val := bytesPerSec
	for _, u := range rateUnits {
		if val < 1024 {
			return strconv.FormatFloat(val, 'f', ratePrecision(val), 64) + " " + u
		}
		val /= 1024
	}
	return fmt.Sprintf("%.1f PB/s", val)
}

func ratePrecision(v float64) int {
	switch {
	case v < 10:
		return 2
	case v < 100:
		return 1
	}
	return 0
}

// FormatETA formats the time remaining, or "--" when it is unknown.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	return clock(d)
}

// FormatDuration formats elapsed time concisely.
func FormatDuration(d time.Duration) string {
	return clock(d)
}

// clock renders d rounded to the second as "1h 02m 03s", "2m 03s" or "3s".
func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatCount formats an integer with comma separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// ProgressBar renders pct (clamped to [0,1]) as width ▪/□ cells.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	pct = min(max(pct, 0), 1)
	filled := min(int(pct*float64(width)), width)
	return strings.Repeat("▪", filled) + strings.Repeat("□", width-filled)
}

// FormatBytes wraps stats.FormatBytes for UI use.
func FormatBytes(b int64) string {
	return stats.FormatBytes(b)
}
