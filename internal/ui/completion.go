package ui

import (
	"fmt"

	"github.com/bamsammich/fileops/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  files 48,917  size 2.1 GiB  avg 641 MB/s  time 3m 17s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	icon := "✓"
	if snap.FilesFailed > 0 || snap.FilesVerifyFailed > 0 {
		icon = "✗"
	}
	return summaryLine(snap, icon, func(s string) string { return s })
}

func summaryLine(snap stats.Snapshot, icon string, label func(string) string) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesTransferred) / snap.Elapsed.Seconds()
	}

	base := fmt.Sprintf("done %s  %s %s  %s %s  %s %s  %s %s",
		icon,
		label("files"), FormatCount(snap.FilesTransferred),
		label("size"), FormatBytes(snap.BytesTransferred),
		label("avg"), FormatRate(avgSpeed),
		label("time"), FormatDuration(snap.Elapsed),
	)
	if snap.DirsCreated > 0 {
		base += fmt.Sprintf("  %s %s", label("dirs"), FormatCount(snap.DirsCreated))
	}
	if snap.Retries > 0 {
		base += fmt.Sprintf("  %s %d", label("retries"), snap.Retries)
	}
	if snap.FilesVerified > 0 || snap.FilesVerifyFailed > 0 {
		base += fmt.Sprintf("  %s %s", label("verified"), FormatCount(snap.FilesVerified))
	}
	if snap.FilesCanceled > 0 {
		base += fmt.Sprintf("  %s %d", label("canceled"), snap.FilesCanceled)
	}
	base += fmt.Sprintf("  %s %d", label("errors"), snap.FilesFailed+snap.FilesVerifyFailed)
	return base
}
