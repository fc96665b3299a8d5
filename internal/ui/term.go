package ui

import "golang.org/x/term"

const defaultTermWidth = 80

// IsTTY reports whether fd is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// TermWidth returns the column count of the terminal on fd, or 80 when fd
// is not a terminal.
func TermWidth(fd uintptr) int {
	if w, _, err := term.GetSize(int(fd)); err == nil && w > 0 {
		return w
	}
	return defaultTermWidth
}

// hudNameWidth is the room left for the in-flight file name on the HUD's
// progress line once the bar and byte counters are drawn.
func hudNameWidth(cols int) int {
	const fixed = 58
	if cols <= 0 {
		cols = defaultTermWidth
	}
	return max(cols-fixed, 16)
}
