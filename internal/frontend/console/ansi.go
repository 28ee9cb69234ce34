// Package console renders encounters to a terminal and reads a player's
// decisions from it.
package console

import (
	"fmt"
	"regexp"
)

// ANSI escape codes used by the renderer.
const (
	Reset        = "\033[0m"
	Bold         = "\033[1m"
	Dim          = "\033[2m"
	Red          = "\033[31m"
	Green        = "\033[32m"
	Yellow       = "\033[33m"
	Cyan         = "\033[36m"
	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
)

// Colorize wraps text with color and a reset suffix.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with color and a reset suffix.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

var ansiPattern = regexp.MustCompile(`\033\[[0-9;]*m`)

// StripANSI removes every ANSI color sequence from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
