package cli

import (
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/gersonkurz/wax/internal/wixproject"
)

// ANSI color codes
const (
	reset   = "\033[0m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	bold    = "\033[1m"
)

// ColorsEnabled controls whether colored output is enabled.
// Set to false to disable colors (e.g., via --no-color flag).
var ColorsEnabled = detectColors()

// detectColors checks the NO_COLOR environment variable (https://no-color.org/)
// and whether stdout is a terminal. Windows 10 1511 and later understand ANSI
// escape codes, so the terminal check is enough there as well.
func detectColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DisableColors turns off colored output.
func DisableColors() {
	ColorsEnabled = false
}

// EnableColors turns on colored output if the terminal supports it.
func EnableColors() {
	ColorsEnabled = detectColors()
}

// colorize wraps text in ANSI color codes if colors are enabled.
func colorize(color, text string) string {
	if !ColorsEnabled {
		return text
	}
	return color + text + reset
}

// Error formats text in red (for errors, failures).
func Error(text string) string {
	return colorize(red, text)
}

// Success formats text in green (for success messages, completions).
func Success(text string) string {
	return colorize(green, text)
}

// Warning formats text in yellow (for warnings and missing structure).
func Warning(text string) string {
	return colorize(yellow, text)
}

// Info formats text in cyan (for informational messages, progress).
func Info(text string) string {
	return colorize(cyan, text)
}

// Bold formats text in bold (for emphasis, section headers).
func Bold(text string) string {
	return colorize(bold, text)
}

// Filename formats a filename/path in cyan.
func Filename(text string) string {
	return colorize(cyan, text)
}

// Number formats a number in magenta.
func Number(n int) string {
	return colorize(magenta, strconv.Itoa(n))
}

// ID formats an installer identifier. Placeholders are shown as warnings.
func ID(id string) string {
	if wixproject.IsPlaceholder(id) {
		return Warning(id)
	}
	return colorize(magenta, id)
}
