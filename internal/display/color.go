// Package display styles prayer output for the terminal.
//
// Colour is on when stdout is a terminal, unless NO_COLOR is set
// (https://no-color.org/). FORCE_COLOR turns it on regardless.
package display

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

// style is an ANSI SGR prefix.
type style string

const (
	reset style = "\033[0m"

	styleBold   style = "\033[1m"
	styleDim    style = "\033[2m"
	styleRed    style = "\033[31m"
	styleGreen  style = "\033[32m"
	styleYellow style = "\033[33m"
	styleAccent style = "\033[1m\033[36m"
	styleGray   style = "\033[90m"
)

var enabled = detect(os.Stdout)

func detect(stdout *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	fd := stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SetEnabled overrides the detected colour state.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether output is coloured.
func Enabled() bool {
	return enabled
}

func paint(s style, text string) string {
	if !enabled || s == "" || text == "" {
		return text
	}
	return string(s) + text + string(reset)
}

// Bold is used for titles and table headers.
func Bold(text string) string { return paint(styleBold, text) }

// Dim is used for secondary labels such as the method line.
func Dim(text string) string { return paint(styleDim, text) }

// Gray marks passed prayers and footnotes.
func Gray(text string) string { return paint(styleGray, text) }

// Green marks success.
func Green(text string) string { return paint(styleGreen, text) }

// Red marks failures.
func Red(text string) string { return paint(styleRed, text) }

// Accent marks the active prayer.
func Accent(text string) string { return paint(styleAccent, text) }

// Countdown styles a next-prayer line: yellow while the azan is inside the
// countdown window, the accent otherwise.
func Countdown(seconds int, text string) string {
	if prayer.ShowCountdown(seconds) {
		return paint(styleYellow, text)
	}
	return Accent(text)
}

// Iqama renders an iqama label: green while counting down, red once late.
func Iqama(s prayer.IqamaState) string {
	switch s.Status {
	case prayer.IqamaCounting:
		return Green(s.Label())
	case prayer.IqamaLate:
		return Red(s.Label())
	}
	return ""
}
