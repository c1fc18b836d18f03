package ui

import "fmt"

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Convenience helpers to build styled strings. Keep minimal so tests can use constants directly.
func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}

func Dim(s string) string {
	return ColorDim + s + ColorReset
}

// Confidence renders a score colored by band: green above 0.7, yellow above
// 0.4, red below.
func Confidence(score float64) string {
	text := fmt.Sprintf("%.2f", score)
	switch {
	case score >= 0.7:
		return ColorGreen + text + ColorReset
	case score >= 0.4:
		return ColorYellow + text + ColorReset
	default:
		return ColorRed + text + ColorReset
	}
}
