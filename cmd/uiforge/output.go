package main

import (
	"fmt"
	"io"
	"os"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/catalog"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// statusOut receives progress and outcome lines. Command results go to the
// command's stdout instead.
var statusOut io.Writer = os.Stderr

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printLine(color, symbol, format string, args ...any) {
	fmt.Fprintln(statusOut, colorize(color, symbol+" "+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { printLine(colorGreen, "✓", format, args...) }
func printError(format string, args ...any) { printLine(colorRed, "✗", format, args...) }
func printWarning(format string, args ...any) { printLine(colorYellow, "⚠", format, args...) }
func printStep(format string, args ...any) { printLine(colorCyan, "→", format, args...) }

// printStatusTo writes an aligned "label: value" line to w.
func printStatusTo(w io.Writer, label string, format string, args ...any) {
	fmt.Fprintf(w, "  %s %s\n", colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}

// printResults writes one line per result: score, id, type/variant.
func printResults(w io.Writer, results []catalog.Result) {
	for _, r := range results {
		label := r.Snippet.Type
		if r.Snippet.Variant != "" {
			label += "/" + r.Snippet.Variant
		}
		fmt.Fprintf(w, "  %s  %-32s %s\n",
			colorize(colorBold, fmt.Sprintf("%.3f", r.Score)),
			r.Snippet.ID,
			colorize(colorCyan, label),
		)
	}
}
