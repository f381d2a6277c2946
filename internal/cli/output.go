package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/ariel-frischer/specguard/internal/validation"
)

var (
	highColor   = color.New(color.FgRed, color.Bold)
	mediumColor = color.New(color.FgYellow)
	lowColor    = color.New(color.FgCyan)
	okColor     = color.New(color.FgGreen)
)

// configureColor disables colored output when requested or when stdout is
// not a terminal.
func configureColor(noColor bool) {
	if noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

// severityLabel renders a severity tag with its color.
func severityLabel(sev validation.Severity) string {
	switch sev {
	case validation.SeverityHigh:
		return highColor.Sprint("HIGH")
	case validation.SeverityMedium:
		return mediumColor.Sprint("MEDIUM")
	case validation.SeverityLow:
		return lowColor.Sprint("LOW")
	default:
		return string(sev)
	}
}

// printErrors writes each validation error on its own line.
func printErrors(errors []*validation.ValidationError) {
	for _, err := range errors {
		location := err.File
		if err.Line > 0 {
			location = fmt.Sprintf("%s:%d", err.File, err.Line)
		}
		fmt.Printf("  %s %s: %s\n", severityLabel(err.Severity), location, err.Message)
	}
}

// printSummary writes the per-severity counts and verdict line.
func printSummary(valid bool, high, medium, low int) {
	if valid {
		okColor.Printf("✓ valid")
	} else {
		highColor.Printf("✗ invalid")
	}
	fmt.Printf(" (%d high, %d medium, %d low)\n", high, medium, low)
}

// printError writes a formatted message to stderr.
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "specguard: "+format+"\n", args...)
}
