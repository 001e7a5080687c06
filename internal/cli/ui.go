package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary: names, counts
	colorGreen  = lipgloss.Color("35")  // success, cache hits
	colorYellow = lipgloss.Color("220") // warnings
	colorBlue   = lipgloss.Color("75")  // links, commands
	colorWhite  = lipgloss.Color("255") // style values
	colorGray   = lipgloss.Color("245") // labels, table headers
	colorDim    = lipgloss.Color("240") // secondary text
)

var (
	// StyleTitle renders headings such as the attribute in lookup output.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight renders template and library names.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink renders URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue renders style values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber renders counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning     = lipgloss.NewStyle().Foreground(colorYellow)
	styleLabel       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCacheHit    = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	statSep     = " · "
)

// =============================================================================
// Status lines
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printNextStep suggests the figstyle command to run next.
func printNextStep(w io.Writer, description, command string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(command))
}

// =============================================================================
// Template output
// =============================================================================

// printWritten reports a template or tree written to path.
func printWritten(w io.Writer, path, format string) {
	line := "  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path)
	if format != "" {
		line += " " + StyleDim.Render("("+format+")")
	}
	fmt.Fprintln(w, line)
}

// printStats summarizes an extraction on one line, e.g.
// "2 traces · 14 style values · 3ms · cached".
func printStats(w io.Writer, traces, leaves int, took time.Duration, cached bool) {
	var parts []string
	if traces > 0 {
		parts = append(parts, StyleDim.Render(plural(traces, "trace", "traces")))
	}
	parts = append(parts, StyleDim.Render(plural(leaves, "style value", "style values")))
	if took > 0 {
		parts = append(parts, StyleDim.Render(took.Round(time.Millisecond).String()))
	}
	if cached {
		parts = append(parts, styleCacheHit.Render("cached"))
	} else {
		parts = append(parts, StyleDim.Render("fresh"))
	}
	fmt.Fprintln(w, "  "+strings.Join(parts, StyleDim.Render(statSep)))
}

// printAttribute prints the lookup result for one attribute path.
func printAttribute(w io.Writer, scope, path string, rows [][2]string) {
	fmt.Fprintln(w, StyleTitle.Render(scope+" "+path))
	for _, kv := range rows {
		fmt.Fprintln(w, styleLabel.Render(kv[0])+" "+StyleValue.Render(kv[1]))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
