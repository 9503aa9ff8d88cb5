package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/authscope/authscope/pkg/defaults"
)

// Version information - these can be overridden at build time via ldflags:
// go build -ldflags "-X github.com/authscope/authscope/pkg/ui.Version=1.0.0"
var (
	Version   = defaults.Version
	BuildDate = "2026-08-25"
	Commit    = "dev"
)

const (
	Author  = "Authscope Team"
	Website = "github.com/authscope/authscope"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses most output)
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		// Use ASCII profile to disable colors
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// ASCII art banner - nuclei/httpx inspired design
const bannerArt = `
                   __    / /
  ____ _  __  __  / /_  / /_    _____  _____  ____     ____    ___
 / __ '/ / / / / / __/ / __ \  / ___/ / ___/ / __ \   / __ \  / _ \
/ /_/ / / /_/ / / /_  / / / / (__  ) / /__  / /_/ /  / /_/ / /  __/
\__,_/  \__,_/  \__/  /_/ /_/ /____/  \___/  \____/  / .___/  \___/
                                                    /_/
`

// Minimalist banner (ffuf-style box)
const miniBanner = `
________________________________________________

 authscope v%s
________________________________________________`

// Separator line
const bannerSeparator = "________________________________________________"

// PrintBanner prints the httpx/nuclei-style application banner with version info
func PrintBanner() {
	// Print the styled banner to stderr (like httpx/nuclei)
	lines := strings.Split(bannerArt, "\n")
	for _, line := range lines {
		if line != "" {
			fmt.Fprintln(os.Stderr, BannerStyle.Render(line))
		}
	}

	// Version line centered below banner (httpx-style)
	fmt.Fprintf(os.Stderr, "                              v%s\n", VersionStyle.Render(Version))
	fmt.Fprintf(os.Stderr, "\n\t\t%s\n\n", Website)
}

// PrintMiniBanner prints the minimal banner (ffuf-style box)
func PrintMiniBanner() {
	fmt.Fprintf(os.Stderr, "%s\n", BannerStyle.Render(fmt.Sprintf(miniBanner, Version)))
	fmt.Fprintln(os.Stderr)
}

// printOption prints a configuration option in ffuf/nuclei style
// Format:  :: Option              : Value
func printOption(name, value string) {
	fmt.Fprintf(os.Stderr, " :: %-20s : %s\n", ConfigLabelStyle.Render(name), ConfigValueStyle.Render(value))
}

// PrintConfigBanner prints the effective scan settings like ffuf/nuclei
// before the run starts. Uses ordered keys for consistent display.
func PrintConfigBanner(options map[string]string) {
	// Define display order for config options (ffuf-style)
	order := []string{
		"Target", "Targets", "Renderer", "Fallback", "Providers",
		"Concurrency", "Rate Limit", "Timeout",
		"Output", "Format", "Listen",
	}

	// Print in defined order first
	printed := make(map[string]bool)
	for _, name := range order {
		if value, ok := options[name]; ok && value != "" {
			printOption(name, value)
			printed[name] = true
		}
	}

	// Print any remaining options not in the order list
	for name, value := range options {
		if !printed[name] && value != "" {
			printOption(name, value)
		}
	}

	fmt.Fprintf(os.Stderr, "%s\n\n", DividerStyle.Render(bannerSeparator))
}

// PrintDivider prints a stylized divider (to stderr)
func PrintDivider() {
	divider := strings.Repeat("-", 75)
	fmt.Fprintln(os.Stderr, DividerStyle.Render(divider))
}

// PrintSection prints a section header (to stderr)
func PrintSection(title string) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, SectionStyle.Render("> "+title))
	PrintDivider()
}

// PrintBracketedInfo prints nuclei-style bracketed information
// Example: [github] https://github.com/login
func PrintBracketedInfo(parts ...BracketPart) {
	if IsSilent() {
		return
	}

	var output strings.Builder
	for _, part := range parts {
		output.WriteString(BracketStyle.Render("["))
		output.WriteString(part.Style.Render(part.Text))
		output.WriteString(BracketStyle.Render("] "))
	}
	fmt.Fprintln(os.Stderr, output.String())
}

// BracketPart represents a piece of bracketed output
type BracketPart struct {
	Text  string
	Style Style
}

// Style is a simplified style type for bracket parts
type Style = lipgloss.Style

// CategoryBracket renders a detection category id with its badge color.
func CategoryBracket(category string) BracketPart {
	return BracketPart{
		Text:  category,
		Style: CategoryStyle(category),
	}
}

// TextBracket renders plain emphasized text.
func TextBracket(text string) BracketPart {
	return BracketPart{
		Text:  text,
		Style: lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
	}
}

// MutedBracket renders secondary text.
func MutedBracket(text string) BracketPart {
	return BracketPart{
		Text:  text,
		Style: lipgloss.NewStyle().Foreground(Muted),
	}
}

// PrintHelp prints contextual help (to stderr like ffuf/nuclei)
func PrintHelp(text string) {
	fmt.Fprintln(os.Stderr, HelpStyle.Render("  [i] "+SanitizeString(text)))
}

// PrintSuccess prints a success message (to stderr)
func PrintSuccess(message string) {
	fmt.Fprintln(os.Stderr, PassStyle.Render("  [+] "+SanitizeString(message)))
}

// PrintError prints an error message (to stderr)
func PrintError(message string) {
	fmt.Fprintln(os.Stderr, FailStyle.Render("  [X] "+SanitizeString(message)))
}

// PrintWarning prints a warning message (to stderr)
func PrintWarning(message string) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("  [!] "+SanitizeString(message)))
}

// PrintInfo prints an info message (to stderr)
func PrintInfo(message string) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", SpinnerStyle.Render("*"), SanitizeString(message))
}

// PrintResult prints a live per-page result line in nuclei/httpx style
// Format: [timestamp] [outcome] url [status] [components] [elapsed]
func PrintResult(url, outcome string, statusCode, components int, elapsedSec float64, showTimestamp bool) {
	if IsSilent() {
		return
	}

	var output strings.Builder

	// Timestamp (optional, like nuclei's -ts flag)
	if showTimestamp {
		ts := time.Now().Format("15:04:05")
		output.WriteString(BracketStyle.Render("["))
		output.WriteString(StatValueStyle.Render(ts))
		output.WriteString(BracketStyle.Render("] "))
	}

	// Outcome badge
	output.WriteString(BracketStyle.Render("["))
	output.WriteString(OutcomeStyle(outcome).Render(outcome))
	output.WriteString(BracketStyle.Render("] "))

	// Target URL
	output.WriteString(URLStyle.Render(url))
	output.WriteString(" ")

	// Status code (colorized); 0 means the fetch never got a response
	if statusCode > 0 {
		output.WriteString(BracketStyle.Render("["))
		output.WriteString(StatusCodeStyle(statusCode).Render(fmt.Sprintf("%d", statusCode)))
		output.WriteString(BracketStyle.Render("] "))
	}

	// Component count
	output.WriteString(BracketStyle.Render("["))
	output.WriteString(StatValueStyle.Render(fmt.Sprintf("%d components", components)))
	output.WriteString(BracketStyle.Render("] "))

	// Elapsed fetch time
	output.WriteString(BracketStyle.Render("["))
	output.WriteString(StatLabelStyle.Render(fmt.Sprintf("%.1fs", elapsedSec)))
	output.WriteString(BracketStyle.Render("]"))

	fmt.Fprintln(os.Stderr, output.String())
}
