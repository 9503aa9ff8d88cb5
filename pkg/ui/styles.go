package ui

import "github.com/charmbracelet/lipgloss"

// Color palette inspired by top recon tools
var (
	// Brand colors
	Primary   = lipgloss.Color("#4D7CFE") // Indigo - brand color
	Secondary = lipgloss.Color("#00D4AA") // Cyan/Teal

	// Category colors, one per detection layer
	CatPassword  = lipgloss.Color("#FF6B6B") // Red - strongest signal
	CatForm      = lipgloss.Color("#FFB800") // Amber
	CatContainer = lipgloss.Color("#FFD93D") // Yellow
	CatOAuth     = lipgloss.Color("#4D96FF") // Blue
	CatLink      = lipgloss.Color("#6BCB77") // Green - weakest signal

	// Status colors
	Success = lipgloss.Color("#00D26A") // Bright green
	Warning = lipgloss.Color("#FFB800") // Amber
	Error   = lipgloss.Color("#FF3838") // Red
	Muted   = lipgloss.Color("#6B7280") // Gray

	// Outcome colors
	Found   = lipgloss.Color("#4D96FF") // Blue - page has auth UI
	None    = lipgloss.Color("#6B7280") // Gray - clean page
	Errored = lipgloss.Color("#FFB800") // Amber - fetch failed

	// HTTP status code colors
	Status2xx = lipgloss.Color("#00D26A") // Green
	Status3xx = lipgloss.Color("#4D96FF") // Blue
	Status4xx = lipgloss.Color("#FFD93D") // Yellow
	Status5xx = lipgloss.Color("#FF3838") // Red
)

// Pre-configured styles
var (
	// Title and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(Primary).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Banner style
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// Version badge
	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Section headers
	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true).
			MarginTop(1)

	// Configuration display
	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Width(15)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA"))

	// Progress bar
	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(Primary)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3B3B4F"))

	// Statistics
	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	// Bracketed metadata (nuclei-style)
	BracketStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Outcome styles
	FoundStyle = lipgloss.NewStyle().
			Foreground(Found).
			Bold(true)

	NoneStyle = lipgloss.NewStyle().
			Foreground(None)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Errored).
			Bold(true)

	PassStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Divider
	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Help/footer
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// URL style
	URLStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Underline(true)

	// Category badge fallback
	CategoryBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#3B3B4F")).
				Padding(0, 1)

	// Spinner frames
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)
)

// CategoryStyle returns the badge style for a detection category id.
func CategoryStyle(category string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF"))
	switch category {
	case "password_field_form":
		return base.Background(CatPassword)
	case "auth_form":
		return base.Foreground(lipgloss.Color("#000000")).Background(CatForm)
	case "auth_container":
		return base.Foreground(lipgloss.Color("#000000")).Background(CatContainer)
	case "oauth_button":
		return base.Background(CatOAuth)
	case "auth_link":
		return base.Foreground(lipgloss.Color("#000000")).Background(CatLink)
	default:
		return CategoryBadgeStyle
	}
}

// StatusCodeStyle returns the appropriate style for HTTP status codes
func StatusCodeStyle(code int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch {
	case code >= 200 && code < 300:
		return base.Foreground(Status2xx)
	case code >= 300 && code < 400:
		return base.Foreground(Status3xx)
	case code >= 400 && code < 500:
		return base.Foreground(Status4xx)
	case code >= 500:
		return base.Foreground(Status5xx)
	default:
		return base.Foreground(Muted)
	}
}

// OutcomeStyle returns the appropriate style for per-page scan outcomes
func OutcomeStyle(outcome string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch outcome {
	case "found":
		return base.Foreground(Found)
	case "none":
		return base.Foreground(None)
	case "error":
		return base.Foreground(Errored)
	default:
		return base.Foreground(Muted)
	}
}
