package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green     confirmed, allowed
	ColorWarning   = lipgloss.Color("#FFB800") // yellow    pending, prompts
	ColorError     = lipgloss.Color("#FF4444") // red       failed, denied
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan      addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // white     amounts
	ColorMeta      = lipgloss.Color("#555555") // dim gray  labels, links
	ColorBorder    = lipgloss.Color("#1E3A5F") // dark blue boxes
	ColorNetwork   = lipgloss.Color("#9B5DE5") // purple    network names
	ColorHighlight = lipgloss.Color("#F15BB5") // pink      active tab, headers
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleNetwork = lipgloss.NewStyle().Foreground(ColorNetwork).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorNetwork).
			Bold(true).
			MarginBottom(1)

	StyleTab = lipgloss.NewStyle().
			Foreground(ColorMeta).
			Padding(0, 2)

	StyleActiveTab = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(ColorHighlight).
			Bold(true).
			Padding(0, 2)
)

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats a neutral status line.
func Info(msg string) string { return StyleAddress.Render("ℹ " + msg) }

// Addr formats an address or hash.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats an amount.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats secondary text.
func Meta(m string) string { return StyleMeta.Render(m) }

// NetworkName formats a network name.
func NetworkName(n string) string { return StyleNetwork.Render(n) }

// YesNo renders a boolean as a coloured yes/no.
func YesNo(b bool) string {
	if b {
		return StyleSuccess.Render("yes")
	}
	return StyleError.Render("no")
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
