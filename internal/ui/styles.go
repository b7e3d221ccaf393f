// Package ui renders burgerctl output: styled text, tables and the small
// bubbletea programs used while waiting on the chain or a wallet.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // confirmed, HALT
	ColorWarning   = lipgloss.Color("#FFB800") // pending, declined
	ColorError     = lipgloss.Color("#FF4444") // FAULT, submit failures
	ColorAddress   = lipgloss.Color("#00B4D8") // addresses, script hashes, txids
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorAsset     = lipgloss.Color("#00E599") // NEO green
	ColorHighlight = lipgloss.Color("#F7B32B") // burger yellow
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleAsset   = lipgloss.NewStyle().Foreground(ColorAsset).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			MarginBottom(1)
)

// Banner returns the burgerctl header printed by the root command.
func Banner(version string) string {
	art := `
  ___                        _   _
 | _ )_  _ _ _ __ _ ___ _ _ | |_| |
 | _ \ || | '_/ _' / -_) '_|| _| |
 |___/\_,_|_| \__, \___|_|   \__|_|
              |___/`

	tagline := StyleMeta.Render("  NeoBurger on Neo N3  ·  " + version)
	return StyleTitle.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("! " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats a neutral notice.
func Info(msg string) string { return StyleAddress.Render("i " + msg) }

// Hint formats a suggestion for the next command to run.
func Hint(msg string) string { return StyleMeta.Render("→ " + msg) }

// Addr formats an address or hash.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// Asset formats an asset symbol.
func Asset(symbol string) string { return StyleAsset.Render(symbol) }

// Amount formats a quantity followed by its symbol.
func Amount(value, symbol string) string { return Val(value) + " " + Meta(symbol) }

// TruncateAddr shortens an address or hash for display: NVg7…Lx4f.
func TruncateAddr(addr string) string {
	if len([]rune(addr)) <= 12 {
		return addr
	}
	r := []rune(addr)
	return string(r[:6]) + "…" + string(r[len(r)-4:])
}
