package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Design System Colors - Adaptive based on terminal background
var (
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorAccent    lipgloss.Color

	ColorSuccess lipgloss.Color
	ColorWarning lipgloss.Color
	ColorError   lipgloss.Color

	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color
	ColorTextDim   lipgloss.Color
	ColorBorder    lipgloss.Color
)

// initializeColors sets up adaptive colors based on terminal background
func initializeColors() {
	switch os.Getenv("GLAMOUR_STYLE") {
	case "light":
		setLightThemeColors()
		return
	case "dark":
		setDarkThemeColors()
		return
	}

	if lipgloss.HasDarkBackground() {
		setDarkThemeColors()
	} else {
		setLightThemeColors()
	}
}

func setDarkThemeColors() {
	ColorPrimary = lipgloss.Color("63") // Blurple
	ColorSecondary = lipgloss.Color("33")
	ColorAccent = lipgloss.Color("214")

	ColorSuccess = lipgloss.Color("10")
	ColorWarning = lipgloss.Color("11")
	ColorError = lipgloss.Color("9")

	ColorText = lipgloss.Color("252")
	ColorTextMuted = lipgloss.Color("244")
	ColorTextDim = lipgloss.Color("240")
	ColorBorder = lipgloss.Color("238")
}

func setLightThemeColors() {
	ColorPrimary = lipgloss.Color("61")
	ColorSecondary = lipgloss.Color("24")
	ColorAccent = lipgloss.Color("130")

	ColorSuccess = lipgloss.Color("22")
	ColorWarning = lipgloss.Color("136")
	ColorError = lipgloss.Color("160")

	ColorText = lipgloss.Color("232")
	ColorTextMuted = lipgloss.Color("240")
	ColorTextDim = lipgloss.Color("244")
	ColorBorder = lipgloss.Color("248")
}

// Styles groups the component styles. They are built after the colors are
// chosen, so NewStyles must run after initializeColors.
type Styles struct {
	Title     lipgloss.Style
	Metadata  lipgloss.Style
	Help      lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Preview   lipgloss.Style
	Separator lipgloss.Style
}

// NewStyles builds the component styles from the current colors
func NewStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1),
		Metadata: lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1),
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true).
			Padding(0, 1),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true).
			Padding(0, 1),
		Preview: lipgloss.NewStyle().
			PaddingLeft(1),
		Separator: lipgloss.NewStyle().
			Foreground(ColorBorder),
	}
}

// CreateHeader renders the picker title with an item count
func (s Styles) CreateHeader(title string, count int) string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		s.Title.Render(title),
		s.Metadata.Render(itemCount(count)),
	)
}

// CreateStatus renders a transient status line
func (s Styles) CreateStatus(text string, statusType string) string {
	switch statusType {
	case "success":
		return s.Success.Render("✓ " + text)
	case "warning":
		return s.Warning.Render("⚠ " + text)
	case "error":
		return s.Error.Render(text)
	default:
		return s.Metadata.Render(text)
	}
}

func itemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}
