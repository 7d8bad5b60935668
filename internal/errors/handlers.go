// Package errors/handlers provides interface-specific error presentation.
//
// The CLI prints one styled line per failure (plus details and context when
// verbose); the TUI picker asks for a style and a short message. Both go through
// GetAppError so plain errors are presented the same way as AppErrors.
package errors

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

var (
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// CLIErrorHandler handles errors for CLI interface
type CLIErrorHandler struct {
	Verbose bool
	Logger  *slog.Logger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool, logger *slog.Logger) *CLIErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorHandler{
		Verbose: verbose,
		Logger:  logger,
	}
}

// HandleError logs err and returns it formatted for display
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	h.Logger.Debug("command failed",
		"code", appErr.Code,
		"severity", appErr.Severity,
		"category", appErr.Category,
		"err", appErr.Cause,
	)

	return fmt.Errorf("%s", h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	var line string
	switch appErr.Severity {
	case SeverityCritical:
		line = criticalStyle.Render(fmt.Sprintf("❌ CRITICAL: %s", appErr.Message))
	case SeverityError:
		line = errorStyle.Render(fmt.Sprintf("❌ ERROR: %s", appErr.Message))
	case SeverityWarning:
		line = warningStyle.Render(fmt.Sprintf("⚠️  WARNING: %s", appErr.Message))
	case SeverityInfo:
		line = infoStyle.Render(fmt.Sprintf("ℹ️  INFO: %s", appErr.Message))
	default:
		line = errorStyle.Render(fmt.Sprintf("❌ %s", appErr.Message))
	}

	if appErr.Details != "" {
		line += "\n" + detailStyle.Render("   "+appErr.Details)
	}
	if h.Verbose && len(appErr.Context) > 0 {
		keys := make([]string, 0, len(appErr.Context))
		for k := range appErr.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, appErr.Context[k]))
		}
		line += "\n" + detailStyle.Render("   "+strings.Join(parts, " "))
	}
	return line
}

// TUIErrorHandler handles errors for the picker
type TUIErrorHandler struct {
	ShowDetails bool
}

// NewTUIErrorHandler creates a new TUI error handler
func NewTUIErrorHandler(showDetails bool) *TUIErrorHandler {
	return &TUIErrorHandler{
		ShowDetails: showDetails,
	}
}

// HandleError handles errors for TUI interface
func (h *TUIErrorHandler) HandleError(err error) error {
	return GetAppError(err)
}

// FormatError formats an error for TUI display
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.ShowDetails && appErr.Details != "" {
		message = fmt.Sprintf("%s\nDetails: %s", message, appErr.Details)
	}

	return message
}

// GetErrorStyle returns the icon and style used for err's severity
func (h *TUIErrorHandler) GetErrorStyle(err error) (string, lipgloss.Style) {
	appErr := GetAppError(err)

	switch appErr.Severity {
	case SeverityCritical:
		return "🔥", criticalStyle
	case SeverityError:
		return "❌", errorStyle
	case SeverityWarning:
		return "⚠️", warningStyle
	case SeverityInfo:
		return "ℹ️", infoStyle
	default:
		return "❌", errorStyle
	}
}
