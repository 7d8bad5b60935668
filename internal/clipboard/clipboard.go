package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	sysclip "github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/mattn/go-isatty"
)

// ClipboardError represents an error when no clipboard backend is available
type ClipboardError struct {
	OS      string
	Message string
}

func (e *ClipboardError) Error() string {
	return e.Message
}

// NewClipboardError creates a new ClipboardError with helpful installation instructions
func NewClipboardError() *ClipboardError {
	return &ClipboardError{
		OS:      runtime.GOOS,
		Message: "no clipboard available. " + GetInstallInstructions(),
	}
}

// backend is one way of reaching a clipboard
type backend struct {
	name      string
	available func() bool
	write     func(text string) error
}

// Copier tries its backends in order until one succeeds
type Copier struct {
	backends []backend
}

// NewCopier returns a copier using the system clipboard, falling back to an
// OSC 52 escape sequence on terminal out when stderr is a terminal
func NewCopier(out *os.File) *Copier {
	return &Copier{backends: []backend{
		{
			name:      "system",
			available: func() bool { return !sysclip.Unsupported },
			write:     sysclip.WriteAll,
		},
		{
			name:      "osc52",
			available: func() bool { return out != nil && isatty.IsTerminal(out.Fd()) },
			write:     func(text string) error { return writeOSC52(out, text) },
		},
	}}
}

func writeOSC52(w io.Writer, text string) error {
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	} else if os.Getenv("STY") != "" {
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w)
	return err
}

// Copy copies text using the first backend that works. It reports which
// backend was used.
func (c *Copier) Copy(text string) (string, error) {
	var lastErr error
	for _, b := range c.backends {
		if !b.available() {
			continue
		}
		if err := b.write(text); err != nil {
			lastErr = fmt.Errorf("%s clipboard failed: %w", b.name, err)
			continue
		}
		return b.name, nil
	}
	if lastErr != nil {
		return "", fmt.Errorf("clipboard backends available but failed: %w", lastErr)
	}
	return "", NewClipboardError()
}

// Copy copies text to the system clipboard
func Copy(text string) error {
	_, err := NewCopier(os.Stderr).Copy(text)
	return err
}

// CopyWithFallback attempts to copy to clipboard and returns a message
func CopyWithFallback(text string) (string, error) {
	used, err := NewCopier(os.Stderr).Copy(text)
	if err != nil {
		var clipErr *ClipboardError
		if errors.As(err, &clipErr) {
			return "", err
		}
		return "", fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	if used == "osc52" {
		return "Copied to clipboard via terminal", nil
	}
	return "Copied to clipboard!", nil
}

// IsClipboardAvailable checks if the system clipboard is available
func IsClipboardAvailable() bool {
	return !sysclip.Unsupported
}

// GetInstallInstructions returns installation instructions for clipboard utilities
func GetInstallInstructions() string {
	switch runtime.GOOS {
	case "linux":
		return "Install a clipboard utility:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", runtime.GOOS)
	}
}
