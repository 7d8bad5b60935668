package ui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpshade/pocket-embed/internal/service"
)

// RunPicker runs the picker full screen and reports what was loaded into the
// draft on out. Quitting without a choice is not an error.
func RunPicker(svc *service.Service, kind string, out io.Writer) error {
	m, err := NewModel(svc, Kind(kind))
	if err != nil {
		return err
	}

	p := tea.NewProgram(*m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}

	if fm, ok := final.(Model); ok && fm.Chosen() != "" {
		fmt.Fprintln(out, fm.styles.CreateStatus(fmt.Sprintf("Loaded '%s' into the draft", fm.Chosen()), "success"))
	}
	return nil
}
