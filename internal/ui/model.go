// Package ui provides the interactive picker: a filterable list of templates
// or sent embeds next to a live preview of the selected one. Choosing an item
// copies its embed into the draft.
package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
	"github.com/dpshade/pocket-embed/internal/service"
)

// Kind selects what the picker lists
type Kind string

const (
	KindTemplates Kind = "templates"
	KindHistory   Kind = "history"
)

// historyItem remembers the position of an entry in the newest-first
// history, which is what RestoreHistory takes
type historyItem struct {
	models.HistoryEntry
	index int
}

// Commands for async operations
type itemsLoadedMsg struct {
	items []list.Item
	err   error
}

type previewMsg struct {
	key     string
	content string
	err     error
}

// tickMsg is sent to clear the status message
type tickMsg time.Time

// Model represents the state of the picker
type Model struct {
	service    *service.Service
	kind       Kind
	list       list.Model
	viewport   viewport.Model
	help       help.Model
	keys       KeyMap
	styles     Styles
	errHandler *errors.TUIErrorHandler

	width  int
	height int

	loading       bool
	previewKey    string
	status        string
	statusType    string
	confirmDelete bool

	// chosen is the label of the item loaded into the draft
	chosen string
}

// KeyMap defines all key bindings
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Search   key.Binding
	Delete   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Search, k.Delete, k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Search, k.Delete},
		{k.PageUp, k.PageDown},
		{k.Help, k.Quit},
	}
}

var keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "load into draft"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("PgUp", "scroll preview up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("PgDn", "scroll preview down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// NewModel creates a picker over templates or history
func NewModel(svc *service.Service, kind Kind) (*Model, error) {
	if kind != KindTemplates && kind != KindHistory {
		return nil, errors.InvalidInputError(fmt.Sprintf("unknown picker kind '%s'", kind))
	}

	// Initialize adaptive colors based on terminal background
	initializeColors()

	l := list.New(nil, list.NewDefaultDelegate(), 40, 20) // resized on first WindowSizeMsg
	l.Title = ""
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.SetShowTitle(false)

	keyMap := list.DefaultKeyMap()
	keyMap.Filter = keys.Search
	l.KeyMap = keyMap

	vp := viewport.New(40, 20)
	vp.Style = lipgloss.NewStyle()

	km := keys
	if kind == KindHistory {
		km.Delete.SetEnabled(false)
	}

	return &Model{
		service:    svc,
		kind:       kind,
		list:       l,
		viewport:   vp,
		help:       help.New(),
		keys:       km,
		styles:     NewStyles(),
		errHandler: errors.NewTUIErrorHandler(false),
		loading:    true,
	}, nil
}

// Init loads the items
func (m Model) Init() tea.Cmd {
	return loadItemsCmd(m.service, m.kind)
}

func loadItemsCmd(svc *service.Service, kind Kind) tea.Cmd {
	return func() tea.Msg {
		var items []list.Item
		switch kind {
		case KindTemplates:
			templates, err := svc.ListTemplates()
			if err != nil {
				return itemsLoadedMsg{err: err}
			}
			for _, t := range templates {
				items = append(items, t)
			}
		case KindHistory:
			entries, err := svc.History()
			if err != nil {
				return itemsLoadedMsg{err: err}
			}
			for i, h := range entries {
				items = append(items, historyItem{HistoryEntry: h, index: i})
			}
		}
		return itemsLoadedMsg{items: items}
	}
}

// clearStatusCmd returns a command that clears the status message after a delay
func clearStatusCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) setStatus(text, statusType string) tea.Cmd {
	m.status = text
	m.statusType = statusType
	return clearStatusCmd()
}

func (m *Model) setError(err error) tea.Cmd {
	return m.setStatus(m.errHandler.FormatError(err), "error")
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.previewKey = ""
		return m, m.previewCmd()

	case itemsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		cmd := m.list.SetItems(msg.items)
		m.previewKey = ""
		return m, tea.Batch(cmd, m.previewCmd())

	case previewMsg:
		if msg.key != m.previewKey {
			return m, nil
		}
		if msg.err != nil {
			m.viewport.SetContent(m.errHandler.FormatError(msg.err))
		} else {
			m.viewport.SetContent(msg.content)
		}
		m.viewport.GotoTop()
		return m, nil

	case tickMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// typed text goes to the filter
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, tea.Batch(cmd, m.previewCmd())
	}

	if m.confirmDelete {
		m.confirmDelete = false
		if msg.String() != "y" {
			return m, m.setStatus("Delete cancelled", "info")
		}
		t, ok := m.list.SelectedItem().(models.Template)
		if !ok {
			return m, nil
		}
		if err := m.service.DeleteTemplate(t.ID); err != nil {
			return m, m.setError(err)
		}
		return m, tea.Batch(
			m.setStatus(fmt.Sprintf("Deleted '%s'", t.Label), "success"),
			loadItemsCmd(m.service, m.kind),
		)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.list.FilterState() == list.FilterApplied && msg.String() == "esc" {
			m.list.ResetFilter()
			return m, m.previewCmd()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		return m.choose()

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.list.SelectedItem().(models.Template); ok {
			m.confirmDelete = true
			m.status = fmt.Sprintf("Delete '%s'? (y/n)", t.Label)
			m.statusType = "warning"
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, tea.Batch(cmd, m.previewCmd())
}

// choose loads the selected item into the draft and quits
func (m Model) choose() (tea.Model, tea.Cmd) {
	switch item := m.list.SelectedItem().(type) {
	case models.Template:
		if _, err := m.service.LoadTemplate(item.ID); err != nil {
			return m, m.setError(err)
		}
		m.chosen = item.Label
	case historyItem:
		entry, err := m.service.RestoreHistory(item.index)
		if err != nil {
			return m, m.setError(err)
		}
		m.chosen = entry.Title()
	default:
		return m, nil
	}
	return m, tea.Quit
}

// previewCmd renders the selected embed unless it is already shown
func (m *Model) previewCmd() tea.Cmd {
	item := m.list.SelectedItem()
	if item == nil {
		m.previewKey = ""
		m.viewport.SetContent("")
		return nil
	}

	var (
		k string
		e models.Embed
	)
	switch it := item.(type) {
	case models.Template:
		k, e = "t:"+it.ID, it.Embed
	case historyItem:
		k, e = "h:"+it.ID, it.Embed
	default:
		return nil
	}
	if k == m.previewKey {
		return nil
	}
	m.previewKey = k

	svc, width := m.service, m.viewport.Width-2
	return func() tea.Msg {
		out, err := svc.PreviewEmbed(&e, width)
		return previewMsg{key: k, content: out, err: err}
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	helpHeight := lipgloss.Height(m.help.View(m.keys))
	bodyHeight := height - helpHeight - 3 // header, status, spacing
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	listWidth := width * 2 / 5
	if listWidth < 24 {
		listWidth = 24
	}
	m.list.SetSize(listWidth, bodyHeight)
	m.help.Width = width

	m.viewport.Width = width - listWidth - 3
	if m.viewport.Width < 10 {
		m.viewport.Width = 10
	}
	m.viewport.Height = bodyHeight
}

// View renders the picker
func (m Model) View() string {
	title := "Templates"
	if m.kind == KindHistory {
		title = "History"
	}
	header := m.styles.CreateHeader(title, len(m.list.Items()))

	var left string
	switch {
	case m.loading:
		left = m.styles.Metadata.Render("Loading...")
	case len(m.list.Items()) == 0:
		left = m.styles.Metadata.Render("Nothing here yet")
	default:
		left = m.list.View()
	}

	separator := m.styles.Separator.Render(" │ ")
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.list.Width()).Render(left),
		separator,
		m.styles.Preview.Render(m.viewport.View()),
	)

	status := ""
	if m.status != "" {
		status = m.styles.CreateStatus(m.status, m.statusType)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		status,
		m.styles.Help.Render(m.help.View(m.keys)),
	)
}

// Chosen returns the label of the item loaded into the draft, if any
func (m Model) Chosen() string {
	return m.chosen
}
