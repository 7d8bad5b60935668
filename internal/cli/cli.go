package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/pocket-embed/internal/clipboard"
	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
	"github.com/dpshade/pocket-embed/internal/service"
	"github.com/dpshade/pocket-embed/internal/validation"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

// CLI provides headless command-line interface functionality
type CLI struct {
	service *service.Service
	ctx     context.Context
	out     io.Writer
	in      io.Reader

	// copy puts text on the clipboard and returns a status message
	copy func(text string) (string, error)

	// pick runs the interactive picker; nil when no terminal is available
	pick func(kind string) error
}

// NewCLI creates a new CLI instance
func NewCLI(ctx context.Context, svc *service.Service) *CLI {
	return &CLI{
		service: svc,
		ctx:     ctx,
		out:     os.Stdout,
		in:      os.Stdin,
		copy:    clipboard.CopyWithFallback,
	}
}

// SetPicker installs the interactive picker used by the pick command
func (c *CLI) SetPicker(pick func(kind string) error) {
	c.pick = pick
}

// ExecuteCommand processes a CLI command and returns the result
func (c *CLI) ExecuteCommand(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "show":
		return c.showDraft(commandArgs)
	case "new":
		return c.newDraft(commandArgs)
	case "set":
		return c.setAttribute(commandArgs)
	case "field", "fields":
		return c.handleField(commandArgs)
	case "validate":
		return c.validateDraft(commandArgs)
	case "preview":
		return c.previewDraft(commandArgs)
	case "send":
		return c.sendDraft(commandArgs)
	case "template", "templates":
		return c.handleTemplate(commandArgs)
	case "history":
		return c.handleHistory(commandArgs)
	case "export":
		return c.handleExport(commandArgs)
	case "copy":
		return c.copyDraft(commandArgs)
	case "import":
		return c.handleImport(commandArgs)
	case "settings":
		return c.handleSettings(commandArgs)
	case "pick":
		return c.handlePick(commandArgs)
	case "help":
		return c.printHelp(commandArgs)
	default:
		return errors.CommandNotFoundError(command).
			WithDetails("Run 'pocket-embed help' for the list of commands")
	}
}

func (c *CLI) printUsage() error {
	fmt.Fprintln(c.out, `pocket-embed - webhook embed designer

Usage: pocket-embed <command> [options]

Commands:
  show                  Show the draft embed
  new                   Start a new empty draft
  set <attr> <value>    Set a draft attribute
  field                 Field operations (add, move, rm)
  validate              Check the draft against platform limits
  preview               Render the draft in the terminal
  send                  Send the draft to the webhook
  template              Template management (list, save, load, delete, search, show)
  history               Sent embeds (list, restore, clear)
  export <format>       Export as json, python, javascript, go or yaml
  copy [format]         Copy an export to the clipboard
  import <file>         Replace the draft with an embed from a JSON file
  settings              Show or change the webhook settings
  pick                  Pick a template or history entry interactively
  help                  Show help

Use 'pocket-embed help <command>' for detailed help on a specific command.`)
	return nil
}

// flagSet is the result of splitting command args into positionals and flags
type flagSet struct {
	positional []string
	values     map[string]string
	bools      map[string]bool
}

// parseFlags separates --name value pairs and boolean switches from
// positional args. Value flags are listed in valueFlags. Single-dash short
// forms (-o file) are accepted; "-", "--" and negative numbers stay positional.
func parseFlags(args []string, valueFlags ...string) flagSet {
	fs := flagSet{values: map[string]string{}, bools: map[string]bool{}}
	takesValue := map[string]bool{}
	for _, f := range valueFlags {
		takesValue[f] = true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !isFlag(arg) {
			fs.positional = append(fs.positional, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if k, v, ok := strings.Cut(name, "="); ok {
			fs.values[k] = v
			continue
		}
		if takesValue[name] && i+1 < len(args) {
			fs.values[name] = args[i+1]
			i++
			continue
		}
		fs.bools[name] = true
	}
	return fs
}

func isFlag(arg string) bool {
	if arg == "-" || arg == "--" || !strings.HasPrefix(arg, "-") {
		return false
	}
	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return false
	}
	return true
}

// parseIndex converts a 1-based index from the command line to 0-based
func parseIndex(s, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, errors.InvalidInputError(fmt.Sprintf("%s must be a positive number, got '%s'", what, s))
	}
	return n - 1, nil
}

func (c *CLI) success(format string, args ...interface{}) {
	fmt.Fprintln(c.out, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func (c *CLI) printWarnings(warnings []validation.ValidationWarning) {
	for _, w := range warnings {
		fmt.Fprintln(c.out, warnStyle.Render("⚠ "+w.Message))
	}
}

// lipglossSwatch renders a small block in the given color
func lipglossSwatch(color int) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(models.FormatColor(color))).Render("  ")
}
