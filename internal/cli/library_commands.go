package cli

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
	"github.com/dpshade/pocket-embed/internal/renderer"
)

// handleTemplate handles template operations
func (c *CLI) handleTemplate(args []string) error {
	if len(args) == 0 {
		return c.listTemplates(nil)
	}

	subcommand := args[0]
	rest := args[1:]
	switch subcommand {
	case "list", "ls":
		return c.listTemplates(rest)
	case "save":
		return c.saveTemplate(rest)
	case "load":
		if len(rest) == 0 {
			return errors.InvalidCommandError("template load", "requires a template id or label")
		}
		tmpl, err := c.service.LoadTemplate(strings.Join(rest, " "))
		if err != nil {
			return err
		}
		c.success("Loaded template '%s' into the draft", tmpl.Label)
		return nil
	case "show":
		fs := parseFlags(rest, "format", "f")
		if len(fs.positional) == 0 {
			return errors.InvalidCommandError("template show", "requires a template id or label")
		}
		tmpl, err := c.service.GetTemplate(strings.Join(fs.positional, " "))
		if err != nil {
			return err
		}
		format := fs.values["format"] + fs.values["f"]
		if format == "" {
			fmt.Fprintf(c.out, "%s %s\n", labelStyle.Render(tmpl.Label), mutedStyle.Render("("+tmpl.ID+")"))
			if tmpl.Summary != "" {
				fmt.Fprintln(c.out, mutedStyle.Render(tmpl.Summary))
			}
			fmt.Fprintln(c.out)
		}
		return c.formatEmbed(&tmpl.Embed, format)
	case "delete", "rm":
		if len(rest) == 0 {
			return errors.InvalidCommandError("template delete", "requires a template id or label")
		}
		ref := strings.Join(rest, " ")
		if err := c.service.DeleteTemplate(ref); err != nil {
			return err
		}
		c.success("Deleted template '%s'", ref)
		return nil
	case "search":
		if len(rest) == 0 {
			return errors.InvalidCommandError("template search", "requires a query")
		}
		templates, err := c.service.SearchTemplates(strings.Join(rest, " "))
		if err != nil {
			return err
		}
		return c.formatTemplates(templates, "")
	default:
		return errors.InvalidCommandError("template", fmt.Sprintf("unknown subcommand '%s'", subcommand))
	}
}

func (c *CLI) listTemplates(args []string) error {
	fs := parseFlags(args, "format", "f")
	format := fs.values["format"] + fs.values["f"]

	templates, err := c.service.ListTemplates()
	if err != nil {
		return err
	}
	return c.formatTemplates(templates, format)
}

// formatTemplates formats templates for output
func (c *CLI) formatTemplates(templates []models.Template, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	case "ids":
		for _, t := range templates {
			fmt.Fprintln(c.out, t.ID)
		}
	case "table":
		fmt.Fprintf(c.out, "%-38s %-24s %-7s %s\n", "ID", "Label", "Fields", "Created")
		fmt.Fprintln(c.out, strings.Repeat("-", 84))
		for _, t := range templates {
			label := t.Label
			if r := []rune(label); len(r) > 24 {
				label = string(r[:21]) + "..."
			}
			fmt.Fprintf(c.out, "%-38s %-24s %-7d %s\n", t.ID, label, len(t.Embed.Fields), t.CreatedAt.Format("2006-01-02"))
		}
	default:
		if len(templates) == 0 {
			fmt.Fprintln(c.out, mutedStyle.Render("No templates"))
		}
		for _, t := range templates {
			fmt.Fprintf(c.out, "%s %s\n", labelStyle.Render(t.Label), mutedStyle.Render("("+t.ID+")"))
			fmt.Fprintf(c.out, "  %s\n", t.Description())
		}
	}
	return nil
}

func (c *CLI) saveTemplate(args []string) error {
	fs := parseFlags(args, "desc", "description")
	if len(fs.positional) == 0 {
		return errors.InvalidCommandError("template save", "requires a label")
	}
	desc := fs.values["desc"]
	if desc == "" {
		desc = fs.values["description"]
	}

	tmpl, warnings, err := c.service.SaveTemplate(strings.Join(fs.positional, " "), desc)
	if err != nil {
		return err
	}
	c.printWarnings(warnings)
	c.success("Saved template '%s' (%s)", tmpl.Label, tmpl.ID)
	return nil
}

// handleHistory handles history operations
func (c *CLI) handleHistory(args []string) error {
	subcommand := "list"
	if len(args) > 0 {
		subcommand = args[0]
	}

	switch subcommand {
	case "list", "ls":
		entries, err := c.service.History()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(c.out, mutedStyle.Render("No embeds sent yet"))
		}
		for i, h := range entries {
			status := successStyle.Render("✓")
			if h.Outcome.Status != models.OutcomeSuccess {
				status = warnStyle.Render("✗")
			}
			fmt.Fprintf(c.out, "%3d. %s %s\n", i+1, status, renderer.Summary(&h.Embed))
			fmt.Fprintf(c.out, "     %s\n", mutedStyle.Render(h.Description()))
		}
		return nil

	case "restore":
		if len(args) != 2 {
			return errors.InvalidCommandError("history restore", "requires an entry number")
		}
		n, err := parseIndex(args[1], "entry number")
		if err != nil {
			return err
		}
		entry, err := c.service.RestoreHistory(n)
		if err != nil {
			return err
		}
		c.success("Restored '%s' into the draft", entry.Title())
		return nil

	case "clear":
		if err := c.service.ClearHistory(); err != nil {
			return err
		}
		c.success("History cleared")
		return nil

	default:
		return errors.InvalidCommandError("history", fmt.Sprintf("unknown subcommand '%s'", subcommand))
	}
}

// handleSettings shows or updates the webhook settings
func (c *CLI) handleSettings(args []string) error {
	if len(args) == 0 || args[0] == "show" {
		settings, err := c.service.Settings()
		if err != nil {
			return err
		}
		value := func(s string) string {
			if s == "" {
				return mutedStyle.Render("(not set)")
			}
			return s
		}
		fmt.Fprintf(c.out, "%s %s\n", labelStyle.Render("URL:"), value(maskWebhookURL(settings.URL)))
		fmt.Fprintf(c.out, "%s %s\n", labelStyle.Render("Username:"), value(settings.Username))
		fmt.Fprintf(c.out, "%s %s\n", labelStyle.Render("Avatar URL:"), value(settings.AvatarURL))
		fmt.Fprintf(c.out, "%s %s\n", labelStyle.Render("Library:"), c.service.LibraryDir())
		return nil
	}

	if args[0] != "set" || len(args) < 2 {
		return errors.InvalidCommandError("settings", "usage: settings [show | set <url|username|avatar_url> <value>]")
	}
	if err := c.service.SetSetting(args[1], strings.Join(args[2:], " ")); err != nil {
		return err
	}
	c.success("Updated %s", args[1])
	return nil
}

// maskWebhookURL hides the token part of a webhook URL
func maskWebhookURL(u string) string {
	i := strings.Index(u, "/api/webhooks/")
	if i < 0 {
		return u
	}
	rest := u[i+len("/api/webhooks/"):]
	id, token, ok := strings.Cut(rest, "/")
	if !ok || token == "" {
		return u
	}
	return u[:i] + "/api/webhooks/" + id + "/" + strings.Repeat("•", 8)
}

// handlePick opens the interactive picker
func (c *CLI) handlePick(args []string) error {
	kind := "templates"
	if len(args) > 0 {
		kind = args[0]
	}
	if kind != "templates" && kind != "history" {
		return errors.InvalidCommandError("pick", "choose 'templates' or 'history'")
	}
	if c.pick == nil {
		return errors.InvalidCommandError("pick", "requires an interactive terminal")
	}
	return c.pick(kind)
}

// printHelp prints help for one command
func (c *CLI) printHelp(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	help, ok := commandHelp[args[0]]
	if !ok {
		return errors.CommandNotFoundError(args[0])
	}
	fmt.Fprintln(c.out, help)
	return nil
}

var commandHelp = map[string]string{
	"show": `show [--format json|yaml]
  Print the draft embed.`,
	"new": `new
  Discard the draft and start an empty embed with the default color.`,
	"set": `set <attribute> <value>
  Attributes: title, description, url, color, author.name, author.url,
  author.icon_url, footer.text, footer.icon_url, thumbnail_url, image_url,
  timestamp. An empty value clears the attribute.
  color accepts #RRGGBB, 0xRRGGBB or a decimal number.
  timestamp accepts an ISO-8601 time, "now", or "auto" (time of sending).`,
	"field": `field add <name> <value> [--inline]
field edit <n> <name> <value> [--inline]
field move <from> <to>
field rm <n>
  Field numbers start at 1. At most 25 fields.`,
	"validate": `validate
  Apply the platform limits to the draft and list every repair. Fails when
  the embed has no content or more than 25 fields.`,
	"preview": `preview [--width N]
  Render the draft in the terminal.`,
	"send": `send [--url U] [--username N] [--avatar A] [--remember]
  Send the draft. Flags override the saved settings; --remember saves them.`,
	"template": `template list [--format table|json|ids]
template save <label> [--desc D]
template load <id|label>
template show <id|label> [--format json|yaml]
template delete <id|label>
template search <query>`,
	"history": `history list
history restore <n>
history clear
  Entry numbers start at 1, newest first.`,
	"export": `export <json|python|javascript|go|yaml> [--output FILE]
  Relative output names are written to the exports directory of the library.`,
	"copy": `copy [format]
  Copy an export (json by default) to the clipboard.`,
	"import": `import <file|->
  Replace the draft with an embed from a webhook JSON document or a bare
  embed object. Malformed entries are skipped and listed.`,
	"settings": `settings [show]
settings set <url|username|avatar_url> <value>`,
	"pick": `pick [templates|history]
  Choose a template or a history entry to load into the draft.`,
}
