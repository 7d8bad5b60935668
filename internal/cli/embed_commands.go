package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
	"github.com/dpshade/pocket-embed/internal/renderer"
	"github.com/dpshade/pocket-embed/internal/service"
	"github.com/dpshade/pocket-embed/internal/webhook"
)

// showDraft prints the draft embed
func (c *CLI) showDraft(args []string) error {
	fs := parseFlags(args, "format", "f")
	format := fs.values["format"]
	if format == "" {
		format = fs.values["f"]
	}

	e, err := c.service.Draft()
	if err != nil {
		return err
	}
	return c.formatEmbed(e, format)
}

// formatEmbed formats a single embed for output
func (c *CLI) formatEmbed(e *models.Embed, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(e)
	case "yaml":
		return yaml.NewEncoder(c.out).Encode(e)
	}

	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(c.out, "%s %s\n", labelStyle.Render(label+":"), value)
		}
	}
	row("Title", e.Title)
	row("Description", e.Description)
	row("URL", e.URL)
	if e.Color != nil {
		swatch := lipglossSwatch(*e.Color)
		row("Color", swatch+" "+models.FormatColor(*e.Color))
	}
	author := e.Author.Name
	if e.Author.URL != "" {
		author += " (" + e.Author.URL + ")"
	}
	row("Author", author)
	row("Author icon", e.Author.IconURL)
	row("Footer", e.Footer.Text)
	row("Footer icon", e.Footer.IconURL)
	row("Thumbnail", e.ThumbnailURL)
	row("Image", e.ImageURL)
	row("Timestamp", e.Timestamp)

	fmt.Fprintf(c.out, "%s\n", labelStyle.Render(fmt.Sprintf("Fields (%d/%d):", len(e.Fields), models.MaxFields)))
	for i, f := range e.Fields {
		inline := ""
		if f.Inline {
			inline = mutedStyle.Render(" [inline]")
		}
		fmt.Fprintf(c.out, "  %d. %s: %s%s\n", i+1, f.Name, f.Value, inline)
	}
	return nil
}

// newDraft discards the draft
func (c *CLI) newDraft(_ []string) error {
	if _, err := c.service.NewDraft(); err != nil {
		return err
	}
	c.success("Started a new embed")
	return nil
}

// setAttribute sets one draft attribute
func (c *CLI) setAttribute(args []string) error {
	if len(args) < 1 {
		return errors.InvalidCommandError("set", "requires an attribute name").
			WithDetails("Attributes: " + strings.Join(settableAttributes(), ", "))
	}
	name := args[0]
	value := strings.Join(args[1:], " ")

	if err := c.service.SetAttribute(name, value); err != nil {
		return err
	}
	if value == "" {
		c.success("Cleared %s", name)
	} else {
		c.success("Set %s", name)
	}
	return nil
}

func settableAttributes() []string {
	return []string{
		models.AttrTitle, models.AttrDescription, models.AttrURL, models.AttrColor,
		models.AttrAuthorName, models.AttrAuthorURL, models.AttrAuthorIconURL,
		models.AttrFooterText, models.AttrFooterIconURL,
		models.AttrThumbnailURL, models.AttrImageURL, models.AttrTimestamp,
	}
}

// handleField handles field operations
func (c *CLI) handleField(args []string) error {
	if len(args) == 0 {
		return errors.InvalidCommandError("field", "requires a subcommand (add, edit, move, rm)")
	}

	fs := parseFlags(args[1:])
	pos := fs.positional

	switch args[0] {
	case "add":
		if len(pos) < 2 {
			return errors.InvalidCommandError("field add", "requires a name and a value")
		}
		if err := c.service.AddField(pos[0], strings.Join(pos[1:], " "), fs.bools["inline"]); err != nil {
			return err
		}
		e, _ := c.service.Draft()
		c.success("Added field %d", len(e.Fields))
		return nil

	case "edit":
		if len(pos) < 3 {
			return errors.InvalidCommandError("field edit", "requires an index, a name and a value")
		}
		i, err := parseIndex(pos[0], "field index")
		if err != nil {
			return err
		}
		f := models.Field{Name: pos[1], Value: strings.Join(pos[2:], " "), Inline: fs.bools["inline"]}
		if err := c.service.UpdateField(i, f); err != nil {
			return err
		}
		c.success("Updated field %d", i+1)
		return nil

	case "move", "mv":
		if len(pos) != 2 {
			return errors.InvalidCommandError("field move", "requires two indices")
		}
		from, err := parseIndex(pos[0], "from")
		if err != nil {
			return err
		}
		to, err := parseIndex(pos[1], "to")
		if err != nil {
			return err
		}
		if err := c.service.MoveField(from, to); err != nil {
			return err
		}
		c.success("Moved field %d to position %d", from+1, to+1)
		return nil

	case "rm", "remove", "delete":
		if len(pos) != 1 {
			return errors.InvalidCommandError("field rm", "requires an index")
		}
		i, err := parseIndex(pos[0], "field index")
		if err != nil {
			return err
		}
		if err := c.service.RemoveField(i); err != nil {
			return err
		}
		c.success("Removed field %d", i+1)
		return nil

	default:
		return errors.InvalidCommandError("field", fmt.Sprintf("unknown subcommand '%s'", args[0]))
	}
}

// validateDraft reports what sending would repair or reject
func (c *CLI) validateDraft(_ []string) error {
	result, err := c.service.Validate()
	if err != nil {
		return err
	}
	c.printWarnings(result.Warnings)
	if !result.Valid {
		return result.ToAppError()
	}
	c.success("Embed is ready to send")
	return nil
}

// previewDraft renders the draft in the terminal
func (c *CLI) previewDraft(args []string) error {
	fs := parseFlags(args, "width", "w")
	width := 0
	if w := fs.values["width"] + fs.values["w"]; w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return errors.InvalidInputError(fmt.Sprintf("invalid width '%s'", w))
		}
		width = n
	}

	out, err := c.service.Preview(width)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, out)
	return nil
}

// sendDraft sends the draft to the webhook
func (c *CLI) sendDraft(args []string) error {
	fs := parseFlags(args, "url", "username", "avatar")
	report, err := c.service.Send(c.ctx, service.SendRequest{
		URL:       fs.values["url"],
		Username:  fs.values["username"],
		AvatarURL: fs.values["avatar"],
		Remember:  fs.bools["remember"],
	})
	if err != nil {
		return err
	}

	c.printWarnings(report.Warnings)
	if report.NotWebhook {
		fmt.Fprintln(c.out, warnStyle.Render("⚠ target does not look like a webhook URL"))
	}

	if report.Outcome.Kind == webhook.Delivered {
		c.success("Embed delivered (%d)", report.Outcome.StatusCode)
		return nil
	}
	return report.Outcome.Err()
}

// handleExport renders the draft in an export format
func (c *CLI) handleExport(args []string) error {
	fs := parseFlags(args, "output", "o")
	if len(fs.positional) == 0 {
		return errors.InvalidCommandError("export", "requires a format").
			WithDetails("Formats: " + strings.Join(renderer.Formats(), ", "))
	}
	outputFile := fs.values["output"]
	if outputFile == "" {
		outputFile = fs.values["o"]
	}

	out, warnings, err := c.service.Export(fs.positional[0])
	if err != nil {
		return err
	}

	if outputFile != "" {
		c.printWarnings(warnings)
		path, err := c.service.WriteExport(outputFile, out)
		if err != nil {
			return err
		}
		c.success("Exported to %s", path)
		return nil
	}

	fmt.Fprint(c.out, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(c.out)
	}
	return nil
}

// copyDraft copies an export of the draft to the clipboard
func (c *CLI) copyDraft(args []string) error {
	format := renderer.FormatJSON
	if len(args) > 0 {
		format = args[0]
	}

	out, warnings, err := c.service.Export(format)
	if err != nil {
		return err
	}
	c.printWarnings(warnings)

	msg, err := c.copy(out)
	if err != nil {
		return errors.NewAppError(errors.ErrCodeInternalError, "Failed to copy to clipboard").
			WithDetails(err.Error())
	}
	c.success("%s", msg)
	return nil
}

// handleImport replaces the draft with an embed read from a JSON file, or
// from stdin when the file is "-"
func (c *CLI) handleImport(args []string) error {
	if len(args) != 1 {
		return errors.InvalidCommandError("import", "requires a file path (or - for stdin)")
	}

	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(c.in)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "Failed to read "+args[0])
	}

	skipped, err := c.service.Import(data)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		fmt.Fprintln(c.out, warnStyle.Render("⚠ skipped "+s.String()))
	}
	c.success("Imported embed into the draft")
	return nil
}
