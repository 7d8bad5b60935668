package renderer

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/pocket-embed/internal/models"
	"github.com/dpshade/pocket-embed/internal/validation"
	"github.com/dpshade/pocket-embed/internal/wire"
)

// Export formats
const (
	FormatJSON       = "json"
	FormatPython     = "python"
	FormatJavaScript = "javascript"
	FormatGo         = "go"
	FormatYAML       = "yaml"
)

// PlaceholderURL is written into source exports when no webhook is configured
const PlaceholderURL = "https://discord.com/api/webhooks/YOUR_WEBHOOK_ID/YOUR_WEBHOOK_TOKEN"

// Renderer handles embed rendering
type Renderer struct {
	embed *models.Embed
	doc   *wire.Document
}

// NewRenderer creates a renderer for a sanitized embed and optional profile overrides
func NewRenderer(s *validation.Sanitized, overrides wire.Overrides) *Renderer {
	return &Renderer{
		embed: s.Embed(),
		doc:   wire.ToWire(s).WithOverrides(overrides),
	}
}

// Document returns the wire document being rendered
func (r *Renderer) Document() *wire.Document {
	return r.doc
}

// RenderJSON renders the webhook request body
func (r *Renderer) RenderJSON() (string, error) {
	data, err := r.doc.Marshal()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RenderYAML renders the embed model as YAML
func (r *Renderer) RenderYAML() (string, error) {
	data, err := yaml.Marshal(r.embed)
	if err != nil {
		return "", fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	return string(data), nil
}

// Render renders the embed in any export format
func (r *Renderer) Render(format, webhookURL string) (string, error) {
	switch format {
	case FormatJSON:
		return r.RenderJSON()
	case FormatYAML:
		return r.RenderYAML()
	default:
		return r.RenderSource(format, webhookURL)
	}
}

// Formats lists the supported export formats
func Formats() []string {
	return []string{FormatJSON, FormatPython, FormatJavaScript, FormatGo, FormatYAML}
}

// RenderMarkdown renders the embed as markdown for terminal preview
func (r *Renderer) RenderMarkdown() string {
	e := r.embed
	var b strings.Builder

	if e.Author.Name != "" {
		fmt.Fprintf(&b, "**%s**\n\n", e.Author.Name)
	}
	if e.Title != "" {
		if e.URL != "" {
			fmt.Fprintf(&b, "# [%s](%s)\n\n", e.Title, e.URL)
		} else {
			fmt.Fprintf(&b, "# %s\n\n", e.Title)
		}
	}
	if e.Description != "" {
		b.WriteString(e.Description)
		b.WriteString("\n\n")
	}

	// consecutive inline fields share a table row, up to three per row
	var row []models.Field
	flush := func() {
		if len(row) == 0 {
			return
		}
		names := make([]string, len(row))
		seps := make([]string, len(row))
		values := make([]string, len(row))
		for i, f := range row {
			names[i] = cell(f.Name)
			seps[i] = "---"
			values[i] = cell(f.Value)
		}
		fmt.Fprintf(&b, "| %s |\n| %s |\n| %s |\n\n",
			strings.Join(names, " | "), strings.Join(seps, " | "), strings.Join(values, " | "))
		row = row[:0]
	}
	for _, f := range e.Fields {
		if f.Inline {
			row = append(row, f)
			if len(row) == 3 {
				flush()
			}
			continue
		}
		flush()
		fmt.Fprintf(&b, "**%s**\n\n%s\n\n", f.Name, f.Value)
	}
	flush()

	if e.ImageURL != "" {
		fmt.Fprintf(&b, "![image](%s)\n\n", e.ImageURL)
	}
	if e.ThumbnailURL != "" {
		fmt.Fprintf(&b, "Thumbnail: %s\n\n", e.ThumbnailURL)
	}

	var footer []string
	if e.Footer.Text != "" {
		footer = append(footer, e.Footer.Text)
	}
	if e.Timestamp != "" {
		footer = append(footer, e.Timestamp)
	}
	if len(footer) > 0 {
		fmt.Fprintf(&b, "---\n\n*%s*\n", strings.Join(footer, " • "))
	}

	return b.String()
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderPreview renders the markdown through glamour with a bar in the
// embed's color down the left edge
func (r *Renderer) RenderPreview(width int) (string, error) {
	if width < 20 {
		width = 20
	}
	tr, err := createGlamourRenderer(width - 4)
	if err != nil {
		return "", fmt.Errorf("failed to create preview renderer: %w", err)
	}
	out, err := tr.Render(r.RenderMarkdown())
	if err != nil {
		return "", fmt.Errorf("failed to render preview: %w", err)
	}

	bar := lipgloss.Color("#4F545C")
	if r.embed.Color != nil {
		bar = lipgloss.Color(models.FormatColor(*r.embed.Color))
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(bar).
		PaddingLeft(1)

	return style.Render(strings.TrimRight(out, "\n")), nil
}

// createGlamourRenderer creates a glamour renderer with improved contrast handling
func createGlamourRenderer(wordWrap int) (*glamour.TermRenderer, error) {
	// Check for environment variable override first
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()

	var styleOption glamour.TermRendererOption
	switch {
	case profile == termenv.Ascii:
		styleOption = glamour.WithStandardStyle("notty")
	case lipgloss.HasDarkBackground():
		styleOption = glamour.WithStandardStyle("dark")
	default:
		styleOption = glamour.WithStandardStyle("light")
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// Summary renders a one-line description of the embed for listings
func Summary(e *models.Embed) string {
	title := e.Title
	if title == "" {
		title = "(untitled)"
	}
	parts := []string{title, fmt.Sprintf("%d fields", len(e.Fields))}
	if e.Color != nil {
		parts = append(parts, models.FormatColor(*e.Color))
	}
	return strings.Join(parts, " • ")
}
