package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
)

// TemplateStore handles persistence of saved embed templates
type TemplateStore struct {
	storage *Storage
}

// NewTemplateStore creates a new template store
func NewTemplateStore(s *Storage) *TemplateStore {
	return &TemplateStore{storage: s}
}

// TemplatesData represents the JSON structure for templates
type TemplatesData struct {
	Version   string            `json:"version"`
	Templates []models.Template `json:"templates"`
}

// LoadTemplates loads all templates from disk. When no template document
// exists yet the built-in defaults are written and returned.
func (t *TemplateStore) LoadTemplates() ([]models.Template, error) {
	var data TemplatesData
	err := t.storage.Load(TemplatesCollection, &data)
	if errors.IsCode(err, errors.ErrCodeNotFound) {
		defaults := DefaultTemplates()
		if err := t.SaveTemplates(defaults); err != nil {
			t.storage.logger.Warn("failed to seed default templates", "error", err)
		}
		return defaults, nil
	}
	if err != nil {
		return nil, err
	}
	if data.Templates == nil {
		data.Templates = []models.Template{}
	}
	return data.Templates, nil
}

// SaveTemplates saves all templates to disk
func (t *TemplateStore) SaveTemplates(templates []models.Template) error {
	return t.storage.Save(TemplatesCollection, TemplatesData{
		Version:   DocumentVersion,
		Templates: templates,
	})
}

// AddTemplate stores a template. A template with the same label (ignoring
// case) is replaced and keeps its id.
func (t *TemplateStore) AddTemplate(tmpl models.Template) (*models.Template, error) {
	templates, err := t.LoadTemplates()
	if err != nil {
		return nil, err
	}

	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = time.Now().UTC()
	}

	for i, existing := range templates {
		if strings.EqualFold(existing.Label, tmpl.Label) {
			tmpl.ID = existing.ID
			templates[i] = tmpl
			return &tmpl, t.SaveTemplates(templates)
		}
	}

	if tmpl.ID == "" {
		tmpl.ID = uuid.NewString()
	}
	templates = append(templates, tmpl)
	return &tmpl, t.SaveTemplates(templates)
}

// DeleteTemplate removes a template by id or label
func (t *TemplateStore) DeleteTemplate(ref string) error {
	templates, err := t.LoadTemplates()
	if err != nil {
		return err
	}

	i := findTemplate(templates, ref)
	if i < 0 {
		return errors.NotFoundError("template '" + ref + "'")
	}
	templates = append(templates[:i], templates[i+1:]...)
	return t.SaveTemplates(templates)
}

// GetTemplate retrieves a template by id or label
func (t *TemplateStore) GetTemplate(ref string) (*models.Template, error) {
	templates, err := t.LoadTemplates()
	if err != nil {
		return nil, err
	}

	i := findTemplate(templates, ref)
	if i < 0 {
		return nil, errors.NotFoundError("template '" + ref + "'")
	}
	tmpl := templates[i]
	return &tmpl, nil
}

// findTemplate matches an exact id first, then a label ignoring case
func findTemplate(templates []models.Template, ref string) int {
	ref = strings.TrimSpace(ref)
	for i, tmpl := range templates {
		if tmpl.ID == ref {
			return i
		}
	}
	for i, tmpl := range templates {
		if strings.EqualFold(tmpl.Label, ref) {
			return i
		}
	}
	return -1
}

// DefaultTemplates returns the templates a new library starts with
func DefaultTemplates() []models.Template {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inline := func(name, value string) models.Field {
		return models.Field{Name: name, Value: value, Inline: true}
	}

	return []models.Template{
		{
			ID:        "default-announcement",
			Label:     "Announcement",
			Summary:   "Server announcement template",
			CreatedAt: created,
			Embed: models.Embed{
				Title:       "📢 Server Announcement",
				Description: "Important announcement goes here...",
				Color:       models.IntPtr(0x5865F2),
				Footer:      models.Footer{Text: "Posted by Admin Team"},
				Timestamp:   models.TimestampAuto,
				Fields:      []models.Field{},
			},
		},
		{
			ID:        "default-welcome",
			Label:     "Welcome Message",
			Summary:   "Welcome new members",
			CreatedAt: created,
			Embed: models.Embed{
				Title:       "👋 Welcome!",
				Description: "Welcome to our server! We're glad to have you here.",
				Color:       models.IntPtr(0x3BA55C),
				Fields: []models.Field{
					inline("📜 Rules", "Check out #rules"),
					inline("💬 Chat", "Join us in #general"),
					inline("❓ Help", "Ask in #support"),
				},
			},
		},
		{
			ID:        "default-server-status",
			Label:     "Server Status",
			Summary:   "Display server statistics",
			CreatedAt: created,
			Embed: models.Embed{
				Title: "📊 Server Status",
				Color: models.IntPtr(0xFAA61A),
				Fields: []models.Field{
					inline("Status", "🟢 Online"),
					inline("Players", "42/100"),
					inline("Uptime", "7 days"),
				},
				Footer:    models.Footer{Text: "Last updated"},
				Timestamp: models.TimestampAuto,
			},
		},
	}
}
