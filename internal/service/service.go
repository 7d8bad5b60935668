package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dpshade/pocket-embed/internal/config"
	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
	"github.com/dpshade/pocket-embed/internal/renderer"
	"github.com/dpshade/pocket-embed/internal/storage"
	"github.com/dpshade/pocket-embed/internal/validation"
	"github.com/dpshade/pocket-embed/internal/webhook"
	"github.com/dpshade/pocket-embed/internal/wire"
)

// Service provides the editing session: a persisted draft embed plus
// templates, history and the webhook target. Not safe for concurrent use.
type Service struct {
	cfg       *config.Config
	logger    *slog.Logger
	storage   *storage.Storage
	templates *storage.TemplateStore
	history   *storage.HistoryStore
	settings  *storage.SettingsStore
	drafts    *storage.DraftStore
	validator *validation.Validator
	submitter *webhook.Submitter

	draft *models.Embed // loaded on first use
}

// NewService creates a new service instance
func NewService(cfg *config.Config, logger *slog.Logger, version string) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStorage(cfg.LibraryDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &Service{
		cfg:       cfg,
		logger:    logger,
		storage:   store,
		templates: storage.NewTemplateStore(store),
		history:   storage.NewHistoryStore(store, cfg.HistoryLimit),
		settings:  storage.NewSettingsStore(store),
		drafts:    storage.NewDraftStore(store),
		validator: validation.NewValidator(),
		submitter: webhook.NewSubmitter(
			webhook.WithTimeout(cfg.Timeout),
			webhook.WithLogger(logger),
			webhook.WithUserAgent("pocket-embed/"+version),
		),
	}, nil
}

// InitLibrary initializes a new embed library
func (s *Service) InitLibrary() error {
	return s.storage.InitLibrary()
}

// LibraryDir returns the library directory
func (s *Service) LibraryDir() string {
	return s.storage.GetBaseDir()
}

// Draft returns the embed being edited
func (s *Service) Draft() (*models.Embed, error) {
	if s.draft != nil {
		return s.draft, nil
	}
	if !s.storage.Exists(storage.DraftCollection) {
		s.draft = s.freshEmbed()
		return s.draft, nil
	}
	e, err := s.drafts.LoadDraft()
	if err != nil {
		return nil, err
	}
	s.draft = e
	return s.draft, nil
}

func (s *Service) freshEmbed() *models.Embed {
	e := models.NewEmbed()
	e.Color = models.IntPtr(s.cfg.Color())
	return e
}

// NewDraft discards the draft and starts an empty embed
func (s *Service) NewDraft() (*models.Embed, error) {
	s.draft = s.freshEmbed()
	return s.draft, s.drafts.SaveDraft(s.draft)
}

// replaceDraft makes a copy of e the draft and persists it
func (s *Service) replaceDraft(e *models.Embed) (*models.Embed, error) {
	s.draft = e.Clone()
	if s.draft.Fields == nil {
		s.draft.Fields = []models.Field{}
	}
	return s.draft, s.drafts.SaveDraft(s.draft)
}

// edit applies fn to the draft and persists it when fn succeeds
func (s *Service) edit(fn func(e *models.Embed) error) error {
	e, err := s.Draft()
	if err != nil {
		return err
	}
	if err := fn(e); err != nil {
		return err
	}
	return s.drafts.SaveDraft(e)
}

// SetAttribute sets a named attribute on the draft
func (s *Service) SetAttribute(name, value string) error {
	return s.edit(func(e *models.Embed) error { return e.SetAttribute(name, value) })
}

// AddField appends a field to the draft
func (s *Service) AddField(name, value string, inline bool) error {
	return s.edit(func(e *models.Embed) error { return e.AddField(name, value, inline) })
}

// UpdateField replaces the field at index
func (s *Service) UpdateField(index int, f models.Field) error {
	return s.edit(func(e *models.Embed) error { return e.UpdateField(index, f) })
}

// MoveField moves a field within the draft
func (s *Service) MoveField(from, to int) error {
	return s.edit(func(e *models.Embed) error { return e.MoveField(from, to) })
}

// RemoveField removes a field from the draft
func (s *Service) RemoveField(index int) error {
	return s.edit(func(e *models.Embed) error { return e.RemoveField(index) })
}

// Validate runs the send-path validation on the draft without sending
func (s *Service) Validate() (*validation.ValidationResult, error) {
	e, err := s.Draft()
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(e), nil
}

// Export renders the draft in the requested format. Exports are built from
// the send-path result so they match what Send would post.
func (s *Service) Export(format string) (string, []validation.ValidationWarning, error) {
	result, err := s.Validate()
	if err != nil {
		return "", nil, err
	}
	if !result.Valid {
		return "", result.Warnings, result.ToAppError()
	}

	settings, err := s.settings.LoadSettings()
	if err != nil {
		return "", nil, err
	}

	r := renderer.NewRenderer(result.Embed, wire.Overrides{Username: settings.Username, AvatarURL: settings.AvatarURL})
	out, err := r.Render(strings.ToLower(format), settings.URL)
	return out, result.Warnings, err
}

// WriteExport writes rendered output to a file and returns its path
func (s *Service) WriteExport(name, content string) (string, error) {
	return s.storage.WriteExport(name, []byte(content))
}

// Preview renders the draft for the terminal. Drafts that could not be sent
// yet still preview.
func (s *Service) Preview(width int) (string, error) {
	e, err := s.Draft()
	if err != nil {
		return "", err
	}
	return s.PreviewEmbed(e, width)
}

// PreviewEmbed renders any embed for the terminal, e.g. a template or a
// history entry before it is loaded
func (s *Service) PreviewEmbed(e *models.Embed, width int) (string, error) {
	if width <= 0 {
		width = s.cfg.PreviewWidth
	}
	result := s.validator.SanitizeForSave(e)
	return renderer.NewRenderer(result.Embed, wire.Overrides{}).RenderPreview(width)
}

// Import replaces the draft with an embed read from JSON. Entries that
// could not be used are returned.
func (s *Service) Import(data []byte) ([]wire.Skipped, error) {
	e, skipped, err := wire.FromWire(data)
	if err != nil {
		return nil, err
	}
	if _, err := s.replaceDraft(e); err != nil {
		return skipped, err
	}
	s.logger.Debug("embed imported", "skipped", len(skipped))
	return skipped, nil
}

// ListTemplates returns all templates
func (s *Service) ListTemplates() ([]models.Template, error) {
	return s.templates.LoadTemplates()
}

// SearchTemplates searches templates by query string
func (s *Service) SearchTemplates(query string) ([]models.Template, error) {
	templates, err := s.ListTemplates()
	if err != nil {
		return nil, err
	}

	if query == "" {
		return templates, nil
	}

	// Create searchable strings for each template
	var searchStrings []string
	for _, t := range templates {
		searchStrings = append(searchStrings, fmt.Sprintf("%s %s %s %s",
			t.Label,
			t.Summary,
			t.Embed.Title,
			t.ID))
	}

	matches := fuzzy.Find(query, searchStrings)

	var results []models.Template
	for _, match := range matches {
		results = append(results, templates[match.Index])
	}

	return results, nil
}

// SaveTemplate stores the draft under label. The draft goes through the
// lenient save path, so incomplete embeds can be saved.
func (s *Service) SaveTemplate(label, description string) (*models.Template, []validation.ValidationWarning, error) {
	check := s.validator.ValidateInput(validation.SchemaTemplate, map[string]interface{}{
		"label":       label,
		"description": description,
	})
	if !check.Valid {
		return nil, nil, check.ToAppError()
	}

	e, err := s.Draft()
	if err != nil {
		return nil, nil, err
	}
	result := s.validator.SanitizeForSave(e)

	tmpl, err := s.templates.AddTemplate(models.Template{
		Label:   check.Data["label"].(string),
		Summary: stringValue(check.Data["description"]),
		Embed:   *result.Embed.Embed(),
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("template saved", "id", tmpl.ID, "label", tmpl.Label)
	return tmpl, result.Warnings, nil
}

// GetTemplate finds a template by id or label
func (s *Service) GetTemplate(ref string) (*models.Template, error) {
	return s.templates.GetTemplate(ref)
}

// LoadTemplate makes a copy of a template's embed the draft
func (s *Service) LoadTemplate(ref string) (*models.Template, error) {
	tmpl, err := s.templates.GetTemplate(ref)
	if err != nil {
		return nil, err
	}
	if _, err := s.replaceDraft(&tmpl.Embed); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// DeleteTemplate removes a template by id or label
func (s *Service) DeleteTemplate(ref string) error {
	return s.templates.DeleteTemplate(ref)
}

// History returns send attempts, newest first
func (s *Service) History() ([]models.HistoryEntry, error) {
	entries, err := s.history.LoadHistory()
	if err != nil {
		return nil, err
	}
	out := make([]models.HistoryEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out, nil
}

// RestoreHistory makes the embed of the n-th newest entry (0-based) the draft
func (s *Service) RestoreHistory(n int) (*models.HistoryEntry, error) {
	entries, err := s.History()
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= len(entries) {
		return nil, errors.NotFoundError(fmt.Sprintf("history entry %d", n+1))
	}
	entry := entries[n]
	if _, err := s.replaceDraft(&entry.Embed); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ClearHistory removes all history entries
func (s *Service) ClearHistory() error {
	return s.history.Clear()
}

// Settings returns the saved webhook settings
func (s *Service) Settings() (models.WebhookSettings, error) {
	return s.settings.LoadSettings()
}

// SaveSettings validates and stores webhook settings
func (s *Service) SaveSettings(settings models.WebhookSettings) error {
	check := s.validator.ValidateInput(validation.SchemaWebhookSettings, map[string]interface{}{
		"url":        settings.URL,
		"username":   settings.Username,
		"avatar_url": settings.AvatarURL,
	})
	if !check.Valid {
		return check.ToAppError()
	}
	return s.settings.SaveSettings(models.WebhookSettings{
		URL:       stringValue(check.Data["url"]),
		Username:  stringValue(check.Data["username"]),
		AvatarURL: stringValue(check.Data["avatar_url"]),
	})
}

// SetSetting updates one settings key: url, username or avatar_url
func (s *Service) SetSetting(key, value string) error {
	settings, err := s.Settings()
	if err != nil {
		return err
	}
	switch key {
	case "url":
		settings.URL = value
	case "username":
		settings.Username = value
	case "avatar_url", "avatar":
		settings.AvatarURL = value
	default:
		return errors.InvalidInputError(fmt.Sprintf("unknown setting '%s'", key)).
			WithDetails("Settings: url, username, avatar_url")
	}
	return s.SaveSettings(settings)
}

func stringValue(v interface{}) string {
	str, _ := v.(string)
	return str
}
