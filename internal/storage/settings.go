package storage

import (
	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
)

// SettingsStore persists the remembered webhook target as a flat object
type SettingsStore struct {
	storage *Storage
}

// NewSettingsStore creates a new settings store
func NewSettingsStore(s *Storage) *SettingsStore {
	return &SettingsStore{storage: s}
}

// LoadSettings returns the saved settings, or zero settings if none were saved
func (s *SettingsStore) LoadSettings() (models.WebhookSettings, error) {
	var settings models.WebhookSettings
	err := s.storage.Load(SettingsCollection, &settings)
	if errors.IsCode(err, errors.ErrCodeNotFound) {
		return models.WebhookSettings{}, nil
	}
	return settings, err
}

// SaveSettings replaces the saved settings
func (s *SettingsStore) SaveSettings(settings models.WebhookSettings) error {
	return s.storage.Save(SettingsCollection, settings)
}

// DraftStore persists the embed being edited between invocations
type DraftStore struct {
	storage *Storage
}

// NewDraftStore creates a new draft store
func NewDraftStore(s *Storage) *DraftStore {
	return &DraftStore{storage: s}
}

// DraftData represents the JSON structure for the draft
type DraftData struct {
	Version string        `json:"version"`
	Embed   *models.Embed `json:"embed"`
}

// LoadDraft returns the saved draft, or a fresh embed if there is none
func (d *DraftStore) LoadDraft() (*models.Embed, error) {
	var data DraftData
	err := d.storage.Load(DraftCollection, &data)
	if errors.IsCode(err, errors.ErrCodeNotFound) {
		return models.NewEmbed(), nil
	}
	if err != nil {
		return nil, err
	}
	if data.Embed == nil {
		return models.NewEmbed(), nil
	}
	if data.Embed.Fields == nil {
		data.Embed.Fields = []models.Field{}
	}
	return data.Embed, nil
}

// SaveDraft replaces the saved draft
func (d *DraftStore) SaveDraft(e *models.Embed) error {
	return d.storage.Save(DraftCollection, DraftData{
		Version: DocumentVersion,
		Embed:   e,
	})
}

// ClearDraft removes the saved draft
func (d *DraftStore) ClearDraft() error {
	return d.storage.Remove(DraftCollection)
}
