package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
)

// DefaultHistoryLimit is the number of send attempts kept
const DefaultHistoryLimit = 50

// HistoryStore keeps the most recent send attempts in the order they happened
type HistoryStore struct {
	storage *Storage
	limit   int
}

// NewHistoryStore creates a history store keeping at most limit entries
func NewHistoryStore(s *Storage, limit int) *HistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryStore{storage: s, limit: limit}
}

// HistoryData represents the JSON structure for history
type HistoryData struct {
	Version string                `json:"version"`
	Entries []models.HistoryEntry `json:"entries"`
}

// LoadHistory returns entries oldest first
func (h *HistoryStore) LoadHistory() ([]models.HistoryEntry, error) {
	var data HistoryData
	err := h.storage.Load(HistoryCollection, &data)
	if errors.IsCode(err, errors.ErrCodeNotFound) {
		return []models.HistoryEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	if data.Entries == nil {
		data.Entries = []models.HistoryEntry{}
	}
	return data.Entries, nil
}

// Append records an entry and drops the oldest entries beyond the limit
func (h *HistoryStore) Append(entry models.HistoryEntry) (*models.HistoryEntry, error) {
	entries, err := h.LoadHistory()
	if err != nil {
		return nil, err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}

	entries = append(entries, entry)
	if len(entries) > h.limit {
		entries = entries[len(entries)-h.limit:]
	}

	if err := h.save(entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Clear removes all entries
func (h *HistoryStore) Clear() error {
	return h.save([]models.HistoryEntry{})
}

func (h *HistoryStore) save(entries []models.HistoryEntry) error {
	return h.storage.Save(HistoryCollection, HistoryData{
		Version: DocumentVersion,
		Entries: entries,
	})
}
