package models

import (
	"fmt"
	"strings"
	"time"
)

// Template is a named, timestamped snapshot of an embed
type Template struct {
	ID        string    `json:"id" yaml:"id"`
	Label     string    `json:"label" yaml:"label"`
	Summary   string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Embed     Embed     `json:"embed" yaml:"embed"`
}

// OutcomeStatus is the recorded result of a send
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// DeliveryOutcome is the persisted form of a submission outcome
type DeliveryOutcome struct {
	Status     OutcomeStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
}

// HistoryEntry records one send attempt
type HistoryEntry struct {
	ID      string          `json:"id"`
	SentAt  time.Time       `json:"sent_at"`
	Embed   Embed           `json:"embed"`
	Outcome DeliveryOutcome `json:"outcome"`
}

// WebhookSettings holds the remembered target and profile overrides
type WebhookSettings struct {
	URL       string `json:"url"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Implement list.Item for the bubbles list in the picker

// FilterValue returns the value used for filtering in lists
func (t Template) FilterValue() string {
	return t.Label
}

// Title satisfies the list.DefaultItem interface
func (t Template) Title() string {
	return t.Label
}

// Description satisfies the list.DefaultItem interface
func (t Template) Description() string {
	var parts []string
	if t.Summary != "" {
		parts = append(parts, truncateRunes(t.Summary, 60))
	}
	parts = append(parts, fmt.Sprintf("%d fields", len(t.Embed.Fields)))
	if !t.CreatedAt.IsZero() {
		parts = append(parts, "Created: "+t.CreatedAt.Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, " • ")
}

// FilterValue returns the value used for filtering in lists
func (h HistoryEntry) FilterValue() string {
	return h.Embed.Title
}

// Title satisfies the list.DefaultItem interface
func (h HistoryEntry) Title() string {
	if h.Embed.Title != "" {
		return h.Embed.Title
	}
	return "(untitled)"
}

// Description satisfies the list.DefaultItem interface
func (h HistoryEntry) Description() string {
	desc := h.SentAt.Local().Format("2006-01-02 15:04") + " • " + string(h.Outcome.Status)
	if h.Outcome.Reason != "" {
		desc += ": " + truncateRunes(h.Outcome.Reason, 60)
	}
	return desc
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
