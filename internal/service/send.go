package service

import (
	"context"
	"strings"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
	"github.com/dpshade/pocket-embed/internal/validation"
	"github.com/dpshade/pocket-embed/internal/webhook"
	"github.com/dpshade/pocket-embed/internal/wire"
)

// SendRequest overrides the saved webhook settings for one send. Empty
// values fall back to the saved settings.
type SendRequest struct {
	URL       string
	Username  string
	AvatarURL string

	// Remember stores the effective settings after a successful precheck
	Remember bool
}

// SendReport describes one send attempt
type SendReport struct {
	Outcome  *webhook.Outcome
	Warnings []validation.ValidationWarning
	Entry    *models.HistoryEntry

	// NotWebhook is set when the target does not look like a webhook endpoint
	NotWebhook bool
}

// Send validates the draft and posts it. The returned error covers problems
// found before the request was made; once the request is attempted the
// result is in the report and recorded in history. The draft is never
// modified.
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendReport, error) {
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(req.URL); v != "" {
		settings.URL = v
	}
	if v := strings.TrimSpace(req.Username); v != "" {
		settings.Username = v
	}
	if v := strings.TrimSpace(req.AvatarURL); v != "" {
		settings.AvatarURL = v
	}
	if settings.URL == "" {
		return nil, errors.InvalidInputError("No webhook URL configured").
			WithDetails("Pass --url or run 'pocket-embed settings set url <url>'")
	}

	result, err := s.Validate()
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, result.ToAppError()
	}

	if req.Remember {
		if err := s.SaveSettings(settings); err != nil {
			return nil, err
		}
	}

	report := &SendReport{
		Warnings:   result.Warnings,
		NotWebhook: !validation.IsWebhookURL(settings.URL),
	}
	if report.NotWebhook {
		s.logger.Warn("target does not look like a webhook URL")
	}

	doc := wire.ToWire(result.Embed)
	outcome, err := s.submitter.Submit(ctx, settings.URL, doc, wire.Overrides{
		Username:  settings.Username,
		AvatarURL: settings.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	report.Outcome = outcome

	entry, err := s.history.Append(models.HistoryEntry{
		Embed:   *result.Embed.Embed(),
		Outcome: outcome.Record(),
	})
	if err != nil {
		s.logger.Warn("failed to record history", "error", err)
	} else {
		report.Entry = entry
	}

	return report, nil
}
