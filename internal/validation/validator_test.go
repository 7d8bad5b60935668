package validation

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
)

func hasWarning(r *ValidationResult, code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestValidateTruncatesTitle(t *testing.T) {
	v := NewValidator()
	e := &models.Embed{Title: strings.Repeat("a", 300)}

	result := v.Validate(e)
	if !result.Valid {
		t.Fatalf("Expected valid result, got errors: %v", result.Errors)
	}
	got := result.Embed.Embed().Title
	if utf8.RuneCountInString(got) != models.MaxTitle {
		t.Errorf("Expected title of %d characters, got %d", models.MaxTitle, utf8.RuneCountInString(got))
	}
	if !strings.HasPrefix(e.Title, got) {
		t.Error("Truncated title must be a prefix of the input")
	}
	if !hasWarning(result, CodeTruncated) {
		t.Error("Expected TRUNCATED warning")
	}
	if len(e.Title) != 300 {
		t.Error("Validate must not modify its input")
	}
}

func TestValidateDropsBlankField(t *testing.T) {
	v := NewValidator()
	e := &models.Embed{
		Title: "Status",
		Fields: []models.Field{
			{Name: "   ", Value: "x"},
			{Name: "Kept", Value: "yes", Inline: true},
		},
	}

	result := v.Validate(e)
	if !result.Valid {
		t.Fatalf("Expected valid result, got %v", result.Errors)
	}
	fields := result.Embed.Embed().Fields
	if len(fields) != 1 || fields[0].Name != "Kept" || !fields[0].Inline {
		t.Errorf("Expected only the populated field to survive, got %+v", fields)
	}
	if !hasWarning(result, CodeEmptyFieldDropped) {
		t.Error("Expected EMPTY_FIELD_DROPPED warning")
	}
}

func TestValidateColorOnlyIsEmpty(t *testing.T) {
	v := NewValidator()
	e := &models.Embed{Color: models.IntPtr(0x5865F2), Footer: models.Footer{Text: "footer"}}

	result := v.Validate(e)
	if result.Valid {
		t.Fatal("Expected color-only embed to be rejected")
	}
	if result.Embed != nil {
		t.Error("Failed result must not carry a sanitized embed")
	}
	appErr := result.ToAppError()
	if appErr == nil || appErr.Code != errors.ErrCodeEmptyEmbed {
		t.Errorf("Expected EMPTY_EMBED, got %v", appErr)
	}
}

func TestSanitizeForSaveAcceptsEmpty(t *testing.T) {
	v := NewValidator()
	result := v.SanitizeForSave(&models.Embed{})
	if !result.Valid || result.Embed == nil {
		t.Fatal("Save path must accept an empty embed")
	}
	if result.Embed.Sendable() {
		t.Error("Save-path result must not be sendable")
	}
}

func TestFieldOverflow(t *testing.T) {
	v := NewValidator()
	e := &models.Embed{Title: "t"}
	for i := 0; i < models.MaxFields+3; i++ {
		e.Fields = append(e.Fields, models.Field{Name: "n", Value: "v"})
	}

	send := v.Validate(e)
	if send.Valid {
		t.Fatal("Send path must reject more than 25 fields")
	}
	if send.ToAppError().Code != errors.ErrCodeCapacityExceeded {
		t.Errorf("Expected CAPACITY_EXCEEDED, got %s", send.ToAppError().Code)
	}

	save := v.SanitizeForSave(e)
	if !save.Valid {
		t.Fatal("Save path must never fail")
	}
	if n := len(save.Embed.Embed().Fields); n != models.MaxFields {
		t.Errorf("Expected %d fields after save, got %d", models.MaxFields, n)
	}
	if !hasWarning(save, CodeTooManyFields) {
		t.Error("Expected TOO_MANY_FIELDS warning")
	}
}

func TestInvalidURLsDropped(t *testing.T) {
	v := NewValidator()
	e := &models.Embed{
		Title:        "t",
		URL:          "example.com",
		ImageURL:     "ftp://x.com/a.png",
		ThumbnailURL: "https://cdn.example.com/t.png",
		Author:       models.Author{Name: "me", IconURL: "not a url"},
	}

	result := v.Validate(e)
	if !result.Valid {
		t.Fatalf("Invalid URLs must not be fatal: %v", result.Errors)
	}
	out := result.Embed.Embed()
	if out.URL != "" || out.ImageURL != "" || out.Author.IconURL != "" {
		t.Errorf("Expected invalid URLs to be dropped, got %+v", out)
	}
	if out.ThumbnailURL != e.ThumbnailURL {
		t.Error("Valid URL must be kept")
	}

	count := 0
	for _, w := range result.Warnings {
		if w.Code == CodeInvalidURL {
			count++
		}
	}
	if count != 3 {
		t.Errorf("Expected 3 INVALID_URL warnings, got %d", count)
	}
}

func TestOrphanSubAttributesDropped(t *testing.T) {
	v := NewValidator()
	e := &models.Embed{
		Title:  "t",
		Author: models.Author{URL: "https://example.com"},
		Footer: models.Footer{IconURL: "https://example.com/i.png"},
	}
	out := v.Validate(e).Embed.Embed()
	if out.Author.URL != "" || out.Footer.IconURL != "" {
		t.Errorf("Expected orphan URLs to be dropped, got %+v", out)
	}
}

func TestColorClampAndTimestamp(t *testing.T) {
	v := NewValidator()
	e := &models.Embed{Title: "t", Color: models.IntPtr(0x1FFFFFF), Timestamp: "2024-03-01T10:00:00"}

	result := v.Validate(e)
	out := result.Embed.Embed()
	if *out.Color != models.MaxColor {
		t.Errorf("Expected clamped color, got %#x", *out.Color)
	}
	if out.Timestamp != "2024-03-01T10:00:00Z" {
		t.Errorf("Expected naive timestamp converted to UTC, got %q", out.Timestamp)
	}

	e.Timestamp = "yesterday"
	result = v.Validate(e)
	if result.Embed.Embed().Timestamp != "" || !hasWarning(result, CodeInvalidTimestamp) {
		t.Error("Expected bad timestamp to be dropped with a warning")
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	v := NewValidator()
	e := &models.Embed{
		Title:       "  " + strings.Repeat("é", 260) + "  ",
		Description: strings.Repeat("x", 5000),
		URL:         "bad",
		Footer:      models.Footer{Text: "f", IconURL: "https://example.com/f.png"},
		Fields:      []models.Field{{Name: "", Value: "v"}, {Name: "a", Value: strings.Repeat("b", 2000)}},
	}

	first := v.SanitizeForSave(e).Embed.Embed()
	again := v.SanitizeForSave(first)
	if len(again.Warnings) != 0 {
		t.Errorf("Re-sanitizing must not produce warnings, got %v", again.Warnings)
	}
	second := again.Embed.Embed()
	if first.Title != second.Title || first.Description != second.Description || len(first.Fields) != len(second.Fields) {
		t.Error("Sanitize must be idempotent")
	}
}

func TestTruncateOnWhitespaceIsStable(t *testing.T) {
	v := NewValidator()
	title := strings.Repeat("a", 255) + " b"
	value := strings.Repeat("v", 1023) + " tail"
	e := &models.Embed{
		Title:  title,
		Fields: []models.Field{{Name: "n", Value: value}},
	}

	first := v.Validate(e)
	if !first.Valid {
		t.Fatalf("Expected valid result, got %v", first.Errors)
	}
	got := first.Embed.Embed()
	if got.Title != strings.Repeat("a", 255) {
		t.Errorf("Expected trailing space dropped from title, got len %d", len(got.Title))
	}
	if got.Fields[0].Value != strings.Repeat("v", 1023) {
		t.Errorf("Expected trailing space dropped from value, got len %d", len(got.Fields[0].Value))
	}
	if !strings.HasPrefix(title, got.Title) || !strings.HasPrefix(value, got.Fields[0].Value) {
		t.Error("Truncated text must be a prefix of the input")
	}

	again := v.Validate(got)
	if len(again.Warnings) != 0 {
		t.Errorf("Re-validating must not produce warnings, got %v", again.Warnings)
	}
	second := again.Embed.Embed()
	if second.Title != got.Title || second.Fields[0].Value != got.Fields[0].Value {
		t.Error("Validate must be idempotent when a cut lands on whitespace")
	}
}

func TestTruncateKeepsGraphemes(t *testing.T) {
	// family emoji: 7 code points, one grapheme cluster
	family := "\U0001F468\u200d\U0001F469\u200d\U0001F467\u200d\U0001F466"
	s := "ab" + family

	got, cut := Truncate(s, 5)
	if !cut {
		t.Fatal("Expected truncation")
	}
	if got != "ab" {
		t.Errorf("Expected cluster to be dropped whole, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Error("Truncation produced invalid UTF-8")
	}

	got, cut = Truncate("héllo", 10)
	if cut || got != "héllo" {
		t.Errorf("Short input must be unchanged, got %q", got)
	}
}

func TestValidateInputSchemas(t *testing.T) {
	v := NewValidator()

	ok := v.ValidateInput(SchemaWebhookSettings, map[string]interface{}{
		"url":      "https://discord.com/api/webhooks/1/x",
		"username": "Bot",
	})
	if !ok.Valid {
		t.Errorf("Expected settings to validate, got %v", ok.Errors)
	}

	bad := v.ValidateInput(SchemaWebhookSettings, map[string]interface{}{
		"url":        "discord.com",
		"username":   strings.Repeat("n", 81),
		"avatar_url": "ftp://x",
	})
	if bad.Valid || len(bad.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %v", bad.Errors)
	}

	missing := v.ValidateInput(SchemaTemplate, map[string]interface{}{"label": ""})
	if missing.Valid {
		t.Error("Expected empty label to be rejected")
	}

	unknown := v.ValidateInput("nope", nil)
	if unknown.Valid {
		t.Error("Expected unknown schema to fail")
	}
}

func TestAutoTimestamp(t *testing.T) {
	v := NewValidator()
	e := &models.Embed{Title: "t", Timestamp: models.TimestampAuto}

	saved := v.SanitizeForSave(e).Embed.Embed()
	if saved.Timestamp != models.TimestampAuto {
		t.Errorf("Save path should keep the auto marker, got %q", saved.Timestamp)
	}

	sent := v.Validate(e).Embed.Embed()
	if _, err := time.Parse(time.RFC3339, sent.Timestamp); err != nil {
		t.Errorf("Send path should resolve the auto marker, got %q", sent.Timestamp)
	}
}

func TestValidateInputErrorOrderIsStable(t *testing.T) {
	v := NewValidator()
	data := map[string]interface{}{
		"url":        "not a url",
		"username":   strings.Repeat("u", 100),
		"avatar_url": "ftp://example.com/a.png",
	}

	for i := 0; i < 20; i++ {
		result := v.ValidateInput(SchemaWebhookSettings, data)
		if result.Valid || len(result.Errors) != 3 {
			t.Fatalf("Expected 3 errors, got %v", result.Errors)
		}
		got := []string{result.Errors[0].Field, result.Errors[1].Field, result.Errors[2].Field}
		want := []string{"avatar_url", "url", "username"}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("Run %d: expected error order %v, got %v", i, want, got)
			}
		}
	}
}
