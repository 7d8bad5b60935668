// Package validation turns a freely edited embed into a payload the platform
// accepts.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the gate between the editable model and everything that leaves
// the process (webhook submission, template storage, exports). Nothing downstream
// re-checks limits; it relies on the Sanitized value produced here.
//
// KEY RESPONSIBILITIES:
// - Repair what can be repaired: trim text, truncate to platform limits, drop
//   invalid URLs, drop empty fields, clamp colors
// - Record every repair as a non-fatal warning so callers can show diagnostics
// - Fail the send path only for EMPTY_EMBED and CAPACITY_EXCEEDED
// - Validate small flat inputs (webhook settings, template labels) through schemas
//
// VALIDATION FLOW:
// 1. Text attributes are trimmed
// 2. Populated URL attributes failing IsValidURL are dropped (warning INVALID_URL)
// 3. Text over its limit is cut to the limit (warning TRUNCATED)
// 4. Fields with an empty name or value after trimming are dropped
// 5. More than MaxFields fields: send fails, save keeps the first MaxFields
// 6. Nothing left to show: send fails with EMPTY_EMBED, save accepts the draft
//
// INTEGRATION POINTS:
// - internal/wire/wire.go: ToWire only accepts a *Sanitized
// - internal/webhook/submitter.go: refuses documents not built from Validate()
// - internal/service/service.go: SaveTemplate uses SanitizeForSave, Send uses Validate
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
)

// Violation codes
const (
	CodeEmptyEmbed        = "EMPTY_EMBED"
	CodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	CodeInvalidURL        = "INVALID_URL"
	CodeTruncated         = "TRUNCATED"
	CodeEmptyFieldDropped = "EMPTY_FIELD_DROPPED"
	CodeTooManyFields     = "TOO_MANY_FIELDS"
	CodeInvalidTimestamp  = "INVALID_TIMESTAMP"
	CodeColorClamped      = "COLOR_CLAMPED"
	CodeMissingParent     = "MISSING_PARENT"
)

// ValidationResult represents the result of validating an embed
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Errors   []ValidationError   `json:"errors,omitempty"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
	Embed    *Sanitized          `json:"-"`

	// Data holds converted values when validating against a Schema
	Data map[string]interface{} `json:"data,omitempty"`
}

// ValidationError represents a fatal violation
type ValidationError struct {
	Field   string      `json:"field"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationWarning represents a repaired, non-fatal violation
type ValidationWarning struct {
	Field   string      `json:"field"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Sanitized is an embed that satisfies every structural limit. Only this
// package constructs it.
type Sanitized struct {
	embed    models.Embed
	sendable bool
}

// Embed returns a copy of the sanitized embed
func (s *Sanitized) Embed() *models.Embed {
	return s.embed.Clone()
}

// Sendable reports whether s came from the strict send path
func (s *Sanitized) Sendable() bool {
	return s.sendable
}

type path int

const (
	sendPath path = iota
	savePath
)

// Validator provides embed sanitizing plus schema validation of flat inputs
type Validator struct {
	schemas map[string]*Schema
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := &Validator{
		schemas: make(map[string]*Schema),
	}

	v.registerBuiltinSchemas()

	return v
}

// Validate is the strict path used before sending
func (v *Validator) Validate(e *models.Embed) *ValidationResult {
	return v.sanitize(e, sendPath)
}

// SanitizeForSave is the lenient path used before saving a template or draft.
// The result is always Valid.
func (v *Validator) SanitizeForSave(e *models.Embed) *ValidationResult {
	return v.sanitize(e, savePath)
}

func (v *Validator) sanitize(in *models.Embed, p path) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}
	if in == nil {
		in = &models.Embed{}
	}

	out := models.Embed{
		Title:       result.text(models.AttrTitle, in.Title, models.MaxTitle),
		Description: result.text(models.AttrDescription, in.Description, models.MaxDescription),
		URL:         result.url(models.AttrURL, in.URL),
		Author: models.Author{
			Name:    result.text(models.AttrAuthorName, in.Author.Name, models.MaxAuthorName),
			URL:     result.url(models.AttrAuthorURL, in.Author.URL),
			IconURL: result.url(models.AttrAuthorIconURL, in.Author.IconURL),
		},
		Footer: models.Footer{
			Text:    result.text(models.AttrFooterText, in.Footer.Text, models.MaxFooterText),
			IconURL: result.url(models.AttrFooterIconURL, in.Footer.IconURL),
		},
		ThumbnailURL: result.url(models.AttrThumbnailURL, in.ThumbnailURL),
		ImageURL:     result.url(models.AttrImageURL, in.ImageURL),
		Timestamp:    result.timestamp(in.Timestamp, p),
		Fields:       []models.Field{},
	}

	if in.Color != nil {
		c := *in.Color
		switch {
		case c < 0:
			result.warn(models.AttrColor, CodeColorClamped, "color below 0 clamped to 0", c)
			c = 0
		case c > models.MaxColor:
			result.warn(models.AttrColor, CodeColorClamped, "color above 0xFFFFFF clamped", c)
			c = models.MaxColor
		}
		out.Color = models.IntPtr(c)
	}

	// author and footer sub-attributes only render under a name/text
	if out.Author.Name == "" {
		if out.Author.URL != "" {
			result.warn(models.AttrAuthorURL, CodeMissingParent, "author url dropped: author has no name", out.Author.URL)
		}
		if out.Author.IconURL != "" {
			result.warn(models.AttrAuthorIconURL, CodeMissingParent, "author icon dropped: author has no name", out.Author.IconURL)
		}
		out.Author = models.Author{}
	}
	if out.Footer.Text == "" && out.Footer.IconURL != "" {
		result.warn(models.AttrFooterIconURL, CodeMissingParent, "footer icon dropped: footer has no text", out.Footer.IconURL)
		out.Footer.IconURL = ""
	}

	for i, f := range in.Fields {
		field := fmt.Sprintf("fields[%d]", i)
		name := strings.TrimSpace(f.Name)
		value := strings.TrimSpace(f.Value)
		if name == "" || value == "" {
			result.warn(field, CodeEmptyFieldDropped, fmt.Sprintf("field %d dropped: name and value are required", i+1), nil)
			continue
		}
		out.Fields = append(out.Fields, models.Field{
			Name:   result.truncate(field+".name", name, models.MaxFieldName),
			Value:  result.truncate(field+".value", value, models.MaxFieldValue),
			Inline: f.Inline,
		})
	}

	if len(out.Fields) > models.MaxFields {
		msg := fmt.Sprintf("%d fields, at most %d allowed", len(out.Fields), models.MaxFields)
		if p == sendPath {
			result.fail(models.AttrFields, CodeCapacityExceeded, msg, len(out.Fields))
		} else {
			result.warn(models.AttrFields, CodeTooManyFields, msg+"; extra fields dropped", len(out.Fields))
			out.Fields = out.Fields[:models.MaxFields]
		}
	}

	if p == sendPath && !out.HasContent() {
		result.fail("embed", CodeEmptyEmbed, "embed needs a title, description, field, image, thumbnail or author", nil)
	}

	if result.Valid {
		result.Embed = &Sanitized{embed: out, sendable: p == sendPath}
	}
	return result
}

func (r *ValidationResult) fail(field, code, message string, value interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Code: code, Message: message, Value: value})
}

func (r *ValidationResult) warn(field, code, message string, value interface{}) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Code: code, Message: message, Value: value})
}

func (r *ValidationResult) text(field, s string, max int) string {
	return r.truncate(field, strings.TrimSpace(s), max)
}

func (r *ValidationResult) truncate(field, s string, max int) string {
	cut, ok := Truncate(s, max)
	if ok {
		// a cut landing on whitespace would be trimmed by the next pass
		cut = strings.TrimRightFunc(cut, unicode.IsSpace)
		r.warn(field, CodeTruncated, fmt.Sprintf("%s truncated to %d characters", field, max), utf8.RuneCountInString(s))
	}
	return cut
}

func (r *ValidationResult) url(field, s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !IsValidURL(s) {
		r.warn(field, CodeInvalidURL, fmt.Sprintf("%s dropped: not an http(s) URL", field), s)
		return ""
	}
	return s
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (r *ValidationResult) timestamp(s string, p path) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if s == models.TimestampAuto {
		if p == savePath {
			return s
		}
		return time.Now().UTC().Format(time.RFC3339)
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return s
	}
	for _, layout := range timestampLayouts[1:] {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339Nano)
		}
	}
	r.warn(models.AttrTimestamp, CodeInvalidTimestamp, "timestamp dropped: not ISO-8601", s)
	return ""
}

// Truncate cuts s to at most max code points without splitting a grapheme
// cluster. The result is always a prefix of s. ok reports whether anything was cut.
func Truncate(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	g := uniseg.NewGraphemes(s)
	n, end := 0, 0
	for g.Next() {
		size := len(g.Runes())
		if n+size > max {
			break
		}
		n += size
		_, end = g.Positions()
	}
	return s[:end], true
}

// ToAppError converts a failed result to an AppError
func (r *ValidationResult) ToAppError() *errors.AppError {
	if r.Valid {
		return nil
	}

	if len(r.Errors) == 0 {
		return errors.ValidationError("Validation failed")
	}

	first := r.Errors[0]
	var appErr *errors.AppError
	switch first.Code {
	case CodeEmptyEmbed:
		appErr = errors.EmptyEmbedError()
	case CodeCapacityExceeded:
		appErr = errors.CapacityExceededError("fields", models.MaxFields)
	default:
		appErr = errors.ValidationError(first.Message)
	}

	var details []string
	for _, validationErr := range r.Errors {
		details = append(details, fmt.Sprintf("%s: %s", validationErr.Field, validationErr.Message))
	}
	appErr.WithDetails(strings.Join(details, "; "))

	appErr.WithContext("validation_errors", r.Errors)
	if len(r.Warnings) > 0 {
		appErr.WithContext("validation_warnings", r.Warnings)
	}

	return appErr
}
