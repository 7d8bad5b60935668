// Package wire converts between the embed model and the JSON document a
// webhook endpoint accepts.
package wire

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
	"github.com/dpshade/pocket-embed/internal/validation"
)

// Document is the request body posted to a webhook
type Document struct {
	Embeds    []Embed `json:"embeds"`
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`

	sendable bool
}

// Embed is the platform shape of one embed. Key order follows the platform
// documentation and is relied on by the source renderers.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url,omitempty"`
	Color       *int    `json:"color,omitempty"`
	Author      *Author `json:"author,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
	Thumbnail   *Media  `json:"thumbnail,omitempty"`
	Image       *Media  `json:"image,omitempty"`
	Fields      []Field `json:"fields"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Author struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type Footer struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

type Media struct {
	URL string `json:"url"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Overrides replace the webhook's default profile for one message
type Overrides struct {
	Username  string
	AvatarURL string
}

// Skipped records input the lenient reader could not use
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (s Skipped) String() string {
	return fmt.Sprintf("%s: %s", s.Path, s.Reason)
}

// ToWire builds the platform document for a sanitized embed
func ToWire(s *validation.Sanitized) *Document {
	e := s.Embed()
	out := Embed{
		Title:       e.Title,
		Description: e.Description,
		URL:         e.URL,
		Color:       e.Color,
		Fields:      []Field{},
		Timestamp:   e.Timestamp,
	}
	if e.Author.Name != "" {
		out.Author = &Author{Name: e.Author.Name, URL: e.Author.URL, IconURL: e.Author.IconURL}
	}
	if e.Footer.Text != "" {
		out.Footer = &Footer{Text: e.Footer.Text, IconURL: e.Footer.IconURL}
	}
	if e.ThumbnailURL != "" {
		out.Thumbnail = &Media{URL: e.ThumbnailURL}
	}
	if e.ImageURL != "" {
		out.Image = &Media{URL: e.ImageURL}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}

	return &Document{Embeds: []Embed{out}, sendable: s.Sendable()}
}

// Sendable reports whether the document was built from a strictly validated embed
func (d *Document) Sendable() bool {
	return d.sendable
}

// WithOverrides returns a copy of d carrying the profile overrides. The
// username is cut to the platform limit; an avatar that is not an http(s)
// URL is left out.
func (d *Document) WithOverrides(o Overrides) *Document {
	cp := *d
	cp.Embeds = append([]Embed(nil), d.Embeds...)
	cp.Username, _ = validation.Truncate(strings.TrimSpace(o.Username), models.MaxUsername)
	cp.AvatarURL = ""
	if avatar := strings.TrimSpace(o.AvatarURL); validation.IsValidURL(avatar) {
		cp.AvatarURL = avatar
	}
	return &cp
}

// Marshal encodes the document with two-space indentation
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to encode webhook document")
	}
	return data, nil
}

// FromWire reads a webhook document or a bare embed object. Unknown keys are
// ignored and malformed entries are skipped and reported. Only input that is
// not a JSON object is an error.
func FromWire(data []byte) (*models.Embed, []Skipped, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &root); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "input is not a JSON object")
	}

	r := &reader{}
	obj := root
	prefix := ""
	if raw, ok := root["embeds"]; ok {
		var embeds []json.RawMessage
		if err := json.Unmarshal(raw, &embeds); err != nil || len(embeds) == 0 {
			r.skip("embeds", "expected a non-empty array")
			return &models.Embed{Fields: []models.Field{}}, r.skipped, nil
		}
		if len(embeds) > 1 {
			r.skip("embeds", fmt.Sprintf("%d extra embeds ignored", len(embeds)-1))
		}
		obj = nil
		if err := json.Unmarshal(embeds[0], &obj); err != nil {
			r.skip("embeds[0]", "expected an object")
			return &models.Embed{Fields: []models.Field{}}, r.skipped, nil
		}
		prefix = "embeds[0]."
	}

	return r.embed(prefix, obj), r.skipped, nil
}

type reader struct {
	skipped []Skipped
}

func (r *reader) skip(path, reason string) {
	r.skipped = append(r.skipped, Skipped{Path: path, Reason: reason})
}

func (r *reader) str(obj map[string]json.RawMessage, key, path string) string {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		r.skip(path+key, "expected a string")
		return ""
	}
	return s
}

func (r *reader) object(obj map[string]json.RawMessage, key, path string) map[string]json.RawMessage {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return nil
	}
	var sub map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sub); err != nil {
		r.skip(path+key, "expected an object")
		return nil
	}
	return sub
}

func (r *reader) color(obj map[string]json.RawMessage, path string) *int {
	raw, ok := obj["color"]
	if !ok || isNull(raw) {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if c, err := models.ParseColor(s); err == nil {
			return &c
		}
	}
	r.skip(path+"color", "expected an integer or hex color")
	return nil
}

func (r *reader) embed(path string, obj map[string]json.RawMessage) *models.Embed {
	e := &models.Embed{
		Title:       r.str(obj, "title", path),
		Description: r.str(obj, "description", path),
		URL:         r.str(obj, "url", path),
		Color:       r.color(obj, path),
		Timestamp:   r.str(obj, "timestamp", path),
		Fields:      []models.Field{},
	}

	if author := r.object(obj, "author", path); author != nil {
		p := path + "author."
		e.Author = models.Author{
			Name:    r.str(author, "name", p),
			URL:     r.str(author, "url", p),
			IconURL: r.str(author, "icon_url", p),
		}
	}
	if footer := r.object(obj, "footer", path); footer != nil {
		p := path + "footer."
		e.Footer = models.Footer{
			Text:    r.str(footer, "text", p),
			IconURL: r.str(footer, "icon_url", p),
		}
	}
	if thumb := r.object(obj, "thumbnail", path); thumb != nil {
		e.ThumbnailURL = r.str(thumb, "url", path+"thumbnail.")
	}
	if image := r.object(obj, "image", path); image != nil {
		e.ImageURL = r.str(image, "url", path+"image.")
	}

	// flat keys written by earlier versions of the template file
	if e.ThumbnailURL == "" {
		e.ThumbnailURL = r.str(obj, "thumbnail_url", path)
	}
	if e.ImageURL == "" {
		e.ImageURL = r.str(obj, "image_url", path)
	}

	raw, ok := obj["fields"]
	if !ok || isNull(raw) {
		return e
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		r.skip(path+"fields", "expected an array")
		return e
	}
	for i, entry := range entries {
		p := fmt.Sprintf("%sfields[%d]", path, i)
		var f struct {
			Name   *string `json:"name"`
			Value  *string `json:"value"`
			Inline *bool   `json:"inline"`
		}
		if err := json.Unmarshal(entry, &f); err != nil {
			r.skip(p, "malformed field")
			continue
		}
		if f.Name == nil || f.Value == nil {
			r.skip(p, "field needs a name and a value")
			continue
		}
		e.Fields = append(e.Fields, models.Field{Name: *f.Name, Value: *f.Value, Inline: f.Inline != nil && *f.Inline})
	}
	return e
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// SkippedError reports skipped entries as a single PARSE_SKIPPED error, or nil
func SkippedError(skipped []Skipped) *errors.AppError {
	if len(skipped) == 0 {
		return nil
	}
	parts := make([]string, len(skipped))
	for i, s := range skipped {
		parts[i] = s.String()
	}
	return errors.NewAppError(errors.ErrCodeParseSkipped, fmt.Sprintf("%d entries skipped while reading embed", len(skipped))).
		WithDetails(strings.Join(parts, "; ")).
		WithContext("skipped", skipped)
}
