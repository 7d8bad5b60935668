package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dpshade/pocket-embed/internal/errors"
)

// DefaultColor is the accent color a fresh embed starts with.
const DefaultColor = 0x5865F2

// TimestampAuto as a timestamp value is replaced with the current time when
// the embed is validated for sending.
const TimestampAuto = "auto"

// Embed is the editable representation of one embed. It may hold invalid data
// while being edited; validation is a separate, explicit pass.
type Embed struct {
	Title        string  `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string  `json:"description,omitempty" yaml:"description,omitempty"`
	URL          string  `json:"url,omitempty" yaml:"url,omitempty"`
	Color        *int    `json:"color,omitempty" yaml:"color,omitempty"`
	Author       Author  `json:"author" yaml:"author,omitempty"`
	Footer       Footer  `json:"footer" yaml:"footer,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
	ImageURL     string  `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Fields       []Field `json:"fields" yaml:"fields,omitempty"`
	Timestamp    string  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Author is the author block shown above the title
type Author struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty" yaml:"icon_url,omitempty"`
}

// Footer is the footer block
type Footer struct {
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty" yaml:"icon_url,omitempty"`
}

// Field is a named key/value pair, optionally rendered inline
type Field struct {
	Name   string `json:"name" yaml:"name"`
	Value  string `json:"value" yaml:"value"`
	Inline bool   `json:"inline" yaml:"inline"`
}

// NewEmbed returns an empty embed with the default accent color
func NewEmbed() *Embed {
	return &Embed{Color: IntPtr(DefaultColor), Fields: []Field{}}
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}

// SetAttribute assigns a raw value to a named attribute. An empty value clears
// the attribute. Values are stored as given; trimming and truncation happen
// during validation.
func (e *Embed) SetAttribute(name, value string) error {
	switch name {
	case AttrTitle:
		e.Title = value
	case AttrDescription:
		e.Description = value
	case AttrURL:
		e.URL = value
	case AttrColor:
		if strings.TrimSpace(value) == "" {
			e.Color = nil
			return nil
		}
		c, err := ParseColor(value)
		if err != nil {
			return err
		}
		e.Color = &c
	case AttrAuthorName:
		e.Author.Name = value
	case AttrAuthorURL:
		e.Author.URL = value
	case AttrAuthorIconURL:
		e.Author.IconURL = value
	case AttrFooterText:
		e.Footer.Text = value
	case AttrFooterIconURL:
		e.Footer.IconURL = value
	case AttrThumbnailURL:
		e.ThumbnailURL = value
	case AttrImageURL:
		e.ImageURL = value
	case AttrTimestamp:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "now":
			value = time.Now().UTC().Format(time.RFC3339)
		case TimestampAuto:
			value = TimestampAuto
		}
		e.Timestamp = value
	default:
		return errors.InvalidInputError(fmt.Sprintf("unknown attribute '%s'", name))
	}
	return nil
}

// AddField appends a field. At MaxFields the call fails with CAPACITY_EXCEEDED
// and the embed is left unchanged.
func (e *Embed) AddField(name, value string, inline bool) error {
	if len(e.Fields) >= MaxFields {
		return errors.CapacityExceededError("fields", MaxFields)
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value, Inline: inline})
	return nil
}

// UpdateField replaces the field at index
func (e *Embed) UpdateField(index int, f Field) error {
	if err := e.checkIndex(index); err != nil {
		return err
	}
	e.Fields[index] = f
	return nil
}

// MoveField moves the field at from so that it ends up at index to
func (e *Embed) MoveField(from, to int) error {
	if err := e.checkIndex(from); err != nil {
		return err
	}
	if err := e.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	f := e.Fields[from]
	fields := append(e.Fields[:from:from], e.Fields[from+1:]...)
	fields = append(fields[:to], append([]Field{f}, fields[to:]...)...)
	e.Fields = fields
	return nil
}

// RemoveField deletes the field at index
func (e *Embed) RemoveField(index int) error {
	if err := e.checkIndex(index); err != nil {
		return err
	}
	e.Fields = append(e.Fields[:index:index], e.Fields[index+1:]...)
	return nil
}

func (e *Embed) checkIndex(i int) error {
	if i < 0 || i >= len(e.Fields) {
		return errors.InvalidInputError(fmt.Sprintf("field index %d out of range (have %d fields)", i+1, len(e.Fields))).
			WithContext("index", i)
	}
	return nil
}

// Clone returns a deep copy
func (e *Embed) Clone() *Embed {
	c := *e
	if e.Color != nil {
		c.Color = IntPtr(*e.Color)
	}
	c.Fields = make([]Field, len(e.Fields))
	copy(c.Fields, e.Fields)
	return &c
}

// HasContent reports whether the embed carries anything worth sending. Color,
// footer, url and timestamp alone do not count.
func (e *Embed) HasContent() bool {
	return e.Title != "" ||
		e.Description != "" ||
		len(e.Fields) > 0 ||
		e.ImageURL != "" ||
		e.ThumbnailURL != "" ||
		e.Author.Name != ""
}

// ParseColor accepts "#RRGGBB", "0xRRGGBB", a decimal integer, or bare hex
// digits that do not form a decimal number. Range is not checked here.
func ParseColor(s string) (int, error) {
	s = strings.TrimSpace(s)
	var (
		n   int64
		err error
	)
	switch {
	case strings.HasPrefix(s, "#"):
		n, err = strconv.ParseInt(s[1:], 16, 64)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		n, err = strconv.ParseInt(s[2:], 16, 64)
	default:
		n, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			n, err = strconv.ParseInt(s, 16, 64)
		}
	}
	if err != nil {
		return 0, errors.InvalidInputError(fmt.Sprintf("invalid color '%s'", s))
	}
	return int(n), nil
}

// FormatColor renders a color as #RRGGBB
func FormatColor(c int) string {
	return fmt.Sprintf("#%06X", c)
}
