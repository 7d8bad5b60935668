package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/pocket-embed/internal/models"
	"github.com/dpshade/pocket-embed/internal/validation"
)

func sampleEmbed() *models.Embed {
	return &models.Embed{
		Title:        "Server Status",
		Description:  "All systems \"nominal\"\nline two",
		URL:          "https://status.example.com",
		Color:        models.IntPtr(0xFAA61A),
		Author:       models.Author{Name: "Ops", IconURL: "https://example.com/ops.png"},
		Footer:       models.Footer{Text: "Last updated"},
		ThumbnailURL: "https://example.com/t.png",
		Fields: []models.Field{
			{Name: "API", Value: "up", Inline: true},
			{Name: "DB", Value: "degraded"},
		},
		Timestamp: "2024-03-01T10:00:00Z",
	}
}

func TestRoundTrip(t *testing.T) {
	v := validation.NewValidator()
	first := v.Validate(sampleEmbed())
	require.True(t, first.Valid)

	data, err := ToWire(first.Embed).Marshal()
	require.NoError(t, err)

	back, skipped, err := FromWire(data)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	second := v.Validate(back)
	require.True(t, second.Valid)
	assert.Equal(t, first.Embed.Embed(), second.Embed.Embed())
}

func TestRoundTripAfterCutOnWhitespace(t *testing.T) {
	v := validation.NewValidator()
	first := v.Validate(&models.Embed{
		Title:  strings.Repeat("a", 255) + " b",
		Fields: []models.Field{{Name: "n", Value: strings.Repeat("v", 1023) + " tail"}},
	})
	require.True(t, first.Valid)

	data, err := ToWire(first.Embed).Marshal()
	require.NoError(t, err)
	back, skipped, err := FromWire(data)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	second := v.Validate(back)
	require.True(t, second.Valid)
	assert.Empty(t, second.Warnings)
	assert.Equal(t, first.Embed.Embed(), second.Embed.Embed())
}

func TestMarshalShape(t *testing.T) {
	v := validation.NewValidator()
	doc := ToWire(v.Validate(&models.Embed{Title: "hi"}).Embed)
	data, err := doc.Marshal()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"embeds": [`)
	assert.Contains(t, out, `"title": "hi"`)
	assert.Contains(t, out, `"fields": []`)
	assert.NotContains(t, out, `"author"`)
	assert.NotContains(t, out, `"username"`)
	assert.True(t, doc.Sendable())
}

func TestSaveSanitizedIsNotSendable(t *testing.T) {
	v := validation.NewValidator()
	doc := ToWire(v.SanitizeForSave(&models.Embed{Title: "draft"}).Embed)
	assert.False(t, doc.Sendable())
}

func TestWithOverrides(t *testing.T) {
	v := validation.NewValidator()
	doc := ToWire(v.Validate(&models.Embed{Title: "hi"}).Embed)

	withName := doc.WithOverrides(Overrides{Username: strings.Repeat("n", 100), AvatarURL: "ftp://bad"})
	assert.Len(t, []rune(withName.Username), models.MaxUsername)
	assert.Empty(t, withName.AvatarURL)
	assert.Empty(t, doc.Username, "original document must be unchanged")
	assert.True(t, withName.Sendable())

	withAvatar := doc.WithOverrides(Overrides{AvatarURL: "https://example.com/a.png"})
	assert.Equal(t, "https://example.com/a.png", withAvatar.AvatarURL)
}

func TestFromWireLenient(t *testing.T) {
	input := `{
		"title": "Bare",
		"color": "#3BA55C",
		"unknown": {"nested": true},
		"author": "not an object",
		"image_url": "https://example.com/i.png",
		"fields": [
			{"name": "ok", "value": "1", "inline": true},
			{"name": "missing value"},
			42,
			{"name": "two", "value": "2"}
		]
	}`

	e, skipped, err := FromWire([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, "Bare", e.Title)
	require.NotNil(t, e.Color)
	assert.Equal(t, 0x3BA55C, *e.Color)
	assert.Equal(t, "https://example.com/i.png", e.ImageURL)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "ok", e.Fields[0].Name)
	assert.True(t, e.Fields[0].Inline)
	assert.Equal(t, "two", e.Fields[1].Name)

	paths := make([]string, len(skipped))
	for i, s := range skipped {
		paths[i] = s.Path
	}
	assert.ElementsMatch(t, []string{"author", "fields[1]", "fields[2]"}, paths)

	appErr := SkippedError(skipped)
	require.NotNil(t, appErr)
	assert.Equal(t, "PARSE_SKIPPED", string(appErr.Code))
	assert.Nil(t, SkippedError(nil))
}

func TestFromWireDocument(t *testing.T) {
	input := `{"embeds":[{"title":"one","color":5793266},{"title":"two"}],"username":"bot"}`
	e, skipped, err := FromWire([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "one", e.Title)
	assert.Equal(t, 5793266, *e.Color)
	require.Len(t, skipped, 1)
	assert.Equal(t, "embeds", skipped[0].Path)
}

func TestFromWireRejectsNonObject(t *testing.T) {
	for _, in := range []string{"", "not json", "[1,2]", `"str"`} {
		_, _, err := FromWire([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}
