package models

// Platform limits. Lengths are counted in code points.
const (
	MaxTitle       = 256
	MaxDescription = 4096
	MaxAuthorName  = 256
	MaxFooterText  = 2048
	MaxFieldName   = 256
	MaxFieldValue  = 1024
	MaxFields      = 25
	MaxUsername    = 80

	MaxColor = 0xFFFFFF
)

// Attribute names used by the limit table, SetAttribute and validation reports.
const (
	AttrTitle         = "title"
	AttrDescription   = "description"
	AttrURL           = "url"
	AttrColor         = "color"
	AttrAuthorName    = "author.name"
	AttrAuthorURL     = "author.url"
	AttrAuthorIconURL = "author.icon_url"
	AttrFooterText    = "footer.text"
	AttrFooterIconURL = "footer.icon_url"
	AttrThumbnailURL  = "thumbnail_url"
	AttrImageURL      = "image_url"
	AttrTimestamp     = "timestamp"
	AttrFieldName     = "field.name"
	AttrFieldValue    = "field.value"
	AttrFields        = "fields"
	AttrUsername      = "username"
)

var limitTable = map[string]int{
	AttrTitle:       MaxTitle,
	AttrDescription: MaxDescription,
	AttrAuthorName:  MaxAuthorName,
	AttrFooterText:  MaxFooterText,
	AttrFieldName:   MaxFieldName,
	AttrFieldValue:  MaxFieldValue,
	AttrFields:      MaxFields,
	AttrUsername:    MaxUsername,
}

// Limit returns the maximum length (or, for "fields", count) of an attribute.
func Limit(attr string) (int, bool) {
	n, ok := limitTable[attr]
	return n, ok
}

// Limits returns a copy of the whole limit table.
func Limits() map[string]int {
	out := make(map[string]int, len(limitTable))
	for k, v := range limitTable {
		out[k] = v
	}
	return out
}
