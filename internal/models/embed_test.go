package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/dpshade/pocket-embed/internal/errors"
)

func TestAddFieldCapacity(t *testing.T) {
	e := NewEmbed()
	for i := 0; i < MaxFields; i++ {
		if err := e.AddField(fmt.Sprintf("name %d", i), "value", false); err != nil {
			t.Fatalf("AddField %d failed: %v", i, err)
		}
	}

	before := e.Clone()
	err := e.AddField("one too many", "value", true)
	if !errors.IsCode(err, errors.ErrCodeCapacityExceeded) {
		t.Fatalf("Expected CAPACITY_EXCEEDED, got %v", err)
	}
	if len(e.Fields) != MaxFields {
		t.Errorf("Expected %d fields, got %d", MaxFields, len(e.Fields))
	}
	for i := range e.Fields {
		if e.Fields[i] != before.Fields[i] {
			t.Errorf("Field %d changed after rejected add", i)
		}
	}
}

func TestFieldCountStaysInRange(t *testing.T) {
	e := NewEmbed()
	// add/remove interleaving; count must stay within [0, MaxFields]
	for step := 0; step < 200; step++ {
		if step%7 == 3 && len(e.Fields) > 0 {
			if err := e.RemoveField(len(e.Fields) / 2); err != nil {
				t.Fatalf("RemoveField failed: %v", err)
			}
		} else {
			_ = e.AddField("n", "v", false)
		}
		if len(e.Fields) < 0 || len(e.Fields) > MaxFields {
			t.Fatalf("field count %d out of range at step %d", len(e.Fields), step)
		}
	}
}

func TestMoveField(t *testing.T) {
	tests := []struct {
		from, to int
		want     string
	}{
		{0, 2, "bca"},
		{2, 0, "cab"},
		{1, 1, "abc"},
		{0, 1, "bac"},
		{2, 1, "acb"},
	}

	for _, tt := range tests {
		e := NewEmbed()
		for _, n := range []string{"a", "b", "c"} {
			_ = e.AddField(n, n, false)
		}
		if err := e.MoveField(tt.from, tt.to); err != nil {
			t.Fatalf("MoveField(%d, %d) failed: %v", tt.from, tt.to, err)
		}
		got := ""
		for _, f := range e.Fields {
			got += f.Name
		}
		if got != tt.want {
			t.Errorf("MoveField(%d, %d): expected %s, got %s", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestMoveFieldOutOfRange(t *testing.T) {
	e := NewEmbed()
	_ = e.AddField("a", "a", false)

	if err := e.MoveField(0, 3); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Expected INVALID_INPUT, got %v", err)
	}
	if err := e.RemoveField(-1); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Expected INVALID_INPUT, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	e := NewEmbed()
	e.Title = "original"
	_ = e.AddField("a", "1", false)

	c := e.Clone()
	c.Title = "copy"
	*c.Color = 0
	c.Fields[0].Value = "changed"
	_ = c.AddField("b", "2", true)

	if e.Title != "original" {
		t.Error("Clone shares title")
	}
	if *e.Color != DefaultColor {
		t.Error("Clone shares color pointer")
	}
	if e.Fields[0].Value != "1" || len(e.Fields) != 1 {
		t.Error("Clone shares field storage")
	}
}

func TestSetAttribute(t *testing.T) {
	e := NewEmbed()

	if err := e.SetAttribute(AttrColor, "#3BA55C"); err != nil {
		t.Fatal(err)
	}
	if *e.Color != 0x3BA55C {
		t.Errorf("Expected color 0x3BA55C, got %#x", *e.Color)
	}

	if err := e.SetAttribute(AttrAuthorName, "Admin Team"); err != nil {
		t.Fatal(err)
	}
	if e.Author.Name != "Admin Team" {
		t.Errorf("Expected author name to be set, got %q", e.Author.Name)
	}

	if err := e.SetAttribute(AttrTimestamp, "now"); err != nil {
		t.Fatal(err)
	}
	if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
		t.Errorf("Expected RFC 3339 timestamp, got %q", e.Timestamp)
	}

	if err := e.SetAttribute(AttrColor, ""); err != nil {
		t.Fatal(err)
	}
	if e.Color != nil {
		t.Error("Expected empty color to clear it")
	}

	if err := e.SetAttribute("banner", "x"); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Expected INVALID_INPUT for unknown attribute, got %v", err)
	}
	if err := e.SetAttribute(AttrColor, "not-a-color"); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Expected INVALID_INPUT for bad color, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"#5865F2", 0x5865F2},
		{"0x5865f2", 0x5865F2},
		{"5793266", 5793266},
		{"FAA61A", 0xFAA61A},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
	if FormatColor(0x5865F2) != "#5865F2" {
		t.Errorf("FormatColor mismatch: %s", FormatColor(0x5865F2))
	}
}

func TestHasContent(t *testing.T) {
	e := &Embed{Color: IntPtr(0x5865F2), Footer: Footer{Text: "footer"}}
	if e.HasContent() {
		t.Error("Color and footer alone should not count as content")
	}
	e.Author.Name = "someone"
	if !e.HasContent() {
		t.Error("Author name should count as content")
	}
}

func TestLimitTable(t *testing.T) {
	want := map[string]int{
		AttrTitle:       256,
		AttrDescription: 4096,
		AttrAuthorName:  256,
		AttrFooterText:  2048,
		AttrFieldName:   256,
		AttrFieldValue:  1024,
		AttrFields:      25,
	}
	for attr, n := range want {
		got, ok := Limit(attr)
		if !ok || got != n {
			t.Errorf("Limit(%s) = %d, %v; want %d", attr, got, ok, n)
		}
	}

	table := Limits()
	table[AttrTitle] = 1
	if n, _ := Limit(AttrTitle); n != MaxTitle {
		t.Error("Limits() must return a copy")
	}
}
