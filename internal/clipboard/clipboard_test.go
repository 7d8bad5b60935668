package clipboard

import (
	"bytes"
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestClipboardError(t *testing.T) {
	err := NewClipboardError()

	if err.OS != runtime.GOOS {
		t.Errorf("Expected OS to be %s, got %s", runtime.GOOS, err.OS)
	}
	if err.Error() == "" {
		t.Error("Error message should not be empty")
	}
}

func TestCopierOrder(t *testing.T) {
	var got []string
	c := &Copier{backends: []backend{
		{name: "missing", available: func() bool { return false }, write: func(string) error { t.Error("unavailable backend used"); return nil }},
		{name: "broken", available: func() bool { return true }, write: func(string) error { got = append(got, "broken"); return errors.New("boom") }},
		{name: "works", available: func() bool { return true }, write: func(s string) error { got = append(got, "works:"+s); return nil }},
	}}

	used, err := c.Copy("hi")
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if used != "works" {
		t.Errorf("Expected 'works' backend, got %s", used)
	}
	if strings.Join(got, ",") != "broken,works:hi" {
		t.Errorf("Unexpected call order: %v", got)
	}
}

func TestCopierNoBackend(t *testing.T) {
	c := &Copier{backends: []backend{
		{name: "missing", available: func() bool { return false }},
	}}
	_, err := c.Copy("hi")
	var clipErr *ClipboardError
	if !errors.As(err, &clipErr) {
		t.Errorf("Expected ClipboardError, got %v", err)
	}

	c = &Copier{backends: []backend{
		{name: "broken", available: func() bool { return true }, write: func(string) error { return errors.New("boom") }},
	}}
	if _, err := c.Copy("hi"); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected wrapped backend error, got %v", err)
	}
}

func TestWriteOSC52(t *testing.T) {
	t.Setenv("TMUX", "")
	t.Setenv("STY", "")

	var buf bytes.Buffer
	if err := writeOSC52(&buf, "hello"); err != nil {
		t.Fatal(err)
	}
	// base64("hello") inside an OSC 52 sequence
	if !strings.Contains(buf.String(), "]52;c;aGVsbG8=") {
		t.Errorf("Unexpected OSC 52 output %q", buf.String())
	}
}

func TestGetInstallInstructions(t *testing.T) {
	instructions := GetInstallInstructions()
	if instructions == "" {
		t.Error("Install instructions should not be empty")
	}
	if runtime.GOOS == "linux" && !strings.Contains(instructions, "xclip") {
		t.Error("Linux instructions should mention xclip")
	}
}
