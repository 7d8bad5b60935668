package validation

import "testing"

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1", true},
		{"https://cdn.example.com/a.png", true},
		{"ftp://x.com", false},
		{"", false},
		{"example.com", false},
		{"https://", false},
		{"https://exa mple.com", false},
		{"javascript:alert(1)", false},
		{"://bad", false},
		{"http://[::1", false},
	}

	for _, tt := range tests {
		if got := IsValidURL(tt.in); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsWebhookURL(t *testing.T) {
	if !IsWebhookURL("https://discord.com/api/webhooks/123/abc") {
		t.Error("Expected webhook path to be recognised")
	}
	if IsWebhookURL("https://example.com/hooks/123") {
		t.Error("Expected non-webhook path to be rejected")
	}
	if IsWebhookURL("not a url") {
		t.Error("Expected invalid URL to be rejected")
	}
}
