package validation

import (
	"net/url"
	"strings"
)

// IsValidURL reports whether s is an absolute http or https URL with a host.
// It never panics and treats any parse failure as invalid.
func IsValidURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}

// IsWebhookURL reports whether s looks like a platform webhook endpoint. Only
// used for warnings; any valid URL may be submitted to.
func IsWebhookURL(s string) bool {
	if !IsValidURL(s) {
		return false
	}
	u, _ := url.Parse(s)
	return strings.Contains(u.Path, "/api/webhooks/")
}
