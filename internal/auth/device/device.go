// Package device turns raw User-Agent strings into display names for audit
// logs, so a login event reads "Chrome on macOS" rather than a UA blob.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent extracts a human-readable device display name from a
// User-Agent string. Returns "Browser on OS" (e.g. "Chrome on macOS").
func ParseUserAgent(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := strings.TrimSpace(ua.OSInfo().Name)
	if os == "" {
		os = strings.TrimSpace(ua.OS())
	}
	if os == "" {
		return browser
	}
	return browser + " on " + os
}
