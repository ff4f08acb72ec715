// Package sanitizer cleans profile data received from OAuth providers before
// it is stored.
package sanitizer

import (
	"html"
	"net/url"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

// Text strips all markup from s and returns trimmed plain text.
// Entities are decoded so "O&#39;Brien" round-trips to "O'Brien".
func Text(s string) string {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// URL returns s normalized when it is an absolute http or https URL,
// otherwise an empty string.
func URL(s string) string {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String()
	}
	return ""
}
