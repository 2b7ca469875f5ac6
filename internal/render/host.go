package render

import (
	"net/url"
	"strings"
)

// Host returns the host part of a story URL without "www.", or "" when
// there is none.
func Host(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}
