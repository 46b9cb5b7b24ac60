package url

import (
	neturl "net/url"
	"strings"
)

// BuildSearchURL constructs a search-results URL from a query using the
// engine's URL template (with a "%s" placeholder).
func BuildSearchURL(template, query string) string {
	if template == "" || query == "" {
		return ""
	}
	return strings.Replace(template, "%s", neturl.QueryEscape(query), 1)
}
