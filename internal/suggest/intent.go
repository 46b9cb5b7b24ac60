package suggest

import "strings"

// Intent buckets typed input by what the user most plausibly wants.
type Intent int

const (
	// IntentURLLike input resolves as navigable; navigation dominates.
	IntentURLLike Intent = iota
	// IntentQueryLike input has spaces or no dot and doesn't resolve.
	IntentQueryLike
	// IntentAmbiguous input has a dot but doesn't resolve.
	IntentAmbiguous
)

func (i Intent) String() string {
	switch i {
	case IntentURLLike:
		return "url"
	case IntentQueryLike:
		return "query"
	case IntentAmbiguous:
		return "ambiguous"
	}
	return "unknown"
}

// ClassifyIntent buckets the query. resolved reports whether the host's
// navigability resolver produced a URL for it.
func ClassifyIntent(query string, resolved bool) Intent {
	if resolved {
		return IntentURLLike
	}
	if strings.Contains(query, " ") || !strings.Contains(query, ".") {
		return IntentQueryLike
	}
	return IntentAmbiguous
}
