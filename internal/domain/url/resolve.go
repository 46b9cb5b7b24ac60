package url

// Resolver guesses whether free-form input is navigable. It returns the
// resolved URL and true when the input can be treated as an address, or
// ("", false) for plain search queries. The host application injects its
// own heuristic; DefaultResolver is a reasonable standalone one.
type Resolver func(text string) (string, bool)

// DefaultResolver treats input with an explicit http(s) scheme, or a
// dotted, space-free host with a real TLD, as navigable.
func DefaultResolver(text string) (string, bool) {
	if !LooksLikeURL(text) {
		return "", false
	}
	normalized := Normalize(text)
	host := Host(normalized)
	if host == "" || !HostHasTLD(host) {
		return "", false
	}
	return normalized, true
}
