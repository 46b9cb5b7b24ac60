package history

import (
	"math"
	neturl "net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/muxpanel/omnibar/internal/domain/entity"
	domurl "github.com/muxpanel/omnibar/internal/domain/url"
)

// Match-tier bonuses for local history scoring. Exact matches dominate,
// prefixes beat substrings, host fields beat path and title fields.
const (
	bonusExactURL  = 1200 // full URL-sans-scheme match
	bonusExactHost = 980

	bonusPrefixHost  = 680
	bonusPrefixURL   = 560
	bonusPrefixTitle = 420
	bonusPrefixPath  = 300

	bonusContainsHost  = 210
	bonusContainsPath  = 165
	bonusContainsTitle = 145

	tokenHostExact    = 260
	tokenHostPrefix   = 170
	tokenHostContains = 110
	tokenPathPrefix   = 80
	tokenPathContains = 52
	tokenTitlePrefix  = 74
	tokenTitleContains = 48
)

// candidate caches the lowercased match fields of one entry so scoring a
// query does not re-derive them per comparison.
type candidate struct {
	entry     *entity.HistoryEntry
	host      string // lowercased hostname, "www." kept as stored
	url       string // lowercased URL without scheme
	pathQuery string // lowercased path + query
	title     string
}

func newCandidate(entry *entity.HistoryEntry) candidate {
	c := candidate{
		entry: entry,
		url:   strings.ToLower(domurl.StripScheme(entry.URL)),
		title: strings.ToLower(entry.Title),
	}
	if parsed, err := neturl.Parse(entry.URL); err == nil {
		c.host = strings.ToLower(parsed.Host)
		c.pathQuery = strings.ToLower(parsed.EscapedPath())
		if parsed.RawQuery != "" {
			c.pathQuery += "?" + strings.ToLower(parsed.RawQuery)
		}
	}
	return c
}

// tokenize splits a query on whitespace, punctuation, and symbols, and
// deduplicates the lowercased tokens.
func tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	seen := make(map[string]struct{}, len(fields))
	tokens := fields[:0]
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// qualifies reports whether the candidate should be scored at all.
// Single-character queries only match literal prefixes of host, title, or
// URL, which keeps one keystroke from surfacing noisy substring hits.
// Longer queries need either the whole query as a substring of one field
// or every token matching at least one field.
func (c candidate) qualifies(query string, tokens []string) bool {
	if len(query) == 1 {
		return strings.HasPrefix(c.host, query) ||
			strings.HasPrefix(c.title, query) ||
			strings.HasPrefix(c.url, query)
	}

	if strings.Contains(c.url, query) ||
		strings.Contains(c.host, query) ||
		strings.Contains(c.pathQuery, query) ||
		strings.Contains(c.title, query) {
		return true
	}

	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(c.url, tok) &&
			!strings.Contains(c.host, tok) &&
			!strings.Contains(c.pathQuery, tok) &&
			!strings.Contains(c.title, tok) {
			return false
		}
	}
	return true
}

// score computes the frecency-weighted relevance of the candidate for the
// query. Tokens must come from tokenize(query).
func (c candidate) score(query string, tokens []string, now time.Time) float64 {
	var s float64

	switch {
	case c.url == query:
		s += bonusExactURL
	case c.host == query:
		s += bonusExactHost
	}

	if strings.HasPrefix(c.host, query) {
		s += bonusPrefixHost
	}
	if strings.HasPrefix(c.url, query) {
		s += bonusPrefixURL
	}
	if c.title != "" && strings.HasPrefix(c.title, query) {
		s += bonusPrefixTitle
	}
	if strings.HasPrefix(c.pathQuery, query) {
		s += bonusPrefixPath
	}

	if strings.Contains(c.host, query) {
		s += bonusContainsHost
	}
	if strings.Contains(c.pathQuery, query) {
		s += bonusContainsPath
	}
	if c.title != "" && strings.Contains(c.title, query) {
		s += bonusContainsTitle
	}

	for _, tok := range tokens {
		switch {
		case c.host == tok:
			s += tokenHostExact
		case strings.HasPrefix(c.host, tok):
			s += tokenHostPrefix
		case strings.Contains(c.host, tok):
			s += tokenHostContains
		}
		switch {
		case strings.HasPrefix(c.pathQuery, tok):
			s += tokenPathPrefix
		case strings.Contains(c.pathQuery, tok):
			s += tokenPathContains
		}
		if c.title != "" {
			switch {
			case strings.HasPrefix(c.title, tok):
				s += tokenTitlePrefix
			case strings.Contains(c.title, tok):
				s += tokenTitleContains
			}
		}
	}

	s += FrecencyBoost(c.entry, now)
	return s
}

// FrecencyBoost returns the recency/frequency/typed portion of an entry's
// score. The aggregator reuses it for history suggestions so local search
// and the merged list rank history the same way.
func FrecencyBoost(entry *entity.HistoryEntry, now time.Time) float64 {
	var s float64

	ageHours := now.Sub(entry.LastVisited).Hours()
	if r := 110 - ageHours/3; r > 0 {
		s += r
	}

	s += math.Min(120, math.Log1p(float64(entry.VisitCount))*38)
	s += math.Min(190, math.Log1p(float64(entry.TypedCount))*80)

	if entry.LastTypedAt != nil {
		typedAge := now.Sub(*entry.LastTypedAt).Hours()
		if r := 85 - typedAge/4; r > 0 {
			s += r
		}
	}
	return s
}

type scoredEntry struct {
	entry *entity.HistoryEntry
	score float64
}

// rank filters and orders entries for a non-empty query.
func rank(entries []*entity.HistoryEntry, query string, now time.Time) []*entity.HistoryEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	tokens := tokenize(query)

	scored := make([]scoredEntry, 0, len(entries))
	for _, entry := range entries {
		c := newCandidate(entry)
		if !c.qualifies(query, tokens) {
			continue
		}
		scored = append(scored, scoredEntry{entry: entry, score: c.score(query, tokens, now)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.entry.LastVisited.Equal(b.entry.LastVisited) {
			return a.entry.LastVisited.After(b.entry.LastVisited)
		}
		if a.entry.VisitCount != b.entry.VisitCount {
			return a.entry.VisitCount > b.entry.VisitCount
		}
		return a.entry.URL < b.entry.URL
	})

	result := make([]*entity.HistoryEntry, len(scored))
	for i, s := range scored {
		result[i] = s.entry
	}
	return result
}
