// Package suggest merges omnibar candidates from history, open tabs, the
// navigability resolver, the search engine, and remote autocomplete into
// one deduplicated, ranked, capped suggestion list. Build is pure: same
// input, same output.
package suggest

import (
	"sort"
	"strings"
	"time"

	"github.com/muxpanel/omnibar/internal/domain/autocomplete"
	"github.com/muxpanel/omnibar/internal/domain/entity"
	domurl "github.com/muxpanel/omnibar/internal/domain/url"
	"github.com/muxpanel/omnibar/internal/history"
)

// DefaultLimit caps the merged list.
const DefaultLimit = 8

// Category base scores per intent. Under URL-like input an already-open
// tab beats navigation which dwarfs search; under query-like input search
// dominates.
var baseScores = map[Intent]map[entity.SuggestionKind]float64{
	IntentURLLike: {
		entity.SuggestionSwitchToTab: 1180,
		entity.SuggestionNavigate:    1020,
		entity.SuggestionHistory:     900,
		entity.SuggestionSearch:      140,
		entity.SuggestionRemoteQuery: 120,
	},
	IntentQueryLike: {
		entity.SuggestionSearch:      820,
		entity.SuggestionRemoteQuery: 640,
		entity.SuggestionHistory:     620,
		entity.SuggestionSwitchToTab: 560,
		entity.SuggestionNavigate:    470,
	},
	IntentAmbiguous: {
		entity.SuggestionSwitchToTab: 820,
		entity.SuggestionNavigate:    760,
		entity.SuggestionHistory:     700,
		entity.SuggestionSearch:      520,
		entity.SuggestionRemoteQuery: 420,
	},
}

// Textual match tiers against the normalized scoring form and the raw
// completion.
const (
	matchExactNorm    = 260
	matchPrefixNorm   = 220
	matchContainsNorm = 150
	matchExactRaw     = 240
	matchPrefixRaw    = 170
	matchContainsRaw  = 95

	// tabResolvedBonus applies when the query's resolved URL is exactly
	// the tab's URL.
	tabResolvedBonus = 120

	// historyPositionStep decays a small input-order bonus so the store's
	// own ranking breaks otherwise-equal rows.
	historyPositionBase = 24
	historyPositionStep = 2
)

// Per-kind priority for ties: search-flavored rows sink.
var kindPriority = map[entity.SuggestionKind]int{
	entity.SuggestionSwitchToTab: 0,
	entity.SuggestionNavigate:    1,
	entity.SuggestionHistory:     2,
	entity.SuggestionSearch:      3,
	entity.SuggestionRemoteQuery: 4,
}

// Input carries everything Build needs. History entries arrive in store
// rank order; OpenTabs is the host's synchronous surface snapshot;
// ResolvedURL is empty when the navigability resolver rejected the query.
type Input struct {
	Query         string
	Engine        string
	History       []*entity.HistoryEntry
	OpenTabs      []entity.OpenTab
	RemoteQueries []string
	ResolvedURL   string
	Limit         int
	Now           time.Time
}

type candidate struct {
	suggestion entity.Suggestion
	score      float64
	order      int
}

// Build merges and ranks the candidate sources. The result never exceeds
// the limit and never contains two rows with the same lowercased
// completion.
func Build(in Input) []entity.Suggestion {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	query := strings.TrimSpace(in.Query)
	if query == "" {
		out := make([]entity.Suggestion, 0, limit)
		for _, e := range in.History {
			if len(out) == limit {
				break
			}
			out = append(out, entity.Suggestion{Kind: entity.SuggestionHistory, URL: e.URL, Title: e.Title})
		}
		return out
	}

	intent := ClassifyIntent(query, in.ResolvedURL != "")
	lowQuery := strings.ToLower(query)

	var cands []candidate
	add := func(s entity.Suggestion, extra float64) {
		score := baseScores[intent][s.Kind] + textualScore(lowQuery, s.Completion()) + extra
		cands = append(cands, candidate{suggestion: s, score: score, order: len(cands)})
	}

	for _, tab := range in.OpenTabs {
		resolvedHit := in.ResolvedURL != "" && tab.URL == in.ResolvedURL
		if !resolvedHit && textualScore(lowQuery, tab.URL) == 0 && !titleMatches(lowQuery, tab.Title) {
			continue
		}
		var extra float64
		if resolvedHit {
			extra = tabResolvedBonus
		}
		add(entity.Suggestion{
			Kind:        entity.SuggestionSwitchToTab,
			WorkspaceID: tab.WorkspaceID,
			PanelID:     tab.PanelID,
			URL:         tab.URL,
			Title:       tab.Title,
		}, extra)
	}

	if in.ResolvedURL != "" {
		add(entity.Suggestion{Kind: entity.SuggestionNavigate, URL: in.ResolvedURL}, 0)
	}

	for i, e := range in.History {
		positional := float64(historyPositionBase - historyPositionStep*i)
		if positional < 0 {
			positional = 0
		}
		add(entity.Suggestion{Kind: entity.SuggestionHistory, URL: e.URL, Title: e.Title},
			history.FrecencyBoost(e, now)+positional)
	}

	add(entity.Suggestion{Kind: entity.SuggestionSearch, Engine: in.Engine, Query: query}, 0)

	for _, q := range in.RemoteQueries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		add(entity.Suggestion{Kind: entity.SuggestionRemoteQuery, Query: q}, 0)
	}

	cands = dedupe(cands)
	orderCandidates(cands, query)

	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]entity.Suggestion, len(cands))
	for i, c := range cands {
		out[i] = c.suggestion
	}
	return promoteShortestSuffix(out, query)
}

// textualScore matches the lowercased query against the candidate's
// normalized scoring form and its raw completion.
func textualScore(lowQuery, completion string) float64 {
	var s float64

	norm := domurl.ScoringForm(domurl.Normalize(completion))
	switch {
	case norm == lowQuery:
		s += matchExactNorm
	case strings.HasPrefix(norm, lowQuery):
		s += matchPrefixNorm
	case strings.Contains(norm, lowQuery):
		s += matchContainsNorm
	}

	raw := strings.ToLower(completion)
	switch {
	case raw == lowQuery:
		s += matchExactRaw
	case strings.HasPrefix(raw, lowQuery):
		s += matchPrefixRaw
	case strings.Contains(raw, lowQuery):
		s += matchContainsRaw
	}
	return s
}

func titleMatches(lowQuery, title string) bool {
	return title != "" && strings.Contains(strings.ToLower(title), lowQuery)
}

// dedupe collapses candidates sharing a lowercased completion. The richer
// suggestion wins on a tie, except a Navigate row always beats a
// SwitchToTab row with the same completion: Enter should navigate unless
// the tab row was explicitly highlighted. Precedence, not score.
func dedupe(cands []candidate) []candidate {
	byCompletion := make(map[string]int, len(cands))
	kept := cands[:0]
	for _, c := range cands {
		key := strings.ToLower(c.suggestion.Completion())
		idx, seen := byCompletion[key]
		if !seen {
			byCompletion[key] = len(kept)
			kept = append(kept, c)
			continue
		}
		if prefer(c, kept[idx]) {
			kept[idx] = c
		}
	}
	return kept
}

// prefer reports whether a should replace b for the same completion.
func prefer(a, b candidate) bool {
	ak, bk := a.suggestion.Kind, b.suggestion.Kind
	if ak == entity.SuggestionNavigate && bk == entity.SuggestionSwitchToTab {
		return true
	}
	if ak == entity.SuggestionSwitchToTab && bk == entity.SuggestionNavigate {
		return false
	}
	return richness(a.suggestion) > richness(b.suggestion)
}

// richness orders the union by how much a row carries: a tab row knows its
// panel, a history row its title, a bare navigate only its URL.
func richness(s entity.Suggestion) int {
	switch s.Kind {
	case entity.SuggestionSwitchToTab:
		return 4
	case entity.SuggestionHistory:
		return 3
	case entity.SuggestionNavigate:
		return 2
	case entity.SuggestionSearch:
		return 1
	}
	return 0
}

// orderCandidates applies the final deterministic order: autocompletable
// rows first, then score, then kind priority, then insertion order, then
// completion string.
func orderCandidates(cands []candidate, query string) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		aAuto := autocomplete.Matches(query, a.suggestion)
		bAuto := autocomplete.Matches(query, b.suggestion)
		if aAuto != bAuto {
			return aAuto
		}
		if a.score != b.score {
			return a.score > b.score
		}
		if pa, pb := kindPriority[a.suggestion.Kind], kindPriority[b.suggestion.Kind]; pa != pb {
			return pa < pb
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.suggestion.Completion() < b.suggestion.Completion()
	})
}

// promoteShortestSuffix moves the autocompletable suggestion with the
// shortest added suffix to the front, minimizing visible ghost text.
func promoteShortestSuffix(out []entity.Suggestion, query string) []entity.Suggestion {
	best, bestLen := -1, -1
	for i, s := range out {
		n := autocomplete.SuffixLen(query, s)
		if n < 0 {
			continue
		}
		if best == -1 || n < bestLen {
			best, bestLen = i, n
		}
	}
	if best <= 0 {
		return out
	}
	promoted := out[best]
	copy(out[1:best+1], out[:best])
	out[0] = promoted
	return out
}

// PreferredIndex returns the index the selection should land on when no
// stable-ID match survives a refresh: the first autocompletable row, or -1.
func PreferredIndex(query string, suggestions []entity.Suggestion) int {
	for i, s := range suggestions {
		if autocomplete.Matches(query, s) {
			return i
		}
	}
	return -1
}
