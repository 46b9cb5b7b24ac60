package suggest_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muxpanel/omnibar/internal/domain/entity"
	"github.com/muxpanel/omnibar/internal/suggest"
)

func histEntry(url, title string) *entity.HistoryEntry {
	return &entity.HistoryEntry{
		URL:         url,
		Title:       title,
		VisitCount:  1,
		LastVisited: time.Now(),
	}
}

func TestClassifyIntent(t *testing.T) {
	assert.Equal(t, suggest.IntentURLLike, suggest.ClassifyIntent("example.com", true))
	assert.Equal(t, suggest.IntentQueryLike, suggest.ClassifyIntent("what is go", false))
	assert.Equal(t, suggest.IntentQueryLike, suggest.ClassifyIntent("weather", false))
	assert.Equal(t, suggest.IntentAmbiguous, suggest.ClassifyIntent("node.js", false))
}

func TestBuild_EmptyQueryReturnsHistoryVerbatim(t *testing.T) {
	var entries []*entity.HistoryEntry
	for i := 0; i < 12; i++ {
		entries = append(entries, histEntry(fmt.Sprintf("https://site%d.example.com", i), ""))
	}

	got := suggest.Build(suggest.Input{Query: "", History: entries})

	require.Len(t, got, suggest.DefaultLimit)
	for i, s := range got {
		assert.Equal(t, entity.SuggestionHistory, s.Kind)
		assert.Equal(t, entries[i].URL, s.URL)
	}
}

func TestBuild_QueryLikeReturnsExactlyOneSearch(t *testing.T) {
	got := suggest.Build(suggest.Input{Query: "openai", Engine: "duckduckgo"})

	require.Len(t, got, 1)
	assert.Equal(t, entity.SuggestionSearch, got[0].Kind)
	assert.Equal(t, "openai", got[0].Query)
	assert.Equal(t, "duckduckgo", got[0].Engine)
}

func TestBuild_NeverExceedsLimitOrDuplicatesCompletions(t *testing.T) {
	var entries []*entity.HistoryEntry
	for i := 0; i < 20; i++ {
		entries = append(entries, histEntry(fmt.Sprintf("https://example.com/p%d", i), "example"))
	}
	got := suggest.Build(suggest.Input{
		Query:         "example",
		Engine:        "ddg",
		History:       entries,
		RemoteQueries: []string{"example", "example wiki", "example news"},
		ResolvedURL:   "https://example.com",
		OpenTabs: []entity.OpenTab{
			{WorkspaceID: "w1", PanelID: "p1", URL: "https://example.com", Title: "Example"},
		},
		Limit: 8,
	})

	assert.LessOrEqual(t, len(got), 8)
	seen := map[string]bool{}
	for _, s := range got {
		key := strings.ToLower(s.Completion())
		assert.False(t, seen[key], "duplicate completion %q", key)
		seen[key] = true
	}
}

func TestBuild_NavigateBeatsSwitchToTabOnSameCompletion(t *testing.T) {
	got := suggest.Build(suggest.Input{
		Query:       "example.com",
		Engine:      "ddg",
		ResolvedURL: "https://example.com",
		OpenTabs: []entity.OpenTab{
			{WorkspaceID: "w1", PanelID: "p1", URL: "https://example.com", Title: "Example"},
		},
	})

	require.NotEmpty(t, got)
	var kinds []entity.SuggestionKind
	for _, s := range got {
		if s.Completion() == "https://example.com" {
			kinds = append(kinds, s.Kind)
		}
	}
	require.Len(t, kinds, 1, "same completion must dedupe")
	assert.Equal(t, entity.SuggestionNavigate, kinds[0], "navigate wins over tab row")
}

func TestBuild_OpenTabBeatsNavigateOnDifferentCompletion(t *testing.T) {
	got := suggest.Build(suggest.Input{
		Query:       "example.com",
		Engine:      "ddg",
		ResolvedURL: "https://example.com",
		OpenTabs: []entity.OpenTab{
			{WorkspaceID: "w1", PanelID: "p1", URL: "https://example.com/dashboard", Title: "Dashboard"},
		},
	})

	require.NotEmpty(t, got)
	idxTab, idxNav := -1, -1
	for i, s := range got {
		switch s.Kind {
		case entity.SuggestionSwitchToTab:
			idxTab = i
		case entity.SuggestionNavigate:
			idxNav = i
		}
	}
	require.NotEqual(t, -1, idxTab)
	require.NotEqual(t, -1, idxNav)
	// The bare-host navigate row adds the shortest ghost suffix, so it is
	// promoted to the front; the already-open tab still outranks any
	// search row.
	assert.Equal(t, 0, idxNav)
}

func TestBuild_SearchSinksUnderURLLikeIntent(t *testing.T) {
	got := suggest.Build(suggest.Input{
		Query:       "example.com",
		Engine:      "ddg",
		ResolvedURL: "https://example.com",
	})

	require.Len(t, got, 2)
	assert.Equal(t, entity.SuggestionNavigate, got[0].Kind)
	assert.Equal(t, entity.SuggestionSearch, got[1].Kind)
}

func TestBuild_SearchLeadsUnderQueryLikeIntent(t *testing.T) {
	got := suggest.Build(suggest.Input{
		Query:   "go generics tutorial",
		Engine:  "ddg",
		History: []*entity.HistoryEntry{histEntry("https://go.dev/blog/generics", "Go generics tutorial")},
	})

	require.NotEmpty(t, got)
	assert.Equal(t, entity.SuggestionSearch, got[0].Kind)
}

func TestBuild_RemoteQueriesIncluded(t *testing.T) {
	got := suggest.Build(suggest.Input{
		Query:         "golang",
		Engine:        "ddg",
		RemoteQueries: []string{"golang tutorial", "golang generics", "  "},
	})

	var remote []string
	for _, s := range got {
		if s.Kind == entity.SuggestionRemoteQuery {
			remote = append(remote, s.Query)
		}
	}
	assert.Equal(t, []string{"golang tutorial", "golang generics"}, remote)
}

func TestBuild_ShortestSuffixPromoted(t *testing.T) {
	got := suggest.Build(suggest.Input{
		Query:  "exa",
		Engine: "ddg",
		History: []*entity.HistoryEntry{
			histEntry("https://example.com/a/very/long/path", "deep"),
			histEntry("https://example.io", "short"),
		},
	})

	require.NotEmpty(t, got)
	assert.Equal(t, "https://example.io", got[0].URL, "shortest ghost suffix moves to front")
}

func TestBuild_TabResolvedBonusOrdersTabsFirst(t *testing.T) {
	got := suggest.Build(suggest.Input{
		Query:       "dashboard.example.com",
		ResolvedURL: "https://dashboard.example.com",
		Engine:      "ddg",
		OpenTabs: []entity.OpenTab{
			{WorkspaceID: "w1", PanelID: "p1", URL: "https://dashboard.example.com/login", Title: "Login"},
			{WorkspaceID: "w1", PanelID: "p2", URL: "https://dashboard.example.com", Title: "Dashboard"},
		},
	})

	require.NotEmpty(t, got)
	// Exact resolved-URL tab dedupes against the navigate row, which wins
	// the slot; the login tab survives as its own row.
	var sawLoginTab bool
	for _, s := range got {
		if s.Kind == entity.SuggestionSwitchToTab {
			assert.Equal(t, entity.PanelID("p1"), s.PanelID)
			sawLoginTab = true
		}
	}
	assert.True(t, sawLoginTab)
}

func TestPreferredIndex(t *testing.T) {
	list := []entity.Suggestion{
		{Kind: entity.SuggestionSearch, Query: "exa"},
		{Kind: entity.SuggestionNavigate, URL: "https://example.com"},
	}
	assert.Equal(t, 1, suggest.PreferredIndex("exa", list))
	assert.Equal(t, -1, suggest.PreferredIndex("zzz", list))
}

func TestBuild_StableKeysAcrossRefreshes(t *testing.T) {
	in := suggest.Input{
		Query:   "example",
		Engine:  "ddg",
		History: []*entity.HistoryEntry{histEntry("https://example.com", "Example")},
	}
	first := suggest.Build(in)
	second := suggest.Build(in)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Key(), second[i].Key())
	}
}
