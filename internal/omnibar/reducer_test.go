package omnibar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muxpanel/omnibar/internal/domain/entity"
	"github.com/muxpanel/omnibar/internal/omnibar"
)

func navigate(url string) entity.Suggestion {
	return entity.Suggestion{Kind: entity.SuggestionNavigate, URL: url}
}

func histSuggestion(url, title string) entity.Suggestion {
	return entity.Suggestion{Kind: entity.SuggestionHistory, URL: url, Title: title}
}

func TestReduce_FocusGained(t *testing.T) {
	s, eff := omnibar.Reduce(omnibar.State{}, omnibar.FocusGained{URL: "https://example.com"})

	assert.True(t, s.IsFocused)
	assert.Equal(t, "https://example.com", s.Buffer)
	assert.Equal(t, "https://example.com", s.CurrentURL)
	assert.False(t, s.IsUserEditing)
	assert.Empty(t, s.Suggestions)
	assert.True(t, eff.ShouldSelectAll)
}

func TestReduce_BufferChangedMarksEditingAndRefreshes(t *testing.T) {
	s, _ := omnibar.Reduce(omnibar.State{}, omnibar.FocusGained{URL: "https://example.com"})

	s, eff := omnibar.Reduce(s, omnibar.BufferChanged{Text: "exa"})
	assert.True(t, s.IsUserEditing)
	assert.Equal(t, "exa", s.Buffer)
	assert.Zero(t, s.SelectedIndex)
	assert.True(t, eff.ShouldRefreshSuggestions)

	// Typing the current URL back is not an edit.
	s, _ = omnibar.Reduce(s, omnibar.BufferChanged{Text: "https://example.com"})
	assert.False(t, s.IsUserEditing)
}

func TestReduce_PanelURLChangedRespectsEditing(t *testing.T) {
	s, _ := omnibar.Reduce(omnibar.State{}, omnibar.FocusGained{URL: "https://a.example.com"})
	s, _ = omnibar.Reduce(s, omnibar.BufferChanged{Text: "draft query"})

	s, _ = omnibar.Reduce(s, omnibar.PanelURLChanged{URL: "https://b.example.com"})
	assert.Equal(t, "https://b.example.com", s.CurrentURL, "current URL always tracks the panel")
	assert.Equal(t, "draft query", s.Buffer, "an in-progress edit is never clobbered")

	// Without an edit in progress the buffer follows the panel.
	fresh, _ := omnibar.Reduce(omnibar.State{}, omnibar.PanelURLChanged{URL: "https://c.example.com"})
	assert.Equal(t, "https://c.example.com", fresh.Buffer)
}

func TestReduce_SuggestionsUpdatedKeepsStableSelection(t *testing.T) {
	first := []entity.Suggestion{
		navigate("https://example.com"),
		histSuggestion("https://example.com/docs", "Docs"),
		histSuggestion("https://example.com/blog", "Blog"),
	}
	s, _ := omnibar.Reduce(omnibar.State{IsFocused: true, Buffer: "exa"}, omnibar.SuggestionsUpdated{Suggestions: first})
	s, _ = omnibar.Reduce(s, omnibar.MoveSelection{Delta: 2})
	require.Equal(t, 2, s.SelectedIndex)
	blogKey := first[2].Key()

	// Refresh reorders the list; selection follows the stable key.
	reordered := []entity.Suggestion{first[2], first[0], first[1]}
	s, _ = omnibar.Reduce(s, omnibar.SuggestionsUpdated{Suggestions: reordered})
	assert.Equal(t, 0, s.SelectedIndex)
	assert.Equal(t, blogKey, s.SelectedID)
}

func TestReduce_SuggestionsUpdatedFallsBackToPreferred(t *testing.T) {
	s := omnibar.State{IsFocused: true, Buffer: "exa", SelectedID: "history:gone", SelectedIndex: 1}
	list := []entity.Suggestion{
		{Kind: entity.SuggestionSearch, Query: "exa"},
		navigate("https://example.com"),
	}
	s, _ = omnibar.Reduce(s, omnibar.SuggestionsUpdated{Suggestions: list})
	assert.Equal(t, 1, s.SelectedIndex, "preferred autocompletion row wins when the old key vanished")
}

func TestReduce_SuggestionsUpdatedPopupReopens(t *testing.T) {
	s := omnibar.State{IsFocused: true, Buffer: "zzz", SelectedIndex: 5}
	list := []entity.Suggestion{{Kind: entity.SuggestionSearch, Query: "zzz"}}

	s, _ = omnibar.Reduce(s, omnibar.SuggestionsUpdated{Suggestions: list})
	assert.Equal(t, 0, s.SelectedIndex, "previously empty list selects the top row")
}

func TestReduce_SuggestionsUpdatedClampsStaleIndex(t *testing.T) {
	prev := []entity.Suggestion{
		{Kind: entity.SuggestionSearch, Query: "a"},
		{Kind: entity.SuggestionRemoteQuery, Query: "ab"},
		{Kind: entity.SuggestionRemoteQuery, Query: "abc"},
	}
	s := omnibar.State{IsFocused: true, Buffer: "zzz", Suggestions: prev, SelectedIndex: 2, SelectedID: "remote:gone"}

	shorter := []entity.Suggestion{
		{Kind: entity.SuggestionSearch, Query: "zz"},
		{Kind: entity.SuggestionRemoteQuery, Query: "zzz top"},
	}
	s, _ = omnibar.Reduce(s, omnibar.SuggestionsUpdated{Suggestions: shorter})
	assert.Equal(t, 1, s.SelectedIndex)
}

func TestReduce_MoveSelectionClamps(t *testing.T) {
	list := []entity.Suggestion{navigate("https://a.example.com"), navigate("https://b.example.com")}
	s := omnibar.State{Suggestions: list}

	s, _ = omnibar.Reduce(s, omnibar.MoveSelection{Delta: 10})
	assert.Equal(t, 1, s.SelectedIndex)

	s, _ = omnibar.Reduce(s, omnibar.MoveSelection{Delta: -10})
	assert.Equal(t, 0, s.SelectedIndex)

	// Empty list: no-op.
	empty, _ := omnibar.Reduce(omnibar.State{}, omnibar.MoveSelection{Delta: 1})
	assert.Equal(t, 0, empty.SelectedIndex)
}

func TestReduce_HighlightIndexClamps(t *testing.T) {
	list := []entity.Suggestion{navigate("https://a.example.com"), navigate("https://b.example.com")}
	s := omnibar.State{Suggestions: list}

	s, _ = omnibar.Reduce(s, omnibar.HighlightIndex{Index: 99})
	assert.Equal(t, 1, s.SelectedIndex)

	s, _ = omnibar.Reduce(s, omnibar.HighlightIndex{Index: -3})
	assert.Equal(t, 0, s.SelectedIndex)
}

func TestReduce_EscapeTwoStage(t *testing.T) {
	s, _ := omnibar.Reduce(omnibar.State{}, omnibar.FocusGained{URL: "https://example.com"})
	s, _ = omnibar.Reduce(s, omnibar.BufferChanged{Text: "draft"})
	require.True(t, s.IsUserEditing)

	// First Escape cancels the edit.
	s, eff := omnibar.Reduce(s, omnibar.Escape{})
	assert.Equal(t, "https://example.com", s.Buffer)
	assert.Empty(t, s.Suggestions)
	assert.False(t, s.IsUserEditing)
	assert.True(t, eff.ShouldSelectAll)
	assert.False(t, eff.ShouldBlurToWebView)

	// Second Escape exits the field.
	s, eff = omnibar.Reduce(s, omnibar.Escape{})
	assert.True(t, eff.ShouldBlurToWebView)
	assert.False(t, eff.ShouldSelectAll)
	assert.Equal(t, "https://example.com", s.Buffer)
}

func TestReduce_EscapeWithOpenPopupOnly(t *testing.T) {
	list := []entity.Suggestion{navigate("https://example.com")}
	s := omnibar.State{IsFocused: true, CurrentURL: "https://example.com", Buffer: "https://example.com", Suggestions: list}

	s, eff := omnibar.Reduce(s, omnibar.Escape{})
	assert.Empty(t, s.Suggestions, "open popup alone still consumes the first Escape")
	assert.True(t, eff.ShouldSelectAll)
}

func TestReduce_FocusLostVariants(t *testing.T) {
	s, _ := omnibar.Reduce(omnibar.State{}, omnibar.FocusGained{URL: "https://example.com"})
	s, _ = omnibar.Reduce(s, omnibar.BufferChanged{Text: "draft"})

	reverted, _ := omnibar.Reduce(s, omnibar.FocusLostRevertBuffer{URL: "https://example.com"})
	assert.False(t, reverted.IsFocused)
	assert.Equal(t, "https://example.com", reverted.Buffer)
	assert.False(t, reverted.IsUserEditing)

	preserved, _ := omnibar.Reduce(s, omnibar.FocusLostPreserveBuffer{URL: "https://example.com"})
	assert.False(t, preserved.IsFocused)
	assert.Equal(t, "draft", preserved.Buffer)
	assert.Empty(t, preserved.Suggestions)
}
