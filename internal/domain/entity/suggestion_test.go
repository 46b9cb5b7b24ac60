package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestionMarshalJSON_KindByName(t *testing.T) {
	out, err := json.Marshal(Suggestion{Kind: SuggestionNavigate, URL: "https://example.com"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"kind":"navigate","url":"https://example.com"}`, string(out))
}

func TestSuggestionMarshalJSON_OmitsUnusedFields(t *testing.T) {
	out, err := json.Marshal(Suggestion{Kind: SuggestionSearch, Engine: "brave", Query: "go generics"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"kind":"search","engine":"brave","query":"go generics"}`, string(out))

	out, err = json.Marshal(Suggestion{
		Kind:        SuggestionSwitchToTab,
		URL:         "https://mail.example.com/inbox",
		Title:       "Inbox",
		WorkspaceID: "ws1",
		PanelID:     "p2",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"tab","url":"https://mail.example.com/inbox","title":"Inbox","workspace_id":"ws1","panel_id":"p2"}`, string(out))
}

func TestSuggestionKey_StableAcrossCase(t *testing.T) {
	a := Suggestion{Kind: SuggestionHistory, URL: "https://Example.com/Path"}
	b := Suggestion{Kind: SuggestionHistory, URL: "https://example.com/path"}
	assert.Equal(t, a.Key(), b.Key())
}
