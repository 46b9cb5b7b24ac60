package entity

import (
	"encoding/json"
	"strings"
)

// SuggestionKind discriminates the suggestion union.
type SuggestionKind int

const (
	SuggestionSearch SuggestionKind = iota
	SuggestionNavigate
	SuggestionHistory
	SuggestionSwitchToTab
	SuggestionRemoteQuery
)

// String returns the kind name used in stable keys and badges.
func (k SuggestionKind) String() string {
	switch k {
	case SuggestionSearch:
		return "search"
	case SuggestionNavigate:
		return "navigate"
	case SuggestionHistory:
		return "history"
	case SuggestionSwitchToTab:
		return "tab"
	case SuggestionRemoteQuery:
		return "remote"
	}
	return "unknown"
}

// Suggestion is one row in the omnibar popup. It is a tagged union: the
// populated fields depend on Kind.
type Suggestion struct {
	Kind SuggestionKind

	// Search / RemoteQuery
	Engine string
	Query  string

	// Navigate / History / SwitchToTab
	URL   string
	Title string

	// SwitchToTab
	WorkspaceID WorkspaceID
	PanelID     PanelID
}

// MarshalJSON emits the kind by name and omits the fields the kind does
// not populate.
func (s Suggestion) MarshalJSON() ([]byte, error) {
	type row struct {
		Kind        string      `json:"kind"`
		Engine      string      `json:"engine,omitempty"`
		Query       string      `json:"query,omitempty"`
		URL         string      `json:"url,omitempty"`
		Title       string      `json:"title,omitempty"`
		WorkspaceID WorkspaceID `json:"workspace_id,omitempty"`
		PanelID     PanelID     `json:"panel_id,omitempty"`
	}
	return json.Marshal(row{
		Kind:        s.Kind.String(),
		Engine:      s.Engine,
		Query:       s.Query,
		URL:         s.URL,
		Title:       s.Title,
		WorkspaceID: s.WorkspaceID,
		PanelID:     s.PanelID,
	})
}

// Key returns the stable identity of the suggestion: kind plus lowercased
// payload. The same logical row keeps its key across refreshes so keyboard
// selection survives list rebuilds.
func (s Suggestion) Key() string {
	return s.Kind.String() + ":" + strings.ToLower(s.payload())
}

func (s Suggestion) payload() string {
	switch s.Kind {
	case SuggestionSearch, SuggestionRemoteQuery:
		return s.Query
	default:
		return s.URL
	}
}

// Completion returns the actionable string: the text that pressing Enter
// (or accepting ghost text) commits to.
func (s Suggestion) Completion() string {
	switch s.Kind {
	case SuggestionSearch, SuggestionRemoteQuery:
		return s.Query
	default:
		return s.URL
	}
}

// Display returns the primary text shown in the popup row.
func (s Suggestion) Display() string {
	switch s.Kind {
	case SuggestionSearch, SuggestionRemoteQuery:
		return s.Query
	case SuggestionHistory, SuggestionSwitchToTab:
		if s.Title != "" {
			return s.Title
		}
		return s.URL
	default:
		return s.URL
	}
}

// Badge returns the optional trailing badge for the row, empty when the
// row needs none.
func (s Suggestion) Badge() string {
	switch s.Kind {
	case SuggestionSearch:
		if s.Engine != "" {
			return "Search " + s.Engine
		}
		return "Search"
	case SuggestionSwitchToTab:
		return "Switch to Tab"
	case SuggestionRemoteQuery:
		return "Search"
	}
	return ""
}
