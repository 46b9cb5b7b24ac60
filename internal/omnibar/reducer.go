// Package omnibar drives the omnibar input state machine. Reduce is a
// pure (state, event) -> (state, effects) function with no I/O; the
// Controller adapter applies it sequentially and executes effects.
package omnibar

import (
	"github.com/muxpanel/omnibar/internal/domain/entity"
	"github.com/muxpanel/omnibar/internal/suggest"
)

// State is the whole omnibar model. It is recomputed wholesale on every
// buffer change; stable suggestion keys are the only identity that
// survives a refresh.
type State struct {
	IsFocused     bool
	CurrentURL    string
	Buffer        string
	Suggestions   []entity.Suggestion
	SelectedIndex int
	SelectedID    string
	IsUserEditing bool
}

// Selected returns the currently selected suggestion, if any.
func (s State) Selected() (entity.Suggestion, bool) {
	if len(s.Suggestions) == 0 || s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Suggestions) {
		return entity.Suggestion{}, false
	}
	return s.Suggestions[s.SelectedIndex], true
}

// Effects are advisory flags for the caller; the reducer performs no
// side effects itself.
type Effects struct {
	ShouldSelectAll          bool
	ShouldBlurToWebView      bool
	ShouldRefreshSuggestions bool
}

// Event is the omnibar event union.
type Event interface{ isOmnibarEvent() }

// FocusGained fires when the field takes keyboard focus.
type FocusGained struct{ URL string }

// FocusLostRevertBuffer fires when focus leaves and the buffer should
// snap back to the panel URL.
type FocusLostRevertBuffer struct{ URL string }

// FocusLostPreserveBuffer fires when focus leaves but an in-progress edit
// should survive.
type FocusLostPreserveBuffer struct{ URL string }

// PanelURLChanged fires when the panel navigates underneath the field.
type PanelURLChanged struct{ URL string }

// BufferChanged fires on every keystroke.
type BufferChanged struct{ Text string }

// SuggestionsUpdated replaces the suggestion list.
type SuggestionsUpdated struct{ Suggestions []entity.Suggestion }

// MoveSelection moves the highlighted row by a delta.
type MoveSelection struct{ Delta int }

// HighlightIndex selects a row directly (mouse hover).
type HighlightIndex struct{ Index int }

// Escape is the two-stage cancel key.
type Escape struct{}

func (FocusGained) isOmnibarEvent()             {}
func (FocusLostRevertBuffer) isOmnibarEvent()   {}
func (FocusLostPreserveBuffer) isOmnibarEvent() {}
func (PanelURLChanged) isOmnibarEvent()         {}
func (BufferChanged) isOmnibarEvent()           {}
func (SuggestionsUpdated) isOmnibarEvent()      {}
func (MoveSelection) isOmnibarEvent()           {}
func (HighlightIndex) isOmnibarEvent()          {}
func (Escape) isOmnibarEvent()                  {}

// Reduce applies one event. Out-of-range selection indexes are clamped,
// never raised.
func Reduce(s State, ev Event) (State, Effects) {
	var eff Effects

	switch e := ev.(type) {
	case FocusGained:
		s.IsFocused = true
		s.CurrentURL = e.URL
		s.Buffer = e.URL
		s.IsUserEditing = false
		s.Suggestions = nil
		s.SelectedIndex = 0
		s.SelectedID = ""
		eff.ShouldSelectAll = true

	case FocusLostRevertBuffer:
		s.IsFocused = false
		s.CurrentURL = e.URL
		s.Buffer = e.URL
		s.IsUserEditing = false
		s.Suggestions = nil
		s.SelectedIndex = 0
		s.SelectedID = ""

	case FocusLostPreserveBuffer:
		s.IsFocused = false
		s.CurrentURL = e.URL
		s.Suggestions = nil
		s.SelectedIndex = 0
		s.SelectedID = ""

	case PanelURLChanged:
		s.CurrentURL = e.URL
		// Never clobber an in-progress edit.
		if !s.IsUserEditing {
			s.Buffer = e.URL
			s.Suggestions = nil
			s.SelectedIndex = 0
			s.SelectedID = ""
		}

	case BufferChanged:
		s.Buffer = e.Text
		if s.IsFocused {
			s.IsUserEditing = e.Text != s.CurrentURL
		}
		s.SelectedIndex = 0
		s.SelectedID = keyAt(s.Suggestions, 0)
		eff.ShouldRefreshSuggestions = true

	case SuggestionsUpdated:
		wasEmpty := len(s.Suggestions) == 0
		s.Suggestions = e.Suggestions
		s.SelectedIndex, s.SelectedID = reselect(s, wasEmpty)

	case MoveSelection:
		if len(s.Suggestions) > 0 {
			s.SelectedIndex = clamp(s.SelectedIndex+e.Delta, 0, len(s.Suggestions)-1)
			s.SelectedID = keyAt(s.Suggestions, s.SelectedIndex)
		}

	case HighlightIndex:
		if len(s.Suggestions) > 0 {
			s.SelectedIndex = clamp(e.Index, 0, len(s.Suggestions)-1)
			s.SelectedID = keyAt(s.Suggestions, s.SelectedIndex)
		}

	case Escape:
		if s.IsUserEditing || len(s.Suggestions) > 0 {
			// First Escape cancels the edit.
			s.Buffer = s.CurrentURL
			s.Suggestions = nil
			s.IsUserEditing = false
			s.SelectedIndex = 0
			s.SelectedID = ""
			eff.ShouldSelectAll = true
		} else {
			// Second Escape leaves the field.
			eff.ShouldBlurToWebView = true
		}
	}

	return s, eff
}

// reselect re-resolves the selection after a list refresh: stable-ID
// lookup first, then the aggregator's preferred autocompletion, then the
// top row when the popup just reopened, else a clamp.
func reselect(s State, wasEmpty bool) (int, string) {
	if len(s.Suggestions) == 0 {
		return 0, ""
	}
	if s.SelectedID != "" {
		for i, sg := range s.Suggestions {
			if sg.Key() == s.SelectedID {
				return i, s.SelectedID
			}
		}
	}
	if idx := suggest.PreferredIndex(s.Buffer, s.Suggestions); idx >= 0 {
		return idx, s.Suggestions[idx].Key()
	}
	if wasEmpty {
		return 0, s.Suggestions[0].Key()
	}
	idx := clamp(s.SelectedIndex, 0, len(s.Suggestions)-1)
	return idx, s.Suggestions[idx].Key()
}

func keyAt(list []entity.Suggestion, i int) string {
	if i < 0 || i >= len(list) {
		return ""
	}
	return list[i].Key()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
