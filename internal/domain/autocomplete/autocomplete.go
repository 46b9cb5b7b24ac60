// Package autocomplete computes inline "ghost text" completions for the
// omnibar: the suggested continuation rendered after the caret, with exact
// selection-range semantics so accepting, extending, or escaping the ghost
// behaves deterministically.
package autocomplete

import (
	"strings"

	"github.com/muxpanel/omnibar/internal/domain/entity"
	domurl "github.com/muxpanel/omnibar/internal/domain/url"
)

// SelectionRange is the caret/selection of the text field, as a location
// and length in characters of the display text.
type SelectionRange struct {
	Loc int
	Len int
}

// InlineCompletion is the ephemeral ghost-text result. It is recomputed
// from state on every change and never persisted.
type InlineCompletion struct {
	// TypedText is the user's literal input.
	TypedText string
	// DisplayText is TypedText plus the ghost suffix shown in the field.
	DisplayText string
	// AcceptedText is the full candidate committed when the ghost is
	// accepted; it may be longer than DisplayText (full URL vs bare host).
	AcceptedText string
}

// SuffixRange returns the location and length of the ghost suffix within
// DisplayText.
func (c *InlineCompletion) SuffixRange() SelectionRange {
	return SelectionRange{Loc: len(c.TypedText), Len: len(c.DisplayText) - len(c.TypedText)}
}

// ComputeCompletionSuffix returns the suffix if input is a case-insensitive
// prefix of fullText. Returns the suffix and true if input matches as a
// prefix, otherwise empty string and false.
func ComputeCompletionSuffix(input, fullText string) (string, bool) {
	if input == "" || fullText == "" {
		return "", false
	}

	if !strings.HasPrefix(strings.ToLower(fullText), strings.ToLower(input)) {
		return "", false
	}

	// Return the original-case suffix from fullText
	suffix := fullText[len(input):]
	return suffix, suffix != ""
}

// MatchForm returns the form of completion under which typed is a
// case-insensitive prefix, trying as-typed, scheme-stripped, and
// scheme-and-"www."-stripped in that order. An exact match counts: the
// ghost suffix is then empty.
func MatchForm(typed, completion string) (string, bool) {
	if typed == "" || completion == "" {
		return "", false
	}
	lowTyped := strings.ToLower(typed)
	for _, form := range []string{
		completion,
		domurl.StripScheme(completion),
		domurl.StripSchemeWWW(completion),
	} {
		if strings.HasPrefix(strings.ToLower(form), lowTyped) {
			return form, true
		}
	}
	return "", false
}

// Matches reports whether the suggestion's completion is a valid
// autocompletion of the typed text. Search and remote-query rows never
// autocomplete.
func Matches(typed string, s entity.Suggestion) bool {
	if typed == "" {
		return false
	}
	if s.Kind == entity.SuggestionSearch || s.Kind == entity.SuggestionRemoteQuery {
		return false
	}
	_, ok := MatchForm(typed, s.Completion())
	return ok
}

// SuffixLen returns the length of the ghost suffix the suggestion would
// add to the typed text, or -1 when it is not an autocompletion of it.
func SuffixLen(typed string, s entity.Suggestion) int {
	if s.Kind == entity.SuggestionSearch || s.Kind == entity.SuggestionRemoteQuery {
		return -1
	}
	form, ok := MatchForm(typed, s.Completion())
	if !ok {
		return -1
	}
	return len(form) - len(typed)
}

// Compute derives the inline completion for the current omnibar state.
// Returns nil when the field is unfocused, an input-method composition is
// in progress, nothing is typed, no suggestion matches, or the selection
// has left the shapes that keep ghost text honest.
func Compute(typed string, suggestions []entity.Suggestion, focused bool, sel SelectionRange, composing bool) *InlineCompletion {
	if !focused || composing || typed == "" {
		return nil
	}

	for _, s := range suggestions {
		if s.Kind == entity.SuggestionSearch || s.Kind == entity.SuggestionRemoteQuery {
			continue
		}
		completion := s.Completion()
		if host := domurl.Host(domurl.Normalize(completion)); host == "" || !domurl.HostHasTLD(host) {
			continue
		}

		var display string
		if form, ok := MatchForm(typed, completion); ok {
			display = displayForm(typed, form)
		} else if s.Title != "" {
			if _, ok := ComputeCompletionSuffix(typed, s.Title); ok {
				display = s.Title
			}
		}
		if display == "" {
			continue
		}

		// The field must be able to show typed text plus a real suffix.
		if !strings.HasPrefix(display, typed) || len(display) <= len(typed) {
			continue
		}

		if !selectionAllowsGhost(typed, display, sel) {
			return nil
		}

		return &InlineCompletion{
			TypedText:    typed,
			DisplayText:  display,
			AcceptedText: completion,
		}
	}

	return nil
}

// displayForm collapses the matched form to host[:port] unless the typed
// text already reaches into an explicit path, query, or fragment.
func displayForm(typed, form string) string {
	if typedHasExplicitPath(typed) {
		return form
	}

	// Cut at the first path/query/fragment boundary beyond the scheme.
	rest := form
	prefixLen := 0
	if i := strings.Index(form, "://"); i != -1 {
		prefixLen = i + 3
		rest = form[prefixLen:]
	}
	if i := strings.IndexAny(rest, "/?#"); i != -1 {
		return form[:prefixLen+i]
	}
	return form
}

// typedHasExplicitPath reports whether the typed text contains a path,
// query, or fragment beyond the host.
func typedHasExplicitPath(typed string) bool {
	rest := typed
	if i := strings.Index(typed, "://"); i != -1 {
		rest = typed[i+3:]
	}
	return strings.ContainsAny(rest, "/?#")
}

// selectionAllowsGhost checks the selection against the four shapes that
// keep an inline completion valid: a caret at the typed boundary, the
// ghost suffix selected, a full-field select-all, or the typed prefix
// selected (a transient select-all state). Anything else means the user
// moved into the ghost text deliberately.
func selectionAllowsGhost(typed, display string, sel SelectionRange) bool {
	switch {
	case sel.Loc == len(typed) && sel.Len == 0:
		return true
	case sel.Loc == len(typed) && sel.Len == len(display)-len(typed):
		return true
	case sel.Loc == 0 && sel.Len == len(display):
		return true
	case sel.Loc == 0 && sel.Len == len(typed):
		return true
	}
	return false
}
