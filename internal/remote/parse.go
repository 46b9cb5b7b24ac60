package remote

import "encoding/json"

// WireFormat selects how an engine's suggest response decodes.
type WireFormat int

const (
	// FormatPrefixedArray is `[query, ["a", "b", ...]]`.
	FormatPrefixedArray WireFormat = iota
	// FormatPhraseObjects is `[{"phrase": "a"}, {"phrase": "b"}, ...]`.
	FormatPhraseObjects
)

// decode parses a suggest response body. Parse failures yield nil; the
// fetcher treats them the same as an empty result.
func decode(format WireFormat, data []byte) []string {
	switch format {
	case FormatPrefixedArray:
		return decodePrefixedArray(data)
	case FormatPhraseObjects:
		return decodePhraseObjects(data)
	}
	return nil
}

func decodePrefixedArray(data []byte) []string {
	var outer []json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil || len(outer) < 2 {
		return nil
	}
	var phrases []string
	if err := json.Unmarshal(outer[1], &phrases); err != nil {
		return nil
	}
	return compact(phrases)
}

func decodePhraseObjects(data []byte) []string {
	var rows []struct {
		Phrase string `json:"phrase"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil
	}
	phrases := make([]string, 0, len(rows))
	for _, row := range rows {
		phrases = append(phrases, row.Phrase)
	}
	return compact(phrases)
}

func compact(phrases []string) []string {
	out := phrases[:0]
	for _, p := range phrases {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
