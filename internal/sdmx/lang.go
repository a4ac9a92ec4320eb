package sdmx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// langPriority mirrors the publication languages of the upstream service.
var langPriority = []string{"en", "fr", "de", "lb"}

type LocalizedString struct {
	Lang string
	Text string
}

// LocalizedText is an ordered language→text mapping. Entries keep the order
// of the source document so the last-resort pick is deterministic.
type LocalizedText []LocalizedString

// UnmarshalJSON decodes an SDMX-JSON localized text object ({"en": "...",
// "fr": "..."}) preserving key order. Non-string values are skipped.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	*t = (*t)[:0]
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("localized text: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		lang, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			continue
		}
		*t = append(*t, LocalizedString{Lang: strings.ToLower(lang), Text: text})
	}
	_, err = dec.Token()
	return err
}

// Preferred returns the first non-empty text following the language priority
// order, then the first entry in document order, then the fallback.
func (t LocalizedText) Preferred(fallback string) string {
	for _, lang := range langPriority {
		for _, entry := range t {
			if entry.Lang == lang && entry.Text != "" {
				return entry.Text
			}
		}
	}
	for _, entry := range t {
		if entry.Text != "" {
			return entry.Text
		}
	}
	return fallback
}

// Map flattens the text into a plain map for JSON persistence. Later
// duplicates of a language tag are ignored.
func (t LocalizedText) Map() map[string]string {
	if len(t) == 0 {
		return nil
	}
	out := make(map[string]string, len(t))
	for _, entry := range t {
		if _, ok := out[entry.Lang]; ok {
			continue
		}
		if entry.Text == "" {
			continue
		}
		out[entry.Lang] = entry.Text
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
