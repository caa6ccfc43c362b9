package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// TextList is a list of display strings that may be authored either as a
// sequence or as a single newline-separated string.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = cleanItems(items)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = SplitLines(text)
	return nil
}

func (l *TextList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = cleanItems(items)
	case yaml.ScalarNode:
		*l = SplitLines(value.Value)
	default:
		return fmt.Errorf("line %d: expected string or list of strings", value.Line)
	}
	return nil
}

// SplitLines breaks text into trimmed, non-empty lines with any leading
// bullet marker removed.
func SplitLines(text string) TextList {
	return cleanItems(strings.Split(text, "\n"))
}

// StripBullet removes a leading "•" marker, or a "-" or "*" marker followed
// by whitespace, so signed values such as "-20%" keep their sign.
func StripBullet(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "•"); ok {
		return strings.TrimSpace(rest)
	}
	for _, marker := range []string{"-", "*"} {
		rest, ok := strings.CutPrefix(s, marker)
		if !ok {
			continue
		}
		if rest == "" {
			return ""
		}
		if r, _ := utf8.DecodeRuneInString(rest); unicode.IsSpace(r) {
			return strings.TrimSpace(rest)
		}
	}
	return s
}

func cleanItems(items []string) TextList {
	out := make(TextList, 0, len(items))
	for _, item := range items {
		if item = StripBullet(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
