package service

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when no decodable JSON object can be recovered
// from a completion.
var ErrNoJSONObject = errors.New("no JSON object found in completion")

// ExtractJSONObject recovers a JSON object from free text. It tries the whole
// text, then the body of a markdown code fence, then each balanced
// brace-delimited substring in order of appearance.
func ExtractJSONObject(text string) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if isJSONObject(trimmed) {
		return []byte(trimmed), nil
	}

	if fenced, ok := codeFenceBody(trimmed); ok && isJSONObject(fenced) {
		return []byte(fenced), nil
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end > start {
			if candidate := text[start : end+1]; isJSONObject(candidate) {
				return []byte(candidate), nil
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return nil, ErrNoJSONObject
}

func isJSONObject(s string) bool {
	return strings.HasPrefix(s, "{") && json.Valid([]byte(s))
}

func codeFenceBody(s string) (string, bool) {
	open := strings.Index(s, "```")
	if open < 0 {
		return "", false
	}
	rest := s[open+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// drop the language tag, e.g. ```json
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// matchingBrace returns the index of the brace closing the one at start, or
// -1. Braces inside JSON strings are ignored.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
