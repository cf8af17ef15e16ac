package gemini

import (
	"errors"
	"strings"
)

// extractJSONObject locates the first balanced JSON object in free text.
// The provider is prompted for strict JSON but tends to wrap it in prose or
// markdown fences.
func extractJSONObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", errors.New("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}
	return "", errors.New("unbalanced JSON object in response")
}
