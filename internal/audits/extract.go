package audits

import (
	"encoding/json"
	"strings"

	"audit-backend/internal/llm"
)

// ExtractJSONObject returns the JSON object in model output. The whole text is
// tried first, then the text inside a single code fence, then the first
// balanced {...} span that parses. Anything else is MALFORMED_RESPONSE.
func ExtractJSONObject(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, llm.NewError(llm.KindMalformedResponse, "MALFORMED_RESPONSE: empty model output", nil)
	}
	if isJSONObject(trimmed) {
		return json.RawMessage(trimmed), nil
	}
	if inner, ok := stripCodeFence(trimmed); ok && isJSONObject(inner) {
		return json.RawMessage(inner), nil
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end > start {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate), nil
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, llm.NewError(llm.KindMalformedResponse, "MALFORMED_RESPONSE: no JSON object found in model output", nil)
}

func isJSONObject(s string) bool {
	return strings.HasPrefix(s, "{") && json.Valid([]byte(s))
}

func stripCodeFence(s string) (string, bool) {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return "", false
	}
	body := strings.TrimSuffix(s, "```")
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return "", false
	}
	return strings.TrimSpace(body[nl+1:]), true
}

// matchingBrace returns the index of the brace closing the one at start, or -1.
// Braces inside JSON strings are ignored.
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
