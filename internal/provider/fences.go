package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var errNotJSON = errors.New("reply is not valid JSON")

// StripFences removes a leading markdown fence line (``` or ```json) and a
// trailing ``` fence. Backticks elsewhere in the text are left alone.
func StripFences(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(strings.TrimPrefix(s, "```"), "json")
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseJSON strips fences from text and returns it if it is valid JSON.
// Otherwise the span from the first '{' to the last '}' is tried once.
func ParseJSON(text string) ([]byte, error) {
	s := StripFences(text)
	if s != "" && json.Valid([]byte(s)) {
		return []byte(s), nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		candidate := []byte(s[start : end+1])
		if json.Valid(candidate) {
			return bytes.Clone(candidate), nil
		}
	}

	return nil, errNotJSON
}
