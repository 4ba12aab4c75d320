package ai

import (
	"fmt"
	"strings"
)

// FirstJSONArray extracts the first top-level JSON array from completion
// text. Models frequently wrap payloads in prose or markdown fences, so
// the slice between the first '[' and the last ']' is taken verbatim.
func FirstJSONArray(content string) (string, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON array in completion", ErrParse)
	}
	return content[start : end+1], nil
}

// FirstJSONObject extracts the first top-level JSON object from completion text.
func FirstJSONObject(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON object in completion", ErrParse)
	}
	return content[start : end+1], nil
}
