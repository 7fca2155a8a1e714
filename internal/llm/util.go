// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// ErrorResponsePrefix starts the inline text that Complete returns on failure
const ErrorResponsePrefix = "Error fetching AI response: "

// Complete sends prompt and returns the text, or on failure the inline
// string "Error fetching AI response: <err>". Callers must treat the result
// as untrusted free text either way.
func Complete(ctx context.Context, client Client, prompt string, tier ModelTier) string {
	text, err := client.GenerateContent(ctx, prompt, tier)
	if err != nil {
		return fmt.Sprintf("%s%v", ErrorResponsePrefix, err)
	}
	return text
}

// IsErrorResponse reports whether text was produced by Complete on failure
func IsErrorResponse(text string) bool {
	return strings.HasPrefix(text, ErrorResponsePrefix)
}

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// When prose surrounds a single JSON object, the object is extracted.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, "```json"):
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	case strings.HasPrefix(text, "```"):
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		if obj, ok := ExtractJSONObject(text); ok {
			return obj
		}
	}
	return text
}

// ExtractJSONObject returns the text from the first '{' to the last '}'
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
