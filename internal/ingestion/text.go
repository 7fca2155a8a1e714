package ingestion

import (
	"regexp"
	"strings"
)

var (
	spaceRun     = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankLineRun = regexp.MustCompile(`\n{3,}`)
)

// bulletGlyphs are list markers PDF and Word exports use in place of "- "
var bulletGlyphs = []string{"• ", "· ", "▪ ", "◦ ", "● ", "– "}

// CleanText normalizes extracted document text. Line endings become LF,
// runs of spaces collapse, bullet glyphs become "- ", at most one blank line
// separates paragraphs, and the result is trimmed.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\x00", "")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	for _, glyph := range bulletGlyphs {
		if rest, ok := strings.CutPrefix(line, glyph); ok {
			return "- " + rest
		}
	}
	return line
}
