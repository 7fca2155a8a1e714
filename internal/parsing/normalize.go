package parsing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// keywordNormalizations maps common keyword variants to canonical names
var keywordNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"aws":        "AWS",
	"gcp":        "GCP",
	"ml":         "Machine Learning",
	"ai":         "AI",
}

// NormalizeKeyword returns the canonical form of a keyword
func NormalizeKeyword(keyword string) string {
	normalized := strings.Join(strings.Fields(keyword), " ")
	normalized = strings.Trim(normalized, ".;:")
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := keywordNormalizations[lower]; ok {
		return canonical
	}

	// Mixed case is kept as the model wrote it
	if normalized != strings.ToUpper(normalized) && normalized != strings.ToLower(normalized) {
		return normalized
	}

	// Single all-lowercase word: capitalize the first letter
	if normalized == lower && !strings.Contains(normalized, " ") {
		r, size := utf8.DecodeRuneInString(normalized)
		return string(unicode.ToUpper(r)) + normalized[size:]
	}

	return normalized
}

// NormalizeKeywords canonicalizes keywords, dropping empty ones and
// case-insensitive duplicates. The first occurrence wins. Never returns nil.
func NormalizeKeywords(keywords []string) []string {
	result := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		normalized := NormalizeKeyword(kw)
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, normalized)
	}
	return result
}

// subtractKeywords returns the keywords of from that are not in remove
func subtractKeywords(from, remove []string) []string {
	drop := make(map[string]bool, len(remove))
	for _, kw := range remove {
		drop[strings.ToLower(kw)] = true
	}
	result := make([]string, 0, len(from))
	for _, kw := range from {
		if !drop[strings.ToLower(kw)] {
			result = append(result, kw)
		}
	}
	return result
}
