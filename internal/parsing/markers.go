package parsing

import (
	"strconv"
	"strings"

	"github.com/jonathan/resume-enhancer/internal/types"
)

// Literal markers the legacy prompts ask the model to emit
const (
	MarkerATSScore = "ATS Score:"
	MarkerFeedback = "Feedback:"
	MarkerPresent  = "Present:"
	MarkerMissing  = "Missing:"
)

// Fixed feedback used when the model's answer cannot be read
const (
	FeedbackUnavailable = "Could not generate detailed feedback."
	FeedbackParseFailed = "Could not generate detailed feedback due to parsing error."
)

// Fallback score range, inclusive
const (
	FallbackScoreMin = 60
	FallbackScoreMax = 95
)

// FallbackPresent and FallbackMissing are returned when keyword markers are absent
var (
	FallbackPresent = []string{"Python", "AI"}
	FallbackMissing = []string{"Java", "Cloud"}
)

func fallbackScore(rng types.Rand) int {
	return FallbackScoreMin + types.OrGlobalRand(rng).IntN(FallbackScoreMax-FallbackScoreMin+1)
}

// ParseATS reads "ATS Score: <n>" and "Feedback: <text>" out of a free-text
// response. A missing score marker yields a random score in [60,95] with
// FeedbackParseFailed; a non-numeric score yields a random score but keeps
// the feedback. Scores are clamped to [0,100]. A nil rng uses the global source.
func ParseATS(response string, rng types.Rand) types.AtsResult {
	scoreText, ok := afterMarker(response, MarkerATSScore)
	if !ok {
		return types.AtsResult{
			Score:    fallbackScore(rng),
			Feedback: FeedbackParseFailed,
			Fallback: true,
		}
	}

	result := types.AtsResult{}
	line, _, _ := strings.Cut(scoreText, "\n")
	line = strings.TrimSpace(line)
	if n, err := strconv.Atoi(line); err == nil && isASCIIDigits(line) {
		result.Score = clamp(n)
	} else {
		result.Score = fallbackScore(rng)
		result.Fallback = true
	}

	if feedback, ok := afterMarker(response, MarkerFeedback); ok {
		result.Feedback = strings.TrimSpace(feedback)
	} else {
		result.Feedback = FeedbackUnavailable
	}
	return result
}

// ParseKeywords splits the text after "Present:" (up to "Missing:") and after
// "Missing:" on commas. Each list independently falls back to its fixed
// placeholder when its marker is absent. Tokens are trimmed but otherwise kept
// verbatim, empty tokens included.
func ParseKeywords(response string) types.KeywordAnalysis {
	analysis := types.KeywordAnalysis{
		Present: append([]string(nil), FallbackPresent...),
		Missing: append([]string(nil), FallbackMissing...),
	}

	if present, ok := afterMarker(response, MarkerPresent); ok {
		present, _, _ = strings.Cut(present, MarkerMissing)
		analysis.Present = splitTrimmed(present)
	}
	if missing, ok := afterMarker(response, MarkerMissing); ok {
		analysis.Missing = splitTrimmed(missing)
	}
	return analysis
}

// ParseMatchScore reads the first whitespace-delimited token as an integer
// clamped to [0,100]. Anything else yields a random score in [60,95].
func ParseMatchScore(response string, rng types.Rand) (score int, fallback bool) {
	fields := strings.Fields(response)
	if len(fields) == 0 {
		return fallbackScore(rng), true
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return fallbackScore(rng), true
	}
	return clamp(n), false
}

// afterMarker returns the text between the first occurrence of marker and
// the next occurrence, or the end of s
func afterMarker(s, marker string) (string, bool) {
	_, rest, found := strings.Cut(s, marker)
	if !found {
		return "", false
	}
	if before, _, again := strings.Cut(rest, marker); again {
		return before, true
	}
	return rest, true
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func clamp(n int) int {
	return min(max(n, 0), 100)
}
