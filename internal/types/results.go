package types

// AtsResult is the applicant-tracking-system score with the model's feedback
type AtsResult struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	// Fallback is set when the score was substituted rather than read from the response.
	// It is never shown to users.
	Fallback bool `json:"-"`
}

// KeywordAnalysis lists keywords of a job description found in and missing from a resume
type KeywordAnalysis struct {
	Present []string `json:"present"`
	Missing []string `json:"missing"`
}

// MatchResult combines the match score with its keyword analysis
type MatchResult struct {
	Score    int             `json:"score"`
	Keywords KeywordAnalysis `json:"keywords"`
}

// SectionScore is one bar of the section heatmap
type SectionScore struct {
	Section SectionName `json:"section"`
	Score   int         `json:"score"`
}

// HeatmapScores holds one score per section in declaration order
type HeatmapScores []SectionScore

// Get returns the score of a section, or 0 when absent
func (h HeatmapScores) Get(name SectionName) int {
	for _, s := range h {
		if s.Section == name {
			return s.Score
		}
	}
	return 0
}

// Dashboard is the segmented view of the current resume
type Dashboard struct {
	Sections SectionMap    `json:"sections"`
	Missing  []SectionName `json:"missing"`
	Heatmap  HeatmapScores `json:"heatmap"`
}

// ChatMessage is one entry of the career assistant conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Time    string `json:"time"` // HH:MM:SS
}

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Milestone is one row of the career roadmap timeline
type Milestone struct {
	Milestone string `json:"milestone"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}

// Roadmap is a generated career roadmap and its timeline rows
type Roadmap struct {
	Text     string      `json:"text"`
	Timeline []Milestone `json:"timeline"`
}

// RewriteVersion is one style produced by the rewrite battle
type RewriteVersion struct {
	Version string `json:"version"`
	Text    string `json:"text"`
}

// Enhancement is the outcome of enhancing or redesigning a resume
type Enhancement struct {
	Resume        string    `json:"resume"`
	ATS           AtsResult `json:"ats"`
	Encouragement string    `json:"encouragement"`
}
