package sections

import (
	"strings"

	"github.com/jonathan/resume-enhancer/internal/types"
)

// Heatmap scores every section for display: a random value in [60,100] when
// the section has content, 0 otherwise. It is not a quality signal.
// A nil rng uses the global source.
func Heatmap(m types.SectionMap, rng types.Rand) types.HeatmapScores {
	rng = types.OrGlobalRand(rng)
	scores := make(types.HeatmapScores, 0, len(m.Names()))
	for _, e := range m.Entries() {
		score := 0
		if strings.TrimSpace(e.Content) != "" {
			score = 60 + rng.IntN(41)
		}
		scores = append(scores, types.SectionScore{Section: e.Name, Score: score})
	}
	return scores
}

// Compose joins the chosen sections into resume text, each as a heading line
// followed by its content, separated by blank lines
func Compose(m types.SectionMap, order []types.SectionName) string {
	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, string(name)+"\n"+m.Get(name))
	}
	return strings.Join(parts, "\n\n")
}

// BuildDashboard segments text and scores each section
func BuildDashboard(text string, rng types.Rand) types.Dashboard {
	m, missing := Segment(text)
	return types.Dashboard{
		Sections: m,
		Missing:  missing,
		Heatmap:  Heatmap(m, rng),
	}
}
