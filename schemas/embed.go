// Package schemas holds the JSON Schemas that structured LLM responses must satisfy.
package schemas

import "embed"

// Schema file names
const (
	ATSResult       = "ats_result.schema.json"
	KeywordAnalysis = "keyword_analysis.schema.json"
	MatchScore      = "match_score.schema.json"
)

// Files contains every *.schema.json in this directory
//
//go:embed *.schema.json
var Files embed.FS
