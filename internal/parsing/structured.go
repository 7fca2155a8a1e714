package parsing

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-enhancer/internal/llm"
	"github.com/jonathan/resume-enhancer/internal/schemas"
	"github.com/jonathan/resume-enhancer/internal/types"
	schemafiles "github.com/jonathan/resume-enhancer/schemas"
)

type matchScore struct {
	Score int `json:"score"`
}

// DecodeATS decodes a schema-constrained ATS response
func DecodeATS(response string) (*types.AtsResult, error) {
	var result types.AtsResult
	if err := decode(schemafiles.ATSResult, response, &result); err != nil {
		return nil, err
	}
	result.Feedback = strings.TrimSpace(result.Feedback)
	return &result, nil
}

// DecodeKeywords decodes a schema-constrained keyword response. Keywords are
// canonicalized and deduplicated; a keyword listed as present is removed from
// the missing list.
func DecodeKeywords(response string) (*types.KeywordAnalysis, error) {
	var analysis types.KeywordAnalysis
	if err := decode(schemafiles.KeywordAnalysis, response, &analysis); err != nil {
		return nil, err
	}

	analysis.Present = NormalizeKeywords(analysis.Present)
	analysis.Missing = subtractKeywords(NormalizeKeywords(analysis.Missing), analysis.Present)
	return &analysis, nil
}

// DecodeMatchScore decodes a schema-constrained match score response
func DecodeMatchScore(response string) (int, error) {
	var m matchScore
	if err := decode(schemafiles.MatchScore, response, &m); err != nil {
		return 0, err
	}
	return m.Score, nil
}

// decode strips code fences, validates against the named schema and unmarshals into v
func decode(schemaName, response string, v any) error {
	cleaned := llm.CleanJSONBlock(response)
	if cleaned == "" {
		return &ParseError{Message: "empty response", Response: response}
	}

	if err := schemas.Validate(schemaName, cleaned); err != nil {
		return &ParseError{
			Message:  "response does not match " + schemaName,
			Response: response,
			Cause:    err,
		}
	}

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return &ParseError{
			Message:  "failed to unmarshal response",
			Response: response,
			Cause:    err,
		}
	}
	return nil
}
