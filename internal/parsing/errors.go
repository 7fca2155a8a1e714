// Package parsing interprets free-text and JSON responses from the LLM into
// structured scores, feedback and keyword lists.
package parsing

import "fmt"

// APICallError represents a failure to obtain a response from the LLM
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents an LLM response that could not be interpreted
type ParseError struct {
	Message string
	// Response is the raw text that failed to parse
	Response string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
