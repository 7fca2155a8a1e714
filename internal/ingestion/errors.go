package ingestion

import "fmt"

// UnreadableMessage is the user-facing warning for documents that yield no text
const UnreadableMessage = "Uploaded file is empty or unreadable."

// ExtractionError reports a document that could not be turned into text.
// Handlers surface it as a warning rather than a failure.
type ExtractionError struct {
	Filename string
	Message  string
	Cause    error
}

func (e *ExtractionError) Error() string {
	name := e.Filename
	if name == "" {
		name = "document"
	}
	if e.Cause != nil {
		return fmt.Sprintf("extracting %s: %s: %v", name, e.Message, e.Cause)
	}
	return fmt.Sprintf("extracting %s: %s", name, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
