package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Metadata describes an ingested document
type Metadata struct {
	Filename   string `json:"filename,omitempty"`
	Kind       Kind   `json:"kind"`
	Timestamp  string `json:"timestamp"` // RFC3339
	Hash       string `json:"hash"`      // SHA256 hex digest of the cleaned text
	Characters int    `json:"characters"`
}

// NewMetadata creates metadata for cleaned text stamped with the current time
func NewMetadata(content, filename string, kind Kind) *Metadata {
	return &Metadata{
		Filename:   filename,
		Kind:       kind,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Hash:       computeHash(content),
		Characters: utf8.RuneCountInString(content),
	}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to indented JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
