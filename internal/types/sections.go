// Package types provides type definitions for structured data used throughout the resume-enhancer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SectionName identifies a category of resume content
type SectionName string

// Section names in declaration order. The first five are essential.
const (
	SectionContact        SectionName = "Contact"
	SectionSummary        SectionName = "Summary"
	SectionExperience     SectionName = "Experience"
	SectionEducation      SectionName = "Education"
	SectionSkills         SectionName = "Skills"
	SectionProjects       SectionName = "Projects"
	SectionCertifications SectionName = "Certifications"
	SectionAwards         SectionName = "Awards"
	SectionPublications   SectionName = "Publications"
)

// EssentialSections are the sections whose absence is reported to the user
var EssentialSections = []SectionName{
	SectionContact,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
}

// OptionalSections are recognized but never reported as missing
var OptionalSections = []SectionName{
	SectionProjects,
	SectionCertifications,
	SectionAwards,
	SectionPublications,
}

// AllSections returns essential followed by optional section names.
// The returned slice is a fresh copy.
func AllSections() []SectionName {
	all := make([]SectionName, 0, len(EssentialSections)+len(OptionalSections))
	all = append(all, EssentialSections...)
	return append(all, OptionalSections...)
}

// IsValid reports whether n is one of the nine known section names
func (n SectionName) IsValid() bool {
	for _, s := range AllSections() {
		if s == n {
			return true
		}
	}
	return false
}

// IsEssential reports whether n is an essential section
func (n SectionName) IsEssential() bool {
	for _, s := range EssentialSections {
		if s == n {
			return true
		}
	}
	return false
}

// SectionEntry is a single (name, content) pair of a SectionMap
type SectionEntry struct {
	Name    SectionName `json:"name"`
	Content string      `json:"content"`
}

// SectionMap maps every section name to its accumulated text.
// All nine names are always present and iteration follows declaration order.
type SectionMap struct {
	values map[SectionName]string
}

// NewSectionMap returns a map with every section set to the empty string
func NewSectionMap() SectionMap {
	values := make(map[SectionName]string, len(EssentialSections)+len(OptionalSections))
	for _, name := range AllSections() {
		values[name] = ""
	}
	return SectionMap{values: values}
}

// Get returns the content of a section, or "" for unknown names
func (m SectionMap) Get(name SectionName) string {
	return m.values[name]
}

// Append adds text to the end of a known section. Unknown names are ignored.
func (m SectionMap) Append(name SectionName, text string) {
	if _, ok := m.values[name]; !ok {
		return
	}
	m.values[name] += text
}

// Names returns all section names in declaration order
func (m SectionMap) Names() []SectionName {
	return AllSections()
}

// Entries returns every section in declaration order
func (m SectionMap) Entries() []SectionEntry {
	names := AllSections()
	entries := make([]SectionEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, SectionEntry{Name: name, Content: m.values[name]})
	}
	return entries
}

// NonEmpty returns the sections whose trimmed content is not empty
func (m SectionMap) NonEmpty() []SectionEntry {
	var entries []SectionEntry
	for _, e := range m.Entries() {
		if strings.TrimSpace(e.Content) != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

// Equal reports whether both maps hold identical content
func (m SectionMap) Equal(other SectionMap) bool {
	for _, name := range AllSections() {
		if m.values[name] != other.values[name] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the map as a JSON object with keys in declaration order
func (m SectionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range AllSections() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(name))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
