// Package sections splits extracted resume text into named sections using
// line-by-line heuristics, and derives the views built on top of that split.
package sections

import (
	"strings"

	"github.com/jonathan/resume-enhancer/internal/types"
)

// keywordRule maps secondary keywords to a section. Rules are tried in order.
type keywordRule struct {
	keywords []string
	section  types.SectionName
}

// fallbackRules only apply before any section has been recognized
var fallbackRules = []keywordRule{
	{keywords: []string{"university", "degree"}, section: types.SectionEducation},
	{keywords: []string{"company", "worked"}, section: types.SectionExperience},
	{keywords: []string{"skill", "proficient"}, section: types.SectionSkills},
	{keywords: []string{"@", "phone"}, section: types.SectionContact},
}

// Options tunes segmentation output
type Options struct {
	// PreserveCase stores lines with their original casing. Classification
	// always uses the lowercased line.
	PreserveCase bool
}

// segmenter carries the classification state across lines of one pass.
// current is empty until the first line is classified, then it only ever
// changes when a line names a section.
type segmenter struct {
	opts     Options
	current  types.SectionName
	sections types.SectionMap
}

// Segment splits text into the nine known sections. Accumulated lines are
// trimmed and lowercased, each followed by a newline. It returns the section
// map and the essential sections that ended up empty.
func Segment(text string) (types.SectionMap, []types.SectionName) {
	return SegmentWithOptions(text, Options{})
}

// SegmentWithOptions is Segment with explicit options
func SegmentWithOptions(text string, opts Options) (types.SectionMap, []types.SectionName) {
	s := &segmenter{
		opts:     opts,
		sections: types.NewSectionMap(),
	}
	for _, raw := range strings.Split(text, "\n") {
		s.feed(raw)
	}
	return s.sections, Missing(s.sections)
}

func (s *segmenter) feed(raw string) {
	trimmed := strings.TrimSpace(raw)
	line := strings.ToLower(trimmed)

	if name, ok := matchSectionName(line); ok {
		s.current = name
	} else if s.current == "" && line != "" {
		if name, ok := matchFallback(line); ok {
			s.current = name
		}
	}

	if s.current == "" || line == "" {
		return
	}

	stored := line
	if s.opts.PreserveCase {
		stored = trimmed
	}
	s.sections.Append(s.current, stored+"\n")
}

// matchSectionName returns the first section, in declaration order, whose
// lowercased name occurs anywhere in line
func matchSectionName(line string) (types.SectionName, bool) {
	for _, name := range types.AllSections() {
		if strings.Contains(line, strings.ToLower(string(name))) {
			return name, true
		}
	}
	return "", false
}

func matchFallback(line string) (types.SectionName, bool) {
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(line, kw) {
				return rule.section, true
			}
		}
	}
	return "", false
}

// Missing returns the essential sections whose content is empty or whitespace.
// The result is never nil.
func Missing(m types.SectionMap) []types.SectionName {
	missing := make([]types.SectionName, 0, len(types.EssentialSections))
	for _, name := range types.EssentialSections {
		if strings.TrimSpace(m.Get(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
