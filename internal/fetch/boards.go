package fetch

import (
	"net/url"
	"strings"
)

// Board is a job board whose page layout is known
type Board string

const (
	BoardGreenhouse Board = "greenhouse"
	BoardLever      Board = "lever"
	BoardWorkday    Board = "workday"
	BoardUnknown    Board = "unknown"
)

var boardHosts = []struct {
	suffix string
	board  Board
}{
	{"greenhouse.io", BoardGreenhouse},
	{"lever.co", BoardLever},
	{"myworkdayjobs.com", BoardWorkday},
	{"workday.com", BoardWorkday},
}

// DetectBoard identifies the job board from the URL host
func DetectBoard(rawURL string) Board {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return BoardUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, h := range boardHosts {
		if host == h.suffix || strings.HasSuffix(host, "."+h.suffix) {
			return h.board
		}
	}
	return BoardUnknown
}

var genericSelectors = []string{
	".job-description",
	"#job-description",
	".job-content",
	".job-details",
	".posting-content",
	"[data-testid='job-description']",
	"main",
	"article",
	"#content",
	".content",
}

var boardSelectors = map[Board][]string{
	BoardGreenhouse: {".job__description.body", ".job__description", ".job-description__content", "#content"},
	BoardLever:      {".posting-page", ".posting-description", ".section-wrapper.page-full-width", ".content"},
	BoardWorkday:    {"[data-automation-id='jobDescription']", ".job-description"},
}

// ContentSelectors lists where the description lives, most specific first
func (b Board) ContentSelectors() []string {
	if selectors, ok := boardSelectors[b]; ok {
		return selectors
	}
	return genericSelectors
}

var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	".eeo-statement",
	".voluntary-disclosure",
	".legal-disclosure",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

var boardNoise = map[Board][]string{
	BoardGreenhouse: {".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	BoardLever:      {".apply-section", ".lever-application-form", ".posting-apply"},
	BoardWorkday:    {"[data-automation-id='applyButton']", ".application-section"},
}

// NoiseSelectors lists elements removed before extracting text
func (b Board) NoiseSelectors() []string {
	return append(append([]string(nil), commonNoise...), boardNoise[b]...)
}
