package rendering

import (
	"regexp"
	"strings"
)

// Template names
const (
	TemplateStandard  = "Standard"
	TemplateExecutive = "Executive"
	TemplateCreative  = "Creative"
	TemplateTechnical = "Technical"
)

// Font names accepted for export
const (
	FontHelvetica = "Helvetica"
	FontTimes     = "Times-Roman"
	FontCourier   = "Courier"
)

const (
	defaultTitleSize = 18
	defaultBodySize  = 11
)

// Template is a PDF layout preset. Sizes are in points.
type Template struct {
	Name         string
	TitleSize    int
	BodySize     int
	DefaultColor string
	// Colored templates paint the title in the chosen color; others stay black
	Colored bool
}

var templates = map[string]Template{
	TemplateStandard:  {Name: TemplateStandard, TitleSize: defaultTitleSize, BodySize: defaultBodySize, DefaultColor: "black"},
	TemplateExecutive: {Name: TemplateExecutive, TitleSize: 24, BodySize: defaultBodySize, DefaultColor: "navy", Colored: true},
	TemplateCreative:  {Name: TemplateCreative, TitleSize: 20, BodySize: defaultBodySize, DefaultColor: "teal", Colored: true},
	TemplateTechnical: {Name: TemplateTechnical, TitleSize: 22, BodySize: 10, DefaultColor: "gray", Colored: true},
}

// TemplateNames lists the templates in menu order
var TemplateNames = []string{TemplateStandard, TemplateExecutive, TemplateCreative, TemplateTechnical}

// LookupTemplate returns the named template. Unknown names, including the
// empty string, return Standard.
func LookupTemplate(name string) Template {
	if t, ok := templates[strings.TrimSpace(name)]; ok {
		return t
	}
	return templates[TemplateStandard]
}

var fontFamilies = map[string]string{
	FontHelvetica: `Helvetica, Arial, sans-serif`,
	FontTimes:     `"Times New Roman", Times, serif`,
	FontCourier:   `"Courier New", Courier, monospace`,
}

// FontFamily maps an export font name to a CSS font stack. Unknown names use Helvetica.
func FontFamily(font string) string {
	if family, ok := fontFamilies[font]; ok {
		return family
	}
	return fontFamilies[FontHelvetica]
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]{3,20})$`)

// TitleColor resolves the CSS color of the title. Uncolored templates are
// always black; an empty or malformed color uses the template default.
func (t Template) TitleColor(color string) string {
	if !t.Colored {
		return "black"
	}
	color = strings.TrimSpace(color)
	if !colorPattern.MatchString(color) {
		return t.DefaultColor
	}
	return strings.ToLower(color)
}
