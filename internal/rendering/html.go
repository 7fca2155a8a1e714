package rendering

import (
	"bytes"
	"html/template"

	"github.com/jonathan/resume-enhancer/internal/types"
)

// Options selects the export layout
type Options struct {
	Template string
	Color    string
	Font     string
}

// OptionsFrom converts validated export options from a request
func OptionsFrom(o types.ExportOptions) Options {
	return Options{Template: o.Template, Color: o.Color, Font: o.Font}
}

type htmlSection struct {
	Heading string
	Body    string
}

type htmlData struct {
	FontFamily template.CSS
	TitleSize  int
	BodySize   int
	TitleColor template.CSS
	Sections   []htmlSection
}

const resumeLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Resume</title>
<style>
@page { size: Letter; margin: 0.75in; }
body { font-family: {{.FontFamily}}; font-size: {{.BodySize}}pt; color: black; margin: 0; }
h1 { font-size: {{.TitleSize}}pt; color: {{.TitleColor}}; margin: 0 0 12pt 0; }
h2 { font-size: {{.BodySize}}pt; font-weight: bold; margin: 12pt 0 4pt 0; }
.body { white-space: pre-wrap; margin: 0; }
</style>
</head>
<body>
<h1>Resume</h1>
{{- range .Sections}}
<section>
<h2>{{.Heading}}</h2>
<p class="body">{{.Body}}</p>
</section>
{{- end}}
</body>
</html>
`

var layout = template.Must(template.New("resume").Parse(resumeLayout))

// RenderHTML lays out the non-empty sections of m in declaration order under
// a "Resume" title
func RenderHTML(m types.SectionMap, opts Options) (string, error) {
	tmpl := LookupTemplate(opts.Template)

	data := htmlData{
		FontFamily: template.CSS(FontFamily(opts.Font)),
		TitleSize:  tmpl.TitleSize,
		BodySize:   tmpl.BodySize,
		TitleColor: template.CSS(tmpl.TitleColor(opts.Color)),
	}
	for _, entry := range m.NonEmpty() {
		data.Sections = append(data.Sections, htmlSection{
			Heading: string(entry.Name),
			Body:    entry.Content,
		})
	}

	var buf bytes.Buffer
	if err := layout.Execute(&buf, data); err != nil {
		return "", &TemplateError{Message: "failed to execute resume layout", Cause: err}
	}
	return buf.String(), nil
}
