package rendering

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockedElements never survive sanitizing
const blockedElements = "script, iframe, object, embed, base, meta[http-equiv]"

// SanitizePortfolio extracts the HTML document from an LLM reply and strips
// executable content: script-like elements, on* handler attributes and
// javascript: URLs. Markdown code fences around the page are removed.
func SanitizePortfolio(reply string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(stripFence(reply)))
	if err != nil {
		return "", &RenderError{Message: "failed to parse portfolio HTML", Cause: err}
	}

	doc.Find(blockedElements).Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			var drop []string
			for _, attr := range node.Attr {
				name := strings.ToLower(attr.Key)
				value := strings.ToLower(strings.TrimSpace(attr.Val))
				if strings.HasPrefix(name, "on") || strings.HasPrefix(value, "javascript:") {
					drop = append(drop, attr.Key)
				}
			}
			for _, name := range drop {
				s.RemoveAttr(name)
			}
		}
	})

	html, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return "", &RenderError{Message: "failed to serialize portfolio HTML", Cause: err}
	}
	if !strings.HasPrefix(strings.ToLower(html), "<!doctype") {
		html = "<!DOCTYPE html>\n" + html
	}
	return html, nil
}

// PlainText returns the text of a model reply. A surrounding code fence is
// removed. Only a full HTML document is flattened to its text content, one
// block per line; anything else, including Markdown autolinks such as
// <jane@example.com>, is returned trimmed and otherwise unchanged.
func PlainText(s string) string {
	s = stripFence(s)
	if !isHTMLDocument(s) {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func isHTMLDocument(s string) bool {
	head := strings.ToLower(s[:min(len(s), 16)])
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
