// Package ingestion extracts and cleans text from uploaded resume and job
// description documents.
package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Kind is the detected document format
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDocx Kind = "docx"
	KindText Kind = "text"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// Document is the cleaned text of an upload plus its metadata
type Document struct {
	Text     string
	Metadata *Metadata
}

// DetectKind picks a format from the file content, falling back to the
// filename extension. Unknown content is treated as plain text.
func DetectKind(filename string, data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(data, zipMagic):
		return KindDocx
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDocx
	default:
		return KindText
	}
}

// Extract converts an uploaded document into cleaned text. Empty or
// unreadable documents yield an *ExtractionError.
func Extract(filename string, data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ExtractionError{Filename: filename, Message: "file is empty"}
	}

	kind := DetectKind(filename, data)

	var (
		raw string
		err error
	)
	switch kind {
	case KindPDF:
		raw, err = ExtractPDF(data)
	case KindDocx:
		raw, err = ExtractDocx(data)
	default:
		raw = string(data)
	}
	if err != nil {
		return nil, &ExtractionError{Filename: filename, Message: fmt.Sprintf("invalid %s", kind), Cause: err}
	}

	text := CleanText(raw)
	if text == "" {
		return nil, &ExtractionError{Filename: filename, Message: "no text found"}
	}

	return &Document{
		Text:     text,
		Metadata: NewMetadata(text, filename, kind),
	}, nil
}

// IngestFile reads a document from disk and extracts its text
func IngestFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Extract(filepath.Base(path), data)
}

// ExtractPDF returns the plain text of every page of a PDF
func ExtractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ExtractDocx returns the paragraph text of a Word document, one paragraph per line
func ExtractDocx(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return flattenWordXML(doc.Editable().GetContent())
}

// flattenWordXML walks WordprocessingML and keeps the run text. Paragraphs
// and breaks become newlines, tabs become tab characters.
func flattenWordXML(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var (
		sb     strings.Builder
		inText bool
	)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
