// CLAUDE:SUMMARY Datasheet ingestion: parses PDF and HTML dataset documentation into structured sections.
// Package datasheet parses dataset documentation files (papers, web pages)
// so their metadata can be imported into the catalog.
//
// PDF datasheets are read with pdfcpu; HTML pages are walked with
// golang.org/x/net/html. Both produce the same Document shape. HTML pages
// additionally support feature-table extraction for schema import.
package datasheet

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a datasheet type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// Section is a structural unit of a datasheet.
type Section struct {
	Title    string            `json:"title,omitempty"`
	Level    int               `json:"level"` // heading level 1-6, 0 for body
	Text     string            `json:"text"`
	Type     string            `json:"type"` // heading, paragraph, table, list, page
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Document is the result of parsing a datasheet.
type Document struct {
	Path     string             `json:"path"`
	Format   Format             `json:"format"`
	Title    string             `json:"title"`
	Sections []Section          `json:"sections"`
	RawText  string             `json:"raw_text"`
	Quality  *ExtractionQuality `json:"quality,omitempty"` // PDF only
}

// DetectFormat guesses the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("datasheet: unsupported extension %q", filepath.Ext(path))
	}
}

// Parse reads a datasheet file and extracts its structure.
func Parse(path string) (*Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{Path: path, Format: format}
	switch format {
	case FormatPDF:
		doc.Title, doc.Sections, doc.Quality, err = extractPDF(path)
	case FormatHTML:
		doc.Title, doc.Sections, err = extractHTMLFile(path)
	}
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, s := range doc.Sections {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Text)
	}
	doc.RawText = sb.String()
	return doc, nil
}

// Description returns the first substantial paragraph of the datasheet, a
// reasonable default for the catalog description field.
func (d *Document) Description() string {
	for _, s := range d.Sections {
		if s.Type != "paragraph" && s.Type != "page" {
			continue
		}
		text := strings.TrimSpace(s.Text)
		if len(text) >= 80 {
			return text
		}
	}
	return ""
}

// Citation returns the first BibTeX entry found in the datasheet, balanced
// through its closing brace, or "" if none is present.
func (d *Document) Citation() string {
	text := d.RawText
	for i := 0; i < len(text); i++ {
		if text[i] != '@' {
			continue
		}
		// Entry type must be letters followed by an opening brace.
		j := i + 1
		for j < len(text) && isBibLetter(text[j]) {
			j++
		}
		if j == i+1 || j >= len(text) || text[j] != '{' {
			continue
		}
		depth := 0
		for k := j; k < len(text); k++ {
			switch text[k] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return text[i : k+1]
				}
			}
		}
		return "" // unbalanced, give up rather than return a fragment
	}
	return ""
}

func isBibLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
