// CLAUDE:SUMMARY HTML datasheet walker: headings, paragraphs, tables, plus feature-schema table extraction.
package datasheet

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
	regexp.MustCompile(`(?i)font-size\s*:\s*0[^1-9]`),
	regexp.MustCompile(`(?i)opacity\s*:\s*0[^.]`),
}

func hasHiddenStyle(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "style" {
			for _, pat := range hiddenStylePatterns {
				if pat.MatchString(a.Val) {
					return true
				}
			}
		}
	}
	return false
}

// extractHTMLFile extracts structured content from an HTML datasheet.
func extractHTMLFile(path string) (string, []Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return ExtractHTML(data)
}

// ExtractHTML extracts structured content from HTML bytes.
func ExtractHTML(data []byte) (string, []Section, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}

	title := findTitle(doc)

	var sections []Section
	walkSections(doc, &sections)

	if len(sections) == 0 {
		// Fallback: extract all text.
		if text := nodeText(doc); text != "" {
			sections = append(sections, Section{Text: text, Type: "paragraph"})
		}
	}
	return title, sections, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && (n.DataAtom == atom.Title || n.DataAtom == atom.H1) {
		if text := nodeText(n); text != "" {
			return text
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func walkSections(n *html.Node, sections *[]Section) {
	if hasHiddenStyle(n) {
		return
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Footer:
			return
		}

		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			if text := nodeText(n); text != "" {
				*sections = append(*sections, Section{
					Title: text,
					Level: int(n.Data[1] - '0'),
					Text:  text,
					Type:  "heading",
				})
			}
			return
		case atom.P:
			if text := nodeText(n); text != "" {
				*sections = append(*sections, Section{Text: text, Type: "paragraph"})
			}
			return
		case atom.Table:
			if text := nodeText(n); text != "" {
				*sections = append(*sections, Section{Text: text, Type: "table"})
			}
			return
		case atom.Ul, atom.Ol:
			if text := nodeText(n); text != "" {
				*sections = append(*sections, Section{Text: text, Type: "list"})
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkSections(c, sections)
	}
}

// nodeText extracts all visible text from a node subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			if hasHiddenStyle(n) {
				return
			}
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// FeatureRow is one row of a feature-schema table found in a datasheet.
type FeatureRow struct {
	Name  string `json:"name"`
	Shape string `json:"shape"`
	Dtype string `json:"dtype"`
}

// ExtractFeatureRows finds the first table whose header names a feature
// column and returns its rows. Column order is taken from the header, so
// "Feature | Shape | Dtype" and "Feature | Dtype" both work.
func ExtractFeatureRows(data []byte) ([]FeatureRow, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var rows []FeatureRow
	var findTable func(*html.Node) bool
	findTable = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			if r := parseFeatureTable(n); r != nil {
				rows = r
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if findTable(c) {
				return true
			}
		}
		return false
	}
	findTable(doc)
	return rows, nil
}

func parseFeatureTable(table *html.Node) []FeatureRow {
	var trs []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			trs = append(trs, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(table)
	if len(trs) < 2 {
		return nil
	}

	// Map header columns to fields.
	header := cellTexts(trs[0])
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameIdx, ok := cols["feature"]
	if !ok {
		if nameIdx, ok = cols["name"]; !ok {
			return nil
		}
	}
	shapeIdx, hasShape := cols["shape"]
	dtypeIdx, hasDtype := cols["dtype"]

	var rows []FeatureRow
	for _, tr := range trs[1:] {
		cells := cellTexts(tr)
		if nameIdx >= len(cells) {
			continue
		}
		row := FeatureRow{Name: cells[nameIdx]}
		if hasShape && shapeIdx < len(cells) {
			row.Shape = cells[shapeIdx]
		}
		if hasDtype && dtypeIdx < len(cells) {
			row.Dtype = cells[dtypeIdx]
		}
		if row.Name != "" {
			rows = append(rows, row)
		}
	}
	return rows
}

func cellTexts(tr *html.Node) []string {
	var cells []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Td || n.DataAtom == atom.Th) {
			cells = append(cells, nodeText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tr)
	return cells
}
