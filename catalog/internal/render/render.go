// CLAUDE:SUMMARY Markdown catalog-page rendering, HTML sanitization, and a watch-purged page cache.
// Package render produces the public markdown view of a catalog entry and
// derived renditions of fetched example pages.
//
// The raw example payload is kept verbatim elsewhere; everything this package
// outputs is a derived view. Page renders are cached until Purge is called,
// typically from a watch loop observing the catalog database.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/framehub/datacat/catalog/internal/store"
)

// Renderer converts catalog entities to markdown and sanitizes upstream HTML.
// Safe for concurrent use.
type Renderer struct {
	conv   *converter.Converter
	policy *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]string // dataset ID → rendered page
}

// New creates a Renderer with an empty cache.
func New() *Renderer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "td", "th", "div", "span")
	return &Renderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		policy: p,
		cache:  make(map[string]string),
	}
}

// Sanitize strips scripts, event handlers and other active content from
// upstream HTML so it can be embedded in catalog pages.
func (r *Renderer) Sanitize(html string) string {
	return r.policy.Sanitize(html)
}

// ToMarkdown converts HTML to markdown. If conversion fails or produces
// empty output, returns the fallback.
func (r *Renderer) ToMarkdown(html, sourceURL, fallback string) string {
	if html == "" {
		return fallback
	}
	result, err := r.conv.ConvertString(html, converter.WithDomain(sourceURL))
	if err != nil || strings.TrimSpace(result) == "" {
		return fallback
	}
	return strings.TrimSpace(result)
}

// Page renders the markdown catalog page for a dataset: metadata, feature
// schema table, and citation. The result is cached per dataset ID until
// Purge is called.
func (r *Renderer) Page(d *store.Dataset, features []*store.Feature) string {
	r.mu.RLock()
	cached, ok := r.cache[d.ID]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Name)
	if d.Description != "" {
		b.WriteString(d.Description)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "*   **Version**: `%s`\n", d.Version)
	if d.Homepage != "" {
		fmt.Fprintf(&b, "*   **Homepage**: [%s](%s)\n", d.Homepage, d.Homepage)
	}
	b.WriteString("\n")

	if len(features) > 0 {
		b.WriteString("## Feature structure\n\n")
		b.WriteString("| Feature | Shape | Dtype |\n")
		b.WriteString("| :------ | :---- | :---- |\n")
		for _, f := range features {
			shape := f.ShapeJSON
			if shape == "[]" {
				shape = ""
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", f.Name, shape, f.Dtype)
		}
		b.WriteString("\n")
	}

	if d.Citation != "" {
		b.WriteString("## Citation\n\n```\n")
		b.WriteString(strings.TrimSpace(d.Citation))
		b.WriteString("\n```\n")
	}

	page := b.String()
	r.mu.Lock()
	r.cache[d.ID] = page
	r.mu.Unlock()
	return page
}

// Purge drops all cached pages. Wired to the database watcher so external
// writes invalidate stale renders.
func (r *Renderer) Purge() {
	r.mu.Lock()
	r.cache = make(map[string]string)
	r.mu.Unlock()
}

// CacheSize returns the number of cached pages.
func (r *Renderer) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
