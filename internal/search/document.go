// Package search provides full-text search over posts using Bleve.
package search

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/ryhaapp/ryha-server/internal/domain"
)

// PostDocument is what the index stores for a post. Author and category
// names are denormalized so one query covers them.
type PostDocument struct {
	ID          string
	Slug        string
	Title       string
	Excerpt     string
	Content     string // markdown text of the HTML body
	Tags        []string
	Author      string
	Category    string
	CategoryID  string
	Status      string
	PublishedAt int64 // Unix millis
}

// ToMap converts the document to a map with the field names of the mapping.
func (d *PostDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":           d.ID,
		"slug":         d.Slug,
		"title":        d.Title,
		"status":       d.Status,
		"published_at": d.PublishedAt,
	}
	if d.Excerpt != "" {
		m["excerpt"] = d.Excerpt
	}
	if d.Content != "" {
		m["content"] = d.Content
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if d.CategoryID != "" {
		m["category_id"] = d.CategoryID
	}
	return m
}

// FromPost builds the index document for a hydrated post.
func FromPost(p domain.HydratedPost) *PostDocument {
	doc := &PostDocument{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Content:     htmlToMarkdown(p.Content),
		Tags:        lowerAll(p.Tags),
		CategoryID:  p.CategoryID,
		Status:      string(p.Status),
		PublishedAt: p.PublishedAt.UnixMilli(),
	}
	if p.Author != nil {
		doc.Author = p.Author.Name
	}
	if p.Category != nil {
		doc.Category = p.Category.Name
	}
	return doc
}

func lowerAll(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ToLower(t)
	}
	return out
}

// htmlTagPattern detects whether a string contains HTML markup.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote|img)[\s>/]`)

// htmlToMarkdown converts HTML content to Markdown so tags and attributes
// are not indexed. Plain text is returned unchanged.
func htmlToMarkdown(s string) string {
	if s == "" || !htmlTagPattern.MatchString(strings.ToLower(s)) {
		return s
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
