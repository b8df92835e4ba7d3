package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for post documents.
// Text fields use English stemming; ids, tags and status are keywords.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	text := func(field string, store, vectors bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = en.AnalyzerName
		fm.Store = store
		fm.IncludeTermVectors = vectors
		docMapping.AddFieldMappingsAt(field, fm)
	}
	keywordField := func(field string, store bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = store
		docMapping.AddFieldMappingsAt(field, fm)
	}

	text("title", true, true)
	text("excerpt", true, true)
	// Content is searchable but not stored (too large).
	text("content", false, false)
	text("author", true, false)
	text("category", true, false)

	keywordField("id", false)
	keywordField("slug", true)
	keywordField("status", false)
	keywordField("category_id", false)
	keywordField("tags", true)

	publishedAt := bleve.NewNumericFieldMapping()
	publishedAt.Store = true
	docMapping.AddFieldMappingsAt("published_at", publishedAt)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
