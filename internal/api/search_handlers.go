package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ryhaapp/ryha-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search posts",
		Description: "Full-text search over visible posts",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query    string `query:"q" doc:"Search terms"`
	Category string `query:"category" doc:"Filter by category ID"`
	Tag      string `query:"tag" doc:"Filter by tag"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size, default 20"`
	Offset   int    `query:"offset" minimum:"0" doc:"Page offset"`
}

// SearchHitResponse is one matching post.
type SearchHitResponse struct {
	Post       PostResponse      `json:"post" doc:"Matching post"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted fragments by field"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query string              `json:"query" doc:"Query as received"`
	Hits  []SearchHitResponse `json:"hits" doc:"Visible posts by relevance"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body SearchResponse
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, huma.Error503ServiceUnavailable("search is disabled")
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}

	hits, err := s.services.Search.Search(ctx, service.SearchInput{
		Query:      input.Query,
		CategoryID: input.Category,
		Tag:        input.Tag,
		Limit:      limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, err
	}

	resp := SearchResponse{Query: input.Query, Hits: make([]SearchHitResponse, len(hits))}
	for i := range hits {
		resp.Hits[i] = SearchHitResponse{
			Post:       toPostResponse(&hits[i].Post),
			Score:      hits[i].Score,
			Highlights: hits[i].Highlights,
		}
	}
	return &SearchOutput{Body: resp}, nil
}
