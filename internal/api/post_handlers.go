package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ryhaapp/ryha-server/internal/domain"
	"github.com/ryhaapp/ryha-server/internal/service"
)

func (s *Server) registerPublicPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts",
		Summary:     "List posts",
		Description: "Returns published posts whose publish time has passed, newest first",
		Tags:        []string{"Posts"},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFeaturedPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/featured",
		Summary:     "List featured posts",
		Description: "Returns visible featured posts by featured order",
		Tags:        []string{"Posts"},
	}, s.handleListFeaturedPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{slug}",
		Summary:     "Get post",
		Description: "Returns a visible post by slug and counts the view",
		Tags:        []string{"Posts"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "ratePost",
		Method:      http.MethodPost,
		Path:        "/api/v1/posts/{slug}/ratings",
		Summary:     "Rate post",
		Description: "Adds one reaction to a visible post",
		Tags:        []string{"Posts"},
	}, s.handleRatePost)
}

// === DTOs ===

// ListPostsInput contains parameters for the public listing.
type ListPostsInput struct {
	Category string `query:"category" doc:"Filter by category ID"`
	Tag      string `query:"tag" doc:"Filter by tag, ignoring case"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size, default 20"`
	Offset   int    `query:"offset" minimum:"0" doc:"Page offset"`
}

// PostListOutput wraps a page of posts for Huma.
type PostListOutput struct {
	Body PostListResponse
}

// PostSlugInput identifies a post by slug.
type PostSlugInput struct {
	Slug string `path:"slug" doc:"Post slug"`
}

// PostOutput wraps a post for Huma.
type PostOutput struct {
	Body PostResponse
}

// RateRequest is the request body for rating a post.
type RateRequest struct {
	Reaction string `json:"reaction" doc:"One of 😠 😕 🤔 😊 😍"`
}

// RatePostInput wraps the rating request for Huma.
type RatePostInput struct {
	Slug string `path:"slug" doc:"Post slug"`
	Body RateRequest
}

// RatingsOutput wraps a ratings histogram for Huma.
type RatingsOutput struct {
	Body RatingsResponse
}

// === Handlers ===

func (s *Server) handleListPosts(ctx context.Context, input *ListPostsInput) (*PostListOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}

	page, err := s.services.Posts.ListPublic(ctx, service.PublicFilter{
		CategoryID: input.Category,
		Tag:        input.Tag,
		Limit:      limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &PostListOutput{Body: PostListResponse{
		Posts:  toPostResponses(page.Items),
		Total:  page.Total,
		Limit:  limit,
		Offset: input.Offset,
	}}, nil
}

func (s *Server) handleListFeaturedPosts(ctx context.Context, _ *struct{}) (*PostListOutput, error) {
	posts, err := s.services.Posts.ListFeatured(ctx)
	if err != nil {
		return nil, err
	}
	return &PostListOutput{Body: PostListResponse{
		Posts: toPostResponses(posts),
		Total: len(posts),
	}}, nil
}

func (s *Server) handleGetPost(ctx context.Context, input *PostSlugInput) (*PostOutput, error) {
	post, err := s.services.Posts.RecordView(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: toPostResponse(post)}, nil
}

func (s *Server) handleRatePost(ctx context.Context, input *RatePostInput) (*RatingsOutput, error) {
	ratings, err := s.services.Posts.Rate(ctx, input.Slug, domain.Reaction(input.Body.Reaction))
	if err != nil {
		return nil, err
	}
	return &RatingsOutput{Body: RatingsResponse{
		Ratings: toRatings(ratings),
		Total:   ratings.Total(),
	}}, nil
}
