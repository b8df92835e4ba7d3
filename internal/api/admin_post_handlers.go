package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ryhaapp/ryha-server/internal/service"
)

func (s *Server) registerAdminPostRoutes() {
	admin := huma.Middlewares{s.requireAdmin}

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/posts",
		Summary:     "List posts",
		Description: "Returns drafts and published posts, newest first. Scheduled posts are listed separately.",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleAdminListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListScheduledPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/posts/scheduled",
		Summary:     "List scheduled posts",
		Description: "Returns scheduled posts, soonest first",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleAdminListScheduled)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetPostBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/posts/slug/{slug}",
		Summary:     "Get post by slug",
		Description: "Returns a post of any status by slug",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleAdminGetPostBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/posts/{id}",
		Summary:     "Get post",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleAdminGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreatePost",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/posts",
		Summary:       "Create post",
		Description:   "Validates the post, derives its slug and applies the publish action",
		Tags:          []string{"Admin"},
		Security:      adminSecurity,
		Middlewares:   admin,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdatePost",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/posts/{id}",
		Summary:     "Update post",
		Description: "Replaces the editable fields of a post and re-applies the publish action",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleUpdatePost)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminDeletePost",
		Method:        http.MethodDelete,
		Path:          "/api/v1/admin/posts/{id}",
		Summary:       "Delete post",
		Tags:          []string{"Admin"},
		Security:      adminSecurity,
		Middlewares:   admin,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeletePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetPostStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/posts/{id}/stats",
		Summary:     "Post stats",
		Description: "Returns views and reactions of one post",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleGetPostStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/dashboard",
		Summary:     "Dashboard",
		Description: "Returns site-wide post counts, views and top posts",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleDashboard)
}

// === DTOs ===

// CreatePostInput wraps the create post request for Huma.
type CreatePostInput struct {
	Body PostRequest
}

// UpdatePostInput wraps the update post request for Huma.
type UpdatePostInput struct {
	ID   string `path:"id" doc:"Post ID"`
	Body PostRequest
}

// PostStatsOutput wraps a post's stats for Huma.
type PostStatsOutput struct {
	Body *service.PostStats
}

// DashboardOutput wraps dashboard stats for Huma.
type DashboardOutput struct {
	Body *service.DashboardStats
}

// === Handlers ===

func (s *Server) handleAdminListPosts(ctx context.Context, _ *struct{}) (*PostListOutput, error) {
	posts, err := s.services.Posts.ListAdmin(ctx)
	if err != nil {
		return nil, err
	}
	return &PostListOutput{Body: PostListResponse{Posts: toPostResponses(posts), Total: len(posts)}}, nil
}

func (s *Server) handleAdminListScheduled(ctx context.Context, _ *struct{}) (*PostListOutput, error) {
	posts, err := s.services.Posts.ListScheduled(ctx)
	if err != nil {
		return nil, err
	}
	return &PostListOutput{Body: PostListResponse{Posts: toPostResponses(posts), Total: len(posts)}}, nil
}

func (s *Server) handleAdminGetPost(ctx context.Context, input *IDInput) (*PostOutput, error) {
	post, err := s.services.Posts.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: toPostResponse(post)}, nil
}

func (s *Server) handleAdminGetPostBySlug(ctx context.Context, input *PostSlugInput) (*PostOutput, error) {
	post, err := s.services.Posts.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: toPostResponse(post)}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Posts.Create(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin created post", "email", session.Email, "post_id", post.ID)
	return &PostOutput{Body: toPostResponse(post)}, nil
}

func (s *Server) handleUpdatePost(ctx context.Context, input *UpdatePostInput) (*PostOutput, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Posts.Update(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin updated post", "email", session.Email, "post_id", post.ID)
	return &PostOutput{Body: toPostResponse(post)}, nil
}

func (s *Server) handleDeletePost(ctx context.Context, input *IDInput) (*struct{}, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Posts.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	s.logger.Info("admin deleted post", "email", session.Email, "post_id", input.ID)
	return nil, nil
}

func (s *Server) handleGetPostStats(ctx context.Context, input *IDInput) (*PostStatsOutput, error) {
	stats, err := s.services.Stats.Post(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PostStatsOutput{Body: stats}, nil
}

func (s *Server) handleDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	stats, err := s.services.Stats.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardOutput{Body: stats}, nil
}
