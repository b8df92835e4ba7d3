package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ryhaapp/ryha-server/internal/domain"
	"github.com/ryhaapp/ryha-server/internal/service"
)

func (s *Server) registerGenerationRoutes() {
	admin := huma.Middlewares{s.requireAdmin}

	huma.Register(s.api, huma.Operation{
		OperationID: "adminPreviewGeneratedPost",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/generate/preview",
		Summary:     "Preview generated post",
		Description: "Generates title, body and images for a topic without saving",
		Tags:        []string{"Generation"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handlePreviewGeneration)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminGeneratePost",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/generate",
		Summary:       "Generate and save post",
		Description:   "Generates a post for a topic and saves it, as a draft unless another publish action is given",
		Tags:          []string{"Generation"},
		Security:      adminSecurity,
		Middlewares:   admin,
		DefaultStatus: http.StatusCreated,
	}, s.handleGeneratePost)
}

// === DTOs ===

// GenerateRequest asks for a generated post.
type GenerateRequest struct {
	Topic         string     `json:"topic" doc:"What the post is about, 3 to 200 characters"`
	Keywords      []string   `json:"keywords,omitempty" doc:"SEO keywords, saved as tags"`
	Instructions  string     `json:"instructions,omitempty" doc:"Extra instructions for the writer"`
	Tone          string     `json:"tone,omitempty" doc:"Writing tone, e.g. professional"`
	Length        string     `json:"length,omitempty" doc:"short, medium or long"`
	AuthorID      string     `json:"authorId,omitempty" doc:"Author of the saved post"`
	CategoryID    string     `json:"categoryId,omitempty" doc:"Category of the saved post"`
	PublishAction string     `json:"publishAction,omitempty" doc:"draft, now or schedule; defaults to draft"`
	ScheduledAt   *time.Time `json:"scheduledAt,omitempty" doc:"Publish time, required for schedule"`
}

func (r GenerateRequest) toInput() service.GenerateInput {
	return service.GenerateInput{
		Topic:         r.Topic,
		Keywords:      r.Keywords,
		Instructions:  r.Instructions,
		Tone:          r.Tone,
		Length:        r.Length,
		AuthorID:      r.AuthorID,
		CategoryID:    r.CategoryID,
		PublishAction: domain.PublishAction(r.PublishAction),
		ScheduledAt:   r.ScheduledAt,
	}
}

// GenerateInput wraps the generation request for Huma.
type GenerateInput struct {
	Body GenerateRequest
}

// GenerationReport says how image generation went.
type GenerationReport struct {
	HeroFallback    bool   `json:"heroFallback" doc:"Hero image failed and the fallback image was used"`
	HeroError       string `json:"heroError,omitempty" doc:"Why the hero image failed"`
	InlineRequested int    `json:"inlineRequested" doc:"Image placeholders in the generated text"`
	InlinePlaced    int    `json:"inlinePlaced" doc:"Placeholders replaced by an image"`
}

// PreviewResponse is a generated, unsaved post.
type PreviewResponse struct {
	Title    string `json:"title" doc:"Generated title"`
	Content  string `json:"content" doc:"Generated HTML with images placed"`
	ImageURL string `json:"imageUrl" doc:"Hero image URL"`
	GenerationReport
}

// PreviewOutput wraps a preview for Huma.
type PreviewOutput struct {
	Body PreviewResponse
}

// GeneratedPostResponse is a saved generated post.
type GeneratedPostResponse struct {
	Post PostResponse `json:"post" doc:"Saved post"`
	GenerationReport
}

// GeneratedPostOutput wraps a saved generated post for Huma.
type GeneratedPostOutput struct {
	Body GeneratedPostResponse
}

// === Handlers ===

func (s *Server) handlePreviewGeneration(ctx context.Context, input *GenerateInput) (*PreviewOutput, error) {
	result, err := s.services.Generation.Preview(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}

	report := GenerationReport{
		HeroFallback:    result.HeroImageErr != nil,
		InlineRequested: result.InlineRequested,
		InlinePlaced:    result.InlinePlaced,
	}
	if result.HeroImageErr != nil {
		report.HeroError = result.HeroImageErr.Error()
	}

	return &PreviewOutput{Body: PreviewResponse{
		Title:            result.Title,
		Content:          result.Content,
		ImageURL:         result.ImageURL,
		GenerationReport: report,
	}}, nil
}

func (s *Server) handleGeneratePost(ctx context.Context, input *GenerateInput) (*GeneratedPostOutput, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	generated, err := s.services.Generation.GenerateAndSave(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin generated post",
		"email", session.Email,
		"post_id", generated.Post.ID,
		"hero_fallback", generated.HeroFallback,
	)
	return &GeneratedPostOutput{Body: GeneratedPostResponse{
		Post: toPostResponse(generated.Post),
		GenerationReport: GenerationReport{
			HeroFallback:    generated.HeroFallback,
			InlineRequested: generated.InlineRequested,
			InlinePlaced:    generated.InlinePlaced,
		},
	}}, nil
}
