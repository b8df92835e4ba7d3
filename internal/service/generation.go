package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/generation"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/validation"
)

// excerptLength is the number of characters of body text used as excerpt.
const excerptLength = 150

// Generator produces a complete post from a topic.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// GenerateInput asks for a generated post.
type GenerateInput struct {
	Topic        string   `json:"topic" validate:"min=3,max=200"`
	Keywords     []string `json:"keywords" validate:"max=20,dive,max=50"`
	Instructions string   `json:"instructions" validate:"max=2000"`
	Tone         string   `json:"tone" validate:"max=50"`
	Length       string   `json:"length" validate:"omitempty,oneof=short medium long"`

	// Used by GenerateAndSave only.
	AuthorID      string               `json:"authorId"`
	CategoryID    string               `json:"categoryId"`
	PublishAction domain.PublishAction `json:"publishAction" validate:"omitempty,oneof=draft now schedule"`
	ScheduledAt   *time.Time           `json:"scheduledAt,omitempty"`
}

func (in *GenerateInput) normalize() {
	in.Topic = strings.TrimSpace(in.Topic)
	in.Instructions = strings.TrimSpace(in.Instructions)
	in.Tone = strings.TrimSpace(in.Tone)
	in.Length = strings.ToLower(strings.TrimSpace(in.Length))
	in.Keywords = CleanTags(in.Keywords)
	if in.PublishAction == "" {
		in.PublishAction = domain.PublishActionDraft
	}
}

func (in GenerateInput) request() generation.Request {
	return generation.Request{
		Topic:        in.Topic,
		Keywords:     in.Keywords,
		Instructions: in.Instructions,
		Tone:         in.Tone,
		Length:       in.Length,
	}
}

// GeneratedPost is a saved generated post plus how generation went.
type GeneratedPost struct {
	Post            *domain.HydratedPost `json:"post"`
	HeroFallback    bool                 `json:"heroFallback"`
	InlineRequested int                  `json:"inlineRequested"`
	InlinePlaced    int                  `json:"inlinePlaced"`
}

// GenerationService turns generated content into stored posts.
type GenerationService struct {
	generator Generator
	posts     *PostService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewGenerationService creates the service. A nil generator makes every call
// fail with GenerationFailed.
func NewGenerationService(gen Generator, posts *PostService, v *validation.Validator, log *slog.Logger) *GenerationService {
	return &GenerationService{
		generator: gen,
		posts:     posts,
		validator: v,
		logger:    logger.OrDiscard(log),
	}
}

// Enabled reports whether a generator is configured.
func (s *GenerationService) Enabled() bool {
	return s.generator != nil
}

// Preview generates a post without saving it.
func (s *GenerationService) Preview(ctx context.Context, in GenerateInput) (*generation.Result, error) {
	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	return s.generate(ctx, in)
}

// GenerateAndSave generates a post and stores it through PostService.Create.
// The publish action defaults to draft.
func (s *GenerationService) GenerateAndSave(ctx context.Context, in GenerateInput) (*GeneratedPost, error) {
	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	result, err := s.generate(ctx, in)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, PostInput{
		Title:         result.Title,
		Excerpt:       Excerpt(result.Content, result.Title),
		Content:       result.Content,
		ImageURL:      result.ImageURL,
		ImageHint:     hint(in.Topic),
		AuthorID:      in.AuthorID,
		CategoryID:    in.CategoryID,
		Tags:          in.Keywords,
		PublishAction: in.PublishAction,
		ScheduledAt:   in.ScheduledAt,
	})
	if err != nil {
		return nil, err
	}

	return &GeneratedPost{
		Post:            post,
		HeroFallback:    result.HeroImageErr != nil,
		InlineRequested: result.InlineRequested,
		InlinePlaced:    result.InlinePlaced,
	}, nil
}

func (s *GenerationService) generate(ctx context.Context, in GenerateInput) (*generation.Result, error) {
	if s.generator == nil {
		return nil, domainerrors.GenerationFailed("AI generation is not configured", nil)
	}
	return s.generator.Generate(ctx, in.request())
}

func hint(topic string) string {
	if r := []rune(topic); len(r) > 100 {
		return string(r[:100])
	}
	return topic
}

// Excerpt returns the first characters of the text inside content followed
// by "...". Falls back to title when the content has too little text.
func Excerpt(content, title string) string {
	text := HTMLText(content)
	if len([]rune(text)) < 10 {
		text = title
	}
	r := []rune(text)
	if len(r) > excerptLength {
		r = r[:excerptLength]
	}
	return strings.TrimSpace(string(r)) + "..."
}

// HTMLText returns the visible text of an HTML fragment with whitespace
// collapsed.
func HTMLText(fragment string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if tt == html.StartTagToken && isHiddenTag(string(name)) {
				skip++
			}
			if isBlockTag(string(name)) {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isHiddenTag(string(name)) && skip > 0 {
				skip--
			}
			if isBlockTag(string(name)) {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHiddenTag(name string) bool {
	return name == "script" || name == "style"
}

// isBlockTag reports tags whose boundaries separate words.
func isBlockTag(name string) bool {
	switch name {
	case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "section", "article", "header", "footer", "tr", "td", "th", "img", "pre", "figure", "figcaption":
		return true
	}
	return false
}
