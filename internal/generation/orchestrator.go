// Package generation assembles AI-written posts: text first, then the hero
// image and one image per inline placeholder, all requested concurrently.
package generation

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/logger"
)

// placeholderRe matches markers like "[image - a red fox]" left in generated
// content for the inline images.
var placeholderRe = regexp.MustCompile(`\[image\s*-\s*(.*?)\]`)

// Request describes the post to write.
type Request struct {
	Topic        string
	Keywords     []string
	Instructions string
	Tone         string
	Length       string
}

// Text is what the text model returns.
type Text struct {
	Title   string
	Content string
}

// TextGenerator writes a post title and HTML body.
type TextGenerator interface {
	GenerateText(ctx context.Context, req Request) (*Text, error)
}

// ImageKind tells the image model what the picture is for.
type ImageKind int

// Image kinds.
const (
	ImageInline ImageKind = iota
	ImageHero
)

// ImageRequest asks for one image.
type ImageRequest struct {
	Kind   ImageKind
	Prompt string
}

// ImageGenerator produces an image and returns a reference to it (a URL or
// data URI). An empty reference counts as a failure.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

// Result is a generated post ready to be saved.
type Result struct {
	Title    string
	Content  string
	ImageURL string
	// HeroImageErr is set when the hero image failed and ImageURL holds the
	// fallback image instead.
	HeroImageErr error
	// Inline image placeholders found, and how many were replaced.
	InlineRequested int
	InlinePlaced    int
}

// Options configures an Orchestrator.
type Options struct {
	FallbackImageURL string
	// MaxConcurrent bounds outstanding image requests. Zero means no bound.
	MaxConcurrent int
	Logger        *slog.Logger
}

// Orchestrator runs the generation protocol.
type Orchestrator struct {
	text     TextGenerator
	images   ImageGenerator
	fallback string
	limit    int
	logger   *slog.Logger
}

// New creates an orchestrator.
func New(text TextGenerator, images ImageGenerator, opts Options) *Orchestrator {
	return &Orchestrator{
		text:     text,
		images:   images,
		fallback: opts.FallbackImageURL,
		limit:    opts.MaxConcurrent,
		logger:   logger.OrDiscard(opts.Logger),
	}
}

type placeholder struct {
	prompt string
	image  string
}

// Generate writes a post for req.
//
// A text failure aborts with a GenerationFailed error. Inline image failures
// only drop their placeholder. A hero image failure is reported through
// Result.HeroImageErr and replaced by the fallback image.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return nil, domainerrors.FieldValidation("topic", "is required")
	}

	// 1. Text.
	text, err := o.text.GenerateText(ctx, req)
	if err != nil {
		return nil, domainerrors.GenerationFailed("text generation failed", err)
	}
	if text == nil || strings.TrimSpace(text.Content) == "" {
		return nil, domainerrors.GenerationFailed("text generation returned no content", nil)
	}

	// 2. Placeholders, in document order.
	matches := placeholderRe.FindAllStringSubmatch(text.Content, -1)
	slots := make([]placeholder, len(matches))
	for i, m := range matches {
		slots[i].prompt = strings.TrimSpace(m[1])
	}

	// 3. Fan out. Each goroutine writes only its own slot; failures are
	// recorded, never returned, so one failure cancels nothing.
	var (
		heroURL string
		heroErr error
		g       errgroup.Group
	)
	if o.limit > 0 {
		g.SetLimit(o.limit)
	}

	g.Go(func() error {
		heroURL, heroErr = o.image(ctx, ImageRequest{Kind: ImageHero, Prompt: req.Topic})
		return nil
	})
	for i := range slots {
		if slots[i].prompt == "" {
			continue
		}
		g.Go(func() error {
			url, err := o.image(ctx, ImageRequest{Kind: ImageInline, Prompt: slots[i].prompt})
			if err != nil {
				o.logger.Warn("inline image generation failed, dropping placeholder",
					"prompt", slots[i].prompt,
					"error", err,
				)
				return nil
			}
			slots[i].image = url
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 4. Substitute.
	result := &Result{
		Title:           strings.TrimSpace(text.Title),
		InlineRequested: len(slots),
	}
	if result.Title == "" {
		result.Title = req.Topic
	}
	next := 0
	result.Content = placeholderRe.ReplaceAllStringFunc(text.Content, func(string) string {
		slot := slots[next]
		next++
		if slot.image == "" {
			return ""
		}
		result.InlinePlaced++
		return imageTag(slot.image, slot.prompt)
	})

	// 5. Hero image.
	result.ImageURL = heroURL
	if heroErr != nil {
		result.ImageURL = o.fallback
		result.HeroImageErr = domainerrors.GenerationFailed("hero image generation failed", heroErr)
		o.logger.Warn("hero image generation failed, using fallback", "topic", req.Topic, "error", heroErr)
	}

	o.logger.Info("post generated",
		"topic", req.Topic,
		"inline_requested", result.InlineRequested,
		"inline_placed", result.InlinePlaced,
		"hero_fallback", heroErr != nil,
	)
	return result, nil
}

func (o *Orchestrator) image(ctx context.Context, req ImageRequest) (string, error) {
	if o.images == nil {
		return "", fmt.Errorf("no image generator configured")
	}
	url, err := o.images.GenerateImage(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("image generator returned no image")
	}
	return url, nil
}

// imageTag renders an inline image. The first two words of the prompt are
// kept as a hint for replacing the image by hand later.
func imageTag(src, prompt string) string {
	words := strings.Fields(prompt)
	hint := strings.Join(words[:min(2, len(words))], " ")
	return fmt.Sprintf(`<img src="%s" alt="%s" data-ai-hint="%s" />`,
		html.EscapeString(src),
		html.EscapeString(prompt),
		html.EscapeString(hint),
	)
}
