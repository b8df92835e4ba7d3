// Package gemini adapts Google's Gemini models to the post generation
// pipeline.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/genai"

	"github.com/ryhaapp/ryha-server/internal/generation"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/media/audio"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// contentGenerator is the part of *genai.Models the adapter calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ImageSink stores generated image bytes and returns a URL for them.
type ImageSink interface {
	SaveGenerated(data []byte, mimeType string) (string, error)
}

// Config configures the client.
type Config struct {
	APIKey      string
	TextModel   string
	ImageModel  string
	SpeechModel string
	SpeechVoice string
	Logger      *slog.Logger
}

// Client implements generation.TextGenerator and generation.ImageGenerator,
// and reads posts aloud with GenerateSpeech.
type Client struct {
	models      contentGenerator
	sink        ImageSink
	textModel   string
	imageModel  string
	speechModel string
	speechVoice string
	logger      *slog.Logger
}

var (
	_ generation.TextGenerator  = (*Client)(nil)
	_ generation.ImageGenerator = (*Client)(nil)
)

// New connects to the Gemini API. Generated images are written to sink.
func New(ctx context.Context, cfg Config, sink ImageSink) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newClient(gc.Models, sink, cfg), nil
}

func newClient(models contentGenerator, sink ImageSink, cfg Config) *Client {
	return &Client{
		models:      models,
		sink:        sink,
		textModel:   cfg.TextModel,
		imageModel:  cfg.ImageModel,
		speechModel: cfg.SpeechModel,
		speechVoice: cfg.SpeechVoice,
		logger:      logger.OrDiscard(cfg.Logger).With("component", "gemini"),
	}
}

var postSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":   {Type: genai.TypeString, Description: "An engaging, SEO-friendly title."},
		"content": {Type: genai.TypeString, Description: "The full post body as clean HTML."},
	},
	Required: []string{"title", "content"},
}

// GenerateText writes a post with the text model.
func (c *Client) GenerateText(ctx context.Context, req generation.Request) (*generation.Text, error) {
	resp, err := c.models.GenerateContent(ctx, c.textModel,
		genai.Text(textPrompt(req)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    postSchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini text request: %w", err)
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("gemini returned no text")
	}

	var out struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	c.logger.Debug("text generated", "topic", req.Topic, "content_length", len(out.Content))
	return &generation.Text{Title: out.Title, Content: out.Content}, nil
}

// GenerateImage asks the image model for a picture and stores it.
func (c *Client) GenerateImage(ctx context.Context, req generation.ImageRequest) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.imageModel,
		genai.Text(imagePrompt(req)),
		&genai.GenerateContentConfig{
			ResponseModalities: []string{string(genai.ModalityText), string(genai.ModalityImage)},
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini image request: %w", err)
	}

	blob := responseBlob(resp, "image/")
	if blob == nil {
		return "", fmt.Errorf("gemini returned no image")
	}

	url, err := c.sink.SaveGenerated(blob.Data, blob.MIMEType)
	if err != nil {
		return "", fmt.Errorf("store generated image: %w", err)
	}
	c.logger.Debug("image generated", "prompt", req.Prompt, "url", url, "size", len(blob.Data))
	return url, nil
}

// GenerateSpeech reads text aloud with the speech model and returns WAV audio.
func (c *Client) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
	}
	if c.speechVoice != "" {
		config.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.speechVoice},
			},
		}
	}

	resp, err := c.models.GenerateContent(ctx, c.speechModel, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("gemini speech request: %w", err)
	}

	blob := responseBlob(resp, "audio/")
	if blob == nil {
		return nil, fmt.Errorf("gemini returned no audio")
	}
	if strings.EqualFold(blob.MIMEType, audio.MIMEType) {
		return blob.Data, nil
	}

	format, err := audio.ParsePCMFormat(blob.MIMEType)
	if err != nil {
		return nil, err
	}
	wav, err := audio.EncodeWAV(blob.Data, format)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("speech generated",
		"text_length", len(text),
		"sample_rate", format.SampleRate,
		"size", len(wav),
	)
	return wav, nil
}

func responseParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, p := range responseParts(resp) {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// responseBlob returns the first inline part whose type starts with prefix.
func responseBlob(resp *genai.GenerateContentResponse, prefix string) *genai.Blob {
	for _, p := range responseParts(resp) {
		if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 &&
			strings.HasPrefix(strings.ToLower(p.InlineData.MIMEType), prefix) {
			return p.InlineData
		}
	}
	return nil
}
