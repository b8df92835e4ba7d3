package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/ryhaapp/ryha-server/internal/ai/gemini"
	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/generation"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/media/images"
)

// maxConcurrentImages bounds parallel image model calls per generation.
const maxConcurrentImages = 4

// GeneratorHandle holds the Gemini-backed generators. Both are nil when no
// Gemini API key is configured.
type GeneratorHandle struct {
	Generator *TimeoutGenerator
	Speech    *TimeoutSpeech
}

// TimeoutGenerator bounds a whole generation run.
type TimeoutGenerator struct {
	orchestrator *generation.Orchestrator
	timeout      time.Duration
}

// Generate implements service.Generator.
func (g *TimeoutGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.orchestrator.Generate(ctx, req)
}

// TimeoutSpeech bounds one read-aloud call.
type TimeoutSpeech struct {
	client  *gemini.Client
	timeout time.Duration
}

// GenerateSpeech implements service.SpeechSynthesizer.
func (g *TimeoutSpeech) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.client.GenerateSpeech(ctx, text)
}

// ProvideGenerator connects to Gemini when an API key is configured.
func ProvideGenerator(i do.Injector) (*GeneratorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*images.Storage](i)

	if !cfg.AI.Enabled() {
		log.Info("Content generation disabled, no GEMINI_API_KEY configured")
		return &GeneratorHandle{}, nil
	}

	client, err := gemini.New(context.Background(), gemini.Config{
		APIKey:      cfg.AI.GeminiAPIKey,
		TextModel:   cfg.AI.TextModel,
		ImageModel:  cfg.AI.ImageModel,
		SpeechModel: cfg.AI.SpeechModel,
		SpeechVoice: cfg.AI.SpeechVoice,
		Logger:      log.WithComponent("gemini"),
	}, storage)
	if err != nil {
		return nil, err
	}

	orchestrator := generation.New(client, client, generation.Options{
		FallbackImageURL: cfg.AI.FallbackImageURL,
		MaxConcurrent:    maxConcurrentImages,
		Logger:           log.WithComponent("generation"),
	})

	log.Info("Content generation enabled",
		"text_model", cfg.AI.TextModel,
		"image_model", cfg.AI.ImageModel,
		"speech_model", cfg.AI.SpeechModel,
		"timeout", cfg.AI.Timeout,
	)

	return &GeneratorHandle{
		Generator: &TimeoutGenerator{
			orchestrator: orchestrator,
			timeout:      cfg.AI.Timeout,
		},
		Speech: &TimeoutSpeech{
			client:  client,
			timeout: cfg.AI.Timeout,
		},
	}, nil
}
