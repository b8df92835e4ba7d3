package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/sync/singleflight"

	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/logger"
)

// maxSpeechRunes caps the text sent to the speech model.
const maxSpeechRunes = 5000

// SpeechSynthesizer turns text into WAV audio.
type SpeechSynthesizer interface {
	GenerateSpeech(ctx context.Context, text string) ([]byte, error)
}

// AudioCache stores synthesized audio under stable names.
type AudioCache interface {
	Exists(name string) bool
	Path(name string) (string, error)
	SaveAs(name string, data []byte) error
}

// Speech is a read-aloud recording of a post on disk.
type Speech struct {
	Name   string
	Path   string
	Cached bool
}

// SpeechService reads public posts aloud. Audio is cached per post and text
// revision, so a post is only synthesized again after its text changes.
type SpeechService struct {
	synth  SpeechSynthesizer
	posts  *PostService
	cache  AudioCache
	logger *slog.Logger
	group  singleflight.Group
}

// NewSpeechService creates the service. A nil synth makes uncached requests
// fail with GenerationFailed.
func NewSpeechService(synth SpeechSynthesizer, posts *PostService, cache AudioCache, log *slog.Logger) *SpeechService {
	return &SpeechService{
		synth:  synth,
		posts:  posts,
		cache:  cache,
		logger: logger.OrDiscard(log),
	}
}

// Enabled reports whether a synthesizer is configured.
func (s *SpeechService) Enabled() bool {
	return s.synth != nil
}

// Read returns the recording of the public post with slug, synthesizing it on
// first request. Hidden posts are reported as not found.
func (s *SpeechService) Read(ctx context.Context, slug string) (*Speech, error) {
	post, err := s.posts.GetPublic(ctx, slug)
	if err != nil {
		return nil, err
	}

	text := SpeechText(post.Title, post.Content)
	name := speechName(post.ID, text)

	if s.cache.Exists(name) {
		return s.speech(name, true)
	}
	if s.synth == nil {
		return nil, domainerrors.GenerationFailed("AI speech is not configured", nil)
	}

	// Concurrent readers of the same post share one model call.
	_, err, shared := s.group.Do(name, func() (any, error) {
		if s.cache.Exists(name) {
			return nil, nil
		}
		wav, err := s.synth.GenerateSpeech(ctx, text)
		if err != nil {
			return nil, domainerrors.GenerationFailed("speech generation failed", err)
		}
		if err := s.cache.SaveAs(name, wav); err != nil {
			return nil, domainerrors.Storage("store speech audio", err)
		}
		s.logger.Info("post read aloud", "post_id", post.ID, "file", name, "size", len(wav))
		return nil, nil
	})
	if err != nil {
		s.logger.Warn("speech generation failed", "post_id", post.ID, "error", err)
		return nil, err
	}
	return s.speech(name, shared)
}

func (s *SpeechService) speech(name string, cached bool) (*Speech, error) {
	path, err := s.cache.Path(name)
	if err != nil {
		return nil, domainerrors.Storage("locate speech audio", err)
	}
	return &Speech{Name: name, Path: path, Cached: cached}, nil
}

// SpeechText is what gets read aloud: the title, then the body text.
func SpeechText(title, content string) string {
	title = strings.TrimSpace(title)
	if r := []rune(title); len(r) > 0 && !unicode.IsPunct(r[len(r)-1]) {
		title += "."
	}
	text := title + "\n\n" + HTMLText(content)
	if r := []rune(text); len(r) > maxSpeechRunes {
		text = string(r[:maxSpeechRunes])
	}
	return text
}

func speechName(postID, text string) string {
	sum := sha256.Sum256([]byte(text))
	return postID + "-" + hex.EncodeToString(sum[:8]) + ".wav"
}
