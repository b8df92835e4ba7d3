package generation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fallbackURL = "https://placehold.co/600x400.png"

type fakeText struct {
	text *Text
	err  error
	got  Request
}

func (f *fakeText) GenerateText(_ context.Context, req Request) (*Text, error) {
	f.got = req
	return f.text, f.err
}

// fakeImages answers by prompt. Prompts missing from urls fail.
type fakeImages struct {
	mu    sync.Mutex
	urls  map[string]string
	calls []ImageRequest
	delay time.Duration
}

func (f *fakeImages) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	url, ok := f.urls[req.Prompt]
	if !ok {
		return "", errors.New("model refused")
	}
	return url, nil
}

func (f *fakeImages) prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Prompt)
	}
	return out
}

func newOrchestrator(text TextGenerator, images ImageGenerator) *Orchestrator {
	return New(text, images, Options{FallbackImageURL: fallbackURL})
}

func TestGenerate_FailedInlineImageRemovesPlaceholder(t *testing.T) {
	text := &fakeText{text: &Text{Title: "Foxes", Content: "intro [image - a red fox] outro"}}
	images := &fakeImages{urls: map[string]string{"Foxes in the wild": "/media/hero.png"}}

	res, err := newOrchestrator(text, images).Generate(context.Background(), Request{Topic: "Foxes in the wild"})
	require.NoError(t, err)

	assert.NotContains(t, res.Content, "[image")
	assert.Equal(t, "intro  outro", res.Content)
	assert.Equal(t, 1, res.InlineRequested)
	assert.Equal(t, 0, res.InlinePlaced)
	assert.Equal(t, "/media/hero.png", res.ImageURL)
	assert.NoError(t, res.HeroImageErr)
}

func TestGenerate_ReplacesPlaceholdersInOrder(t *testing.T) {
	content := "<p>start</p>[image - first picture]<p>middle</p>[image-second picture]<p>end</p>"
	text := &fakeText{text: &Text{Title: "Two", Content: content}}
	images := &fakeImages{
		delay: 5 * time.Millisecond,
		urls: map[string]string{
			"topic":          "/media/hero.png",
			"first picture":  "/media/one.png",
			"second picture": "/media/two.png",
		},
	}

	res, err := newOrchestrator(text, images).Generate(context.Background(), Request{Topic: "topic"})
	require.NoError(t, err)

	first := strings.Index(res.Content, `src="/media/one.png"`)
	second := strings.Index(res.Content, `src="/media/two.png"`)
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
	assert.Less(t, strings.Index(res.Content, "start"), first)
	assert.Less(t, second, strings.Index(res.Content, "end"))
	assert.NotContains(t, res.Content, "[image")

	assert.Contains(t, res.Content, `alt="first picture" data-ai-hint="first picture"`)
	assert.Equal(t, 2, res.InlinePlaced)
	assert.ElementsMatch(t, []string{"topic", "first picture", "second picture"}, images.prompts())
}

func TestGenerate_HeroFailureUsesFallback(t *testing.T) {
	text := &fakeText{text: &Text{Title: "Title", Content: "<p>body</p>"}}
	images := &fakeImages{urls: map[string]string{}}

	res, err := newOrchestrator(text, images).Generate(context.Background(), Request{Topic: "Edge AI"})
	require.NoError(t, err)

	assert.Equal(t, fallbackURL, res.ImageURL)
	require.Error(t, res.HeroImageErr)
	assert.True(t, domainerrors.Is(res.HeroImageErr, domainerrors.ErrGenerationFailed))
	assert.Equal(t, "<p>body</p>", res.Content)
}

func TestGenerate_TextFailureAborts(t *testing.T) {
	images := &fakeImages{urls: map[string]string{}}

	t.Run("error", func(t *testing.T) {
		text := &fakeText{err: errors.New("quota exceeded")}
		_, err := newOrchestrator(text, images).Generate(context.Background(), Request{Topic: "x"})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrGenerationFailed))
	})

	t.Run("empty content", func(t *testing.T) {
		text := &fakeText{text: &Text{Title: "Only a title", Content: "  "}}
		_, err := newOrchestrator(text, images).Generate(context.Background(), Request{Topic: "x"})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrGenerationFailed))
	})

	assert.Empty(t, images.prompts(), "no image requests after a text failure")
}

func TestGenerate_EmptyPromptRemovedWithoutRequest(t *testing.T) {
	text := &fakeText{text: &Text{Title: "T", Content: "a[image - ]b"}}
	images := &fakeImages{urls: map[string]string{"topic": "/media/hero.png"}}

	res, err := newOrchestrator(text, images).Generate(context.Background(), Request{Topic: "topic"})
	require.NoError(t, err)

	assert.Equal(t, "ab", res.Content)
	assert.Equal(t, []string{"topic"}, images.prompts())
}

func TestGenerate_TitleFallsBackToTopic(t *testing.T) {
	text := &fakeText{text: &Text{Content: "<p>body</p>"}}
	images := &fakeImages{urls: map[string]string{"Quiet computing": "/media/hero.png"}}

	res, err := newOrchestrator(text, images).Generate(context.Background(), Request{Topic: "  Quiet computing "})
	require.NoError(t, err)
	assert.Equal(t, "Quiet computing", res.Title)
	assert.Equal(t, "Quiet computing", text.got.Topic)
}

func TestGenerate_RequiresTopic(t *testing.T) {
	_, err := newOrchestrator(&fakeText{}, &fakeImages{}).Generate(context.Background(), Request{Topic: " "})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestGenerate_EscapesImageAttributes(t *testing.T) {
	text := &fakeText{text: &Text{Title: "T", Content: `[image - "quoted" <thing>]`}}
	images := &fakeImages{urls: map[string]string{
		"topic":            "/media/hero.png",
		`"quoted" <thing>`: "/media/q.png?a=1&b=2",
	}}

	res, err := newOrchestrator(text, images).Generate(context.Background(), Request{Topic: "topic"})
	require.NoError(t, err)
	assert.Contains(t, res.Content, `src="/media/q.png?a=1&amp;b=2"`)
	assert.Contains(t, res.Content, `alt="&#34;quoted&#34; &lt;thing&gt;"`)
}

// countingImages tracks the peak number of requests in flight.
type countingImages struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *countingImages) GenerateImage(context.Context, ImageRequest) (string, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	return "/media/x.png", nil
}

func TestGenerate_MaxConcurrent(t *testing.T) {
	content := strings.Repeat("[image - p] ", 8)
	text := &fakeText{text: &Text{Title: "T", Content: content}}
	images := &countingImages{}

	o := New(text, images, Options{FallbackImageURL: fallbackURL, MaxConcurrent: 2})
	res, err := o.Generate(context.Background(), Request{Topic: "topic"})
	require.NoError(t, err)

	assert.Equal(t, 8, res.InlinePlaced)
	assert.LessOrEqual(t, images.peak.Load(), int32(2))
}

func TestGenerate_CanceledContext(t *testing.T) {
	text := &fakeText{text: &Text{Title: "T", Content: "[image - slow]"}}
	images := &fakeImages{delay: time.Second, urls: map[string]string{"slow": "/media/s.png"}}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := newOrchestrator(text, images).Generate(ctx, Request{Topic: "topic"})
	assert.ErrorIs(t, err, context.Canceled)
}
