package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/media/images"
)

type fakeSynth struct {
	mu    sync.Mutex
	calls int
	texts []string
	err   error
}

func (f *fakeSynth) GenerateSpeech(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("RIFF" + text), nil
}

func setupSpeech(t *testing.T, env *testEnv, synth SpeechSynthesizer) *SpeechService {
	t.Helper()
	media, err := images.NewStorage(filepath.Join(t.TempDir(), "media"))
	require.NoError(t, err)
	return NewSpeechService(synth, env.posts, media, nil)
}

func TestSpeech_SynthesizesOnceAndCaches(t *testing.T) {
	env := setupTestEnv(t)
	synth := &fakeSynth{}
	svc := setupSpeech(t, env, synth)
	ctx := context.Background()

	post, err := env.posts.Create(ctx, env.validPost("Reading logs aloud"))
	require.NoError(t, err)

	first, err := svc.Read(ctx, post.Slug)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.Len(t, synth.texts, 1)
	assert.Equal(t, "Reading logs aloud.\n\n"+HTMLText(post.Content), synth.texts[0])

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF"+synth.texts[0], string(data))

	second, err := svc.Read(ctx, post.Slug)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 1, synth.calls)

	// Editing the text invalidates the recording.
	in := env.validPost("Reading traces aloud")
	in.PublishAction = domain.PublishActionNow
	_, err = env.posts.Update(ctx, post.ID, in)
	require.NoError(t, err)

	third, err := svc.Read(ctx, post.Slug)
	require.NoError(t, err)
	assert.NotEqual(t, first.Name, third.Name)
	assert.Equal(t, 2, synth.calls)
}

func TestSpeech_ConcurrentReadersShareOneCall(t *testing.T) {
	env := setupTestEnv(t)
	synth := &fakeSynth{}
	svc := setupSpeech(t, env, synth)
	ctx := context.Background()

	post, err := env.posts.Create(ctx, env.validPost("Concurrency in practice"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Read(ctx, post.Slug)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, synth.calls)
}

func TestSpeech_HiddenPostsNotFound(t *testing.T) {
	env := setupTestEnv(t)
	synth := &fakeSynth{}
	svc := setupSpeech(t, env, synth)
	ctx := context.Background()

	draft := env.validPost("Unfinished thoughts here")
	draft.PublishAction = domain.PublishActionDraft
	_, err := env.posts.Create(ctx, draft)
	require.NoError(t, err)

	scheduled := env.validPost("Coming soon to the blog")
	scheduled.PublishAction = domain.PublishActionSchedule
	at := env.clock.Now().Add(time.Hour)
	scheduled.ScheduledAt = &at
	_, err = env.posts.Create(ctx, scheduled)
	require.NoError(t, err)

	for _, slug := range []string{"unfinished-thoughts-here", "coming-soon-to-the-blog", "missing"} {
		_, err := svc.Read(ctx, slug)
		assert.ErrorIs(t, err, domainerrors.NotFound(""), slug)
	}
	assert.Zero(t, synth.calls)
}

func TestSpeech_Failures(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	post, err := env.posts.Create(ctx, env.validPost("Failure modes explained"))
	require.NoError(t, err)

	_, err = setupSpeech(t, env, nil).Read(ctx, post.Slug)
	assert.ErrorIs(t, err, domainerrors.GenerationFailed("", nil))

	failing := &fakeSynth{err: errors.New("quota exceeded")}
	svc := setupSpeech(t, env, failing)
	_, err = svc.Read(ctx, post.Slug)
	assert.ErrorIs(t, err, domainerrors.GenerationFailed("", nil))

	// Failures are not cached.
	failing.err = nil
	_, err = svc.Read(ctx, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, failing.calls)
}

func TestSpeechText(t *testing.T) {
	assert.Equal(t, "Why Go?\n\nShort answer.", SpeechText(" Why Go? ", "<p>Short <b>answer</b>.</p>"))
	assert.Equal(t, "Plain title.\n\nBody", SpeechText("Plain title", "<p>Body</p>"))

	long := SpeechText("T", "<p>"+strings.Repeat("word ", 2000)+"</p>")
	assert.Len(t, []rune(long), maxSpeechRunes)
}
