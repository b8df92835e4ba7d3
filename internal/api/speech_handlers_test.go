package api

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryhaapp/ryha-server/internal/media/audio"
)

// fakeSpeech wraps the text length in a WAV container.
type fakeSpeech struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSpeech) GenerateSpeech(_ context.Context, text string) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return audio.EncodeWAV([]byte(text), audio.DefaultPCMFormat)
}

func TestPostAudio_ReturnsWAV(t *testing.T) {
	synth := &fakeSpeech{}
	ts := setupTestServerWith(t, testServerOptions{synth: synth})
	authz := ts.login(t)
	post := ts.createPost(t, authz, ts.postBody("Listening To Logs"))

	resp := ts.api.Get("/api/v1/posts/" + post.Slug + "/audio")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, audio.MIMEType, resp.Header().Get("Content-Type"))
	assert.NotEmpty(t, resp.Header().Get("ETag"))

	body := resp.Body.Bytes()
	require.Greater(t, len(body), 44)
	assert.Equal(t, "RIFF", string(body[:4]))
	assert.Equal(t, "WAVE", string(body[8:12]))
	assert.Contains(t, string(body[44:]), "Listening To Logs.")

	again := ts.api.Get("/api/v1/posts/" + post.Slug + "/audio")
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, body, again.Body.Bytes())
	assert.Equal(t, int32(1), synth.calls.Load(), "second request is served from cache")

	// Reading aloud does not count as a view.
	got := decodeEnvelope[PostResponse](t, ts.api.Get("/api/v1/admin/posts/"+post.ID, authz).Body.Bytes())
	assert.Zero(t, got.Data.Views)
}

func TestPostAudio_HiddenPostNotFound(t *testing.T) {
	synth := &fakeSpeech{}
	ts := setupTestServerWith(t, testServerOptions{synth: synth})
	authz := ts.login(t)

	draft := ts.postBody("Draft Read Aloud")
	draft["publishAction"] = "draft"
	post := ts.createPost(t, authz, draft)

	resp := ts.api.Get("/api/v1/posts/" + post.Slug + "/audio")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Zero(t, synth.calls.Load())
}

func TestPostAudio_Failures(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		ts := setupTestServer(t)
		post := ts.createPost(t, ts.login(t), ts.postBody("No Voice Configured"))

		resp := ts.api.Get("/api/v1/posts/" + post.Slug + "/audio")
		assert.Equal(t, http.StatusBadGateway, resp.Code)
		assert.Equal(t, "GENERATION_FAILED", decodeEnvelope[any](t, resp.Body.Bytes()).Code)
	})

	t.Run("model error", func(t *testing.T) {
		ts := setupTestServerWith(t, testServerOptions{synth: &fakeSpeech{err: errors.New("quota")}})
		post := ts.createPost(t, ts.login(t), ts.postBody("Voice Model Down"))

		resp := ts.api.Get("/api/v1/posts/" + post.Slug + "/audio")
		assert.Equal(t, http.StatusBadGateway, resp.Code)
	})
}

func TestPostAudio_RateLimited(t *testing.T) {
	ts := setupTestServerWith(t, testServerOptions{synth: &fakeSpeech{}, speechBurst: 2})
	post := ts.createPost(t, ts.login(t), ts.postBody("Popular Audio Post"))

	path := "/api/v1/posts/" + post.Slug + "/audio"
	require.Equal(t, http.StatusOK, ts.api.Get(path).Code)
	require.Equal(t, http.StatusOK, ts.api.Get(path).Code)

	resp := ts.api.Get(path)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decodeEnvelope[any](t, resp.Body.Bytes()).Code)
}
