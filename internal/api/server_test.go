package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/ryhaapp/ryha-server/internal/auth"
	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/domain"
	"github.com/ryhaapp/ryha-server/internal/generation"
	"github.com/ryhaapp/ryha-server/internal/media/images"
	"github.com/ryhaapp/ryha-server/internal/search"
	"github.com/ryhaapp/ryha-server/internal/service"
	"github.com/ryhaapp/ryha-server/internal/store"
	"github.com/ryhaapp/ryha-server/internal/validation"
)

const (
	testAdminEmail    = "admin@ryha.dev"
	testAdminPassword = "correct horse battery staple"
)

// testEnvelope decodes any API response body.
type testEnvelope[T any] struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

type testServerOptions struct {
	generator   service.Generator
	synth       service.SpeechSynthesizer
	loginBurst  int
	speechBurst int
}

// testServer wraps the API server with the pieces tests reach into.
type testServer struct {
	*Server
	api      humatest.TestAPI
	media    *images.Storage
	author   *domain.Author
	category *domain.Category
}

func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWith(t, testServerOptions{})
}

func setupTestServerWith(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	st, err := store.New(store.Options{Path: filepath.Join(dir, "data.json")})
	require.NoError(t, err)

	index, err := search.Open(search.Options{Dir: filepath.Join(dir, "search")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	searchService := service.NewSearchService(index, st, nil)
	st.SetChangeListener(searchService)

	// Cheap parameters keep the suite fast; production uses DefaultParams.
	hash, err := auth.HashPasswordWith(testAdminPassword, auth.Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	require.NoError(t, err)
	key, err := auth.LoadOrGenerateKey(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)
	authService, err := service.NewAuthService(tokens, config.AuthConfig{
		AdminEmail:        testAdminEmail,
		AdminPasswordHash: hash,
	}, nil)
	require.NoError(t, err)

	media, err := images.NewStorage(filepath.Join(dir, "media"))
	require.NoError(t, err)

	v := validation.New()
	posts := service.NewPostService(st, v, images.NewInspector(media), nil)
	services := &Services{
		Auth:       authService,
		Posts:      posts,
		Authors:    service.NewAuthorService(st, v, nil),
		Categories: service.NewCategoryService(st, v, nil),
		Crew:       service.NewCrewService(st, v, nil),
		Stats:      service.NewStatsService(st),
		Search:     searchService,
		Generation: service.NewGenerationService(opts.generator, posts, v, nil),
		Speech:     service.NewSpeechService(opts.synth, posts, media, nil),
	}

	burst := opts.loginBurst
	if burst == 0 {
		burst = 100
	}
	speechBurst := opts.speechBurst
	if speechBurst == 0 {
		speechBurst = 100
	}
	s := NewServer(st, services, media, Options{
		LoginRatePerSecond:  0.001,
		LoginBurst:          burst,
		SpeechRatePerSecond: 0.001,
		SpeechBurst:         speechBurst,
	}, nil)
	t.Cleanup(s.Close)

	author, err := services.Authors.Create(ctx, service.AuthorInput{
		Name: "Asha Rao",
		Bio:  "Writes about distributed systems and coffee.",
	})
	require.NoError(t, err)
	category, err := services.Categories.Create(ctx, service.CategoryInput{Name: "Engineering"})
	require.NoError(t, err)

	return &testServer{
		Server:   s,
		api:      humatest.Wrap(t, s.api),
		media:    media,
		author:   author,
		category: category,
	}
}

// login returns an Authorization header for the test admin.
func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())
	env := decodeEnvelope[LoginResponse](t, resp.Body.Bytes())
	return "Authorization: Bearer " + env.Data.AccessToken
}

// postBody returns a valid post request body for title.
func (ts *testServer) postBody(title string) map[string]any {
	return map[string]any{
		"title":      title,
		"excerpt":    "A short summary of the post.",
		"content":    "<p>This body is long enough to pass the fifty character minimum.</p>",
		"authorId":   ts.author.ID,
		"categoryId": ts.category.ID,
		"tags":       []string{"go", "cms"},
	}
}

// createPost creates a post through the admin API.
func (ts *testServer) createPost(t *testing.T, authz string, body map[string]any) PostResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/admin/posts", authz, body)
	require.Equal(t, http.StatusCreated, resp.Code, "create failed: %s", resp.Body.String())
	return decodeEnvelope[PostResponse](t, resp.Body.Bytes()).Data
}

// fakeGenerator returns a fixed result.
type fakeGenerator struct {
	result *generation.Result
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, req generation.Request) (*generation.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	if res.Title == "" {
		res.Title = req.Topic
	}
	return &res, nil
}
