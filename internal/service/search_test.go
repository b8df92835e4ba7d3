package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryhaapp/ryha-server/internal/domain"
	"github.com/ryhaapp/ryha-server/internal/search"
	"github.com/ryhaapp/ryha-server/internal/store"
)

func setupSearch(t *testing.T, env *testEnv) *SearchService {
	t.Helper()
	index, err := search.Open(search.Options{Dir: filepath.Join(t.TempDir(), "search")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	svc := NewSearchService(index, env.store, nil)
	svc.now = env.clock.Now
	env.store.SetChangeListener(svc)
	require.NoError(t, svc.ReindexAll(context.Background()))
	return svc
}

func searchSlugs(hits []SearchHit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Post.Slug
	}
	return out
}

func TestSearch_OnlyPublicPosts(t *testing.T) {
	env := setupTestEnv(t)
	svc := setupSearch(t, env)
	ctx := context.Background()

	published := env.validPost("Kubernetes operators explained")
	_, err := env.posts.Create(ctx, published)
	require.NoError(t, err)

	draft := env.validPost("Kubernetes drafts in progress")
	draft.PublishAction = domain.PublishActionDraft
	_, err = env.posts.Create(ctx, draft)
	require.NoError(t, err)

	scheduled := env.validPost("Kubernetes roadmap reveal")
	scheduled.PublishAction = domain.PublishActionSchedule
	at := env.clock.Now().Add(time.Hour)
	scheduled.ScheduledAt = &at
	_, err = env.posts.Create(ctx, scheduled)
	require.NoError(t, err)

	hits, err := svc.Search(ctx, SearchInput{Query: "kubernetes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"kubernetes-operators-explained"}, searchSlugs(hits))

	// Once the scheduled post is promoted it shows up.
	env.clock.Advance(2 * time.Hour)
	n, err := env.posts.PublishDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	hits, err = svc.Search(ctx, SearchInput{Query: "kubernetes"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"kubernetes-operators-explained", "kubernetes-roadmap-reveal"}, searchSlugs(hits))
}

func TestSearch_FollowsUpdatesAndDeletes(t *testing.T) {
	env := setupTestEnv(t)
	svc := setupSearch(t, env)
	ctx := context.Background()

	created, err := env.posts.Create(ctx, env.validPost("Observability basics"))
	require.NoError(t, err)

	in := env.validPost("Tracing deep dive")
	_, err = env.posts.Update(ctx, created.ID, in)
	require.NoError(t, err)

	hits, err := svc.Search(ctx, SearchInput{Query: "tracing"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Tracing deep dive", hits[0].Post.Title)
	assert.Equal(t, "Asha Rao", hits[0].Post.Author.Name)

	require.NoError(t, env.posts.Delete(ctx, created.ID))
	hits, err = svc.Search(ctx, SearchInput{Query: "tracing"})
	require.NoError(t, err)
	assert.Empty(t, hits)

	count, err := svc.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_AuthorRenameReindexes(t *testing.T) {
	env := setupTestEnv(t)
	svc := setupSearch(t, env)
	ctx := context.Background()

	_, err := env.posts.Create(ctx, env.validPost("Profiling Go services"))
	require.NoError(t, err)

	_, err = env.authors.Update(ctx, env.author.ID, AuthorInput{Name: "Meera Iyer", Bio: "Writes about distributed systems."})
	require.NoError(t, err)

	hits, err := svc.Search(ctx, SearchInput{Query: "meera"})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_HandleExternalChange(t *testing.T) {
	env := setupTestEnv(t)
	svc := setupSearch(t, env)
	ctx := context.Background()

	_, err := env.posts.Create(ctx, env.validPost("Caching strategies"))
	require.NoError(t, err)

	// No external change yet.
	require.NoError(t, svc.HandleExternalChange(ctx))

	// Someone empties the file by hand.
	require.NoError(t, os.WriteFile(env.store.Path(), []byte(`{"version":99,"posts":[]}`), 0o640))
	require.NoError(t, svc.HandleExternalChange(ctx))

	count, err := svc.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_ExternalEditSurvivesLaterWrite(t *testing.T) {
	env := setupTestEnv(t)
	svc := setupSearch(t, env)
	ctx := context.Background()

	created, err := env.posts.Create(ctx, env.validPost("Caching strategies"))
	require.NoError(t, err)

	// Hand edit of the file, then a write from this process before the
	// watcher gets to it.
	doc, err := env.store.Load(ctx)
	require.NoError(t, err)
	doc.Posts[doc.PostIndex(created.ID)].Title = "Sharding strategies"
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(env.store.Path(), raw, 0o640))

	_, err = env.categories.Create(ctx, CategoryInput{Name: "Operations"})
	require.NoError(t, err)
	require.NoError(t, svc.HandleExternalChange(ctx))

	hits, err := svc.Search(ctx, SearchInput{Query: "sharding"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, created.ID, hits[0].Post.ID)
}

func TestSearch_FutureDatedPostsDoNotShortenPages(t *testing.T) {
	env := setupTestEnv(t)
	svc := setupSearch(t, env)
	ctx := context.Background()

	future, err := env.posts.Create(ctx, env.validPost("Queue design notes one"))
	require.NoError(t, err)
	_, err = env.posts.Create(ctx, env.validPost("Queue design notes two"))
	require.NoError(t, err)
	_, err = env.posts.Create(ctx, env.validPost("Queue design notes three"))
	require.NoError(t, err)

	require.NoError(t, env.store.Update(ctx, func(doc *store.Document) error {
		doc.Posts[doc.PostIndex(future.ID)].PublishedAt = env.clock.Now().Add(24 * time.Hour)
		return nil
	}))

	hits, err := svc.Search(ctx, SearchInput{Query: "queue", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.NotContains(t, searchSlugs(hits), future.Slug)
}
