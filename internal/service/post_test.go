package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
)

func TestCreate_PublishNow(t *testing.T) {
	env := setupTestEnv(t)

	post, err := env.posts.Create(context.Background(), env.validPost("Hello World Again"))
	require.NoError(t, err)

	assert.Equal(t, "hello-world-again", post.Slug)
	assert.Equal(t, domain.PostStatusPublished, post.Status)
	assert.True(t, post.PublishedAt.Equal(env.clock.now))
	assert.Equal(t, 0, post.Views)
	assert.Len(t, post.Ratings, 5)
	assert.Equal(t, 0, post.Ratings.Total())
	require.NotNil(t, post.Author)
	assert.Equal(t, "Asha Rao", post.Author.Name)
	assert.Equal(t, domain.DefaultPostImageURL, post.ImageURL)
	assert.Equal(t, domain.DefaultPostImageHint, post.ImageHint)
}

func TestCreate_Draft(t *testing.T) {
	env := setupTestEnv(t)
	in := env.validPost("A Draft Post")
	in.PublishAction = domain.PublishActionDraft

	post, err := env.posts.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, domain.PostStatusDraft, post.Status)
	assert.True(t, post.PublishedAt.Equal(env.clock.now))
}

func TestCreate_Schedule(t *testing.T) {
	env := setupTestEnv(t)
	at := env.clock.now.Add(48 * time.Hour)
	in := env.validPost("Coming Soon Post")
	in.PublishAction = domain.PublishActionSchedule
	in.ScheduledAt = &at

	post, err := env.posts.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, domain.PostStatusScheduled, post.Status)
	assert.True(t, post.PublishedAt.Equal(at))
}

func TestCreate_ScheduleRequiresFutureTime(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	in := env.validPost("Scheduled Without Time")
	in.PublishAction = domain.PublishActionSchedule
	_, err := env.posts.Create(ctx, in)
	requireFieldError(t, err, "scheduledAt")

	now := env.clock.now
	in.ScheduledAt = &now
	_, err = env.posts.Create(ctx, in)
	requireFieldError(t, err, "scheduledAt")

	doc, err := env.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Posts)
}

func TestCreate_Validation(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		mutate func(*PostInput)
		field  string
	}{
		{"short title", func(in *PostInput) { in.Title = "Hey" }, "title"},
		{"title without slug characters", func(in *PostInput) { in.Title = "!!!!!!" }, "title"},
		{"short excerpt", func(in *PostInput) { in.Excerpt = "too short" }, "excerpt"},
		{"short content", func(in *PostInput) { in.Content = "<p>tiny</p>" }, "content"},
		{"missing author", func(in *PostInput) { in.AuthorID = "" }, "authorId"},
		{"unknown author", func(in *PostInput) { in.AuthorID = "author-missing" }, "authorId"},
		{"unknown category", func(in *PostInput) { in.CategoryID = "cat-missing" }, "categoryId"},
		{"bad action", func(in *PostInput) { in.PublishAction = "later" }, "publishAction"},
		{"bad featured order", func(in *PostInput) { zero := 0; in.FeaturedOrder = &zero }, "featuredOrder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := env.validPost("Validation Target Post")
			tt.mutate(&in)
			_, err := env.posts.Create(context.Background(), in)
			requireFieldError(t, err, tt.field)
		})
	}

	doc, err := env.store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Posts, "failed creates leave no trace")
}

func TestCreate_DuplicateSlug(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.posts.Create(ctx, env.validPost("Hello World"))
	require.NoError(t, err)

	before, err := os.ReadFile(env.store.Path())
	require.NoError(t, err)

	_, err = env.posts.Create(ctx, env.validPost("  HELLO,   world!  "))
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrDuplicateSlug))

	after, err := os.ReadFile(env.store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after, "store untouched")

	doc, err := env.store.Load(ctx)
	require.NoError(t, err)
	count := 0
	for _, p := range doc.Posts {
		if p.Slug == "hello-world" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCreate_CleansTags(t *testing.T) {
	env := setupTestEnv(t)
	in := env.validPost("Tagged Post Here")
	in.Tags = []string{" AI ", "ai", "", "Cloud"}

	post, err := env.posts.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"AI", "Cloud"}, post.Tags)
}

func TestUpdate_StickyPublishTime(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	post, err := env.posts.Create(ctx, env.validPost("Sticky Publish Time"))
	require.NoError(t, err)
	firstPublished := post.PublishedAt

	env.clock.Advance(72 * time.Hour)
	in := env.validPost("Sticky Publish Time")
	in.Excerpt = "An edited summary of the post."
	updated, err := env.posts.Update(ctx, post.ID, in)
	require.NoError(t, err)

	assert.Equal(t, domain.PostStatusPublished, updated.Status)
	assert.True(t, updated.PublishedAt.Equal(firstPublished))
	assert.Equal(t, "An edited summary of the post.", updated.Excerpt)
	assert.True(t, updated.UpdatedAt.Equal(env.clock.now))
}

func TestUpdate_DraftToPublishedSetsNow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	in := env.validPost("Draft Then Publish")
	in.PublishAction = domain.PublishActionDraft
	post, err := env.posts.Create(ctx, in)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	in.PublishAction = domain.PublishActionNow
	updated, err := env.posts.Update(ctx, post.ID, in)
	require.NoError(t, err)

	assert.Equal(t, domain.PostStatusPublished, updated.Status)
	assert.True(t, updated.PublishedAt.Equal(env.clock.now))
}

func TestUpdate_ScheduledToPublishedSetsNow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	at := env.clock.now.Add(24 * time.Hour)
	in := env.validPost("Scheduled Then Published")
	in.PublishAction = domain.PublishActionSchedule
	in.ScheduledAt = &at
	post, err := env.posts.Create(ctx, in)
	require.NoError(t, err)

	in.PublishAction = domain.PublishActionNow
	in.ScheduledAt = nil
	updated, err := env.posts.Update(ctx, post.ID, in)
	require.NoError(t, err)

	assert.Equal(t, domain.PostStatusPublished, updated.Status)
	assert.True(t, updated.PublishedAt.Equal(env.clock.now))
}

func TestUpdate_DraftKeepsPublishedAt(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	post, err := env.posts.Create(ctx, env.validPost("Unpublish Me Please"))
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	in := env.validPost("Unpublish Me Please")
	in.PublishAction = domain.PublishActionDraft
	updated, err := env.posts.Update(ctx, post.ID, in)
	require.NoError(t, err)

	assert.Equal(t, domain.PostStatusDraft, updated.Status)
	assert.True(t, updated.PublishedAt.Equal(post.PublishedAt))
}

func TestUpdate_KeepsSlugAndEngagement(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	post, err := env.posts.Create(ctx, env.validPost("Original Title Here"))
	require.NoError(t, err)
	_, err = env.posts.RecordView(ctx, post.Slug)
	require.NoError(t, err)

	updated, err := env.posts.Update(ctx, post.ID, env.validPost("A Completely New Title"))
	require.NoError(t, err)

	assert.Equal(t, "original-title-here", updated.Slug)
	assert.Equal(t, 1, updated.Views)
	assert.True(t, updated.CreatedAt.Equal(post.CreatedAt))
}

func TestUpdate_ExplicitSlug(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	first, err := env.posts.Create(ctx, env.validPost("First Post Title"))
	require.NoError(t, err)
	second, err := env.posts.Create(ctx, env.validPost("Second Post Title"))
	require.NoError(t, err)

	in := env.validPost("Second Post Title")
	in.Slug = "First Post Title"
	_, err = env.posts.Update(ctx, second.ID, in)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrDuplicateSlug))

	in.Slug = "Renamed Second"
	updated, err := env.posts.Update(ctx, second.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "renamed-second", updated.Slug)

	// Re-submitting its own slug is not a collision.
	in = env.validPost("First Post Title")
	in.Slug = first.Slug
	_, err = env.posts.Update(ctx, first.ID, in)
	assert.NoError(t, err)
}

func TestUpdate_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.posts.Update(context.Background(), "post-missing", env.validPost("Does Not Matter"))
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestUpdate_ValidationLeavesPostUntouched(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	post, err := env.posts.Create(ctx, env.validPost("Stable Post Title"))
	require.NoError(t, err)

	in := env.validPost("Nope")
	_, err = env.posts.Update(ctx, post.ID, in)
	requireFieldError(t, err, "title")

	got, err := env.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stable Post Title", got.Title)
}

func TestDelete(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	post, err := env.posts.Create(ctx, env.validPost("Short Lived Post"))
	require.NoError(t, err)

	require.NoError(t, env.posts.Delete(ctx, post.ID))
	_, err = env.posts.Get(ctx, post.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	err = env.posts.Delete(ctx, post.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestGetBySlug_AnyStatus(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	in := env.validPost("Draft Only Post")
	in.PublishAction = domain.PublishActionDraft
	post, err := env.posts.Create(ctx, in)
	require.NoError(t, err)

	got, err := env.posts.GetBySlug(ctx, "Draft-Only-Post")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	require.NotNil(t, got.Author)

	_, err = env.posts.GetBySlug(ctx, "missing")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestPublishDue(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	at := env.clock.now.Add(2 * time.Hour)
	in := env.validPost("Publish Me Later")
	in.PublishAction = domain.PublishActionSchedule
	in.ScheduledAt = &at
	post, err := env.posts.Create(ctx, in)
	require.NoError(t, err)

	n, err := env.posts.PublishDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = env.posts.GetPublic(ctx, post.Slug)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound), "scheduled post hidden")

	env.clock.Advance(3 * time.Hour)
	n, err = env.posts.PublishDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := env.posts.GetPublic(ctx, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusPublished, got.Status)
	assert.True(t, got.PublishedAt.Equal(at), "scheduled time becomes publish time")
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"ai", "machine learning", "Cloud"}, ParseTags("ai, machine learning,,Cloud, AI"))
	assert.Empty(t, ParseTags(" , "))
}
