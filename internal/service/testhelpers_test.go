package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/store"
	"github.com/ryhaapp/ryha-server/internal/validation"
)

// testClock is a manually advanced clock shared by the services under test.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	store      *store.Store
	clock      *testClock
	posts      *PostService
	authors    *AuthorService
	categories *CategoryService
	crew       *CrewService
	stats      *StatsService
	author     *domain.Author
	category   *domain.Category
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(store.Options{Path: filepath.Join(t.TempDir(), "data.json")})
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	v := validation.New()

	env := &testEnv{
		store:      st,
		clock:      clock,
		posts:      NewPostService(st, v, nil, nil),
		authors:    NewAuthorService(st, v, nil),
		categories: NewCategoryService(st, v, nil),
		crew:       NewCrewService(st, v, nil),
		stats:      NewStatsService(st),
	}
	env.posts.now = clock.Now
	env.authors.now = clock.Now
	env.categories.now = clock.Now
	env.crew.now = clock.Now

	ctx := context.Background()
	env.author, err = env.authors.Create(ctx, AuthorInput{Name: "Asha Rao", Bio: "Writes about distributed systems."})
	require.NoError(t, err)
	env.category, err = env.categories.Create(ctx, CategoryInput{Name: "Engineering"})
	require.NoError(t, err)

	return env
}

// validPost returns an input that passes every check.
func (e *testEnv) validPost(title string) PostInput {
	return PostInput{
		Title:      title,
		Excerpt:    "A short summary of the post.",
		Content:    "<p>" + strings.Repeat("Body text that is long enough. ", 3) + "</p>",
		AuthorID:   e.author.ID,
		CategoryID: e.category.ID,
		Tags:       []string{"go", "cms"},
	}
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, domainerrors.CodeValidation, domainErr.Code, "error: %v", err)
	require.Contains(t, domainErr.FieldErrors(), field)
}
