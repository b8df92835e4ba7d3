package service

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/store"
)

// PublicFilter narrows the public listing.
type PublicFilter struct {
	// CategoryID matches the category id exactly.
	CategoryID string
	// Tag matches any post tag, ignoring case.
	Tag    string
	Limit  int
	Offset int
}

// Page is one slice of a listing plus the size of the whole listing.
type Page[T any] struct {
	Items []T
	Total int
}

func paginate[T any](items []T, limit, offset int) Page[T] {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return Page[T]{Items: items[offset:end], Total: total}
}

// ListPublic returns the public view, optionally filtered and paginated.
func (s *PostService) ListPublic(ctx context.Context, f PublicFilter) (Page[domain.HydratedPost], error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return Page[domain.HydratedPost]{}, err
	}

	visible := PublicPosts(posts, s.now())
	if f.CategoryID != "" || f.Tag != "" {
		visible = lo.Filter(visible, func(p domain.HydratedPost, _ int) bool {
			if f.CategoryID != "" && p.CategoryID != f.CategoryID {
				return false
			}
			return f.Tag == "" || p.HasTag(f.Tag)
		})
	}
	return paginate(visible, f.Limit, f.Offset), nil
}

// ListFeatured returns the featured view.
func (s *PostService) ListFeatured(ctx context.Context) ([]domain.HydratedPost, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return FeaturedPosts(posts, s.now()), nil
}

// ListScheduled returns the scheduler view.
func (s *PostService) ListScheduled(ctx context.Context) ([]domain.HydratedPost, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return ScheduledPosts(posts), nil
}

// ListAdmin returns drafts and published posts, newest first.
func (s *PostService) ListAdmin(ctx context.Context) ([]domain.HydratedPost, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return AdminPosts(posts), nil
}

// GetPublic returns the post with slug if readers may see it now.
// Hidden posts are reported as not found.
func (s *PostService) GetPublic(ctx context.Context, slug string) (*domain.HydratedPost, error) {
	p, err := s.store.GetPostBySlug(ctx, strings.ToLower(slug))
	if domainerrors.Is(err, store.ErrNotFound) || (err == nil && !p.IsPublic(s.now())) {
		return nil, domainerrors.NotFoundf("post %q not found", slug)
	}
	return p, err
}

// RecordView increments the view counter of a public post and returns it.
func (s *PostService) RecordView(ctx context.Context, slug string) (*domain.HydratedPost, error) {
	now := s.now()
	var viewed domain.HydratedPost
	err := s.store.Update(ctx, func(doc *store.Document) error {
		i := publicIndex(doc, slug, now)
		if i < 0 {
			return domainerrors.NotFoundf("post %q not found", slug)
		}
		doc.Posts[i].Views++
		viewed = doc.Hydrate(doc.Posts[i])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &viewed, nil
}

// Rate adds one reader reaction to a public post and returns the histogram.
func (s *PostService) Rate(ctx context.Context, slug string, reaction domain.Reaction) (domain.Ratings, error) {
	if !reaction.Valid() {
		return nil, domainerrors.FieldValidation("reaction", "must be one of the five rating emoji")
	}

	now := s.now()
	var ratings domain.Ratings
	err := s.store.Update(ctx, func(doc *store.Document) error {
		i := publicIndex(doc, slug, now)
		if i < 0 {
			return domainerrors.NotFoundf("post %q not found", slug)
		}
		r := doc.Posts[i].Ratings.Normalize()
		r[reaction]++
		doc.Posts[i].Ratings = r
		ratings = r.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("post rated", "slug", slug, "reaction", string(reaction))
	return ratings, nil
}

func publicIndex(doc *store.Document, slug string, now time.Time) int {
	i := doc.PostIndexBySlug(strings.ToLower(slug))
	if i < 0 || !doc.Posts[i].IsPublic(now) {
		return -1
	}
	return i
}
