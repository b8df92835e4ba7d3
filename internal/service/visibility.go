package service

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/ryhaapp/ryha-server/internal/domain"
)

// Read views over the post collection. Each view copies the slice it is
// given, so callers may keep using their input.

// PublicPosts returns published posts whose publish time has passed,
// newest first.
func PublicPosts(posts []domain.HydratedPost, now time.Time) []domain.HydratedPost {
	out := lo.Filter(posts, func(p domain.HydratedPost, _ int) bool {
		return p.IsPublic(now)
	})
	slices.SortStableFunc(out, newestFirst)
	return out
}

// FeaturedPosts returns public featured posts by ascending featured order.
// Posts without an order come last; ties keep their public-view order.
func FeaturedPosts(posts []domain.HydratedPost, now time.Time) []domain.HydratedPost {
	out := lo.Filter(PublicPosts(posts, now), func(p domain.HydratedPost, _ int) bool {
		return p.IsFeatured
	})
	slices.SortStableFunc(out, func(a, b domain.HydratedPost) int {
		switch {
		case a.FeaturedOrder == nil && b.FeaturedOrder == nil:
			return 0
		case a.FeaturedOrder == nil:
			return 1
		case b.FeaturedOrder == nil:
			return -1
		}
		return cmp.Compare(*a.FeaturedOrder, *b.FeaturedOrder)
	})
	return out
}

// ScheduledPosts returns every scheduled post, soonest first.
func ScheduledPosts(posts []domain.HydratedPost) []domain.HydratedPost {
	out := lo.Filter(posts, func(p domain.HydratedPost, _ int) bool {
		return p.Status == domain.PostStatusScheduled
	})
	slices.SortStableFunc(out, func(a, b domain.HydratedPost) int {
		return a.PublishedAt.Compare(b.PublishedAt)
	})
	return out
}

// AdminPosts returns drafts and published posts together, newest first.
func AdminPosts(posts []domain.HydratedPost) []domain.HydratedPost {
	out := lo.Filter(posts, func(p domain.HydratedPost, _ int) bool {
		return p.Status != domain.PostStatusScheduled
	})
	slices.SortStableFunc(out, newestFirst)
	return out
}

func newestFirst(a, b domain.HydratedPost) int {
	return b.PublishedAt.Compare(a.PublishedAt)
}
