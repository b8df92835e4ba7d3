package service

import (
	"cmp"
	"context"
	"slices"

	"github.com/samber/lo"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/store"
)

const dashboardListSize = 5

// PostStats is the engagement summary of one post.
type PostStats struct {
	PostID       string            `json:"postId"`
	Slug         string            `json:"slug"`
	Title        string            `json:"title"`
	Status       domain.PostStatus `json:"status"`
	Views        int               `json:"views"`
	Ratings      domain.Ratings    `json:"ratings"`
	TotalRatings int               `json:"totalRatings"`
}

// DashboardStats summarizes the whole site for the admin dashboard.
type DashboardStats struct {
	TotalPosts     int `json:"totalPosts"`
	PublishedPosts int `json:"publishedPosts"`
	DraftPosts     int `json:"draftPosts"`
	ScheduledPosts int `json:"scheduledPosts"`
	// TotalViews counts views of published posts only.
	TotalViews   int         `json:"totalViews"`
	TotalRatings int         `json:"totalRatings"`
	Authors      int         `json:"authors"`
	Categories   int         `json:"categories"`
	TopPosts     []PostStats `json:"topPosts"`
	RecentPosts  []PostStats `json:"recentPosts"`
}

// StatsService computes engagement figures from the content document.
type StatsService struct {
	store *store.Store
}

// NewStatsService creates a new stats service.
func NewStatsService(st *store.Store) *StatsService {
	return &StatsService{store: st}
}

// Dashboard returns site-wide figures.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalPosts: len(doc.Posts),
		Authors:    len(doc.Authors),
		Categories: len(doc.Categories),
	}
	for _, p := range doc.Posts {
		switch p.Status {
		case domain.PostStatusPublished:
			stats.PublishedPosts++
			stats.TotalViews += p.Views
		case domain.PostStatusDraft:
			stats.DraftPosts++
		case domain.PostStatusScheduled:
			stats.ScheduledPosts++
		}
		stats.TotalRatings += p.Ratings.Total()
	}

	published := lo.Filter(doc.Posts, func(p domain.Post, _ int) bool {
		return p.Status == domain.PostStatusPublished
	})
	slices.SortStableFunc(published, func(a, b domain.Post) int {
		return cmp.Or(cmp.Compare(b.Views, a.Views), b.PublishedAt.Compare(a.PublishedAt))
	})
	stats.TopPosts = lo.Map(published[:min(dashboardListSize, len(published))], toPostStats)

	recent := AdminPosts(doc.HydratedPosts())
	stats.RecentPosts = lo.Map(recent[:min(dashboardListSize, len(recent))], func(p domain.HydratedPost, i int) PostStats {
		return toPostStats(p.Post, i)
	})

	return stats, nil
}

// Post returns the engagement summary of the post with id.
func (s *StatsService) Post(ctx context.Context, postID string) (*PostStats, error) {
	p, err := s.store.GetPost(ctx, postID)
	if domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("post %s not found", postID)
	}
	if err != nil {
		return nil, err
	}
	stats := toPostStats(p.Post, 0)
	return &stats, nil
}

func toPostStats(p domain.Post, _ int) PostStats {
	ratings := p.Ratings.Normalize()
	return PostStats{
		PostID:       p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Status:       p.Status,
		Views:        p.Views,
		Ratings:      ratings,
		TotalRatings: ratings.Total(),
	}
}
