package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/ryhaapp/ryha-server/internal/domain"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/search"
	"github.com/ryhaapp/ryha-server/internal/store"
)

// SearchService keeps the search index in sync with the content document and
// answers public search queries.
type SearchService struct {
	index  *search.Index
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

var _ store.ChangeListener = (*SearchService)(nil)

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, st *store.Store, log *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  st,
		logger: logger.OrDiscard(log),
		now:    time.Now,
	}
}

// SearchInput is a public search request.
type SearchInput struct {
	Query      string
	CategoryID string
	Tag        string
	Limit      int
	Offset     int
}

// SearchHit is a visible post matching a query.
type SearchHit struct {
	Post       domain.HydratedPost `json:"post"`
	Score      float64             `json:"score"`
	Highlights map[string]string   `json:"highlights,omitempty"`
}

// Search queries the index and returns only posts that are public right now.
// Hits are re-checked against the current document, so the index never
// decides visibility.
func (s *SearchService) Search(ctx context.Context, in SearchInput) ([]SearchHit, error) {
	limit := in.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	now := s.now()
	res, err := s.index.Search(ctx, search.Params{
		Query:       in.Query,
		CategoryID:  in.CategoryID,
		Tag:         in.Tag,
		Status:      string(domain.PostStatusPublished),
		PublishedBy: now,
		Limit:       limit,
		Offset:      max(0, in.Offset),
	})
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		i := doc.PostIndex(h.ID)
		if i < 0 || !doc.Posts[i].IsPublic(now) {
			continue
		}
		hits = append(hits, SearchHit{
			Post:       doc.Hydrate(doc.Posts[i]),
			Score:      h.Score,
			Highlights: h.Highlights,
		})
	}
	return hits, nil
}

// ReindexAll rebuilds the index from the current document.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	return s.replace(doc)
}

// DocumentChanged implements store.ChangeListener.
func (s *SearchService) DocumentChanged(_ context.Context, change store.Change) {
	var err error
	switch {
	case change.Reloaded:
		s.logger.Info("content document changed on disk, reindexing", "path", s.store.Path())
		err = s.replace(change.Document)
	case change.ReferencesChanged:
		// Author or category names are denormalized into every post.
		err = s.replace(change.Document)
	default:
		err = s.apply(change)
	}
	if err != nil {
		s.logger.Error("failed to update search index", "version", change.Version, "error", err)
	}
}

// HandleExternalChange reindexes when the data file was changed by someone
// other than this process.
func (s *SearchService) HandleExternalChange(ctx context.Context) error {
	changed, err := s.store.ChangedExternally()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	s.logger.Info("content document changed on disk, reindexing", "path", s.store.Path())
	return s.ReindexAll(ctx)
}

// DocumentCount returns the number of indexed posts.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

func (s *SearchService) apply(change store.Change) error {
	changed := lo.Associate(change.ChangedPostIDs, func(id string) (string, bool) { return id, true })
	docs := make([]*search.PostDocument, 0, len(change.ChangedPostIDs))
	for _, p := range change.Document.Posts {
		if changed[p.ID] {
			docs = append(docs, search.FromPost(change.Document.Hydrate(p)))
		}
	}
	if err := s.index.IndexPosts(docs); err != nil {
		return err
	}
	return s.index.DeletePosts(change.DeletedPostIDs)
}

func (s *SearchService) replace(doc *store.Document) error {
	docs := lo.Map(doc.HydratedPosts(), func(p domain.HydratedPost, _ int) *search.PostDocument {
		return search.FromPost(p)
	})
	return s.index.Replace(docs)
}
