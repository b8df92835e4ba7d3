package store

import (
	"cmp"
	"context"
	"slices"

	"github.com/ryhaapp/ryha-server/internal/domain"
)

// ListPosts returns every post, hydrated, in document order.
func (s *Store) ListPosts(ctx context.Context) ([]domain.HydratedPost, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.HydratedPosts(), nil
}

// GetPost returns the hydrated post with id.
func (s *Store) GetPost(ctx context.Context, id string) (*domain.HydratedPost, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.PostIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	h := doc.Hydrate(doc.Posts[i])
	return &h, nil
}

// GetPostBySlug returns the hydrated post with slug.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*domain.HydratedPost, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := doc.PostBySlug(slug)
	if !ok {
		return nil, ErrNotFound
	}
	h := doc.Hydrate(p)
	return &h, nil
}

// ListAuthors returns all authors sorted by name.
func (s *Store) ListAuthors(ctx context.Context) ([]domain.Author, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Author, 0, len(doc.Authors))
	for _, a := range doc.Authors {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b domain.Author) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// GetAuthor returns the author with id.
func (s *Store) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	a, ok := doc.Authors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

// ListCategories returns all categories sorted by name.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(doc.Categories))
	for _, c := range doc.Categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Category) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// GetCategory returns the category with id.
func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := doc.Categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// ListCrew returns crew members by ascending display order.
func (s *Store) ListCrew(ctx context.Context) ([]domain.CrewMember, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CrewMember, 0, len(doc.CrewMembers))
	for _, m := range doc.CrewMembers {
		out = append(out, m)
	}
	slices.SortFunc(out, domain.CompareCrew)
	return out, nil
}

// GetCrewMember returns the crew member with id.
func (s *Store) GetCrewMember(ctx context.Context, id string) (*domain.CrewMember, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := doc.CrewMembers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}
