package store

import (
	"slices"

	"github.com/ryhaapp/ryha-server/internal/domain"
)

// Document is the whole persisted content set. It is read and written as a
// single unit.
type Document struct {
	// Version increases by one on every committed write.
	Version     int64                        `json:"version"`
	Authors     map[string]domain.Author     `json:"authors"`
	Categories  map[string]domain.Category   `json:"categories"`
	CrewMembers map[string]domain.CrewMember `json:"crewMembers"`
	Posts       []domain.Post                `json:"posts"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.normalize()
	return d
}

// normalize fills in anything a hand-edited or older file may lack.
func (d *Document) normalize() {
	if d.Authors == nil {
		d.Authors = make(map[string]domain.Author)
	}
	if d.Categories == nil {
		d.Categories = make(map[string]domain.Category)
	}
	if d.CrewMembers == nil {
		d.CrewMembers = make(map[string]domain.CrewMember)
	}
	if d.Posts == nil {
		d.Posts = []domain.Post{}
	}
	for i := range d.Posts {
		d.Posts[i].Ratings = d.Posts[i].Ratings.Normalize()
		if d.Posts[i].Tags == nil {
			d.Posts[i].Tags = []string{}
		}
	}
}

// PostIndex returns the position of the post with id, or -1.
func (d *Document) PostIndex(id string) int {
	return slices.IndexFunc(d.Posts, func(p domain.Post) bool { return p.ID == id })
}

// PostIndexBySlug returns the position of the post with slug, or -1.
func (d *Document) PostIndexBySlug(slug string) int {
	return slices.IndexFunc(d.Posts, func(p domain.Post) bool { return p.Slug == slug })
}

// PostBySlug returns the post with slug, if any.
func (d *Document) PostBySlug(slug string) (domain.Post, bool) {
	i := d.PostIndexBySlug(slug)
	if i < 0 {
		return domain.Post{}, false
	}
	return d.Posts[i], true
}

// SlugTaken reports whether a post other than exceptID already uses slug.
func (d *Document) SlugTaken(slug, exceptID string) bool {
	return slices.ContainsFunc(d.Posts, func(p domain.Post) bool {
		return p.Slug == slug && p.ID != exceptID
	})
}

// Hydrate resolves the author and category of p. This is the only place
// where foreign keys are joined.
func (d *Document) Hydrate(p domain.Post) domain.HydratedPost {
	h := domain.HydratedPost{Post: p.Clone()}
	if a, ok := d.Authors[p.AuthorID]; ok {
		h.Author = &a
	}
	if c, ok := d.Categories[p.CategoryID]; ok {
		h.Category = &c
	}
	return h
}

// HydratedPosts hydrates every post in document order.
func (d *Document) HydratedPosts() []domain.HydratedPost {
	out := make([]domain.HydratedPost, len(d.Posts))
	for i, p := range d.Posts {
		out[i] = d.Hydrate(p)
	}
	return out
}
