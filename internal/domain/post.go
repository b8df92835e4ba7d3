package domain

import (
	"slices"
	"time"
)

// PostStatus is the publication state of a post.
type PostStatus string

// Post statuses.
const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
)

// PublishAction is what the author asks for when saving a post.
type PublishAction string

// Publish actions.
const (
	PublishActionDraft    PublishAction = "draft"
	PublishActionNow      PublishAction = "now"
	PublishActionSchedule PublishAction = "schedule"
)

// Valid reports whether a is a known action.
func (a PublishAction) Valid() bool {
	switch a {
	case PublishActionDraft, PublishActionNow, PublishActionSchedule:
		return true
	}
	return false
}

// Placeholder image used when a post is saved without one.
const (
	DefaultPostImageURL  = "https://placehold.co/600x400.png"
	DefaultPostImageHint = "placeholder"
)

// Post is a blog post as persisted in the content document.
// Author and category are referenced by id only.
type Post struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content"`
	ImageURL      string     `json:"imageUrl"`
	ImageHint     string     `json:"imageHint"`
	ImageBlurHash string     `json:"imageBlurHash,omitempty"`
	AuthorID      string     `json:"authorId"`
	CategoryID    string     `json:"categoryId"`
	Tags          []string   `json:"tags"`
	Status        PostStatus `json:"status"`
	// For scheduled posts this is the target time, for published posts the
	// time the post went live. Zero means never set.
	PublishedAt   time.Time `json:"publishedAt"`
	Views         int       `json:"views"`
	Ratings       Ratings   `json:"ratings"`
	IsFeatured    bool      `json:"isFeatured"`
	FeaturedOrder *int      `json:"featuredOrder,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsPublic reports whether the post is visible to readers at now.
// Scheduled posts are never public, whatever their publish time.
func (p *Post) IsPublic(now time.Time) bool {
	return p.Status == PostStatusPublished && !p.PublishedAt.After(now)
}

// HasTag reports whether the post carries tag, ignoring case.
func (p *Post) HasTag(tag string) bool {
	return slices.ContainsFunc(p.Tags, func(t string) bool {
		return equalFold(t, tag)
	})
}

// Clone returns a deep copy of the post.
func (p Post) Clone() Post {
	p.Tags = slices.Clone(p.Tags)
	p.Ratings = p.Ratings.Clone()
	if p.FeaturedOrder != nil {
		order := *p.FeaturedOrder
		p.FeaturedOrder = &order
	}
	return p
}

// HydratedPost is a post with its author and category resolved.
// Missing references stay nil.
type HydratedPost struct {
	Post
	Author   *Author   `json:"author,omitempty"`
	Category *Category `json:"category,omitempty"`
}
