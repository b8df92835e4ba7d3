package api

import (
	"time"

	"github.com/ryhaapp/ryha-server/internal/domain"
	"github.com/ryhaapp/ryha-server/internal/service"
)

// === Responses ===

// AuthorResponse contains author data in API responses.
type AuthorResponse struct {
	ID        string    `json:"id" doc:"Author ID"`
	Name      string    `json:"name" doc:"Display name"`
	Bio       string    `json:"bio" doc:"Short biography"`
	AvatarURL string    `json:"avatarUrl" doc:"Avatar image URL"`
	CreatedAt time.Time `json:"createdAt" doc:"Creation time"`
	UpdatedAt time.Time `json:"updatedAt" doc:"Last update time"`
}

// CategoryResponse contains category data in API responses.
type CategoryResponse struct {
	ID        string    `json:"id" doc:"Category ID"`
	Name      string    `json:"name" doc:"Category name"`
	CreatedAt time.Time `json:"createdAt" doc:"Creation time"`
	UpdatedAt time.Time `json:"updatedAt" doc:"Last update time"`
}

// CrewResponse contains crew member data in API responses.
type CrewResponse struct {
	ID        string    `json:"id" doc:"Crew member ID"`
	Name      string    `json:"name" doc:"Full name"`
	Role      string    `json:"role" doc:"Role in the team"`
	Bio       string    `json:"bio" doc:"Short biography"`
	ImageURL  string    `json:"imageUrl" doc:"Portrait URL"`
	Order     int       `json:"order" doc:"Display position, ascending"`
	CreatedAt time.Time `json:"createdAt" doc:"Creation time"`
	UpdatedAt time.Time `json:"updatedAt" doc:"Last update time"`
}

// PostResponse contains a hydrated post in API responses.
type PostResponse struct {
	ID            string            `json:"id" doc:"Post ID"`
	Slug          string            `json:"slug" doc:"URL slug"`
	Title         string            `json:"title" doc:"Title"`
	Excerpt       string            `json:"excerpt" doc:"Short summary"`
	Content       string            `json:"content" doc:"HTML body"`
	ImageURL      string            `json:"imageUrl" doc:"Hero image URL"`
	ImageHint     string            `json:"imageHint" doc:"Short description of the hero image"`
	ImageBlurHash string            `json:"imageBlurHash,omitempty" doc:"BlurHash placeholder of locally stored hero images"`
	AuthorID      string            `json:"authorId" doc:"Author ID"`
	Author        *AuthorResponse   `json:"author,omitempty" doc:"Resolved author, absent if the reference is dangling"`
	CategoryID    string            `json:"categoryId" doc:"Category ID"`
	Category      *CategoryResponse `json:"category,omitempty" doc:"Resolved category, absent if the reference is dangling"`
	Tags          []string          `json:"tags" doc:"Tags"`
	Status        string            `json:"status" doc:"draft, scheduled or published"`
	PublishedAt   *time.Time        `json:"publishedAt,omitempty" doc:"Publish time, or target time of a scheduled post"`
	Views         int               `json:"views" doc:"View count"`
	Ratings       map[string]int    `json:"ratings" doc:"Reader reactions per emoji"`
	TotalRatings  int               `json:"totalRatings" doc:"Sum of all reactions"`
	IsFeatured    bool              `json:"isFeatured" doc:"Shown in the featured list"`
	FeaturedOrder *int              `json:"featuredOrder,omitempty" doc:"Position in the featured list"`
	CreatedAt     time.Time         `json:"createdAt" doc:"Creation time"`
	UpdatedAt     time.Time         `json:"updatedAt" doc:"Last update time"`
}

// PostListResponse is one page of posts.
type PostListResponse struct {
	Posts  []PostResponse `json:"posts" doc:"Posts in view order"`
	Total  int            `json:"total" doc:"Number of posts in the whole view"`
	Limit  int            `json:"limit,omitempty" doc:"Page size"`
	Offset int            `json:"offset,omitempty" doc:"Page offset"`
}

// RatingsResponse is a post's reaction histogram.
type RatingsResponse struct {
	Ratings map[string]int `json:"ratings" doc:"Reader reactions per emoji"`
	Total   int            `json:"total" doc:"Sum of all reactions"`
}

func toAuthorResponse(a *domain.Author) *AuthorResponse {
	if a == nil {
		return nil
	}
	return &AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		AvatarURL: a.AvatarURL,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toCategoryResponse(c *domain.Category) *CategoryResponse {
	if c == nil {
		return nil
	}
	return &CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func toCrewResponse(m *domain.CrewMember) *CrewResponse {
	return &CrewResponse{
		ID:        m.ID,
		Name:      m.Name,
		Role:      m.Role,
		Bio:       m.Bio,
		ImageURL:  m.ImageURL,
		Order:     m.Order,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toRatings(r domain.Ratings) map[string]int {
	r = r.Normalize()
	out := make(map[string]int, len(r))
	for reaction, n := range r {
		out[string(reaction)] = n
	}
	return out
}

func toPostResponse(p *domain.HydratedPost) PostResponse {
	resp := PostResponse{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         p.Title,
		Excerpt:       p.Excerpt,
		Content:       p.Content,
		ImageURL:      p.ImageURL,
		ImageHint:     p.ImageHint,
		ImageBlurHash: p.ImageBlurHash,
		AuthorID:      p.AuthorID,
		Author:        toAuthorResponse(p.Author),
		CategoryID:    p.CategoryID,
		Category:      toCategoryResponse(p.Category),
		Tags:          p.Tags,
		Status:        string(p.Status),
		Views:         p.Views,
		Ratings:       toRatings(p.Ratings),
		TotalRatings:  p.Ratings.Total(),
		IsFeatured:    p.IsFeatured,
		FeaturedOrder: p.FeaturedOrder,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if !p.PublishedAt.IsZero() {
		published := p.PublishedAt
		resp.PublishedAt = &published
	}
	return resp
}

func toPostResponses(posts []domain.HydratedPost) []PostResponse {
	out := make([]PostResponse, len(posts))
	for i := range posts {
		out[i] = toPostResponse(&posts[i])
	}
	return out
}

// === Requests ===

// PostRequest is the editable content of a post plus the publish action.
// Field rules are enforced by the post service so every failing field is
// reported at once.
type PostRequest struct {
	Title         string     `json:"title,omitempty" doc:"Title, at least 5 characters"`
	Excerpt       string     `json:"excerpt,omitempty" doc:"Summary, at least 10 characters"`
	Content       string     `json:"content,omitempty" doc:"HTML body, at least 50 characters"`
	ImageURL      string     `json:"imageUrl,omitempty" doc:"Hero image URL, defaults to a placeholder"`
	ImageHint     string     `json:"imageHint,omitempty" doc:"Short description of the hero image"`
	AuthorID      string     `json:"authorId,omitempty" doc:"Existing author ID"`
	CategoryID    string     `json:"categoryId,omitempty" doc:"Existing category ID"`
	Tags          []string   `json:"tags,omitempty" doc:"Tags, duplicates ignoring case are dropped"`
	IsFeatured    bool       `json:"isFeatured,omitempty" doc:"Show in the featured list"`
	FeaturedOrder *int       `json:"featuredOrder,omitempty" doc:"Position in the featured list, from 1"`
	PublishAction string     `json:"publishAction,omitempty" doc:"draft, now or schedule; defaults to now"`
	ScheduledAt   *time.Time `json:"scheduledAt,omitempty" doc:"Publish time, required for schedule"`
	Slug          string     `json:"slug,omitempty" doc:"New slug on update; ignored on create"`
}

func (r PostRequest) toInput() service.PostInput {
	return service.PostInput{
		Title:         r.Title,
		Excerpt:       r.Excerpt,
		Content:       r.Content,
		ImageURL:      r.ImageURL,
		ImageHint:     r.ImageHint,
		AuthorID:      r.AuthorID,
		CategoryID:    r.CategoryID,
		Tags:          r.Tags,
		IsFeatured:    r.IsFeatured,
		FeaturedOrder: r.FeaturedOrder,
		PublishAction: domain.PublishAction(r.PublishAction),
		ScheduledAt:   r.ScheduledAt,
		Slug:          r.Slug,
	}
}
