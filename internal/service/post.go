package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/id"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/store"
	"github.com/ryhaapp/ryha-server/internal/util"
	"github.com/ryhaapp/ryha-server/internal/validation"
)

// ImageInspector derives display metadata for a post image.
// BlurHash returns "" without error for images it does not host.
type ImageInspector interface {
	BlurHash(imageURL string) (string, error)
}

// PostInput carries the editable fields of a post plus the publish action.
type PostInput struct {
	Title         string               `json:"title" validate:"min=5,max=200"`
	Excerpt       string               `json:"excerpt" validate:"min=10,max=500"`
	Content       string               `json:"content" validate:"min=50"`
	ImageURL      string               `json:"imageUrl" validate:"max=2048"`
	ImageHint     string               `json:"imageHint" validate:"max=100"`
	AuthorID      string               `json:"authorId" validate:"required"`
	CategoryID    string               `json:"categoryId" validate:"required"`
	Tags          []string             `json:"tags" validate:"max=20,dive,max=50"`
	IsFeatured    bool                 `json:"isFeatured"`
	FeaturedOrder *int                 `json:"featuredOrder,omitempty" validate:"omitempty,min=1"`
	PublishAction domain.PublishAction `json:"publishAction" validate:"oneof=draft now schedule"`
	ScheduledAt   *time.Time           `json:"scheduledAt,omitempty"`
	// Slug overrides the stored slug on update. Ignored on create.
	Slug string `json:"slug,omitempty" validate:"max=200"`
}

// normalize trims text fields, cleans tags and applies defaults.
func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Content = strings.TrimSpace(in.Content)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.ImageHint = strings.TrimSpace(in.ImageHint)
	in.AuthorID = strings.TrimSpace(in.AuthorID)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Tags = CleanTags(in.Tags)
	if in.PublishAction == "" {
		in.PublishAction = domain.PublishActionNow
	}
	if in.ImageURL == "" {
		in.ImageURL = domain.DefaultPostImageURL
		if in.ImageHint == "" {
			in.ImageHint = domain.DefaultPostImageHint
		}
	}
}

// ParseTags splits a comma-separated tag list.
func ParseTags(raw string) []string {
	return CleanTags(strings.Split(raw, ","))
}

// CleanTags trims tags, drops empty ones and removes case-insensitive
// duplicates, keeping the first spelling.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// PostService owns the post lifecycle: validation, slugs, publish state.
type PostService struct {
	store     *store.Store
	validator *validation.Validator
	images    ImageInspector
	logger    *slog.Logger
	now       func() time.Time
}

// NewPostService creates a new post service. images may be nil.
func NewPostService(st *store.Store, v *validation.Validator, images ImageInspector, log *slog.Logger) *PostService {
	return &PostService{
		store:     st,
		validator: v,
		images:    images,
		logger:    logger.OrDiscard(log),
		now:       time.Now,
	}
}

// Create validates in, derives the slug and publish state, and stores a
// new post.
func (s *PostService) Create(ctx context.Context, in PostInput) (*domain.HydratedPost, error) {
	in.normalize()
	now := s.now()
	blurHash := s.blurHash(in.ImageURL)

	var created domain.HydratedPost
	err := s.store.Update(ctx, func(doc *store.Document) error {
		// 1. Validate fields and references.
		if err := s.validate(doc, in, now); err != nil {
			return err
		}

		// 2. Derive a unique slug.
		slug := util.Slugify(in.Title)
		if doc.SlugTaken(slug, "") {
			return domainerrors.DuplicateSlug(slug)
		}

		postID, err := id.Generate(id.PrefixPost)
		if err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeInternal, "generate post id")
		}

		// 3. Apply the publish action and append.
		post := domain.Post{
			ID:        postID,
			Slug:      slug,
			Ratings:   domain.NewRatings(),
			CreatedAt: now,
		}
		applyInput(&post, in, now)
		post.ImageBlurHash = blurHash
		post.Status, post.PublishedAt = resolvePublishState(nil, in, now)

		doc.Posts = append(doc.Posts, post)
		created = doc.Hydrate(post)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		"post_id", created.ID,
		"slug", created.Slug,
		"status", created.Status,
	)
	return &created, nil
}

// Update replaces the editable fields of the post with id and recomputes its
// publish state. A post already published keeps its first publish time when
// published again.
func (s *PostService) Update(ctx context.Context, postID string, in PostInput) (*domain.HydratedPost, error) {
	in.normalize()
	now := s.now()
	blurHash := s.blurHash(in.ImageURL)

	var updated domain.HydratedPost
	err := s.store.Update(ctx, func(doc *store.Document) error {
		i := doc.PostIndex(postID)
		if i < 0 {
			return domainerrors.NotFoundf("post %s not found", postID)
		}

		if err := s.validate(doc, in, now); err != nil {
			return err
		}

		post := doc.Posts[i].Clone()
		if in.Slug != "" {
			slug := util.Slugify(in.Slug)
			if slug == "" {
				return domainerrors.FieldValidation("slug", "must contain letters or digits")
			}
			if doc.SlugTaken(slug, post.ID) {
				return domainerrors.DuplicateSlug(slug)
			}
			post.Slug = slug
		}

		previous := doc.Posts[i]
		applyInput(&post, in, now)
		post.ImageBlurHash = blurHash
		post.Status, post.PublishedAt = resolvePublishState(&previous, in, now)

		doc.Posts[i] = post
		updated = doc.Hydrate(post)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("post updated",
		"post_id", updated.ID,
		"slug", updated.Slug,
		"status", updated.Status,
	)
	return &updated, nil
}

// Delete removes the post with id.
func (s *PostService) Delete(ctx context.Context, postID string) error {
	err := s.store.Update(ctx, func(doc *store.Document) error {
		i := doc.PostIndex(postID)
		if i < 0 {
			return domainerrors.NotFoundf("post %s not found", postID)
		}
		doc.Posts = slices.Delete(doc.Posts, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("post deleted", "post_id", postID)
	return nil
}

// Get returns the post with id regardless of status.
func (s *PostService) Get(ctx context.Context, postID string) (*domain.HydratedPost, error) {
	p, err := s.store.GetPost(ctx, postID)
	if domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("post %s not found", postID)
	}
	return p, err
}

// GetBySlug returns the post with slug regardless of status.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*domain.HydratedPost, error) {
	p, err := s.store.GetPostBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("post %q not found", slug)
	}
	return p, err
}

// PublishDue promotes scheduled posts whose time has come. The scheduled
// time becomes the publish time. Returns the number of promoted posts.
func (s *PostService) PublishDue(ctx context.Context) (int, error) {
	now := s.now()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !slices.ContainsFunc(doc.Posts, func(p domain.Post) bool { return isDue(p, now) }) {
		return 0, nil
	}

	var promoted []string
	err = s.store.Update(ctx, func(doc *store.Document) error {
		promoted = promoted[:0]
		for i := range doc.Posts {
			if isDue(doc.Posts[i], now) {
				doc.Posts[i].Status = domain.PostStatusPublished
				doc.Posts[i].UpdatedAt = now
				promoted = append(promoted, doc.Posts[i].ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, postID := range promoted {
		s.logger.Info("scheduled post published", "post_id", postID)
	}
	return len(promoted), nil
}

func isDue(p domain.Post, now time.Time) bool {
	return p.Status == domain.PostStatusScheduled && !p.PublishedAt.After(now)
}

// validate runs tag validation plus the checks that need the document.
func (s *PostService) validate(doc *store.Document, in PostInput, now time.Time) error {
	extra := make(map[string]string)

	if in.AuthorID != "" {
		if _, ok := doc.Authors[in.AuthorID]; !ok {
			extra["authorId"] = "does not reference an existing author"
		}
	}
	if in.CategoryID != "" {
		if _, ok := doc.Categories[in.CategoryID]; !ok {
			extra["categoryId"] = "does not reference an existing category"
		}
	}
	if len([]rune(in.Title)) >= 5 && util.Slugify(in.Title) == "" {
		extra["title"] = "must contain letters or digits"
	}
	if in.PublishAction == domain.PublishActionSchedule {
		switch {
		case in.ScheduledAt == nil:
			extra["scheduledAt"] = "is required when scheduling"
		case !in.ScheduledAt.After(now):
			extra["scheduledAt"] = "must be in the future"
		}
	}

	return s.validator.ValidateWith(in, extra)
}

func (s *PostService) blurHash(imageURL string) string {
	if s.images == nil {
		return ""
	}
	hash, err := s.images.BlurHash(imageURL)
	if err != nil {
		s.logger.Warn("failed to compute blurhash", "image_url", imageURL, "error", err)
		return ""
	}
	return hash
}

// applyInput copies the editable fields of in onto p.
func applyInput(p *domain.Post, in PostInput, now time.Time) {
	p.Title = in.Title
	p.Excerpt = in.Excerpt
	p.Content = in.Content
	p.ImageURL = in.ImageURL
	p.ImageHint = in.ImageHint
	p.AuthorID = in.AuthorID
	p.CategoryID = in.CategoryID
	p.Tags = slices.Clone(in.Tags)
	p.IsFeatured = in.IsFeatured
	p.FeaturedOrder = nil
	if in.FeaturedOrder != nil {
		order := *in.FeaturedOrder
		p.FeaturedOrder = &order
	}
	p.UpdatedAt = now
}

// resolvePublishState maps a publish action to the stored status and
// publish time. previous is nil on create.
//
//	draft     draft      now on create, kept on update unless unset
//	now       published  now, kept if the post was already published
//	schedule  scheduled  the requested time
func resolvePublishState(previous *domain.Post, in PostInput, now time.Time) (domain.PostStatus, time.Time) {
	switch in.PublishAction {
	case domain.PublishActionDraft:
		if previous != nil && !previous.PublishedAt.IsZero() {
			return domain.PostStatusDraft, previous.PublishedAt
		}
		return domain.PostStatusDraft, now
	case domain.PublishActionSchedule:
		return domain.PostStatusScheduled, *in.ScheduledAt
	default:
		if previous != nil && previous.Status == domain.PostStatusPublished && !previous.PublishedAt.IsZero() {
			return domain.PostStatusPublished, previous.PublishedAt
		}
		return domain.PostStatusPublished, now
	}
}
