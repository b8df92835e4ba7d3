package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/id"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/store"
	"github.com/ryhaapp/ryha-server/internal/validation"
)

// AuthorInput carries the editable fields of an author.
type AuthorInput struct {
	Name      string `json:"name" validate:"min=2,max=100"`
	Bio       string `json:"bio" validate:"min=10,max=2000"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

func (in *AuthorInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Bio = strings.TrimSpace(in.Bio)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
}

// AuthorService manages authors.
type AuthorService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthorService creates a new author service.
func NewAuthorService(st *store.Store, v *validation.Validator, log *slog.Logger) *AuthorService {
	return &AuthorService{store: st, validator: v, logger: logger.OrDiscard(log), now: time.Now}
}

// Create stores a new author.
func (s *AuthorService) Create(ctx context.Context, in AuthorInput) (*domain.Author, error) {
	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	authorID, err := id.Generate(id.PrefixAuthor)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate author id")
	}
	now := s.now()
	author := domain.Author{ID: authorID, CreatedAt: now}
	applyAuthorInput(&author, in, now)

	if err := s.store.Update(ctx, func(doc *store.Document) error {
		doc.Authors[author.ID] = author
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("author created", "author_id", author.ID)
	return &author, nil
}

// Update replaces the fields of the author with id.
func (s *AuthorService) Update(ctx context.Context, authorID string, in AuthorInput) (*domain.Author, error) {
	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	var author domain.Author
	err := s.store.Update(ctx, func(doc *store.Document) error {
		existing, ok := doc.Authors[authorID]
		if !ok {
			return domainerrors.NotFoundf("author %s not found", authorID)
		}
		author = existing
		applyAuthorInput(&author, in, s.now())
		doc.Authors[authorID] = author
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("author updated", "author_id", authorID)
	return &author, nil
}

// Get returns the author with id.
func (s *AuthorService) Get(ctx context.Context, authorID string) (*domain.Author, error) {
	a, err := s.store.GetAuthor(ctx, authorID)
	if domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("author %s not found", authorID)
	}
	return a, err
}

// List returns all authors by name.
func (s *AuthorService) List(ctx context.Context) ([]domain.Author, error) {
	return s.store.ListAuthors(ctx)
}

func applyAuthorInput(a *domain.Author, in AuthorInput, now time.Time) {
	a.Name = in.Name
	a.Bio = in.Bio
	a.AvatarURL = in.AvatarURL
	if a.AvatarURL == "" {
		a.AvatarURL = domain.DefaultAvatarURL
	}
	a.UpdatedAt = now
}
