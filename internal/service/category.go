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

// CategoryInput carries the editable fields of a category.
type CategoryInput struct {
	Name string `json:"name" validate:"min=2,max=60"`
}

// CategoryService manages categories.
type CategoryService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewCategoryService creates a new category service.
func NewCategoryService(st *store.Store, v *validation.Validator, log *slog.Logger) *CategoryService {
	return &CategoryService{store: st, validator: v, logger: logger.OrDiscard(log), now: time.Now}
}

// Create stores a new category.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	categoryID, err := id.Generate(id.PrefixCategory)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate category id")
	}
	now := s.now()
	category := domain.Category{ID: categoryID, Name: in.Name, CreatedAt: now, UpdatedAt: now}

	if err := s.store.Update(ctx, func(doc *store.Document) error {
		doc.Categories[category.ID] = category
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("category created", "category_id", category.ID, "name", category.Name)
	return &category, nil
}

// Update renames the category with id.
func (s *CategoryService) Update(ctx context.Context, categoryID string, in CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	var category domain.Category
	err := s.store.Update(ctx, func(doc *store.Document) error {
		existing, ok := doc.Categories[categoryID]
		if !ok {
			return domainerrors.NotFoundf("category %s not found", categoryID)
		}
		category = existing
		category.Name = in.Name
		category.UpdatedAt = s.now()
		doc.Categories[categoryID] = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category updated", "category_id", categoryID)
	return &category, nil
}

// Get returns the category with id.
func (s *CategoryService) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, categoryID)
	if domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("category %s not found", categoryID)
	}
	return c, err
}

// List returns all categories by name.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.store.ListCategories(ctx)
}
