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

// CrewInput carries the editable fields of a crew member.
type CrewInput struct {
	Name     string `json:"name" validate:"min=2,max=100"`
	Role     string `json:"role" validate:"min=2,max=100"`
	Bio      string `json:"bio" validate:"min=10,max=2000"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
	Order    int    `json:"order" validate:"min=1"`
}

func (in *CrewInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	in.Bio = strings.TrimSpace(in.Bio)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
}

// CrewService manages the public team page.
type CrewService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewCrewService creates a new crew service.
func NewCrewService(st *store.Store, v *validation.Validator, log *slog.Logger) *CrewService {
	return &CrewService{store: st, validator: v, logger: logger.OrDiscard(log), now: time.Now}
}

// Create stores a new crew member.
func (s *CrewService) Create(ctx context.Context, in CrewInput) (*domain.CrewMember, error) {
	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	memberID, err := id.Generate(id.PrefixCrew)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate crew id")
	}
	now := s.now()
	member := domain.CrewMember{ID: memberID, CreatedAt: now}
	applyCrewInput(&member, in, now)

	if err := s.store.Update(ctx, func(doc *store.Document) error {
		doc.CrewMembers[member.ID] = member
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("crew member created", "crew_id", member.ID)
	return &member, nil
}

// Update replaces the fields of the crew member with id.
func (s *CrewService) Update(ctx context.Context, memberID string, in CrewInput) (*domain.CrewMember, error) {
	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	var member domain.CrewMember
	err := s.store.Update(ctx, func(doc *store.Document) error {
		existing, ok := doc.CrewMembers[memberID]
		if !ok {
			return domainerrors.NotFoundf("crew member %s not found", memberID)
		}
		member = existing
		applyCrewInput(&member, in, s.now())
		doc.CrewMembers[memberID] = member
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("crew member updated", "crew_id", memberID)
	return &member, nil
}

// Get returns the crew member with id.
func (s *CrewService) Get(ctx context.Context, memberID string) (*domain.CrewMember, error) {
	m, err := s.store.GetCrewMember(ctx, memberID)
	if domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("crew member %s not found", memberID)
	}
	return m, err
}

// List returns the crew by ascending display order.
func (s *CrewService) List(ctx context.Context) ([]domain.CrewMember, error) {
	return s.store.ListCrew(ctx)
}

func applyCrewInput(m *domain.CrewMember, in CrewInput, now time.Time) {
	m.Name = in.Name
	m.Role = in.Role
	m.Bio = in.Bio
	m.ImageURL = in.ImageURL
	if m.ImageURL == "" {
		m.ImageURL = domain.DefaultCrewImageURL
	}
	m.Order = in.Order
	m.UpdatedAt = now
}
