package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ryhaapp/ryha-server/internal/service"
)

func (s *Server) registerTaxonomyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns all categories by name",
		Tags:        []string{"Taxonomy"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Description: "Returns all authors by name",
		Tags:        []string{"Taxonomy"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCrew",
		Method:      http.MethodGet,
		Path:        "/api/v1/crew",
		Summary:     "List crew",
		Description: "Returns the team page members in display order",
		Tags:        []string{"Taxonomy"},
	}, s.handleListCrew)
}

func (s *Server) registerAdminTaxonomyRoutes() {
	admin := huma.Middlewares{s.requireAdmin}

	// Authors.
	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/authors/{id}",
		Summary:     "Get author",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateAuthor",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/authors",
		Summary:       "Create author",
		Tags:          []string{"Admin"},
		Security:      adminSecurity,
		Middlewares:   admin,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateAuthor",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/authors/{id}",
		Summary:     "Update author",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleUpdateAuthor)

	// Categories.
	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/categories/{id}",
		Summary:     "Get category",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateCategory",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/categories",
		Summary:       "Create category",
		Tags:          []string{"Admin"},
		Security:      adminSecurity,
		Middlewares:   admin,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateCategory",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/categories/{id}",
		Summary:     "Update category",
		Description: "Renames a category; posts pick up the new name on their next read",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleUpdateCategory)

	// Crew.
	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetCrewMember",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/crew/{id}",
		Summary:     "Get crew member",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleGetCrewMember)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateCrewMember",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/crew",
		Summary:       "Create crew member",
		Tags:          []string{"Admin"},
		Security:      adminSecurity,
		Middlewares:   admin,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCrewMember)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateCrewMember",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/crew/{id}",
		Summary:     "Update crew member",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
		Middlewares: admin,
	}, s.handleUpdateCrewMember)
}

// === DTOs ===

// IDInput identifies an entity by ID.
type IDInput struct {
	ID string `path:"id" doc:"Entity ID"`
}

// AuthorRequest is the request body for creating or updating an author.
type AuthorRequest struct {
	Name      string `json:"name,omitempty" doc:"Display name, at least 2 characters"`
	Bio       string `json:"bio,omitempty" doc:"Biography, at least 10 characters"`
	AvatarURL string `json:"avatarUrl,omitempty" doc:"Avatar URL, defaults to a placeholder"`
}

// CreateAuthorInput wraps the create author request for Huma.
type CreateAuthorInput struct {
	Body AuthorRequest
}

// UpdateAuthorInput wraps the update author request for Huma.
type UpdateAuthorInput struct {
	ID   string `path:"id" doc:"Author ID"`
	Body AuthorRequest
}

// AuthorOutput wraps an author for Huma.
type AuthorOutput struct {
	Body *AuthorResponse
}

// AuthorListOutput wraps the author list for Huma.
type AuthorListOutput struct {
	Body struct {
		Authors []*AuthorResponse `json:"authors" doc:"Authors by name"`
	}
}

// CategoryRequest is the request body for creating or updating a category.
type CategoryRequest struct {
	Name string `json:"name,omitempty" doc:"Category name, at least 2 characters"`
}

// CreateCategoryInput wraps the create category request for Huma.
type CreateCategoryInput struct {
	Body CategoryRequest
}

// UpdateCategoryInput wraps the update category request for Huma.
type UpdateCategoryInput struct {
	ID   string `path:"id" doc:"Category ID"`
	Body CategoryRequest
}

// CategoryOutput wraps a category for Huma.
type CategoryOutput struct {
	Body *CategoryResponse
}

// CategoryListOutput wraps the category list for Huma.
type CategoryListOutput struct {
	Body struct {
		Categories []*CategoryResponse `json:"categories" doc:"Categories by name"`
	}
}

// CrewRequest is the request body for creating or updating a crew member.
type CrewRequest struct {
	Name     string `json:"name,omitempty" doc:"Full name, at least 2 characters"`
	Role     string `json:"role,omitempty" doc:"Role, at least 2 characters"`
	Bio      string `json:"bio,omitempty" doc:"Biography, at least 10 characters"`
	ImageURL string `json:"imageUrl,omitempty" doc:"Portrait URL, defaults to a placeholder"`
	Order    int    `json:"order,omitempty" doc:"Display position, from 1"`
}

func (r CrewRequest) toInput() service.CrewInput {
	return service.CrewInput{Name: r.Name, Role: r.Role, Bio: r.Bio, ImageURL: r.ImageURL, Order: r.Order}
}

// CreateCrewInput wraps the create crew member request for Huma.
type CreateCrewInput struct {
	Body CrewRequest
}

// UpdateCrewInput wraps the update crew member request for Huma.
type UpdateCrewInput struct {
	ID   string `path:"id" doc:"Crew member ID"`
	Body CrewRequest
}

// CrewOutput wraps a crew member for Huma.
type CrewOutput struct {
	Body *CrewResponse
}

// CrewListOutput wraps the crew list for Huma.
type CrewListOutput struct {
	Body struct {
		Crew []*CrewResponse `json:"crew" doc:"Crew members in display order"`
	}
}

// === Public handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*CategoryListOutput, error) {
	categories, err := s.services.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &CategoryListOutput{}
	out.Body.Categories = make([]*CategoryResponse, len(categories))
	for i := range categories {
		out.Body.Categories[i] = toCategoryResponse(&categories[i])
	}
	return out, nil
}

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*AuthorListOutput, error) {
	authors, err := s.services.Authors.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &AuthorListOutput{}
	out.Body.Authors = make([]*AuthorResponse, len(authors))
	for i := range authors {
		out.Body.Authors[i] = toAuthorResponse(&authors[i])
	}
	return out, nil
}

func (s *Server) handleListCrew(ctx context.Context, _ *struct{}) (*CrewListOutput, error) {
	members, err := s.services.Crew.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &CrewListOutput{}
	out.Body.Crew = make([]*CrewResponse, len(members))
	for i := range members {
		out.Body.Crew[i] = toCrewResponse(&members[i])
	}
	return out, nil
}

// === Admin handlers ===

func (s *Server) handleGetAuthor(ctx context.Context, input *IDInput) (*AuthorOutput, error) {
	author, err := s.services.Authors.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: toAuthorResponse(author)}, nil
}

func (s *Server) handleCreateAuthor(ctx context.Context, input *CreateAuthorInput) (*AuthorOutput, error) {
	author, err := s.services.Authors.Create(ctx, service.AuthorInput(input.Body))
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: toAuthorResponse(author)}, nil
}

func (s *Server) handleUpdateAuthor(ctx context.Context, input *UpdateAuthorInput) (*AuthorOutput, error) {
	author, err := s.services.Authors.Update(ctx, input.ID, service.AuthorInput(input.Body))
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: toAuthorResponse(author)}, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *IDInput) (*CategoryOutput, error) {
	category, err := s.services.Categories.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: toCategoryResponse(category)}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	category, err := s.services.Categories.Create(ctx, service.CategoryInput{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: toCategoryResponse(category)}, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	category, err := s.services.Categories.Update(ctx, input.ID, service.CategoryInput{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: toCategoryResponse(category)}, nil
}

func (s *Server) handleGetCrewMember(ctx context.Context, input *IDInput) (*CrewOutput, error) {
	member, err := s.services.Crew.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CrewOutput{Body: toCrewResponse(member)}, nil
}

func (s *Server) handleCreateCrewMember(ctx context.Context, input *CreateCrewInput) (*CrewOutput, error) {
	member, err := s.services.Crew.Create(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &CrewOutput{Body: toCrewResponse(member)}, nil
}

func (s *Server) handleUpdateCrewMember(ctx context.Context, input *UpdateCrewInput) (*CrewOutput, error) {
	member, err := s.services.Crew.Update(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &CrewOutput{Body: toCrewResponse(member)}, nil
}
