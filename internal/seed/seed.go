// Package seed loads starter content from a YAML file through the services,
// so seeded content passes the same validation as content created over HTTP.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/service"
)

// File is the YAML seed format. Posts reference authors and categories by
// the key given in the same file, or by an existing ID.
//
//	authors:
//	  - key: asha
//	    name: Asha Rao
//	    bio: Writes about distributed systems.
//	categories:
//	  - key: eng
//	    name: Engineering
//	posts:
//	  - title: Hello World
//	    author: asha
//	    category: eng
type File struct {
	Authors    []Author   `yaml:"authors"`
	Categories []Category `yaml:"categories"`
	Crew       []Crew     `yaml:"crew"`
	Posts      []Post     `yaml:"posts"`
}

// Author is a seeded author.
type Author struct {
	Key       string `yaml:"key"`
	Name      string `yaml:"name"`
	Bio       string `yaml:"bio"`
	AvatarURL string `yaml:"avatarUrl"`
}

// Category is a seeded category.
type Category struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

// Crew is a seeded team page member.
type Crew struct {
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Bio      string `yaml:"bio"`
	ImageURL string `yaml:"imageUrl"`
	Order    int    `yaml:"order"`
}

// Post is a seeded post.
type Post struct {
	Title         string     `yaml:"title"`
	Excerpt       string     `yaml:"excerpt"`
	Content       string     `yaml:"content"`
	ImageURL      string     `yaml:"imageUrl"`
	ImageHint     string     `yaml:"imageHint"`
	Author        string     `yaml:"author"`
	Category      string     `yaml:"category"`
	Tags          []string   `yaml:"tags"`
	IsFeatured    bool       `yaml:"isFeatured"`
	FeaturedOrder *int       `yaml:"featuredOrder"`
	PublishAction string     `yaml:"publishAction"`
	ScheduledAt   *time.Time `yaml:"scheduledAt"`
}

// Parse decodes a seed file. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Services are the services content is created through.
type Services struct {
	Posts      *service.PostService
	Authors    *service.AuthorService
	Categories *service.CategoryService
	Crew       *service.CrewService
}

// Report counts what Apply did.
type Report struct {
	AuthorsCreated    int
	CategoriesCreated int
	CrewCreated       int
	PostsCreated      int
	// Entries that already existed: authors, categories and crew by name,
	// posts by slug.
	Skipped int
}

// Apply creates the content of f. It can be run repeatedly; existing
// entries are reused or skipped. The first invalid entry stops the run.
func Apply(ctx context.Context, svc Services, f *File, log *slog.Logger) (*Report, error) {
	log = logger.OrDiscard(log)
	report := &Report{}

	authorIDs, err := applyAuthors(ctx, svc.Authors, f.Authors, report)
	if err != nil {
		return report, err
	}
	categoryIDs, err := applyCategories(ctx, svc.Categories, f.Categories, report)
	if err != nil {
		return report, err
	}
	if err := applyCrew(ctx, svc.Crew, f.Crew, report); err != nil {
		return report, err
	}

	for i, p := range f.Posts {
		in := service.PostInput{
			Title:         p.Title,
			Excerpt:       p.Excerpt,
			Content:       p.Content,
			ImageURL:      p.ImageURL,
			ImageHint:     p.ImageHint,
			AuthorID:      resolve(authorIDs, p.Author),
			CategoryID:    resolve(categoryIDs, p.Category),
			Tags:          p.Tags,
			IsFeatured:    p.IsFeatured,
			FeaturedOrder: p.FeaturedOrder,
			PublishAction: domain.PublishAction(p.PublishAction),
			ScheduledAt:   p.ScheduledAt,
		}
		post, err := svc.Posts.Create(ctx, in)
		if domainerrors.Is(err, domainerrors.ErrDuplicateSlug) {
			log.Info("seed post already exists", "title", p.Title)
			report.Skipped++
			continue
		}
		if err != nil {
			return report, fmt.Errorf("post %d (%q): %w", i+1, p.Title, err)
		}
		report.PostsCreated++
		log.Debug("seeded post", "post_id", post.ID, "slug", post.Slug)
	}

	return report, nil
}

func applyAuthors(ctx context.Context, authors *service.AuthorService, seeds []Author, report *Report) (map[string]string, error) {
	existing, err := authors.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(existing))
	for _, a := range existing {
		byName[nameKey(a.Name)] = a.ID
	}

	ids := make(map[string]string, len(seeds))
	for i, a := range seeds {
		id, ok := byName[nameKey(a.Name)]
		if ok {
			report.Skipped++
		} else {
			created, err := authors.Create(ctx, service.AuthorInput{Name: a.Name, Bio: a.Bio, AvatarURL: a.AvatarURL})
			if err != nil {
				return nil, fmt.Errorf("author %d (%q): %w", i+1, a.Name, err)
			}
			id = created.ID
			byName[nameKey(a.Name)] = id
			report.AuthorsCreated++
		}
		if a.Key != "" {
			ids[a.Key] = id
		}
	}
	return ids, nil
}

func applyCategories(ctx context.Context, categories *service.CategoryService, seeds []Category, report *Report) (map[string]string, error) {
	existing, err := categories.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(existing))
	for _, c := range existing {
		byName[nameKey(c.Name)] = c.ID
	}

	ids := make(map[string]string, len(seeds))
	for i, c := range seeds {
		id, ok := byName[nameKey(c.Name)]
		if ok {
			report.Skipped++
		} else {
			created, err := categories.Create(ctx, service.CategoryInput{Name: c.Name})
			if err != nil {
				return nil, fmt.Errorf("category %d (%q): %w", i+1, c.Name, err)
			}
			id = created.ID
			byName[nameKey(c.Name)] = id
			report.CategoriesCreated++
		}
		if c.Key != "" {
			ids[c.Key] = id
		}
	}
	return ids, nil
}

func applyCrew(ctx context.Context, crew *service.CrewService, seeds []Crew, report *Report) error {
	existing, err := crew.List(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]bool, len(existing))
	for _, m := range existing {
		names[nameKey(m.Name)] = true
	}

	for i, m := range seeds {
		if names[nameKey(m.Name)] {
			report.Skipped++
			continue
		}
		_, err := crew.Create(ctx, service.CrewInput{
			Name:     m.Name,
			Role:     m.Role,
			Bio:      m.Bio,
			ImageURL: m.ImageURL,
			Order:    m.Order,
		})
		if err != nil {
			return fmt.Errorf("crew member %d (%q): %w", i+1, m.Name, err)
		}
		names[nameKey(m.Name)] = true
		report.CrewCreated++
	}
	return nil
}

// resolve maps a file-local key to its ID. Anything else is taken as an ID.
func resolve(ids map[string]string, ref string) string {
	if id, ok := ids[ref]; ok {
		return id
	}
	return ref
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
