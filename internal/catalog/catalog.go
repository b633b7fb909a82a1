// Package catalog declares the PageGrid CMS collections exposed to the
// data explorer: their models, keyword search targets, and indexes.
package catalog

import (
	"fmt"

	"github.com/pagegrid/storelens/internal/domain/model"
	"github.com/pagegrid/storelens/internal/domain/model/field"
	"github.com/pagegrid/storelens/internal/registry"
)

// New builds the registry for the CMS data set.
func New() (*registry.Registry, error) {
	entries, err := Collections()
	if err != nil {
		return nil, err
	}
	return registry.New(entries)
}

// Collections returns the allowlisted CMS collections in display order.
func Collections() ([]registry.Entry, error) {
	articles, err := model.New("articles", []field.Field{
		field.String("title").Required(),
		field.String("slug").Required(),
		field.String("status").Required().WithDefault("draft"),
		field.String("summary"),
		field.String("body"),
		field.List("tags"),
		field.Reference("author_id", "authors"),
		field.Reference("category_id", "categories"),
		field.DateTime("published_at"),
		field.Int("view_count").WithDefault(int64(0)),
		field.Bool("featured").WithDefault(false),
		field.Map("metadata"),
	},
		model.NewIndex("slug"),
		model.NewIndex("author_id"),
		model.NewIndex("status", "published_at"),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	authors, err := model.New("authors", []field.Field{
		field.String("name").Required(),
		field.String("email").Required(),
		field.String("bio"),
		field.String("avatar_url"),
		field.DateTime("joined_at"),
		field.Bool("active").WithDefault(true),
	},
		model.NewIndex("email"),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	categories, err := model.New("categories", []field.Field{
		field.String("name").Required(),
		field.String("slug").Required(),
		field.String("description"),
		field.Reference("parent_id", "categories"),
		field.Int("position").WithDefault(int64(0)),
	},
		model.NewIndex("slug"),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	banners, err := model.New("banners", []field.Field{
		field.String("title").Required(),
		field.String("image_url").Required(),
		field.String("target_url"),
		field.Reference("article_id", "articles"),
		field.DateTime("starts_at"),
		field.DateTime("ends_at"),
		field.Decimal("budget"),
		field.Int("impressions").WithDefault(int64(0)),
	},
		model.NewIndex("starts_at", "ends_at"),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	tags, err := model.New("tags", []field.Field{
		field.String("name").Required(),
		field.Int("usage_count").WithDefault(int64(0)),
	},
		model.NewIndex("name"),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	return []registry.Entry{
		registry.NewEntry("articles", "Articles", "Published and draft CMS articles").
			WithModel(articles).
			WithSearchableFields("title", "slug", "summary"),
		registry.NewEntry("authors", "Authors", "Writer profiles behind the articles").
			WithModel(authors).
			WithSearchableFields("name", "email"),
		registry.NewEntry("categories", "Categories", "Hierarchical article categories").
			WithModel(categories).
			WithSearchableFields("name", "slug"),
		registry.NewEntry("banners", "Banners", "Scheduled promotional banners").
			WithModel(banners).
			WithSearchableFields("title"),
		// Tags declare no searchable fields on purpose and rely on the
		// registry's default keyword targets.
		registry.NewEntry("tags", "Tags", "Free-form article tags").
			WithModel(tags),
		// Kept on the allowlist for ad-hoc queries even though its schema
		// predates the model catalog.
		registry.NewEntry("activity_log", "Activity log", "Raw CMS audit trail"),
	}, nil
}
