// Package seed loads a starter catalog from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
}

type Category struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Parent      string `yaml:"parent"`
	ImageURL    string `yaml:"image_url"`
}

type Product struct {
	SKU         string   `yaml:"sku"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	Category    string   `yaml:"category"`
	Sizes       []string `yaml:"sizes"`
	Colors      []string `yaml:"colors"`
	ImageURLs   []string `yaml:"image_urls"`
	Stock       int      `yaml:"stock"`
}

// Result counts what Apply created and what already existed.
type Result struct {
	CategoriesCreated int
	ProductsCreated   int
	Skipped           int
}

func Parse(r io.Reader) (*Catalog, error) {
	var catalog Catalog

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *Catalog) validate() error {
	known := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("categories[%d]: name is required", i)
		}
		if cat.Parent != "" && !known[cat.Parent] {
			return fmt.Errorf("categories[%d]: parent %q must be listed before it", i, cat.Parent)
		}
		known[cat.slug()] = true
	}

	for i, p := range c.Products {
		if p.SKU == "" || p.Name == "" {
			return fmt.Errorf("products[%d]: sku and name are required", i)
		}
		if _, err := decimal.NewFromString(p.Price); err != nil {
			return fmt.Errorf("products[%d] %s: invalid price %q", i, p.SKU, p.Price)
		}
		if p.Category != "" && !known[p.Category] {
			return fmt.Errorf("products[%d] %s: unknown category %q", i, p.SKU, p.Category)
		}
	}
	return nil
}

func (c Category) slug() string {
	if c.Slug != "" {
		return c.Slug
	}
	return store.Slugify(c.Name)
}

// Apply inserts the catalog in one transaction. Categories matched by slug
// and products matched by SKU are left untouched, so a file can be applied
// repeatedly.
func Apply(ctx context.Context, db *sqlx.DB, catalog *Catalog, log logrus.FieldLogger) (Result, error) {
	var result Result

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sqlx.Tx) error {
		result = Result{}
		ids := make(map[string]int64, len(catalog.Categories))

		for _, c := range catalog.Categories {
			slug := c.slug()
			existing, err := store.GetCategoryBySlug(ctx, tx, slug)
			if err == nil {
				ids[slug] = existing.ID
				result.Skipped++
				continue
			}
			if !errors.Is(err, database.ErrCategoryNotFound) {
				return err
			}

			in := store.CategoryInput{Name: c.Name, Slug: slug, Description: c.Description, ImageURL: c.ImageURL}
			if c.Parent != "" {
				parentID := ids[c.Parent]
				in.ParentID = &parentID
			}

			created, err := store.CreateCategory(ctx, tx, in)
			if err != nil {
				return fmt.Errorf("seed category %s: %w", slug, err)
			}
			ids[slug] = created.ID
			result.CategoriesCreated++
			log.WithField("slug", slug).Debug("seeded category")
		}

		for _, p := range catalog.Products {
			in := store.ProductInput{
				SKU:           p.SKU,
				Name:          p.Name,
				Description:   p.Description,
				Price:         decimal.RequireFromString(p.Price),
				Sizes:         p.Sizes,
				Colors:        p.Colors,
				ImageURLs:     p.ImageURLs,
				StockQuantity: p.Stock,
			}
			if p.Category != "" {
				categoryID := ids[p.Category]
				in.CategoryID = &categoryID
			}

			exists, err := productExists(ctx, tx, p.SKU)
			if err != nil {
				return err
			}
			if exists {
				result.Skipped++
				continue
			}

			if _, err := store.CreateProduct(ctx, tx, in); err != nil {
				return fmt.Errorf("seed product %s: %w", p.SKU, err)
			}
			result.ProductsCreated++
			log.WithField("sku", p.SKU).Debug("seeded product")
		}
		return nil
	})

	return result, err
}

func productExists(ctx context.Context, tx *sqlx.Tx, sku string) (bool, error) {
	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`, sku); err != nil {
		return false, fmt.Errorf("check product %s: %w", sku, err)
	}
	return exists, nil
}
