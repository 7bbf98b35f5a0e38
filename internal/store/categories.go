package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/models"
)

const categoryColumns = `id, name, slug, description, parent_id, image_url, created_at, updated_at`

type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parent_id"`
	ImageURL    string `json:"image_url"`
}

type CategoryFilter struct {
	ParentID *int64
	TopLevel bool
}

// Slugify derives the URL slug used for categories and products.
func Slugify(name string) string {
	return slug.Make(name)
}

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
}

func CreateCategory(ctx context.Context, db sqlx.ExtContext, in CategoryInput) (*models.Category, error) {
	in.normalize()
	if err := checkCategoryParent(ctx, db, 0, in.ParentID); err != nil {
		return nil, err
	}

	category := &models.Category{}

	query := `
		INSERT INTO categories (name, slug, description, parent_id, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + categoryColumns

	err := sqlx.GetContext(ctx, db, category, query, in.Name, in.Slug, in.Description, in.ParentID, in.ImageURL)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("category slug %q: %w", in.Slug, database.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

func GetCategory(ctx context.Context, db sqlx.ExtContext, id int64) (*models.Category, error) {
	return getCategoryWhere(ctx, db, `id = $1`, id)
}

func GetCategoryBySlug(ctx context.Context, db sqlx.ExtContext, categorySlug string) (*models.Category, error) {
	return getCategoryWhere(ctx, db, `slug = $1`, categorySlug)
}

func getCategoryWhere(ctx context.Context, db sqlx.ExtContext, where string, arg interface{}) (*models.Category, error) {
	category := &models.Category{}

	err := sqlx.GetContext(ctx, db, category, `SELECT `+categoryColumns+` FROM categories WHERE `+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	children, err := ListCategories(ctx, db, CategoryFilter{ParentID: &category.ID})
	if err != nil {
		return nil, err
	}
	category.Children = children

	return category, nil
}

func ListCategories(ctx context.Context, db sqlx.ExtContext, filter CategoryFilter) ([]models.Category, error) {
	var (
		where string
		args  []interface{}
	)
	switch {
	case filter.ParentID != nil:
		where = `WHERE parent_id = $1`
		args = append(args, *filter.ParentID)
	case filter.TopLevel:
		where = `WHERE parent_id IS NULL`
	}

	categories := []models.Category{}
	query := `SELECT ` + categoryColumns + ` FROM categories ` + where + ` ORDER BY name`

	if err := sqlx.SelectContext(ctx, db, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func UpdateCategory(ctx context.Context, db sqlx.ExtContext, id int64, in CategoryInput) (*models.Category, error) {
	in.normalize()
	if err := checkCategoryParent(ctx, db, id, in.ParentID); err != nil {
		return nil, err
	}

	category := &models.Category{}

	query := `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, parent_id = $4, image_url = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + categoryColumns

	err := sqlx.GetContext(ctx, db, category, query, in.Name, in.Slug, in.Description, in.ParentID, in.ImageURL, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCategoryNotFound
		}
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("category slug %q: %w", in.Slug, database.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	return category, nil
}

// DeleteCategory removes a category. Children and products are detached by
// the ON DELETE SET NULL references.
func DeleteCategory(ctx context.Context, db sqlx.ExtContext, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	return expectAffected(result, database.ErrCategoryNotFound)
}

// checkCategoryParent enforces the single level of nesting: the parent must
// exist and be top-level, and a category that has children cannot itself
// become a child.
func checkCategoryParent(ctx context.Context, db sqlx.ExtContext, id int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return database.ErrCategoryNesting
	}

	var grandparent sql.NullInt64
	err := sqlx.GetContext(ctx, db, &grandparent, `SELECT parent_id FROM categories WHERE id = $1`, *parentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("parent category %d: %w", *parentID, database.ErrInvalidReference)
		}
		return fmt.Errorf("get parent category: %w", err)
	}
	if grandparent.Valid {
		return database.ErrCategoryNesting
	}

	if id != 0 {
		var children int
		if err := sqlx.GetContext(ctx, db, &children, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id); err != nil {
			return fmt.Errorf("count child categories: %w", err)
		}
		if children > 0 {
			return database.ErrCategoryNesting
		}
	}

	return nil
}
