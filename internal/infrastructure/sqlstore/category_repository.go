package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/repository"
)

type categoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO category (name, description, created_at)
		VALUES (?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		category.Name,
		NullString(category.Description),
		category.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category id: %w", err)
	}
	category.ID = id
	return nil
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM category
		WHERE name = ?
	`
	var category domain.Category
	err := r.db.GetContext(ctx, &category, query, name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM category
		ORDER BY name
	`
	var categories []*domain.Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
