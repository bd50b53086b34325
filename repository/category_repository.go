package repository

import (
	"context"
	"fmt"
	"log"

	"watch-configurator/db"
	"watch-configurator/models"
)

// CategoryRepository handles database operations for part categories
// Implements CategoryRepositoryInterface
type CategoryRepository struct{}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{}
}

// Ensure CategoryRepository implements CategoryRepositoryInterface
var _ CategoryRepositoryInterface = (*CategoryRepository)(nil)

// listOrdered retrieves all categories using the given ORDER BY column.
// sort_order is the listing order, stack_index is the paint order.
func (r *CategoryRepository) listOrdered(ctx context.Context, orderBy string) ([]models.Category, error) {
	log.Printf("🔍 Fetching categories ordered by %s", orderBy)

	query := fmt.Sprintf(`
		SELECT key,
		       COALESCE(name_primary, '') as name_primary,
		       COALESCE(name_secondary, '') as name_secondary,
		       sort_order,
		       stack_index
		FROM categories
		ORDER BY %s ASC
	`, orderBy)

	rows, err := db.DB.QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ Error fetching categories: %v", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		err := rows.Scan(
			&category.Key,
			&category.NamePrimary,
			&category.NameSecondary,
			&category.SortOrder,
			&category.StackIndex,
		)
		if err != nil {
			log.Printf("❌ Error scanning category row: %v", err)
			continue
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		log.Printf("❌ Error iterating categories: %v", err)
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	log.Printf("✓ Successfully fetched %d categories", len(categories))
	return categories, nil
}

// ListBySortOrder retrieves all categories in listing order
func (r *CategoryRepository) ListBySortOrder(ctx context.Context) ([]models.Category, error) {
	return r.listOrdered(ctx, "sort_order")
}

// ListByStackIndex retrieves all categories in paint order (back to front)
func (r *CategoryRepository) ListByStackIndex(ctx context.Context) ([]models.Category, error) {
	return r.listOrdered(ctx, "stack_index")
}

// Upsert creates or updates a category by key
func (r *CategoryRepository) Upsert(ctx context.Context, category models.Category) error {
	log.Printf("💾 Upserting category: key=%s, sortOrder=%d, stackIndex=%d", category.Key, category.SortOrder, category.StackIndex)

	query := `
		INSERT INTO categories (key, name_primary, name_secondary, sort_order, stack_index)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			name_primary = EXCLUDED.name_primary,
			name_secondary = EXCLUDED.name_secondary,
			sort_order = EXCLUDED.sort_order,
			stack_index = EXCLUDED.stack_index
	`

	_, err := db.DB.ExecContext(ctx, query,
		category.Key,
		category.NamePrimary,
		category.NameSecondary,
		category.SortOrder,
		category.StackIndex,
	)
	if err != nil {
		log.Printf("❌ Error upserting category %s: %v", category.Key, err)
		return fmt.Errorf("failed to upsert category: %w", err)
	}

	log.Printf("✅ Successfully upserted category: %s", category.Key)
	return nil
}

// UpdateStackIndexes renumbers every category's stack_index (and sort_order)
// sequentially following the given key order. Used to persist drag-and-drop
// reordering of the category list.
func (r *CategoryRepository) UpdateStackIndexes(ctx context.Context, orderedKeys []string) error {
	log.Printf("🔄 Renumbering stack_index for %d categories", len(orderedKeys))

	query := `UPDATE categories SET sort_order = $1, stack_index = $2 WHERE key = $3`

	for position, key := range orderedKeys {
		if _, err := db.DB.ExecContext(ctx, query, position, position, key); err != nil {
			log.Printf("❌ Error renumbering category %s: %v", key, err)
			return fmt.Errorf("failed to renumber category %s: %w", key, err)
		}
	}

	log.Printf("✅ Successfully renumbered %d categories", len(orderedKeys))
	return nil
}

// Delete removes a category row. Dependent assets must be deleted by the
// caller first — the cascade is explicit, never assumed.
func (r *CategoryRepository) Delete(ctx context.Context, key string) error {
	log.Printf("🗑️  Deleting category: %s", key)

	result, err := db.DB.ExecContext(ctx, `DELETE FROM categories WHERE key = $1`, key)
	if err != nil {
		log.Printf("❌ Error deleting category %s: %v", key, err)
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("⚠️  Warning: Could not get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		log.Printf("⚠️  No rows deleted for category: %s (record may not exist)", key)
		return fmt.Errorf("category %s not found", key)
	}

	log.Printf("✅ Successfully deleted category: %s", key)
	return nil
}
