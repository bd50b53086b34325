package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"watch-configurator/db"
	"watch-configurator/models"
)

// ProductRepository handles database operations for products (SKUs)
// Implements ProductRepositoryInterface
type ProductRepository struct{}

// NewProductRepository creates a new ProductRepository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// Ensure ProductRepository implements ProductRepositoryInterface
var _ ProductRepositoryInterface = (*ProductRepository)(nil)

// List retrieves all products ordered by name, optionally filtered by a
// case-insensitive search over key and name
func (r *ProductRepository) List(ctx context.Context, search string) ([]models.Product, error) {
	log.Printf("🔍 Fetching products (search: %q)", search)

	query := `
		SELECT id, name, created_at
		FROM products
	`
	var args []interface{}
	if search != "" {
		query += ` WHERE id ILIKE $1 OR name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("❌ Error fetching products: %v", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		if err := rows.Scan(&product.Key, &product.DisplayName, &product.CreatedAt); err != nil {
			log.Printf("❌ Error scanning product row: %v", err)
			continue
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		log.Printf("❌ Error iterating products: %v", err)
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	log.Printf("✓ Successfully fetched %d products", len(products))
	return products, nil
}

// GetByKey retrieves a single product by its key
func (r *ProductRepository) GetByKey(ctx context.Context, key string) (*models.Product, error) {
	log.Printf("🔍 Fetching product by key: %s", key)

	query := `
		SELECT id, name, created_at
		FROM products
		WHERE id = $1
	`

	var product models.Product
	err := db.DB.QueryRowContext(ctx, query, key).Scan(&product.Key, &product.DisplayName, &product.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product %s not found", key)
		}
		log.Printf("❌ Error fetching product %s: %v", key, err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	log.Printf("✓ Successfully fetched product: %s", key)
	return &product, nil
}

// Upsert creates a product or renames it when the key already exists
func (r *ProductRepository) Upsert(ctx context.Context, key, displayName string) error {
	log.Printf("💾 Upserting product: key=%s, name=%s", key, displayName)

	query := `
		INSERT INTO products (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`

	if _, err := db.DB.ExecContext(ctx, query, key, displayName, time.Now()); err != nil {
		log.Printf("❌ Error upserting product %s: %v", key, err)
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	log.Printf("✅ Successfully upserted product: %s", key)
	return nil
}

// Delete removes a product row. Dependent asset rows must be deleted by the
// caller first — there is no cascade in the schema.
func (r *ProductRepository) Delete(ctx context.Context, key string) error {
	log.Printf("🗑️  Deleting product: %s", key)

	result, err := db.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, key)
	if err != nil {
		log.Printf("❌ Error deleting product %s: %v", key, err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("⚠️  Warning: Could not get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		log.Printf("⚠️  No rows deleted for product: %s (record may not exist)", key)
		return fmt.Errorf("product %s not found", key)
	}

	log.Printf("✅ Successfully deleted product: %s", key)
	return nil
}
