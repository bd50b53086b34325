package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"watch-configurator/db"
	"watch-configurator/models"
)

// AssetRepository handles database operations for image assets
// Implements AssetRepositoryInterface
type AssetRepository struct{}

// NewAssetRepository creates a new AssetRepository
func NewAssetRepository() *AssetRepository {
	return &AssetRepository{}
}

// Ensure AssetRepository implements AssetRepositoryInterface
var _ AssetRepositoryInterface = (*AssetRepository)(nil)

const assetColumns = `
	id, product_id, category_key,
	COALESCE(label, '') as label,
	COALESCE(url, '') as url,
	COALESCE(local_file, '') as local_file,
	COALESCE(sub_category, '') as sub_category,
	sort_rank,
	COALESCE(drive_file_id, '') as drive_file_id
`

// scanAssets scans asset rows into a slice, skipping rows that fail to scan
func scanAssets(rows *sql.Rows) ([]models.Asset, error) {
	var assets []models.Asset
	for rows.Next() {
		var asset models.Asset
		err := rows.Scan(
			&asset.ID,
			&asset.ProductKey,
			&asset.CategoryKey,
			&asset.Label,
			&asset.SourceURL,
			&asset.LocalFile,
			&asset.SubCategory,
			&asset.OrderRank,
			&asset.DriveFileID,
		)
		if err != nil {
			log.Printf("❌ Error scanning asset row: %v", err)
			continue
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}
	return assets, nil
}

// ListByProduct retrieves all assets for a product ordered by sort_rank
func (r *AssetRepository) ListByProduct(ctx context.Context, productKey string) ([]models.Asset, error) {
	log.Printf("🔍 Fetching assets for product: %s", productKey)

	query := `SELECT ` + assetColumns + ` FROM assets WHERE product_id = $1 ORDER BY sort_rank ASC`

	rows, err := db.DB.QueryContext(ctx, query, productKey)
	if err != nil {
		log.Printf("❌ Error fetching assets for product %s: %v", productKey, err)
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets, err := scanAssets(rows)
	if err != nil {
		log.Printf("❌ Error iterating assets for product %s: %v", productKey, err)
		return nil, err
	}

	log.Printf("✓ Successfully fetched %d assets for product %s", len(assets), productKey)
	return assets, nil
}

// ListByProductAndCategory retrieves the assets for one (product, category)
// pair ordered by sort_rank
func (r *AssetRepository) ListByProductAndCategory(ctx context.Context, productKey, categoryKey string) ([]models.Asset, error) {
	log.Printf("🔍 Fetching assets for product %s, category %s", productKey, categoryKey)

	query := `SELECT ` + assetColumns + ` FROM assets WHERE product_id = $1 AND category_key = $2 ORDER BY sort_rank ASC`

	rows, err := db.DB.QueryContext(ctx, query, productKey, categoryKey)
	if err != nil {
		log.Printf("❌ Error fetching assets for %s/%s: %v", productKey, categoryKey, err)
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets, err := scanAssets(rows)
	if err != nil {
		log.Printf("❌ Error iterating assets for %s/%s: %v", productKey, categoryKey, err)
		return nil, err
	}

	log.Printf("✓ Successfully fetched %d assets for %s/%s", len(assets), productKey, categoryKey)
	return assets, nil
}

// GetByID retrieves a single asset by its ID
func (r *AssetRepository) GetByID(ctx context.Context, id int) (*models.Asset, error) {
	log.Printf("🔍 Fetching asset by ID: %d", id)

	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	var asset models.Asset
	err := db.DB.QueryRowContext(ctx, query, id).Scan(
		&asset.ID,
		&asset.ProductKey,
		&asset.CategoryKey,
		&asset.Label,
		&asset.SourceURL,
		&asset.LocalFile,
		&asset.SubCategory,
		&asset.OrderRank,
		&asset.DriveFileID,
	)
	if err != nil {
		log.Printf("❌ Error fetching asset %d: %v", id, err)
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	log.Printf("✓ Successfully fetched asset: ID=%d", id)
	return &asset, nil
}

// GetMaxRank returns the maximum sort_rank for a (product, category) pair.
// New uploads continue from this value.
func (r *AssetRepository) GetMaxRank(ctx context.Context, productKey, categoryKey string) (int, error) {
	var maxRank sql.NullInt64
	query := `SELECT MAX(sort_rank) FROM assets WHERE product_id = $1 AND category_key = $2`

	err := db.DB.QueryRowContext(ctx, query, productKey, categoryKey).Scan(&maxRank)
	if err != nil {
		return 0, fmt.Errorf("failed to get max sort_rank: %w", err)
	}

	if !maxRank.Valid {
		// No assets yet for this pair
		return 0, nil
	}
	return int(maxRank.Int64), nil
}

// InsertBatch inserts a batch of uploaded assets and returns their new IDs
func (r *AssetRepository) InsertBatch(ctx context.Context, assets []models.Asset) ([]int, error) {
	log.Printf("💾 Inserting batch of %d assets", len(assets))

	query := `
		INSERT INTO assets (product_id, category_key, label, url, local_file, sub_category, sort_rank, drive_file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	ids := make([]int, 0, len(assets))
	for _, asset := range assets {
		var id int
		err := db.DB.QueryRowContext(ctx, query,
			asset.ProductKey,
			asset.CategoryKey,
			asset.Label,
			asset.SourceURL,
			asset.LocalFile,
			asset.SubCategory,
			asset.OrderRank,
			asset.DriveFileID,
		).Scan(&id)
		if err != nil {
			log.Printf("❌ Error inserting asset %s (%s/%s): %v", asset.Label, asset.ProductKey, asset.CategoryKey, err)
			return ids, fmt.Errorf("failed to insert asset %s: %w", asset.Label, err)
		}
		ids = append(ids, id)
	}

	log.Printf("✅ Successfully inserted %d assets", len(ids))
	return ids, nil
}

// UpdateLabelAndSubCategory updates the label and sub_category fields of an asset
func (r *AssetRepository) UpdateLabelAndSubCategory(ctx context.Context, id int, label, subCategory string) error {
	log.Printf("🔄 Updating asset: id=%d, label=%s, subCategory=%s", id, label, subCategory)

	query := `
		UPDATE assets
		SET label = $1, sub_category = $2
		WHERE id = $3
	`

	result, err := db.DB.ExecContext(ctx, query, label, subCategory, id)
	if err != nil {
		log.Printf("❌ Error updating asset %d: %v", id, err)
		return fmt.Errorf("failed to update asset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("⚠️  Warning: Could not get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		log.Printf("⚠️  No rows updated for asset id: %d (record may not exist)", id)
		return fmt.Errorf("asset with id %d not found", id)
	}

	log.Printf("✅ Successfully updated asset: id=%d", id)
	return nil
}

// UpdateRanks rewrites the sort_rank of every asset in the map (asset ID →
// new rank). Used to persist drag-and-drop reordering.
func (r *AssetRepository) UpdateRanks(ctx context.Context, ranks map[int]int) error {
	log.Printf("🔄 Rewriting sort_rank for %d assets", len(ranks))

	query := `UPDATE assets SET sort_rank = $1 WHERE id = $2`

	for id, rank := range ranks {
		if _, err := db.DB.ExecContext(ctx, query, rank, id); err != nil {
			log.Printf("❌ Error updating sort_rank for asset %d: %v", id, err)
			return fmt.Errorf("failed to update sort_rank for asset %d: %w", id, err)
		}
	}

	log.Printf("✅ Successfully rewrote %d sort_ranks", len(ranks))
	return nil
}

// Delete removes a single asset row
func (r *AssetRepository) Delete(ctx context.Context, id int) error {
	log.Printf("🗑️  Deleting asset: %d", id)

	result, err := db.DB.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		log.Printf("❌ Error deleting asset %d: %v", id, err)
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("⚠️  Warning: Could not get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		log.Printf("⚠️  No rows deleted for asset: %d (record may not exist)", id)
		return fmt.Errorf("asset with id %d not found", id)
	}

	log.Printf("✅ Successfully deleted asset: %d", id)
	return nil
}

// DeleteByProduct removes every asset row belonging to a product
func (r *AssetRepository) DeleteByProduct(ctx context.Context, productKey string) error {
	log.Printf("🗑️  Deleting all assets for product: %s", productKey)

	result, err := db.DB.ExecContext(ctx, `DELETE FROM assets WHERE product_id = $1`, productKey)
	if err != nil {
		log.Printf("❌ Error deleting assets for product %s: %v", productKey, err)
		return fmt.Errorf("failed to delete assets: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	log.Printf("✅ Deleted %d assets for product %s", rowsAffected, productKey)
	return nil
}

// DeleteByCategory removes every asset row in a category across all products.
// Called explicitly before a category is deleted — the schema does not cascade.
func (r *AssetRepository) DeleteByCategory(ctx context.Context, categoryKey string) error {
	log.Printf("🗑️  Deleting all assets for category: %s", categoryKey)

	result, err := db.DB.ExecContext(ctx, `DELETE FROM assets WHERE category_key = $1`, categoryKey)
	if err != nil {
		log.Printf("❌ Error deleting assets for category %s: %v", categoryKey, err)
		return fmt.Errorf("failed to delete assets: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	log.Printf("✅ Deleted %d assets for category %s", rowsAffected, categoryKey)
	return nil
}
