package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"watch-configurator/models"
	"watch-configurator/repository"
	"watch-configurator/utils"
)

// UploadFile is one file of an admin upload batch
type UploadFile struct {
	Filename string
	MimeType string
	Data     []byte
}

// UploadStats summarizes one upload batch
type UploadStats struct {
	BatchID  string   `json:"batchId"`
	Total    int      `json:"total"`
	Inserted int      `json:"inserted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// AdminService implements the catalog editor flows: uploads, deletes,
// reorders and category management. Every mutation is best effort against
// the store — on partial failure the in-memory state is not advanced past
// the last acknowledged write, the error is surfaced, and there is no
// multi-step rollback of storage side effects.
type AdminService struct {
	productRepo    repository.ProductRepositoryInterface
	assetRepo      repository.AssetRepositoryInterface
	categoryRepo   repository.CategoryRepositoryInterface
	blobStore      BlobStoreInterface
	cache          CacheServiceInterface
	catalogService *CatalogService
	sessionService *SessionService
}

// NewAdminService creates a new AdminService
func NewAdminService(
	productRepo repository.ProductRepositoryInterface,
	assetRepo repository.AssetRepositoryInterface,
	categoryRepo repository.CategoryRepositoryInterface,
	blobStore BlobStoreInterface,
	cache CacheServiceInterface,
	catalogService *CatalogService,
	sessionService *SessionService,
) *AdminService {
	return &AdminService{
		productRepo:    productRepo,
		assetRepo:      assetRepo,
		categoryRepo:   categoryRepo,
		blobStore:      blobStore,
		cache:          cache,
		catalogService: catalogService,
		sessionService: sessionService,
	}
}

// refreshCatalog reloads the catalog after an admin edit and drops any
// selection that no longer resolves, so no view ever runs stale
func (s *AdminService) refreshCatalog(ctx context.Context) {
	if _, err := s.catalogService.LoadCatalog(ctx); err != nil {
		log.Printf("⚠️  Catalog refresh after admin edit failed: %v", err)
	}
	s.sessionService.DropDanglingSelections()
}

// UploadAssets uploads a batch of files into a (product, category) pair.
// Each file: blob upload first, then the row insert continuing the rank
// sequence from the current maximum. A blob whose row insert fails is left
// behind — an accepted gap, surfaced in the stats rather than compensated.
// After the inserts, a best-effort reorder places the new assets before the
// existing ones in listing order.
func (s *AdminService) UploadAssets(ctx context.Context, productKey, categoryKey string, files []UploadFile) (*UploadStats, error) {
	stats := &UploadStats{BatchID: uuid.NewString(), Total: len(files)}
	log.Printf("📦 Upload batch %s: %d files into %s/%s", stats.BatchID, len(files), productKey, categoryKey)

	maxRank, err := s.assetRepo.GetMaxRank(ctx, productKey, categoryKey)
	if err != nil {
		return stats, fmt.Errorf("failed to get current max rank: %w", err)
	}

	var newIDs []int
	for i, file := range files {
		fileID, publicURL, err := s.blobStore.Upload(productKey, categoryKey, file.Filename, file.Data, file.MimeType)
		if err != nil {
			msg := fmt.Sprintf("blob upload failed for %s: %v", file.Filename, err)
			log.Printf("❌ %s", msg)
			stats.Failed++
			stats.Errors = append(stats.Errors, msg)
			continue
		}

		ids, err := s.assetRepo.InsertBatch(ctx, []models.Asset{{
			ProductKey:  productKey,
			CategoryKey: categoryKey,
			Label:       file.Filename,
			SourceURL:   publicURL,
			OrderRank:   maxRank + i + 1,
			DriveFileID: fileID,
		}})
		if err != nil {
			msg := fmt.Sprintf("row insert failed for %s (blob %s left behind): %v", file.Filename, fileID, err)
			log.Printf("❌ %s", msg)
			stats.Failed++
			stats.Errors = append(stats.Errors, msg)
			continue
		}

		newIDs = append(newIDs, ids...)
		stats.Inserted++
	}

	// Best-effort reorder: new assets first, then the previous listing order
	if len(newIDs) > 0 {
		existing, err := s.assetRepo.ListByProductAndCategory(ctx, productKey, categoryKey)
		if err != nil {
			log.Printf("⚠️  Skipping post-upload reorder: %v", err)
		} else {
			isNew := make(map[int]bool, len(newIDs))
			for _, id := range newIDs {
				isNew[id] = true
			}
			ordered := make([]int, 0, len(existing))
			ordered = append(ordered, newIDs...)
			for _, asset := range existing {
				if !isNew[asset.ID] {
					ordered = append(ordered, asset.ID)
				}
			}
			ranks := make(map[int]int, len(ordered))
			for position, id := range ordered {
				ranks[id] = position
			}
			if err := s.assetRepo.UpdateRanks(ctx, ranks); err != nil {
				log.Printf("⚠️  Post-upload reorder failed: %v", err)
			}
		}
	}

	s.refreshCatalog(ctx)
	log.Printf("🎉 Upload batch %s completed: %d inserted, %d failed, %d total", stats.BatchID, stats.Inserted, stats.Failed, stats.Total)
	return stats, nil
}

// UpdateAsset edits an asset's label and sub-category, mirroring the
// sub-category into the enrichment cache keyed by normalized URL
func (s *AdminService) UpdateAsset(ctx context.Context, id int, label, subCategory string) error {
	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.assetRepo.UpdateLabelAndSubCategory(ctx, id, label, subCategory); err != nil {
		return err
	}

	if s.cache != nil && asset.SourceURL != "" {
		meta := AssetMeta{SubCategory: subCategory, Label: label}
		if err := s.cache.SaveAssetMeta(ctx, utils.NormalizeURL(asset.SourceURL), meta); err != nil {
			log.Printf("⚠️  Could not mirror asset meta to cache: %v", err)
		}
	}

	s.refreshCatalog(ctx)
	return nil
}

// DeleteAsset removes an asset: blob first, then the row, and only then the
// catalog refresh — the order prevents a ghost asset whose image is gone
func (s *AdminService) DeleteAsset(ctx context.Context, id int) error {
	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if asset.DriveFileID != "" {
		if err := s.blobStore.Delete(asset.DriveFileID); err != nil {
			return fmt.Errorf("blob delete failed, asset row left intact: %w", err)
		}
	}

	if err := s.assetRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.refreshCatalog(ctx)
	return nil
}

// ReorderAssets persists a drag-and-drop reorder by rewriting every affected
// rank to match the new position. Every submitted ID must belong to the
// named (product, category) pair — a stray ID would silently renumber
// another product's assets.
func (s *AdminService) ReorderAssets(ctx context.Context, productKey string, req models.AssetReorderRequest) error {
	existing, err := s.assetRepo.ListByProductAndCategory(ctx, productKey, req.CategoryKey)
	if err != nil {
		return fmt.Errorf("failed to list assets for reorder: %w", err)
	}
	owned := make(map[int]bool, len(existing))
	for _, asset := range existing {
		owned[asset.ID] = true
	}
	for _, id := range req.AssetIDs {
		if !owned[id] {
			return fmt.Errorf("asset %d does not belong to %s/%s", id, productKey, req.CategoryKey)
		}
	}

	ranks := make(map[int]int, len(req.AssetIDs))
	for position, id := range req.AssetIDs {
		ranks[id] = position
	}

	if err := s.assetRepo.UpdateRanks(ctx, ranks); err != nil {
		return err
	}

	s.refreshCatalog(ctx)
	return nil
}

// UpsertProduct creates or renames a product
func (s *AdminService) UpsertProduct(ctx context.Context, key, displayName string) error {
	if err := s.productRepo.Upsert(ctx, key, displayName); err != nil {
		return err
	}
	s.refreshCatalog(ctx)
	return nil
}

// DeleteProduct removes a product with its assets: blobs best effort, then
// asset rows, then the product row
func (s *AdminService) DeleteProduct(ctx context.Context, key string) error {
	assets, err := s.assetRepo.ListByProduct(ctx, key)
	if err != nil {
		return err
	}

	for _, asset := range assets {
		if asset.DriveFileID == "" {
			continue
		}
		if err := s.blobStore.Delete(asset.DriveFileID); err != nil {
			log.Printf("⚠️  Could not delete blob %s for asset %d: %v", asset.DriveFileID, asset.ID, err)
		}
	}

	if err := s.assetRepo.DeleteByProduct(ctx, key); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, key); err != nil {
		return err
	}

	s.refreshCatalog(ctx)
	return nil
}

// UpsertCategory creates or edits a category definition. The cached catalog
// snapshot is invalidated: stacking order affects every product's rendering.
func (s *AdminService) UpsertCategory(ctx context.Context, category models.Category) error {
	if err := s.categoryRepo.Upsert(ctx, category); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx)
	s.refreshCatalog(ctx)
	return nil
}

// DeleteCategory removes a category and its dependent assets across all
// products. The cascade is explicit: blobs best effort, then asset rows,
// then the category row.
func (s *AdminService) DeleteCategory(ctx context.Context, key string) error {
	if catalog := s.catalogService.Current(); catalog != nil {
		for _, product := range catalog.Products {
			for _, asset := range product.AssetsFor(key) {
				if asset.DriveFileID == "" {
					continue
				}
				if err := s.blobStore.Delete(asset.DriveFileID); err != nil {
					log.Printf("⚠️  Could not delete blob %s for asset %d: %v", asset.DriveFileID, asset.ID, err)
				}
			}
		}
	}

	if err := s.assetRepo.DeleteByCategory(ctx, key); err != nil {
		return err
	}
	if err := s.categoryRepo.Delete(ctx, key); err != nil {
		return err
	}

	s.invalidateSnapshot(ctx)
	s.refreshCatalog(ctx)
	return nil
}

// ReorderCategories renumbers every category's stack index sequentially by
// its new row position
func (s *AdminService) ReorderCategories(ctx context.Context, orderedKeys []string) error {
	if err := s.categoryRepo.UpdateStackIndexes(ctx, orderedKeys); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx)
	s.refreshCatalog(ctx)
	return nil
}

// SaveSubCategoryNames stores the operator-curated sub-category list
func (s *AdminService) SaveSubCategoryNames(ctx context.Context, productKey, categoryKey string, names []string) error {
	if s.cache == nil {
		return fmt.Errorf("cache unavailable")
	}
	return s.cache.SaveSubCategoryNames(ctx, productKey, categoryKey, names)
}

// LoadSubCategoryNames returns the operator-curated sub-category list, or nil
// when none was saved
func (s *AdminService) LoadSubCategoryNames(ctx context.Context, productKey, categoryKey string) ([]string, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("cache unavailable")
	}
	return s.cache.LoadSubCategoryNames(ctx, productKey, categoryKey)
}

func (s *AdminService) invalidateSnapshot(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSnapshot(ctx); err != nil {
		log.Printf("⚠️  Could not invalidate catalog snapshot: %v", err)
	}
}
