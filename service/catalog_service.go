package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"watch-configurator/models"
	"watch-configurator/repository"
	"watch-configurator/utils"
)

// CatalogService owns the live in-memory catalog. The catalog is replaced
// wholesale on every successful load — consumers must call Current() after a
// reload instead of caching the pointer across a request.
type CatalogService struct {
	productRepo  repository.ProductRepositoryInterface
	assetRepo    repository.AssetRepositoryInterface
	categoryRepo repository.CategoryRepositoryInterface
	cache        CacheServiceInterface

	current    *models.Catalog
	lastReport *models.LoadReport
	mutex      sync.RWMutex
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	productRepo repository.ProductRepositoryInterface,
	assetRepo repository.AssetRepositoryInterface,
	categoryRepo repository.CategoryRepositoryInterface,
	cache CacheServiceInterface,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		assetRepo:    assetRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
	}
}

// Current returns the live catalog, or nil before the first successful load
func (s *CatalogService) Current() *models.Catalog {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current
}

// LastReport returns the diagnostic report of the most recent build
func (s *CatalogService) LastReport() *models.LoadReport {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastReport
}

// BuildProductAssets builds a product's per-category asset map from a flat
// asset list. Two rules are enforced here:
//   - ownership gate: an asset whose owning product key differs from the
//     product is never placed in the map (counted, not silently ignored);
//   - URL dedup: within a (product, category) pair, two assets whose
//     normalized URL is identical are the same asset — the first one wins.
//
// Returns the map plus the dedup and ownership-drop counts.
func BuildProductAssets(productKey string, assets []models.Asset, meta map[string]AssetMeta) (map[string][]models.Asset, int, int) {
	byCategory := make(map[string][]models.Asset)
	seenURLs := make(map[string]bool)
	deduplicated := 0
	ownershipDrops := 0

	for _, asset := range assets {
		if asset.ProductKey != productKey {
			log.Printf("⚠️  Refusing to place asset %d: owned by %s, building %s", asset.ID, asset.ProductKey, productKey)
			ownershipDrops++
			continue
		}

		normalized := utils.NormalizeURL(asset.SourceURL)
		if normalized != "" {
			dedupKey := asset.CategoryKey + "|" + normalized
			if seenURLs[dedupKey] {
				deduplicated++
				continue
			}
			seenURLs[dedupKey] = true

			// Enrich with locally cached fields the remote schema may lack
			if m, ok := meta[normalized]; ok {
				if asset.SubCategory == "" && m.SubCategory != "" {
					asset.SubCategory = m.SubCategory
				}
				if asset.Label == "" && m.Label != "" {
					asset.Label = m.Label
				}
			}
		}

		byCategory[asset.CategoryKey] = append(byCategory[asset.CategoryKey], asset)
	}

	return byCategory, deduplicated, ownershipDrops
}

// LoadCatalog reads the full catalog from the store and swaps it in
// atomically. On failure the previous in-memory catalog is left untouched;
// if none exists yet, the cache snapshot is installed instead, and the
// category list degrades to the built-in fallback.
func (s *CatalogService) LoadCatalog(ctx context.Context) (*models.LoadReport, error) {
	log.Printf("🔄 Loading catalog from store")
	report := &models.LoadReport{}

	products, err := s.productRepo.List(ctx, "")
	if err != nil {
		return s.degrade(ctx, report, fmt.Errorf("failed to load products: %w", err))
	}

	categories, err := s.categoryRepo.ListByStackIndex(ctx)
	if err != nil || len(categories) == 0 {
		if err != nil {
			log.Printf("⚠️  Categories unavailable, using built-in fallback: %v", err)
		} else {
			log.Printf("⚠️  Categories table empty, using built-in fallback")
		}
		categories = models.DefaultCategories()
		report.UsedFallback = true
	}

	// Asset meta enrichment is best effort — the cache being down never
	// blocks a load
	var meta map[string]AssetMeta
	if s.cache != nil {
		if loaded, metaErr := s.cache.LoadAssetMeta(ctx); metaErr == nil {
			meta = loaded
		} else {
			log.Printf("⚠️  Could not load asset meta from cache: %v", metaErr)
		}
	}

	catalog := &models.Catalog{
		Products:   make(map[string]*models.Product, len(products)),
		Categories: categories,
	}

	for i := range products {
		product := products[i]
		assets, err := s.assetRepo.ListByProduct(ctx, product.Key)
		if err != nil {
			return s.degrade(ctx, report, fmt.Errorf("failed to load assets for %s: %w", product.Key, err))
		}

		byCategory, deduplicated, ownershipDrops := BuildProductAssets(product.Key, assets, meta)
		product.Assets = byCategory
		catalog.Products[product.Key] = &product

		report.Assets += len(assets)
		report.Deduplicated += deduplicated
		report.OwnershipDrops += ownershipDrops
		report.LeakSuspects = append(report.LeakSuspects, CollectLeakSuspects(product.Key, byCategory)...)
	}
	report.Products = len(products)

	// Swap wholesale: no consumer ever observes a half-updated catalog
	s.mutex.Lock()
	s.current = catalog
	s.lastReport = report
	s.mutex.Unlock()

	log.Printf("🎉 Catalog loaded: %d products, %d assets (%d deduplicated, %d ownership drops, %d leak suspects)",
		report.Products, report.Assets, report.Deduplicated, report.OwnershipDrops, len(report.LeakSuspects))

	if s.cache != nil {
		if err := s.cache.SaveSnapshot(ctx, catalog); err != nil {
			log.Printf("⚠️  Could not cache catalog snapshot: %v", err)
		}
	}

	return report, nil
}

// degrade handles a failed load: keep the current catalog if there is one,
// otherwise fall back to the cache snapshot, otherwise to an empty catalog
// with the built-in category list. First paint never hard-fails.
func (s *CatalogService) degrade(ctx context.Context, report *models.LoadReport, cause error) (*models.LoadReport, error) {
	log.Printf("❌ Catalog load failed: %v", cause)

	s.mutex.RLock()
	hasCurrent := s.current != nil
	s.mutex.RUnlock()
	if hasCurrent {
		// Previous catalog stays live untouched
		return report, cause
	}

	if s.cache != nil {
		snapshot, err := s.cache.LoadSnapshot(ctx)
		if err != nil {
			log.Printf("⚠️  Cache snapshot unavailable: %v", err)
		} else if snapshot != nil {
			if len(snapshot.Categories) == 0 {
				snapshot.Categories = models.DefaultCategories()
				report.UsedFallback = true
			}
			report.UsedCache = true
			report.Products = len(snapshot.Products)
			s.mutex.Lock()
			s.current = snapshot
			s.lastReport = report
			s.mutex.Unlock()
			log.Printf("📦 Serving catalog from cache snapshot (%d products)", len(snapshot.Products))
			return report, cause
		}
	}

	report.UsedFallback = true
	s.mutex.Lock()
	s.current = &models.Catalog{
		Products:   make(map[string]*models.Product),
		Categories: models.DefaultCategories(),
	}
	s.lastReport = report
	s.mutex.Unlock()
	log.Printf("⚠️  Serving empty catalog with fallback categories")
	return report, cause
}
