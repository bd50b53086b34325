package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"

	"watch-configurator/models"
)

const (
	snapshotKey        = "catalog:snapshot"
	assetMetaKey       = "catalog:asset-meta"
	subCategoryKeyTmpl = "catalog:subcategories:%s:%s"
)

// AssetMeta holds per-asset fields not guaranteed present in the remote
// schema, keyed by normalized URL, used to enrich remote data after the fact
type AssetMeta struct {
	SubCategory string `json:"subCategory,omitempty"`
	Label       string `json:"label,omitempty"`
}

// CacheService mirrors the catalog into Redis so the configurator can come up
// (degraded) when the catalog store is unreachable.
// Implements CacheServiceInterface. Cache failures are never fatal.
type CacheService struct {
	client *redis.Client
}

// NewCacheService creates a CacheService from REDIS_ADDR / REDIS_PASSWORD /
// REDIS_DB environment variables
func NewCacheService() (*CacheService, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			dbNum = parsed
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       dbNum,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("✓ Redis cache connection established (%s)", addr)
	return &CacheService{client: client}, nil
}

// Ensure CacheService implements CacheServiceInterface
var _ CacheServiceInterface = (*CacheService)(nil)

// SaveSnapshot persists the full catalog as the offline/first-paint fallback
func (s *CacheService) SaveSnapshot(ctx context.Context, catalog *models.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog snapshot: %w", err)
	}

	if err := s.client.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save catalog snapshot: %w", err)
	}

	log.Printf("💾 Catalog snapshot cached (%d products, %d bytes)", len(catalog.Products), len(data))
	return nil
}

// LoadSnapshot loads the cached catalog, or nil when none exists
func (s *CacheService) LoadSnapshot(ctx context.Context) (*models.Catalog, error) {
	data, err := s.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	var catalog models.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog snapshot: %w", err)
	}

	log.Printf("📦 Loaded catalog snapshot from cache (%d products)", len(catalog.Products))
	return &catalog, nil
}

// InvalidateSnapshot clears the cached catalog. Must be called whenever a
// category definition changes — stacking order affects every product's render.
func (s *CacheService) InvalidateSnapshot(ctx context.Context) error {
	if err := s.client.Del(ctx, snapshotKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog snapshot: %w", err)
	}
	log.Printf("🗑️  Catalog snapshot invalidated")
	return nil
}

// SaveAssetMeta stores enrichment fields for an asset keyed by normalized URL
func (s *CacheService) SaveAssetMeta(ctx context.Context, normalizedURL string, meta AssetMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal asset meta: %w", err)
	}
	if err := s.client.HSet(ctx, assetMetaKey, normalizedURL, data).Err(); err != nil {
		return fmt.Errorf("failed to save asset meta: %w", err)
	}
	return nil
}

// LoadAssetMeta loads the full enrichment map (normalized URL → meta)
func (s *CacheService) LoadAssetMeta(ctx context.Context) (map[string]AssetMeta, error) {
	raw, err := s.client.HGetAll(ctx, assetMetaKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load asset meta: %w", err)
	}

	metas := make(map[string]AssetMeta, len(raw))
	for url, data := range raw {
		var meta AssetMeta
		if err := json.Unmarshal([]byte(data), &meta); err != nil {
			log.Printf("⚠️  Skipping malformed asset meta for %s: %v", url, err)
			continue
		}
		metas[url] = meta
	}
	return metas, nil
}

// SaveSubCategoryNames stores the operator-curated sub-category list for a
// (product, category) pair
func (s *CacheService) SaveSubCategoryNames(ctx context.Context, productKey, categoryKey string, names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to marshal sub-category names: %w", err)
	}
	key := fmt.Sprintf(subCategoryKeyTmpl, productKey, categoryKey)
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save sub-category names: %w", err)
	}
	log.Printf("💾 Saved %d sub-category names for %s/%s", len(names), productKey, categoryKey)
	return nil
}

// LoadSubCategoryNames loads the curated sub-category list for a pair, or nil
func (s *CacheService) LoadSubCategoryNames(ctx context.Context, productKey, categoryKey string) ([]string, error) {
	key := fmt.Sprintf(subCategoryKeyTmpl, productKey, categoryKey)
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sub-category names: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sub-category names: %w", err)
	}
	return names, nil
}
