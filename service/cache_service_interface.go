package service

import (
	"context"

	"watch-configurator/models"
)

// CacheServiceInterface defines the contract for the local catalog cache
type CacheServiceInterface interface {
	SaveSnapshot(ctx context.Context, catalog *models.Catalog) error
	LoadSnapshot(ctx context.Context) (*models.Catalog, error)
	// InvalidateSnapshot must be called on any category-definition change:
	// stacking order affects every product's rendering
	InvalidateSnapshot(ctx context.Context) error
	SaveAssetMeta(ctx context.Context, normalizedURL string, meta AssetMeta) error
	LoadAssetMeta(ctx context.Context) (map[string]AssetMeta, error)
	SaveSubCategoryNames(ctx context.Context, productKey, categoryKey string, names []string) error
	LoadSubCategoryNames(ctx context.Context, productKey, categoryKey string) ([]string, error)
}
