package repository

import (
	"context"

	"watch-configurator/models"
)

// ProductRepositoryInterface defines the contract for product repository operations
type ProductRepositoryInterface interface {
	List(ctx context.Context, search string) ([]models.Product, error)
	GetByKey(ctx context.Context, key string) (*models.Product, error)
	Upsert(ctx context.Context, key, displayName string) error
	Delete(ctx context.Context, key string) error
}

// AssetRepositoryInterface defines the contract for asset repository operations
type AssetRepositoryInterface interface {
	ListByProduct(ctx context.Context, productKey string) ([]models.Asset, error)
	ListByProductAndCategory(ctx context.Context, productKey, categoryKey string) ([]models.Asset, error)
	GetByID(ctx context.Context, id int) (*models.Asset, error)
	GetMaxRank(ctx context.Context, productKey, categoryKey string) (int, error)
	InsertBatch(ctx context.Context, assets []models.Asset) ([]int, error)
	UpdateLabelAndSubCategory(ctx context.Context, id int, label, subCategory string) error
	UpdateRanks(ctx context.Context, ranks map[int]int) error
	Delete(ctx context.Context, id int) error
	DeleteByProduct(ctx context.Context, productKey string) error
	DeleteByCategory(ctx context.Context, categoryKey string) error
}

// CategoryRepositoryInterface defines the contract for category repository operations
type CategoryRepositoryInterface interface {
	ListBySortOrder(ctx context.Context) ([]models.Category, error)
	ListByStackIndex(ctx context.Context) ([]models.Category, error)
	Upsert(ctx context.Context, category models.Category) error
	UpdateStackIndexes(ctx context.Context, orderedKeys []string) error
	Delete(ctx context.Context, key string) error
}
