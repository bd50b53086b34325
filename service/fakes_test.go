package service

import (
	"context"
	"fmt"

	"watch-configurator/models"
)

// In-memory fakes for the repository and cache contracts. The store fakes
// serve fixed fixtures; setting failAll simulates a store outage.

type fakeProductRepo struct {
	products []models.Product
	failAll  bool
}

func (f *fakeProductRepo) List(ctx context.Context, search string) ([]models.Product, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	return f.products, nil
}

func (f *fakeProductRepo) GetByKey(ctx context.Context, key string) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].Key == key {
			return &f.products[i], nil
		}
	}
	return nil, fmt.Errorf("product %s not found", key)
}

func (f *fakeProductRepo) Upsert(ctx context.Context, key, displayName string) error { return nil }
func (f *fakeProductRepo) Delete(ctx context.Context, key string) error              { return nil }

type fakeAssetRepo struct {
	byProduct map[string][]models.Asset
	failAll   bool
	nextID    int
	ranks     map[int]int
}

func (f *fakeAssetRepo) ListByProduct(ctx context.Context, productKey string) ([]models.Asset, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	return f.byProduct[productKey], nil
}

func (f *fakeAssetRepo) ListByProductAndCategory(ctx context.Context, productKey, categoryKey string) ([]models.Asset, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	var assets []models.Asset
	for _, asset := range f.byProduct[productKey] {
		if asset.CategoryKey == categoryKey {
			assets = append(assets, asset)
		}
	}
	return assets, nil
}

func (f *fakeAssetRepo) GetByID(ctx context.Context, id int) (*models.Asset, error) {
	for _, assets := range f.byProduct {
		for i := range assets {
			if assets[i].ID == id {
				return &assets[i], nil
			}
		}
	}
	return nil, fmt.Errorf("asset %d not found", id)
}

func (f *fakeAssetRepo) GetMaxRank(ctx context.Context, productKey, categoryKey string) (int, error) {
	maxRank := 0
	for _, asset := range f.byProduct[productKey] {
		if asset.CategoryKey == categoryKey && asset.OrderRank > maxRank {
			maxRank = asset.OrderRank
		}
	}
	return maxRank, nil
}

func (f *fakeAssetRepo) InsertBatch(ctx context.Context, assets []models.Asset) ([]int, error) {
	if f.byProduct == nil {
		f.byProduct = make(map[string][]models.Asset)
	}
	var ids []int
	for _, asset := range assets {
		f.nextID++
		asset.ID = f.nextID
		f.byProduct[asset.ProductKey] = append(f.byProduct[asset.ProductKey], asset)
		ids = append(ids, asset.ID)
	}
	return ids, nil
}

func (f *fakeAssetRepo) UpdateLabelAndSubCategory(ctx context.Context, id int, label, subCategory string) error {
	return nil
}

func (f *fakeAssetRepo) UpdateRanks(ctx context.Context, ranks map[int]int) error {
	if f.ranks == nil {
		f.ranks = make(map[int]int)
	}
	for id, rank := range ranks {
		f.ranks[id] = rank
	}
	return nil
}

func (f *fakeAssetRepo) Delete(ctx context.Context, id int) error { return nil }
func (f *fakeAssetRepo) DeleteByProduct(ctx context.Context, productKey string) error {
	return nil
}
func (f *fakeAssetRepo) DeleteByCategory(ctx context.Context, categoryKey string) error {
	return nil
}

type fakeCategoryRepo struct {
	categories []models.Category
	failAll    bool
}

func (f *fakeCategoryRepo) ListBySortOrder(ctx context.Context) ([]models.Category, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	return f.categories, nil
}

func (f *fakeCategoryRepo) ListByStackIndex(ctx context.Context) ([]models.Category, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	return f.categories, nil
}

func (f *fakeCategoryRepo) Upsert(ctx context.Context, category models.Category) error { return nil }
func (f *fakeCategoryRepo) UpdateStackIndexes(ctx context.Context, orderedKeys []string) error {
	return nil
}
func (f *fakeCategoryRepo) Delete(ctx context.Context, key string) error { return nil }

type fakeCache struct {
	snapshot    *models.Catalog
	meta        map[string]AssetMeta
	subCats     map[string][]string
	invalidated bool
	savedCount  int
}

func (f *fakeCache) SaveSnapshot(ctx context.Context, catalog *models.Catalog) error {
	f.snapshot = catalog
	f.savedCount++
	return nil
}

func (f *fakeCache) LoadSnapshot(ctx context.Context) (*models.Catalog, error) {
	return f.snapshot, nil
}

func (f *fakeCache) InvalidateSnapshot(ctx context.Context) error {
	f.snapshot = nil
	f.invalidated = true
	return nil
}

func (f *fakeCache) SaveAssetMeta(ctx context.Context, normalizedURL string, meta AssetMeta) error {
	if f.meta == nil {
		f.meta = make(map[string]AssetMeta)
	}
	f.meta[normalizedURL] = meta
	return nil
}

func (f *fakeCache) LoadAssetMeta(ctx context.Context) (map[string]AssetMeta, error) {
	return f.meta, nil
}

func (f *fakeCache) SaveSubCategoryNames(ctx context.Context, productKey, categoryKey string, names []string) error {
	if f.subCats == nil {
		f.subCats = make(map[string][]string)
	}
	f.subCats[productKey+"/"+categoryKey] = names
	return nil
}

func (f *fakeCache) LoadSubCategoryNames(ctx context.Context, productKey, categoryKey string) ([]string, error) {
	return f.subCats[productKey+"/"+categoryKey], nil
}

type fakeBlobStore struct {
	uploads int
	deleted []string
	failAll bool
}

func (f *fakeBlobStore) Upload(productKey, categoryKey, filename string, data []byte, mimeType string) (string, string, error) {
	if f.failAll {
		return "", "", fmt.Errorf("blob store unavailable")
	}
	f.uploads++
	fileID := fmt.Sprintf("blob-%d", f.uploads)
	return fileID, assetURL(productKey, categoryKey, filename), nil
}

func (f *fakeBlobStore) Delete(fileID string) error {
	if f.failAll {
		return fmt.Errorf("blob store unavailable")
	}
	f.deleted = append(f.deleted, fileID)
	return nil
}

func (f *fakeBlobStore) DownloadImage(fileID string) ([]byte, error) {
	if f.failAll {
		return nil, fmt.Errorf("blob store unavailable")
	}
	return []byte("image-bytes"), nil
}

// assetURL builds a URL following the storage path convention
func assetURL(productKey, categoryKey, filename string) string {
	return fmt.Sprintf("https://cdn.example.com/watch-assets/%s/%s/%s", productKey, categoryKey, filename)
}

// fixtureCatalogService builds a CatalogService over fakes and runs the first
// load so Current() is populated
func fixtureCatalogService(products []models.Product, assetsByProduct map[string][]models.Asset, categories []models.Category) *CatalogService {
	svc := NewCatalogService(
		&fakeProductRepo{products: products},
		&fakeAssetRepo{byProduct: assetsByProduct, nextID: 1000},
		&fakeCategoryRepo{categories: categories},
		nil,
	)
	if _, err := svc.LoadCatalog(context.Background()); err != nil {
		panic(err)
	}
	return svc
}
