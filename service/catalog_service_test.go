package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch-configurator/models"
)

func TestBuildProductAssets_DeduplicatesByNormalizedURL(t *testing.T) {
	assets := []models.Asset{
		{ID: 1, ProductKey: "diver", CategoryKey: "dial", SourceURL: assetURL("diver", "dial", "blue.png")},
		// Same image, URL differs only by query string
		{ID: 2, ProductKey: "diver", CategoryKey: "dial", SourceURL: assetURL("diver", "dial", "blue.png") + "?v=2"},
		// Same URL in another category is a different slot, not a duplicate
		{ID: 3, ProductKey: "diver", CategoryKey: "hands", SourceURL: assetURL("diver", "dial", "blue.png")},
	}

	byCategory, deduplicated, ownershipDrops := BuildProductAssets("diver", assets, nil)

	assert.Equal(t, 1, deduplicated)
	assert.Equal(t, 0, ownershipDrops)
	require.Len(t, byCategory["dial"], 1)
	// First occurrence wins
	assert.Equal(t, 1, byCategory["dial"][0].ID)
	assert.Len(t, byCategory["hands"], 1)
}

func TestBuildProductAssets_OwnershipGate(t *testing.T) {
	assets := []models.Asset{
		{ID: 1, ProductKey: "diver", CategoryKey: "dial", SourceURL: assetURL("diver", "dial", "blue.png")},
		{ID: 2, ProductKey: "pilot", CategoryKey: "dial", SourceURL: assetURL("pilot", "dial", "white.png")},
	}

	byCategory, _, ownershipDrops := BuildProductAssets("diver", assets, nil)

	assert.Equal(t, 1, ownershipDrops)
	require.Len(t, byCategory["dial"], 1)
	assert.Equal(t, 1, byCategory["dial"][0].ID)
}

func TestBuildProductAssets_MetaEnrichment(t *testing.T) {
	url := assetURL("diver", "dial", "blue.png")
	assets := []models.Asset{
		{ID: 1, ProductKey: "diver", CategoryKey: "dial", SourceURL: url},
	}
	meta := map[string]AssetMeta{
		url: {SubCategory: "sunburst", Label: "Blue Sunburst"},
	}

	byCategory, _, _ := BuildProductAssets("diver", assets, meta)

	require.Len(t, byCategory["dial"], 1)
	assert.Equal(t, "sunburst", byCategory["dial"][0].SubCategory)
	assert.Equal(t, "Blue Sunburst", byCategory["dial"][0].Label)
}

func TestBuildProductAssets_MetaNeverOverwrites(t *testing.T) {
	url := assetURL("diver", "dial", "blue.png")
	assets := []models.Asset{
		{ID: 1, ProductKey: "diver", CategoryKey: "dial", SourceURL: url, SubCategory: "matte", Label: "Blue Matte"},
	}
	meta := map[string]AssetMeta{
		url: {SubCategory: "sunburst", Label: "Blue Sunburst"},
	}

	byCategory, _, _ := BuildProductAssets("diver", assets, meta)

	require.Len(t, byCategory["dial"], 1)
	assert.Equal(t, "matte", byCategory["dial"][0].SubCategory)
	assert.Equal(t, "Blue Matte", byCategory["dial"][0].Label)
}

func TestLoadCatalog_ReportsLeakSuspects(t *testing.T) {
	products := []models.Product{{Key: "diver", DisplayName: "Diver"}}
	assets := map[string][]models.Asset{
		"diver": {
			{ID: 1, ProductKey: "diver", CategoryKey: "dial", SourceURL: assetURL("diver", "dial", "blue.png")},
			// Attached to diver but the URL embeds another product's key
			{ID: 2, ProductKey: "diver", CategoryKey: "dial", SourceURL: assetURL("pilot", "dial", "white.png")},
		},
	}

	svc := NewCatalogService(
		&fakeProductRepo{products: products},
		&fakeAssetRepo{byProduct: assets},
		&fakeCategoryRepo{categories: models.DefaultCategories()},
		nil,
	)
	report, err := svc.LoadCatalog(context.Background())
	require.NoError(t, err)

	require.Len(t, report.LeakSuspects, 1)
	assert.Equal(t, 2, report.LeakSuspects[0].AssetID)
	assert.Equal(t, "pilot", report.LeakSuspects[0].URLProductKey)

	// Advisory only: the suspect stays in the catalog
	product := svc.Current().Product("diver")
	require.NotNil(t, product)
	assert.Len(t, product.AssetsFor("dial"), 2)
}

func TestLoadCatalog_FallsBackToDefaultCategories(t *testing.T) {
	svc := NewCatalogService(
		&fakeProductRepo{products: []models.Product{{Key: "diver", DisplayName: "Diver"}}},
		&fakeAssetRepo{},
		&fakeCategoryRepo{categories: nil},
		nil,
	)
	report, err := svc.LoadCatalog(context.Background())
	require.NoError(t, err)

	assert.True(t, report.UsedFallback)
	assert.Len(t, svc.Current().Categories, len(models.DefaultCategories()))
}

func TestLoadCatalog_FailureKeepsCurrentCatalog(t *testing.T) {
	productRepo := &fakeProductRepo{products: []models.Product{{Key: "diver", DisplayName: "Diver"}}}
	svc := NewCatalogService(productRepo, &fakeAssetRepo{}, &fakeCategoryRepo{categories: models.DefaultCategories()}, nil)

	_, err := svc.LoadCatalog(context.Background())
	require.NoError(t, err)
	before := svc.Current()

	productRepo.failAll = true
	_, err = svc.LoadCatalog(context.Background())
	assert.Error(t, err)
	assert.Same(t, before, svc.Current())
}

func TestLoadCatalog_FailureFallsBackToSnapshot(t *testing.T) {
	cache := &fakeCache{
		snapshot: &models.Catalog{
			Products: map[string]*models.Product{
				"diver": {Key: "diver", DisplayName: "Diver"},
			},
			Categories: models.DefaultCategories(),
		},
	}
	svc := NewCatalogService(&fakeProductRepo{failAll: true}, &fakeAssetRepo{}, &fakeCategoryRepo{}, cache)

	report, err := svc.LoadCatalog(context.Background())
	assert.Error(t, err)
	assert.True(t, report.UsedCache)
	require.NotNil(t, svc.Current())
	assert.NotNil(t, svc.Current().Product("diver"))
}

func TestLoadCatalog_FailureWithoutSnapshotServesFallback(t *testing.T) {
	svc := NewCatalogService(&fakeProductRepo{failAll: true}, &fakeAssetRepo{}, &fakeCategoryRepo{}, nil)

	report, err := svc.LoadCatalog(context.Background())
	assert.Error(t, err)
	assert.True(t, report.UsedFallback)

	// First paint still has the full category scaffolding, just no products
	require.NotNil(t, svc.Current())
	assert.Empty(t, svc.Current().Products)
	assert.Len(t, svc.Current().Categories, len(models.DefaultCategories()))
}
