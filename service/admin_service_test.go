package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch-configurator/models"
)

func adminFixture(t *testing.T) (*AdminService, *fakeAssetRepo, *fakeBlobStore, *CatalogService) {
	t.Helper()
	products := []models.Product{{Key: "diver", DisplayName: "Diver"}}
	assetRepo := &fakeAssetRepo{
		byProduct: map[string][]models.Asset{
			"diver": {
				{ID: 1, ProductKey: "diver", CategoryKey: "dial", OrderRank: 1, SourceURL: assetURL("diver", "dial", "blue.png"), DriveFileID: "blob-old-1"},
				{ID: 2, ProductKey: "diver", CategoryKey: "dial", OrderRank: 2, SourceURL: assetURL("diver", "dial", "black.png"), DriveFileID: "blob-old-2"},
			},
		},
		nextID: 100,
	}
	productRepo := &fakeProductRepo{products: products}
	categoryRepo := &fakeCategoryRepo{categories: models.DefaultCategories()}
	blobStore := &fakeBlobStore{}

	catalogService := NewCatalogService(productRepo, assetRepo, categoryRepo, nil)
	_, err := catalogService.LoadCatalog(context.Background())
	require.NoError(t, err)
	sessionService := NewSessionService(catalogService)

	admin := NewAdminService(productRepo, assetRepo, categoryRepo, blobStore, nil, catalogService, sessionService)
	return admin, assetRepo, blobStore, catalogService
}

func TestUploadAssets_RanksContinueAndNewComeFirst(t *testing.T) {
	admin, assetRepo, blobStore, catalogService := adminFixture(t)

	files := []UploadFile{
		{Filename: "green.png", MimeType: "image/png", Data: []byte("a")},
		{Filename: "white.png", MimeType: "image/png", Data: []byte("b")},
	}
	stats, err := admin.UploadAssets(context.Background(), "diver", "dial", files)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 2, blobStore.uploads)

	// Inserted ranks continue past the existing maximum
	inserted := assetRepo.byProduct["diver"][2:]
	require.Len(t, inserted, 2)
	assert.Equal(t, 3, inserted[0].OrderRank)
	assert.Equal(t, 4, inserted[1].OrderRank)

	// The post-upload reorder puts the new assets before the old ones
	require.NotNil(t, assetRepo.ranks)
	assert.Less(t, assetRepo.ranks[inserted[0].ID], assetRepo.ranks[1])
	assert.Less(t, assetRepo.ranks[inserted[1].ID], assetRepo.ranks[1])

	// The catalog was refreshed and carries the new assets
	product := catalogService.Current().Product("diver")
	require.NotNil(t, product)
	assert.Len(t, product.AssetsFor("dial"), 4)
}

func TestUploadAssets_BlobFailureIsPerFile(t *testing.T) {
	admin, assetRepo, blobStore, _ := adminFixture(t)
	blobStore.failAll = true

	stats, err := admin.UploadAssets(context.Background(), "diver", "dial", []UploadFile{
		{Filename: "green.png", MimeType: "image/png", Data: []byte("a")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Inserted)
	assert.Len(t, stats.Errors, 1)
	assert.Len(t, assetRepo.byProduct["diver"], 2)
}

func TestDeleteAsset_BlobFirstThenRow(t *testing.T) {
	admin, _, blobStore, _ := adminFixture(t)

	err := admin.DeleteAsset(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"blob-old-1"}, blobStore.deleted)
}

func TestDeleteAsset_BlobFailureLeavesRow(t *testing.T) {
	admin, _, blobStore, _ := adminFixture(t)
	blobStore.failAll = true

	err := admin.DeleteAsset(context.Background(), 1)
	assert.Error(t, err)
	assert.Empty(t, blobStore.deleted)
}

func TestReorderAssets_RewritesRanksByPosition(t *testing.T) {
	admin, assetRepo, _, _ := adminFixture(t)

	err := admin.ReorderAssets(context.Background(), "diver", models.AssetReorderRequest{
		CategoryKey: "dial",
		AssetIDs:    []int{2, 1},
	})
	require.NoError(t, err)

	require.NotNil(t, assetRepo.ranks)
	assert.Equal(t, 0, assetRepo.ranks[2])
	assert.Equal(t, 1, assetRepo.ranks[1])
}

func TestReorderAssets_RejectsForeignAsset(t *testing.T) {
	admin, assetRepo, _, _ := adminFixture(t)

	// Asset 99 does not exist in diver/dial; the whole reorder is refused
	// before any rank is rewritten
	err := admin.ReorderAssets(context.Background(), "diver", models.AssetReorderRequest{
		CategoryKey: "dial",
		AssetIDs:    []int{2, 99, 1},
	})
	assert.Error(t, err)
	assert.Nil(t, assetRepo.ranks)
}

func TestUploadRefreshDropsDanglingSelections(t *testing.T) {
	admin, assetRepo, _, catalogService := adminFixture(t)
	sessionService := admin.sessionService

	state, err := sessionService.CreateSession("diver")
	require.NoError(t, err)
	require.NoError(t, sessionService.Select(state.SessionID, "dial", 2))

	// Simulate the selected asset disappearing from the store before the
	// next admin-triggered refresh
	assetRepo.byProduct["diver"] = assetRepo.byProduct["diver"][:1]
	require.NoError(t, admin.UpsertProduct(context.Background(), "diver", "Diver Pro"))

	state, err = sessionService.GetSession(state.SessionID)
	require.NoError(t, err)
	_, hasDial := state.Selected["dial"]
	assert.False(t, hasDial)
	assert.Len(t, catalogService.Current().Product("diver").AssetsFor("dial"), 1)
}
