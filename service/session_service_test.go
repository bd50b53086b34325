package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch-configurator/models"
)

func sessionFixtureCategories() []models.Category {
	return []models.Category{
		{Key: "dial", NamePrimary: "Dial", SortOrder: 1, StackIndex: 1},
		{Key: "hands", NamePrimary: "Hands", SortOrder: 2, StackIndex: 2},
		{Key: "seconds-hand", NamePrimary: "Seconds Hand", SortOrder: 3, StackIndex: 3},
	}
}

func sessionFixture(t *testing.T) (*SessionService, *CatalogService) {
	t.Helper()
	products := []models.Product{
		{Key: "diver", DisplayName: "Diver"},
		{Key: "pilot", DisplayName: "Pilot"},
	}
	assets := map[string][]models.Asset{
		"diver": {
			{ID: 1, ProductKey: "diver", CategoryKey: "dial", Label: "Blue", SubCategory: "sunburst", SourceURL: assetURL("diver", "dial", "blue.png")},
			{ID: 2, ProductKey: "diver", CategoryKey: "dial", Label: "Black", SubCategory: "matte", SourceURL: assetURL("diver", "dial", "black.png")},
			{ID: 3, ProductKey: "diver", CategoryKey: "dial", Label: "Green", SubCategory: "matte", SourceURL: assetURL("diver", "dial", "green.png")},
			{ID: 4, ProductKey: "diver", CategoryKey: "hands", Label: "Sword", SourceURL: assetURL("diver", "hands", "sword.png")},
			// seconds-hand left empty on purpose
		},
		"pilot": {
			{ID: 10, ProductKey: "pilot", CategoryKey: "dial", Label: "White", SourceURL: assetURL("pilot", "dial", "white.png")},
		},
	}
	catalogService := fixtureCatalogService(products, assets, sessionFixtureCategories())
	return NewSessionService(catalogService), catalogService
}

func TestCreateSession_DefaultsToFirstAssetPerCategory(t *testing.T) {
	sessions, _ := sessionFixture(t)

	state, err := sessions.CreateSession("diver")
	require.NoError(t, err)

	assert.Equal(t, 1, state.Selected["dial"])
	assert.Equal(t, 4, state.Selected["hands"])
	// Empty category stays unset, not zero-selected
	_, hasSeconds := state.Selected["seconds-hand"]
	assert.False(t, hasSeconds)
}

func TestCreateSession_UnknownProduct(t *testing.T) {
	sessions, _ := sessionFixture(t)

	_, err := sessions.CreateSession("nonexistent")
	assert.Error(t, err)
}

func TestGetSession_ReturnsSnapshot(t *testing.T) {
	sessions, _ := sessionFixture(t)
	state, err := sessions.CreateSession("diver")
	require.NoError(t, err)

	before, err := sessions.GetSession(state.SessionID)
	require.NoError(t, err)
	require.NoError(t, sessions.Select(state.SessionID, "dial", 2))

	// The earlier copy is a point-in-time view, not the live maps
	assert.Equal(t, 1, before.Selected["dial"])

	after, err := sessions.GetSession(state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Selected["dial"])
}

func TestSelect_RejectsAssetOutsideCategory(t *testing.T) {
	sessions, _ := sessionFixture(t)
	state, err := sessions.CreateSession("diver")
	require.NoError(t, err)

	// Asset 4 exists, but in hands, not dial
	err = sessions.Select(state.SessionID, "dial", 4)
	assert.Error(t, err)

	state, err = sessions.GetSession(state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Selected["dial"])
}

func TestSelectPosition_TranslatesFilteredPosition(t *testing.T) {
	sessions, _ := sessionFixture(t)
	state, err := sessions.CreateSession("diver")
	require.NoError(t, err)

	// With the matte filter active, position 1 is the green dial (ID 3),
	// not the black one the unfiltered list would put there
	require.NoError(t, sessions.SetFilter(state.SessionID, "dial", "matte"))
	require.NoError(t, sessions.SelectPosition(state.SessionID, "dial", 1))

	state, err = sessions.GetSession(state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Selected["dial"])
}

func TestSelectPosition_RejectsOutOfRange(t *testing.T) {
	sessions, _ := sessionFixture(t)
	state, err := sessions.CreateSession("diver")
	require.NoError(t, err)

	require.NoError(t, sessions.SetFilter(state.SessionID, "dial", "sunburst"))
	err = sessions.SelectPosition(state.SessionID, "dial", 1)
	assert.Error(t, err)
}

func TestSetFilter_DoesNotTouchSelection(t *testing.T) {
	sessions, _ := sessionFixture(t)
	state, err := sessions.CreateSession("diver")
	require.NoError(t, err)

	require.NoError(t, sessions.Select(state.SessionID, "dial", 2))
	// Filtering to sunburst hides the selected matte dial from the list,
	// but the committed selection survives
	require.NoError(t, sessions.SetFilter(state.SessionID, "dial", "sunburst"))

	state, err = sessions.GetSession(state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Selected["dial"])
}

func TestReset_IsIdempotent(t *testing.T) {
	sessions, _ := sessionFixture(t)
	state, err := sessions.CreateSession("diver")
	require.NoError(t, err)

	require.NoError(t, sessions.Select(state.SessionID, "dial", 3))
	require.NoError(t, sessions.Reset(state.SessionID))
	first, err := sessions.GetSession(state.SessionID)
	require.NoError(t, err)

	require.NoError(t, sessions.Reset(state.SessionID))
	second, err := sessions.GetSession(state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first.Selected, second.Selected)
}

func TestRandomize_CoversEveryNonEmptyCategory(t *testing.T) {
	sessions, catalogService := sessionFixture(t)
	state, err := sessions.CreateSession("diver")
	require.NoError(t, err)

	require.NoError(t, sessions.Randomize(state.SessionID))
	state, err = sessions.GetSession(state.SessionID)
	require.NoError(t, err)

	product := catalogService.Current().Product("diver")
	for _, category := range catalogService.Current().Categories {
		assets := product.AssetsFor(category.Key)
		selectedID, hasSelection := state.Selected[category.Key]
		if len(assets) == 0 {
			assert.False(t, hasSelection, "empty category %s should stay unset", category.Key)
			continue
		}
		require.True(t, hasSelection, "category %s should have a selection", category.Key)
		_, found := product.FindAsset(category.Key, selectedID)
		assert.True(t, found, "selection for %s must come from its own list", category.Key)
	}
}

func TestSwitchProduct_RebuildsAllState(t *testing.T) {
	sessions, _ := sessionFixture(t)
	state, err := sessions.CreateSession("diver")
	require.NoError(t, err)

	require.NoError(t, sessions.Select(state.SessionID, "dial", 2))
	require.NoError(t, sessions.SetFilter(state.SessionID, "dial", "matte"))

	require.NoError(t, sessions.SwitchProduct(state.SessionID, "pilot"))

	state, err = sessions.GetSession(state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "pilot", state.ProductKey)
	assert.Equal(t, 10, state.Selected["dial"])
	// Nothing from the diver session survives the switch
	_, hasHands := state.Selected["hands"]
	assert.False(t, hasHands)
	assert.Empty(t, state.Filters)
}

func TestDropDanglingSelections(t *testing.T) {
	products := []models.Product{{Key: "diver", DisplayName: "Diver"}}
	assetRepo := &fakeAssetRepo{byProduct: map[string][]models.Asset{
		"diver": {
			{ID: 1, ProductKey: "diver", CategoryKey: "dial", SourceURL: assetURL("diver", "dial", "blue.png")},
			{ID: 2, ProductKey: "diver", CategoryKey: "dial", SourceURL: assetURL("diver", "dial", "black.png")},
		},
	}}
	catalogService := NewCatalogService(&fakeProductRepo{products: products}, assetRepo, &fakeCategoryRepo{categories: sessionFixtureCategories()}, nil)
	_, err := catalogService.LoadCatalog(context.Background())
	require.NoError(t, err)

	sessions := NewSessionService(catalogService)
	state, err := sessions.CreateSession("diver")
	require.NoError(t, err)
	require.NoError(t, sessions.Select(state.SessionID, "dial", 2))

	// An admin deletes the selected asset and the catalog reloads
	assetRepo.byProduct["diver"] = assetRepo.byProduct["diver"][:1]
	_, err = catalogService.LoadCatalog(context.Background())
	require.NoError(t, err)
	sessions.DropDanglingSelections()

	state, err = sessions.GetSession(state.SessionID)
	require.NoError(t, err)
	_, hasDial := state.Selected["dial"]
	assert.False(t, hasDial)
}
