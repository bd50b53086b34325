package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"watch-configurator/models"
)

// ViewBuilder renders a selection session into the interactive view models:
// the thumbnail grid, the compact row, the modal, and the resolved layer
// stack. Grid and row are rebuilt in full on every request — asset counts
// are tens, not thousands, so incremental patching is not worth the
// complexity.
type ViewBuilder struct {
	catalogService *CatalogService
	sessionService *SessionService
	compositor     *Compositor
	cache          CacheServiceInterface
}

// NewViewBuilder creates a new ViewBuilder
func NewViewBuilder(
	catalogService *CatalogService,
	sessionService *SessionService,
	compositor *Compositor,
	cache CacheServiceInterface,
) *ViewBuilder {
	return &ViewBuilder{
		catalogService: catalogService,
		sessionService: sessionService,
		compositor:     compositor,
		cache:          cache,
	}
}

// thumbnailURL is the optimized image endpoint for a grid/row thumbnail
func thumbnailURL(assetID int) string {
	return fmt.Sprintf("/assets/%d/image?size=thumb", assetID)
}

// subCategoryNames returns the filter choices for a category: the curated
// list from the cache when the operator maintains one, otherwise the
// distinct sub-categories observed on the displayed assets
func (b *ViewBuilder) subCategoryNames(ctx context.Context, productKey, categoryKey string, assets []models.Asset) []string {
	if b.cache != nil {
		curated, err := b.cache.LoadSubCategoryNames(ctx, productKey, categoryKey)
		if err != nil {
			log.Printf("⚠️  Could not load curated sub-categories for %s/%s: %v", productKey, categoryKey, err)
		} else if len(curated) > 0 {
			return curated
		}
	}

	seen := make(map[string]bool)
	var names []string
	for _, asset := range assets {
		if asset.SubCategory != "" && !seen[asset.SubCategory] {
			seen[asset.SubCategory] = true
			names = append(names, asset.SubCategory)
		}
	}
	sort.Strings(names)
	return names
}

// buildCategoryView renders one category's selection list for the grid/row
func (b *ViewBuilder) buildCategoryView(ctx context.Context, state *SelectionState, category models.Category) models.CategoryView {
	filter := state.Filters[category.Key]
	if filter == "" {
		filter = "all"
	}

	// Sub-category choices come from the unfiltered list so narrowing one
	// filter does not hide the others
	allAssets := b.sessionService.DisplayedAssets(state.ProductKey, category.Key, "all")
	displayed := b.sessionService.DisplayedAssets(state.ProductKey, category.Key, filter)

	selectedID, hasSelection := state.Selected[category.Key]
	items := make([]models.ViewItem, 0, len(displayed))
	for _, asset := range displayed {
		items = append(items, models.ViewItem{
			AssetID:     asset.ID,
			Label:       asset.Label,
			ImageURL:    thumbnailURL(asset.ID),
			SubCategory: asset.SubCategory,
			Selected:    hasSelection && asset.ID == selectedID,
		})
	}

	return models.CategoryView{
		CategoryKey:   category.Key,
		NamePrimary:   category.NamePrimary,
		NameSecondary: category.NameSecondary,
		Filter:        filter,
		SubCategories: b.subCategoryNames(ctx, state.ProductKey, category.Key, allAssets),
		Items:         items,
	}
}

// BuildViews renders the full multi-view payload for a session. Grid and row
// carry identical item lists by construction — both are derived from the one
// SelectionState, so they cannot drift apart.
func (b *ViewBuilder) BuildViews(ctx context.Context, sessionID string) (*models.SessionViews, error) {
	state, err := b.sessionService.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	catalog := b.catalogService.Current()
	if catalog == nil {
		return nil, fmt.Errorf("catalog not loaded")
	}

	// Listing order for the selection panels
	categories := make([]models.Category, len(catalog.Categories))
	copy(categories, catalog.Categories)
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})

	views := &models.SessionViews{
		SessionID:  state.SessionID,
		ProductKey: state.ProductKey,
	}
	for _, category := range categories {
		view := b.buildCategoryView(ctx, state, category)
		views.Grid = append(views.Grid, view)
		views.Row = append(views.Row, view)
	}

	views.Layers = b.compositor.ResolveLayers(state.ProductKey, state.Selected, catalog)
	return views, nil
}

// BuildModal renders the single-asset modal view. The modal is read-only:
// nothing is committed until the confirm action selects the previewed asset.
func (b *ViewBuilder) BuildModal(sessionID, categoryKey string, assetID int) (*models.ModalView, error) {
	state, err := b.sessionService.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	catalog := b.catalogService.Current()
	product := catalog.Product(state.ProductKey)
	if product == nil {
		return nil, fmt.Errorf("product %s not found", state.ProductKey)
	}

	asset, ok := product.FindAsset(categoryKey, assetID)
	if !ok {
		return nil, fmt.Errorf("asset %d not found in %s/%s", assetID, state.ProductKey, categoryKey)
	}

	imageURL, _ := b.compositor.DisplayableURL(asset)
	selectedID, hasSelection := state.Selected[categoryKey]
	return &models.ModalView{
		CategoryKey: categoryKey,
		Item: models.ViewItem{
			AssetID:     asset.ID,
			Label:       asset.Label,
			ImageURL:    imageURL,
			SubCategory: asset.SubCategory,
			Selected:    hasSelection && asset.ID == selectedID,
		},
	}, nil
}
