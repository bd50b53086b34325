package models

import "time"

// Product represents one configurable watch model (a SKU) together with its
// per-category asset lists
type Product struct {
	Key         string    `json:"key"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	// Assets maps category key to the ordered asset list for this product.
	// Populated by the catalog builder, never read from the store directly.
	Assets map[string][]Asset `json:"assets"`
}

// AssetsFor returns the ordered asset list for a category (nil when empty)
func (p *Product) AssetsFor(categoryKey string) []Asset {
	if p == nil || p.Assets == nil {
		return nil
	}
	return p.Assets[categoryKey]
}

// FindAsset looks up an asset by ID across the product's category lists
func (p *Product) FindAsset(categoryKey string, assetID int) (Asset, bool) {
	for _, asset := range p.AssetsFor(categoryKey) {
		if asset.ID == assetID {
			return asset, true
		}
	}
	return Asset{}, false
}

// ProductUpsertRequest is the body for POST/PUT /admin/products
type ProductUpsertRequest struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
}
