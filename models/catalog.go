package models

// Catalog is the full in-memory catalog: product key → product.
// Exactly one Catalog is live at a time; it is replaced wholesale on every
// successful reload, never patched incrementally.
type Catalog struct {
	Products   map[string]*Product `json:"products"`
	Categories []Category          `json:"categories"`
}

// Product returns the product for a key, or nil
func (c *Catalog) Product(key string) *Product {
	if c == nil || c.Products == nil {
		return nil
	}
	return c.Products[key]
}

// LeakSuspect records one asset whose URL points at a different product's
// storage path than the product it is attached to
type LeakSuspect struct {
	AssetID       int    `json:"assetId"`
	ProductKey    string `json:"productKey"`
	CategoryKey   string `json:"categoryKey"`
	URLProductKey string `json:"urlProductKey"`
	SourceURL     string `json:"sourceUrl"`
}

// LoadReport summarizes one catalog build. Diagnostics only: the build never
// drops leak suspects, the render-time guard does that per request.
type LoadReport struct {
	Products       int           `json:"products"`
	Assets         int           `json:"assets"`
	Deduplicated   int           `json:"deduplicated"`
	OwnershipDrops int           `json:"ownershipDrops"`
	LeakSuspects   []LeakSuspect `json:"leakSuspects"`
	UsedCache      bool          `json:"usedCache"`
	UsedFallback   bool          `json:"usedFallbackCategories"`
}
