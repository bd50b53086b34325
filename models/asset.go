package models

// Asset represents one selectable image for a (product, category) pair
type Asset struct {
	ID          int    `json:"id"`
	ProductKey  string `json:"productKey"`
	CategoryKey string `json:"categoryKey"`
	Label       string `json:"label"`
	SourceURL   string `json:"sourceUrl"`
	LocalFile   string `json:"localFile,omitempty"` // Fallback filename when no remote URL exists
	SubCategory string `json:"subCategory,omitempty"`
	OrderRank   int    `json:"orderRank"`
	DriveFileID string `json:"driveFileId,omitempty"`
}

// AssetUpdateRequest is the body for PUT /admin/assets/:id
type AssetUpdateRequest struct {
	Label       string `json:"label"`
	SubCategory string `json:"subCategory"`
}

// AssetReorderRequest is the body for POST /admin/assets/reorder.
// AssetIDs carries the new top-to-bottom listing order.
type AssetReorderRequest struct {
	CategoryKey string `json:"categoryKey"`
	AssetIDs    []int  `json:"assetIds"`
}
