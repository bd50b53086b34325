package models

// ViewItem is one selectable thumbnail in the grid or row view
type ViewItem struct {
	AssetID     int    `json:"assetId"`
	Label       string `json:"label"`
	ImageURL    string `json:"imageUrl"`
	SubCategory string `json:"subCategory,omitempty"`
	Selected    bool   `json:"selected"`
}

// CategoryView is one category's rendered selection list. Grid and row share
// the same item list; the layout difference is purely presentational.
type CategoryView struct {
	CategoryKey   string     `json:"categoryKey"`
	NamePrimary   string     `json:"namePrimary"`
	NameSecondary string     `json:"nameSecondary"`
	Filter        string     `json:"filter"` // Active sub-category filter or "all"
	SubCategories []string   `json:"subCategories,omitempty"`
	Items         []ViewItem `json:"items"`
}

// SessionViews is the full multi-view payload for one selection session:
// every view is derived from the same selection state, so the grid, row and
// modal can never disagree about what is selected.
type SessionViews struct {
	SessionID  string         `json:"sessionId"`
	ProductKey string         `json:"productKey"`
	Grid       []CategoryView `json:"grid"`
	Row        []CategoryView `json:"row"`
	Layers     []Layer        `json:"layers"`
}

// ModalView shows a single asset read-only; Confirm commits its asset ID
type ModalView struct {
	CategoryKey string   `json:"categoryKey"`
	Item        ViewItem `json:"item"`
}

// Layer is one resolved visual layer of the composed preview, in paint order
type Layer struct {
	CategoryKey string `json:"categoryKey"`
	StackIndex  int    `json:"stackIndex"`
	AssetID     int    `json:"assetId,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Hidden      bool   `json:"hidden"`
}
