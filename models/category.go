package models

// Category represents one layer of the composed watch image (a part group)
type Category struct {
	Key           string `json:"key"`
	NamePrimary   string `json:"namePrimary"`
	NameSecondary string `json:"nameSecondary"`
	SortOrder     int    `json:"sortOrder"`
	StackIndex    int    `json:"stackIndex"` // Higher paints on top
}

// DefaultCategories returns the built-in fallback category list used when
// the categories table is unreachable, so the configurator stays usable
// degraded. Order matters: it doubles as both sort and paint order.
func DefaultCategories() []Category {
	keys := []struct {
		key       string
		primary   string
		secondary string
	}{
		{"bracelet", "Bracelet", "Pulso"},
		{"outer-ring", "Outer Ring", "Aro externo"},
		{"inner-ring", "Inner Ring", "Aro interno"},
		{"dial", "Dial", "Carátula"},
		{"hands", "Hands", "Manecillas"},
		{"seconds-hand", "Seconds Hand", "Segundero"},
	}

	categories := make([]Category, 0, len(keys))
	for i, k := range keys {
		categories = append(categories, Category{
			Key:           k.key,
			NamePrimary:   k.primary,
			NameSecondary: k.secondary,
			SortOrder:     i,
			StackIndex:    i,
		})
	}
	return categories
}
