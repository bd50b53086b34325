package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch-configurator/models"
)

func TestInspectAssetURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		want     URLVerdict
	}{
		{
			name:     "matching product is owned",
			url:      assetURL("diver", "dial", "blue.png"),
			expected: "diver",
			want:     URLVerdictOwned,
		},
		{
			name:     "different product is foreign",
			url:      assetURL("pilot", "dial", "white.png"),
			expected: "diver",
			want:     URLVerdictForeign,
		},
		{
			name:     "external host without the convention is unknown",
			url:      "https://images.example.org/photos/123.png",
			expected: "diver",
			want:     URLVerdictUnknown,
		},
		{
			name:     "empty URL is unknown",
			url:      "",
			expected: "diver",
			want:     URLVerdictUnknown,
		},
		{
			name:     "marker with nothing after it is unknown",
			url:      "https://cdn.example.com/watch-assets/",
			expected: "diver",
			want:     URLVerdictUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InspectAssetURL(tt.url, tt.expected))
		})
	}
}

func TestFilterForProduct_ExcludesOnlyForeign(t *testing.T) {
	assets := []models.Asset{
		{ID: 1, SourceURL: assetURL("diver", "dial", "blue.png")},
		{ID: 2, SourceURL: assetURL("pilot", "dial", "white.png")},
		// No convention: must pass, external hosting is legitimate
		{ID: 3, SourceURL: "https://images.example.org/photos/123.png"},
	}

	filtered := FilterForProduct(assets, "diver")

	require.Len(t, filtered, 2)
	assert.Equal(t, 1, filtered[0].ID)
	assert.Equal(t, 3, filtered[1].ID)
}

func TestCollectLeakSuspects(t *testing.T) {
	byCategory := map[string][]models.Asset{
		"dial": {
			{ID: 1, SourceURL: assetURL("diver", "dial", "blue.png")},
			{ID: 2, SourceURL: assetURL("pilot", "dial", "white.png")},
			{ID: 3, SourceURL: "https://images.example.org/photos/123.png"},
		},
	}

	suspects := CollectLeakSuspects("diver", byCategory)

	require.Len(t, suspects, 1)
	assert.Equal(t, 2, suspects[0].AssetID)
	assert.Equal(t, "diver", suspects[0].ProductKey)
	assert.Equal(t, "dial", suspects[0].CategoryKey)
	assert.Equal(t, "pilot", suspects[0].URLProductKey)
}
