package service

import (
	"log"

	"watch-configurator/models"
	"watch-configurator/utils"
)

// URLVerdict classifies an asset URL against the product it is attached to
type URLVerdict int

const (
	// URLVerdictUnknown means the URL carries no recognizable storage path
	// convention (e.g., an externally hosted image)
	URLVerdictUnknown URLVerdict = iota
	// URLVerdictOwned means the URL's product segment matches the expected product
	URLVerdictOwned
	// URLVerdictForeign means the URL unambiguously embeds a different product's key
	URLVerdictForeign
)

// InspectAssetURL inspects an asset URL under the storage convention
// .../<bucket>/<product_key>/<category_key>/<filename> and reports whether it
// belongs to the expected product. The heuristic can false-positive on assets
// hosted outside the path convention, so callers decide how strictly to act.
func InspectAssetURL(sourceURL, expectedProductKey string) URLVerdict {
	urlProduct, ok := utils.ExtractProductSegment(sourceURL)
	if !ok {
		return URLVerdictUnknown
	}
	if urlProduct == expectedProductKey {
		return URLVerdictOwned
	}
	return URLVerdictForeign
}

// CollectLeakSuspects inspects every asset of a built product map and returns
// the suspects whose URL points at a different product. Advisory only: the
// catalog build never removes suspects, because externally hosted assets can
// trip the heuristic.
func CollectLeakSuspects(productKey string, assetsByCategory map[string][]models.Asset) []models.LeakSuspect {
	var suspects []models.LeakSuspect
	for categoryKey, assets := range assetsByCategory {
		for _, asset := range assets {
			if InspectAssetURL(asset.SourceURL, productKey) != URLVerdictForeign {
				continue
			}
			urlProduct, _ := utils.ExtractProductSegment(asset.SourceURL)
			log.Printf("⚠️  Suspected cross-product asset: id=%d attached to %s but URL points at %s (%s)",
				asset.ID, productKey, urlProduct, asset.SourceURL)
			suspects = append(suspects, models.LeakSuspect{
				AssetID:       asset.ID,
				ProductKey:    productKey,
				CategoryKey:   categoryKey,
				URLProductKey: urlProduct,
				SourceURL:     asset.SourceURL,
			})
		}
	}
	return suspects
}

// FilterForProduct is the render-time guard: it excludes assets whose URL
// unambiguously belongs to a different product and keeps everything else,
// including assets with no recognizable path convention. Stricter than the
// build-time report on purpose — a thumbnail grid must never show another
// product's parts.
func FilterForProduct(assets []models.Asset, productKey string) []models.Asset {
	filtered := make([]models.Asset, 0, len(assets))
	for _, asset := range assets {
		if InspectAssetURL(asset.SourceURL, productKey) == URLVerdictForeign {
			log.Printf("⏭️  Excluding foreign asset from render: id=%d (%s)", asset.ID, asset.SourceURL)
			continue
		}
		filtered = append(filtered, asset)
	}
	return filtered
}
