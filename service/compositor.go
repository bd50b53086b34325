package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"net/http"
	"path"
	"sort"
	"time"

	"github.com/disintegration/imaging"

	"watch-configurator/models"
)

const (
	// Bound for preloading all layer images before a composed first paint:
	// when a host is slow, compose whatever arrived instead of waiting
	preloadTimeout = 10 * time.Second

	// Stepped zoom, clamped
	zoomMin     = 50
	zoomMax     = 200
	zoomStep    = 25
	zoomDefault = 100
)

// Compositor turns a selection state plus the catalog into concrete visual
// layers, and optionally flattens them into a single composed PNG
type Compositor struct {
	baseURL       string // Base URL for relative image paths
	localAssetDir string // Base path synthesized for assets without a remote URL
	httpClient    *http.Client
}

// NewCompositor creates a new Compositor
func NewCompositor(baseURL, localAssetDir string) *Compositor {
	return &Compositor{
		baseURL:       baseURL,
		localAssetDir: localAssetDir,
		httpClient:    &http.Client{},
	}
}

// DisplayableURL resolves an asset record to a displayable URL.
// Precedence: direct remote URL, then a synthesized local path, then
// unresolved.
func (c *Compositor) DisplayableURL(asset models.Asset) (string, bool) {
	if asset.SourceURL != "" {
		return asset.SourceURL, true
	}
	if asset.LocalFile != "" {
		return path.Join(c.localAssetDir, asset.LocalFile), true
	}
	return "", false
}

// ResolveLayers resolves every category of the catalog to a visual layer in
// paint order. A category whose committed asset ID is unset, dangling, or
// whose asset has no displayable URL yields a hidden layer — never an error
// and never a broken image.
func (c *Compositor) ResolveLayers(productKey string, selected map[string]int, catalog *models.Catalog) []models.Layer {
	if catalog == nil {
		return nil
	}

	categories := make([]models.Category, len(catalog.Categories))
	copy(categories, catalog.Categories)
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].StackIndex < categories[j].StackIndex
	})

	product := catalog.Product(productKey)
	layers := make([]models.Layer, 0, len(categories))
	for _, category := range categories {
		layer := models.Layer{
			CategoryKey: category.Key,
			StackIndex:  category.StackIndex,
			Hidden:      true,
		}

		assetID, isSet := selected[category.Key]
		if isSet && product != nil {
			if asset, ok := product.FindAsset(category.Key, assetID); ok {
				if url, resolved := c.DisplayableURL(asset); resolved {
					layer.AssetID = asset.ID
					layer.ImageURL = url
					layer.Hidden = false
				}
			}
		}

		layers = append(layers, layer)
	}
	return layers
}

// ClampZoom normalizes a requested zoom percentage to the stepped, clamped
// scale the preview supports. Zero means default (100%).
func ClampZoom(zoom int) int {
	if zoom == 0 {
		return zoomDefault
	}
	if zoom < zoomMin {
		return zoomMin
	}
	if zoom > zoomMax {
		return zoomMax
	}
	// Snap to the nearest step
	return ((zoom + zoomStep/2) / zoomStep) * zoomStep
}

// fetchLayerImage fetches and decodes one layer's image
func (c *Compositor) fetchLayerImage(ctx context.Context, imageURL string) (image.Image, error) {
	fullURL := imageURL
	if len(imageURL) > 0 && imageURL[0] == '/' {
		fullURL = c.baseURL + imageURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch layer image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("layer image endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read layer image: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode layer image: %w", err)
	}
	return img, nil
}

// ComposePreview flattens the visible layers bottom-up into one PNG. All
// layer fetches run under a single deadline; a layer that misses it is
// skipped so the preview is never blocked indefinitely by a slow asset host.
// Zoom is a stepped, clamped percentage applied to the composed canvas.
func (c *Compositor) ComposePreview(ctx context.Context, layers []models.Layer, zoom int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, preloadTimeout)
	defer cancel()

	type fetched struct {
		index int
		img   image.Image
	}

	visible := make([]models.Layer, 0, len(layers))
	for _, layer := range layers {
		if !layer.Hidden {
			visible = append(visible, layer)
		}
	}
	if len(visible) == 0 {
		return nil, fmt.Errorf("no visible layers to compose")
	}

	results := make(chan fetched, len(visible))
	for i, layer := range visible {
		go func(index int, imageURL string) {
			img, err := c.fetchLayerImage(ctx, imageURL)
			if err != nil {
				log.Printf("⚠️  Skipping layer %s: %v", visible[index].CategoryKey, err)
				results <- fetched{index: index}
				return
			}
			results <- fetched{index: index, img: img}
		}(i, layer.ImageURL)
	}

	images := make([]image.Image, len(visible))
	for range visible {
		result := <-results
		images[result.index] = result.img
	}

	// Canvas dimensions come from the largest loaded layer
	width, height := 0, 0
	loaded := 0
	for _, img := range images {
		if img == nil {
			continue
		}
		loaded++
		bounds := img.Bounds()
		if bounds.Dx() > width {
			width = bounds.Dx()
		}
		if bounds.Dy() > height {
			height = bounds.Dy()
		}
	}
	if loaded == 0 {
		return nil, fmt.Errorf("no layer images could be loaded")
	}

	canvas := imaging.New(width, height, color.NRGBA{0, 0, 0, 0})
	for _, img := range images {
		if img == nil {
			continue
		}
		canvas = imaging.OverlayCenter(canvas, img, 1.0)
	}

	zoom = ClampZoom(zoom)
	if zoom != zoomDefault {
		newWidth := width * zoom / 100
		newHeight := height * zoom / 100
		log.Printf("🔍 Applying zoom %d%%: %dx%d -> %dx%d", zoom, width, height, newWidth, newHeight)
		canvas = imaging.Resize(canvas, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode composed preview: %w", err)
	}

	log.Printf("✓ Composed preview: %d/%d layers, zoom %d%%, %d bytes", loaded, len(visible), zoom, buf.Len())
	return buf.Bytes(), nil
}
