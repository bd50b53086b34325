package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"watch-configurator/models"
)

const (
	cacheDir = "cache/images"
	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// AssetImageService serves optimized asset thumbnails. Originals are fetched
// from the blob store (or the asset's remote URL) once, optimized to JPEG,
// and kept in a disk cache.
type AssetImageService struct {
	blobStore BlobStoreInterface
}

// NewAssetImageService creates a new AssetImageService
func NewAssetImageService(blobStore BlobStoreInterface) *AssetImageService {
	return &AssetImageService{blobStore: blobStore}
}

// EnsureCacheDir ensures the image cache directory exists
func EnsureCacheDir() error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

// cachePath returns the cache file path for a given asset ID and size
func cachePath(assetID int, size string) string {
	filename := fmt.Sprintf("asset_%d_%s.jpg", assetID, size)
	return filepath.Join(cacheDir, filename)
}

// readFromCache reads an optimized image from the disk cache, or nil
func readFromCache(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}

// saveToCache stores an optimized image in the disk cache
func saveToCache(path string, imageData []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(path, imageData, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Printf("✓ Image cached: %s", path)
	return nil
}

// fetchOriginal retrieves the asset's original bytes: from the blob store
// when the asset carries a Drive file ID, otherwise over HTTP from its URL
func (s *AssetImageService) fetchOriginal(asset *models.Asset) ([]byte, error) {
	if asset.DriveFileID != "" && s.blobStore != nil {
		return s.blobStore.DownloadImage(asset.DriveFileID)
	}

	if asset.SourceURL == "" {
		return nil, fmt.Errorf("asset %d has no retrievable source", asset.ID)
	}

	resp, err := http.Get(asset.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch asset image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset image returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// GetOptimized returns the optimized JPEG for an asset at the given size
// ("thumb" or "medium"), serving from the disk cache when possible
func (s *AssetImageService) GetOptimized(asset *models.Asset, size string) ([]byte, error) {
	path := cachePath(asset.ID, size)
	if cached := readFromCache(path); cached != nil {
		return cached, nil
	}

	original, err := s.fetchOriginal(asset)
	if err != nil {
		return nil, err
	}

	optimized, err := OptimizeImage(original, size)
	if err != nil {
		return nil, err
	}

	if err := saveToCache(path, optimized); err != nil {
		log.Printf("⚠️  Warning: Could not cache optimized image for asset %d: %v", asset.ID, err)
	}
	return optimized, nil
}

// OptimizeImage converts an image to JPEG and resizes it to the size preset.
// Note: JPEG instead of WebP to avoid a CGO dependency.
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	log.Printf("📸 Image decoded: format=%s, bounds=%v", format, img.Bounds())

	var maxDim int
	var quality int
	switch size {
	case "thumb":
		maxDim = maxSizeThumb
		quality = qualityThumb
	case "medium":
		maxDim = maxSizeMedium
		quality = qualityMedium
	default:
		maxDim = maxSizeMedium
		quality = qualityMedium
		log.Printf("⚠️  Unknown size '%s', defaulting to medium", size)
	}

	// Resize maintaining aspect ratio if either dimension exceeds the preset
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var resizedImg image.Image = img
	if width > maxDim || height > maxDim {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxDim
			newHeight = int(float64(height) * float64(maxDim) / float64(width))
		} else {
			newHeight = maxDim
			newWidth = int(float64(width) * float64(maxDim) / float64(height))
		}

		log.Printf("🔄 Resizing image: %dx%d -> %dx%d", width, height, newWidth, newHeight)
		resizedImg = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	opts := &jpeg.Options{Quality: quality}
	if err := jpeg.Encode(&buf, resizedImg, opts); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	log.Printf("✓ Image optimized: size=%s, quality=%d, output_size=%d bytes", size, quality, buf.Len())
	return buf.Bytes(), nil
}
