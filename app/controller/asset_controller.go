package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"watch-configurator/models"
	"watch-configurator/repository"
	"watch-configurator/service"
)

// maxUploadSize bounds one multipart upload batch (32 MB)
const maxUploadSize = 32 << 20

// AssetController handles HTTP requests for assets: uploads, edits, reorders
// and the optimized image endpoint
type AssetController struct {
	assetRepo    repository.AssetRepositoryInterface
	adminService *service.AdminService
	imageService *service.AssetImageService
}

// NewAssetController creates a new AssetController
func NewAssetController(
	assetRepo repository.AssetRepositoryInterface,
	adminService *service.AdminService,
	imageService *service.AssetImageService,
) *AssetController {
	return &AssetController{
		assetRepo:    assetRepo,
		adminService: adminService,
		imageService: imageService,
	}
}

// assetIDFromPath extracts the numeric ID from /admin/assets/{id} or
// /assets/{id}/image
func assetIDFromPath(path, prefix string) (int, error) {
	trimmed := strings.TrimPrefix(path, prefix)
	if i := strings.Index(trimmed, "/"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return 0, fmt.Errorf("asset ID is required")
	}
	return strconv.Atoi(trimmed)
}

// UploadAssets handles POST /admin/assets/upload
// Multipart form: product, category, files. Each file is uploaded to the blob
// store and inserted; failures are reported per file, not batch-fatal.
func (c *AssetController) UploadAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, fmt.Sprintf("Invalid multipart form: %v", err), http.StatusBadRequest)
		return
	}

	productKey := strings.TrimSpace(r.FormValue("product"))
	categoryKey := strings.TrimSpace(r.FormValue("category"))
	if productKey == "" || categoryKey == "" {
		http.Error(w, "product and category fields are required", http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		http.Error(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var files []service.UploadFile
	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			log.Printf("❌ UploadAssets: Could not open %s: %v", header.Filename, err)
			http.Error(w, fmt.Sprintf("Could not read file %s: %v", header.Filename, err), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("Could not read file %s: %v", header.Filename, err), http.StatusBadRequest)
			return
		}

		files = append(files, service.UploadFile{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	stats, err := c.adminService.UploadAssets(context.Background(), productKey, categoryKey, files)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to upload assets: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Printf("❌ UploadAssets: Error encoding response: %v", err)
	}
}

// UpdateAsset handles PUT /admin/assets/{id}
// Updates label and sub-category
func (c *AssetController) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := assetIDFromPath(r.URL.Path, "/admin/assets/")
	if err != nil {
		http.Error(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	var req models.AssetUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := c.adminService.UpdateAsset(context.Background(), id, req.Label, req.SubCategory); err != nil {
		http.Error(w, fmt.Sprintf("Failed to update asset: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"id":     id,
	})
}

// DeleteAsset handles DELETE /admin/assets/{id}
// Blob first, then the row; a failed blob delete leaves the asset intact
func (c *AssetController) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := assetIDFromPath(r.URL.Path, "/admin/assets/")
	if err != nil {
		http.Error(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	if err := c.adminService.DeleteAsset(context.Background(), id); err != nil {
		http.Error(w, fmt.Sprintf("Failed to delete asset: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"id":     id,
	})
}

// ReorderAssets handles POST /admin/assets/reorder
// Persists a drag-and-drop reorder within one (product, category) pair
func (c *AssetController) ReorderAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ProductKey  string `json:"productKey"`
		CategoryKey string `json:"categoryKey"`
		AssetIDs    []int  `json:"assetIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ProductKey == "" || req.CategoryKey == "" || len(req.AssetIDs) == 0 {
		http.Error(w, "productKey, categoryKey and assetIds are required", http.StatusBadRequest)
		return
	}

	reorder := models.AssetReorderRequest{
		CategoryKey: req.CategoryKey,
		AssetIDs:    req.AssetIDs,
	}
	if err := c.adminService.ReorderAssets(context.Background(), req.ProductKey, reorder); err != nil {
		http.Error(w, fmt.Sprintf("Failed to reorder assets: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"count":  len(req.AssetIDs),
	})
}

// GetOptimizedImage handles GET /assets/{id}/image?size=thumb|medium
// Serves the optimized JPEG for an asset, from the disk cache when warm
func (c *AssetController) GetOptimizedImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := assetIDFromPath(r.URL.Path, "/assets/")
	if err != nil {
		http.Error(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	size := strings.TrimSpace(r.URL.Query().Get("size"))
	if size == "" {
		size = "medium"
	}

	asset, err := c.assetRepo.GetByID(context.Background(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Asset not found: %v", err), http.StatusNotFound)
		return
	}

	imageData, err := c.imageService.GetOptimized(asset, size)
	if err != nil {
		log.Printf("❌ GetOptimizedImage: Error optimizing asset %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to get image: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(imageData); err != nil {
		log.Printf("❌ GetOptimizedImage: Error writing response: %v", err)
	}
}
