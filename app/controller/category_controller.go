package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"watch-configurator/models"
	"watch-configurator/service"
)

// CategoryController handles HTTP requests for category management
type CategoryController struct {
	adminService   *service.AdminService
	catalogService *service.CatalogService
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(adminService *service.AdminService, catalogService *service.CatalogService) *CategoryController {
	return &CategoryController{
		adminService:   adminService,
		catalogService: catalogService,
	}
}

// ListCategories handles GET /catalog/categories
// Returns the live category list in stacking order (already fallback-resolved
// by the catalog build)
func (c *CategoryController) ListCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	catalog := c.catalogService.Current()
	if catalog == nil {
		http.Error(w, "Catalog not loaded", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(catalog.Categories); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// UpsertCategory handles POST /admin/categories
func (c *CategoryController) UpsertCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if category.Key == "" || category.NamePrimary == "" {
		http.Error(w, "key and namePrimary are required", http.StatusBadRequest)
		return
	}

	if err := c.adminService.UpsertCategory(context.Background(), category); err != nil {
		http.Error(w, fmt.Sprintf("Failed to save category: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"key":    category.Key,
	})
}

// DeleteCategory handles DELETE /admin/categories/{key}
// Removes the category and every asset in it across all products
func (c *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/admin/categories/")
	if key == "" || strings.Contains(key, "/") {
		http.Error(w, "category key is required", http.StatusBadRequest)
		return
	}

	if err := c.adminService.DeleteCategory(context.Background(), key); err != nil {
		http.Error(w, fmt.Sprintf("Failed to delete category: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"key":    key,
	})
}

// ReorderCategories handles POST /admin/categories/reorder
// Renumbers the stacking order to match the submitted key order
func (c *CategoryController) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		OrderedKeys []string `json:"orderedKeys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.OrderedKeys) == 0 {
		http.Error(w, "orderedKeys is required", http.StatusBadRequest)
		return
	}

	if err := c.adminService.ReorderCategories(context.Background(), req.OrderedKeys); err != nil {
		http.Error(w, fmt.Sprintf("Failed to reorder categories: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"count":  len(req.OrderedKeys),
	})
}

// GetSubCategories handles GET /admin/sub-categories?product=K&category=C
// Returns the curated sub-category filter list for a (product, category) pair
func (c *CategoryController) GetSubCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productKey := strings.TrimSpace(r.URL.Query().Get("product"))
	categoryKey := strings.TrimSpace(r.URL.Query().Get("category"))
	if productKey == "" || categoryKey == "" {
		http.Error(w, "product and category parameters are required", http.StatusBadRequest)
		return
	}

	names, err := c.adminService.LoadSubCategoryNames(context.Background(), productKey, categoryKey)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load sub-categories: %v", err), http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(names); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// SaveSubCategories handles POST /admin/sub-categories
// Stores the curated sub-category filter list for a (product, category) pair
func (c *CategoryController) SaveSubCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ProductKey  string   `json:"productKey"`
		CategoryKey string   `json:"categoryKey"`
		Names       []string `json:"names"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ProductKey == "" || req.CategoryKey == "" {
		http.Error(w, "productKey and categoryKey are required", http.StatusBadRequest)
		return
	}

	if err := c.adminService.SaveSubCategoryNames(context.Background(), req.ProductKey, req.CategoryKey, req.Names); err != nil {
		http.Error(w, fmt.Sprintf("Failed to save sub-categories: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
	})
}
