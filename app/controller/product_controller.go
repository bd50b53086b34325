package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"watch-configurator/models"
	"watch-configurator/repository"
	"watch-configurator/service"
)

// ProductController handles HTTP requests for products and catalog lifecycle
type ProductController struct {
	productRepo    repository.ProductRepositoryInterface
	adminService   *service.AdminService
	catalogService *service.CatalogService
	sessionService *service.SessionService
}

// NewProductController creates a new ProductController
func NewProductController(
	productRepo repository.ProductRepositoryInterface,
	adminService *service.AdminService,
	catalogService *service.CatalogService,
	sessionService *service.SessionService,
) *ProductController {
	return &ProductController{
		productRepo:    productRepo,
		adminService:   adminService,
		catalogService: catalogService,
		sessionService: sessionService,
	}
}

// ListProducts handles GET /catalog/products?search=diver
// Returns the product list, optionally filtered by a case-insensitive name search
func (c *ProductController) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	products, err := c.productRepo.List(context.Background(), search)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list products: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// UpsertProduct handles POST /admin/products
func (c *ProductController) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.ProductUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Key == "" || req.DisplayName == "" {
		http.Error(w, "key and displayName are required", http.StatusBadRequest)
		return
	}

	if err := c.adminService.UpsertProduct(context.Background(), req.Key, req.DisplayName); err != nil {
		http.Error(w, fmt.Sprintf("Failed to save product: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"key":    req.Key,
	})
}

// DeleteProduct handles DELETE /admin/products/{key}
// Removes the product with all its assets and their blobs
func (c *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/admin/products/")
	if key == "" || strings.Contains(key, "/") {
		http.Error(w, "product key is required", http.StatusBadRequest)
		return
	}

	if err := c.adminService.DeleteProduct(context.Background(), key); err != nil {
		http.Error(w, fmt.Sprintf("Failed to delete product: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"key":    key,
	})
}

// ReloadCatalog handles POST /catalog/reload
// Rebuilds the in-memory catalog from the store. A failed rebuild degrades
// (previous catalog, cache snapshot, or fallback) rather than leaving the
// service empty, so the report is returned either way.
func (c *ProductController) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := c.catalogService.LoadCatalog(context.Background())
	c.sessionService.DropDanglingSelections()

	response := map[string]interface{}{
		"report": report,
	}
	status := http.StatusOK
	if err != nil {
		log.Printf("⚠️  ReloadCatalog: load failed, serving degraded catalog: %v", err)
		response["error"] = err.Error()
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ ReloadCatalog: Error encoding response: %v", err)
	}
}

// GetReport handles GET /catalog/report
// Returns the diagnostic report of the most recent catalog build, including
// dedup counts and leak suspects
func (c *ProductController) GetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := c.catalogService.LastReport()
	if report == nil {
		http.Error(w, "No catalog build has run yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
