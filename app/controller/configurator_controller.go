package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"watch-configurator/service"
)

// ConfiguratorController handles HTTP requests for selection sessions: the
// interactive views, selection commits, filters and the composed preview
type ConfiguratorController struct {
	sessionService *service.SessionService
	viewBuilder    *service.ViewBuilder
	compositor     *service.Compositor
	catalogService *service.CatalogService
}

// NewConfiguratorController creates a new ConfiguratorController
func NewConfiguratorController(
	sessionService *service.SessionService,
	viewBuilder *service.ViewBuilder,
	compositor *service.Compositor,
	catalogService *service.CatalogService,
) *ConfiguratorController {
	return &ConfiguratorController{
		sessionService: sessionService,
		viewBuilder:    viewBuilder,
		compositor:     compositor,
		catalogService: catalogService,
	}
}

// sessionPath splits /sessions/{id}/{action} into its parts
func sessionPath(r *http.Request) (sessionID, action string) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	parts := strings.SplitN(path, "/", 2)
	sessionID = parts[0]
	if len(parts) > 1 {
		action = parts[1]
	}
	return sessionID, action
}

// CreateSession handles POST /sessions
// Starts a selection session for a product, preselecting the first asset of
// every non-empty category
func (c *ConfiguratorController) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ProductKey string `json:"productKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ProductKey == "" {
		http.Error(w, "productKey is required", http.StatusBadRequest)
		return
	}

	state, err := c.sessionService.CreateSession(req.ProductKey)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create session: %v", err), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(state); err != nil {
		log.Printf("❌ CreateSession: Error encoding response: %v", err)
	}
}

// GetViews handles GET /sessions/{id}/views
// Returns the grid, row and layer stack for a session in one payload
func (c *ConfiguratorController) GetViews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, _ := sessionPath(r)
	views, err := c.viewBuilder.BuildViews(context.Background(), sessionID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build views: %v", err), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// GetModal handles GET /sessions/{id}/modal?category=dial&asset=42
// Returns the single-asset preview modal. Viewing a modal commits nothing.
func (c *ConfiguratorController) GetModal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, _ := sessionPath(r)
	categoryKey := strings.TrimSpace(r.URL.Query().Get("category"))
	assetStr := strings.TrimSpace(r.URL.Query().Get("asset"))
	if categoryKey == "" || assetStr == "" {
		http.Error(w, "category and asset parameters are required", http.StatusBadRequest)
		return
	}

	assetID, err := strconv.Atoi(assetStr)
	if err != nil {
		http.Error(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	modal, err := c.viewBuilder.BuildModal(sessionID, categoryKey, assetID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build modal: %v", err), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(modal); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Select handles POST /sessions/{id}/select
// Commits a selection for a category: either a stable asset ID, or a position
// in the currently displayed (filtered) list which is translated immediately
func (c *ConfiguratorController) Select(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, _ := sessionPath(r)

	var req struct {
		CategoryKey string `json:"categoryKey"`
		AssetID     *int   `json:"assetId"`
		Position    *int   `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.CategoryKey == "" {
		http.Error(w, "categoryKey is required", http.StatusBadRequest)
		return
	}

	var err error
	switch {
	case req.AssetID != nil:
		err = c.sessionService.Select(sessionID, req.CategoryKey, *req.AssetID)
	case req.Position != nil:
		err = c.sessionService.SelectPosition(sessionID, req.CategoryKey, *req.Position)
	default:
		http.Error(w, "assetId or position is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to select: %v", err), http.StatusBadRequest)
		return
	}

	c.respondViews(w, sessionID)
}

// Confirm handles POST /sessions/{id}/confirm
// Commits the asset previewed in the modal. Identical to a select by ID —
// the modal itself never commits anything.
func (c *ConfiguratorController) Confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, _ := sessionPath(r)

	var req struct {
		CategoryKey string `json:"categoryKey"`
		AssetID     int    `json:"assetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.CategoryKey == "" {
		http.Error(w, "categoryKey is required", http.StatusBadRequest)
		return
	}

	if err := c.sessionService.Select(sessionID, req.CategoryKey, req.AssetID); err != nil {
		http.Error(w, fmt.Sprintf("Failed to confirm: %v", err), http.StatusBadRequest)
		return
	}

	c.respondViews(w, sessionID)
}

// Reset handles POST /sessions/{id}/reset
func (c *ConfiguratorController) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, _ := sessionPath(r)
	if err := c.sessionService.Reset(sessionID); err != nil {
		http.Error(w, fmt.Sprintf("Failed to reset: %v", err), http.StatusNotFound)
		return
	}

	c.respondViews(w, sessionID)
}

// Randomize handles POST /sessions/{id}/randomize
func (c *ConfiguratorController) Randomize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, _ := sessionPath(r)
	if err := c.sessionService.Randomize(sessionID); err != nil {
		http.Error(w, fmt.Sprintf("Failed to randomize: %v", err), http.StatusNotFound)
		return
	}

	c.respondViews(w, sessionID)
}

// SetFilter handles POST /sessions/{id}/filter
// Narrows one category's displayed list by sub-category; the committed
// selection is untouched
func (c *ConfiguratorController) SetFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, _ := sessionPath(r)

	var req struct {
		CategoryKey string `json:"categoryKey"`
		Filter      string `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.CategoryKey == "" {
		http.Error(w, "categoryKey is required", http.StatusBadRequest)
		return
	}

	if err := c.sessionService.SetFilter(sessionID, req.CategoryKey, req.Filter); err != nil {
		http.Error(w, fmt.Sprintf("Failed to set filter: %v", err), http.StatusNotFound)
		return
	}

	c.respondViews(w, sessionID)
}

// SwitchProduct handles POST /sessions/{id}/product
// Moves the session to another product, rebuilding all selection state
func (c *ConfiguratorController) SwitchProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, _ := sessionPath(r)

	var req struct {
		ProductKey string `json:"productKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ProductKey == "" {
		http.Error(w, "productKey is required", http.StatusBadRequest)
		return
	}

	if err := c.sessionService.SwitchProduct(sessionID, req.ProductKey); err != nil {
		http.Error(w, fmt.Sprintf("Failed to switch product: %v", err), http.StatusNotFound)
		return
	}

	c.respondViews(w, sessionID)
}

// GetPreview handles GET /sessions/{id}/preview?zoom=100
// Composes the selected layers bottom-up into a single PNG. Out-of-range zoom
// values are clamped, never rejected.
func (c *ConfiguratorController) GetPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, _ := sessionPath(r)
	state, err := c.sessionService.GetSession(sessionID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Session not found: %v", err), http.StatusNotFound)
		return
	}

	zoom := 0
	if zoomStr := strings.TrimSpace(r.URL.Query().Get("zoom")); zoomStr != "" {
		zoom, err = strconv.Atoi(zoomStr)
		if err != nil {
			http.Error(w, "Invalid zoom value", http.StatusBadRequest)
			return
		}
	}
	zoom = service.ClampZoom(zoom)

	catalog := c.catalogService.Current()
	if catalog == nil {
		http.Error(w, "Catalog not loaded", http.StatusServiceUnavailable)
		return
	}

	layers := c.compositor.ResolveLayers(state.ProductKey, state.Selected, catalog)
	pngData, err := c.compositor.ComposePreview(r.Context(), layers, zoom)
	if err != nil {
		log.Printf("❌ GetPreview: Error composing preview for session %s: %v", sessionID, err)
		http.Error(w, fmt.Sprintf("Failed to compose preview: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pngData); err != nil {
		log.Printf("❌ GetPreview: Error writing PNG response: %v", err)
	}
}

// respondViews rebuilds the full view payload after a mutation so the client
// repaints grid, row and layers from one consistent state
func (c *ConfiguratorController) respondViews(w http.ResponseWriter, sessionID string) {
	views, err := c.viewBuilder.BuildViews(context.Background(), sessionID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build views: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		log.Printf("❌ Error encoding views response: %v", err)
	}
}
