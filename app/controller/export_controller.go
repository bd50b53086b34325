package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"watch-configurator/service"
)

// ExportController handles HTTP requests for product sheet exports
type ExportController struct {
	exportService *service.ExportService
	// Temporary storage for PNG pages (key: sessionID, value: map of page number to PNG data)
	pngStorage      map[string]map[int][]byte
	pngStorageMutex sync.RWMutex
}

// NewExportController creates a new ExportController
func NewExportController(exportService *service.ExportService) *ExportController {
	return &ExportController{
		exportService: exportService,
		pngStorage:    make(map[string]map[int][]byte),
	}
}

// validExportFormats is a map of valid format values
var validExportFormats = map[string]bool{
	"html": true,
	"pdf":  true,
	"png":  true,
}

// GenerateSheet handles GET /admin/export?product=diver&format=pdf|png|html
func (c *ExportController) GenerateSheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productKey := strings.TrimSpace(r.URL.Query().Get("product"))
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	if productKey == "" {
		http.Error(w, "product parameter is required", http.StatusBadRequest)
		return
	}
	if format == "" {
		http.Error(w, "format parameter is required. Valid formats: html, pdf, png", http.StatusBadRequest)
		return
	}
	if !validExportFormats[format] {
		http.Error(w, "Invalid format. Valid formats: html, pdf, png", http.StatusBadRequest)
		return
	}

	ctx := context.Background()

	switch format {
	case "html":
		htmlContent, err := c.exportService.RenderSheetHTML(productKey)
		if err != nil {
			log.Printf("❌ GenerateSheet: Error rendering HTML: %v", err)
			http.Error(w, fmt.Sprintf("Failed to render sheet: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(htmlContent)); err != nil {
			log.Printf("❌ GenerateSheet: Error writing HTML response: %v", err)
		}

	case "pdf":
		pdfData, err := c.exportService.GeneratePDF(ctx, productKey)
		if err != nil {
			log.Printf("❌ GenerateSheet: Error generating PDF: %v", err)
			http.Error(w, fmt.Sprintf("Failed to generate PDF: %v", err), http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("sheet_%s.pdf", productKey)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(pdfData); err != nil {
			log.Printf("❌ GenerateSheet: Error writing PDF response: %v", err)
		}

	case "png":
		pngs, err := c.exportService.GeneratePNG(ctx, productKey)
		if err != nil {
			log.Printf("❌ GenerateSheet: Error generating PNG: %v", err)
			http.Error(w, fmt.Sprintf("Failed to generate PNG: %v", err), http.StatusInternalServerError)
			return
		}

		sessionID := fmt.Sprintf("%s_%d", productKey, time.Now().UnixNano())

		c.pngStorageMutex.Lock()
		c.pngStorage[sessionID] = pngs
		c.pngStorageMutex.Unlock()

		// Schedule cleanup after 10 minutes
		go func() {
			time.Sleep(10 * time.Minute)
			c.pngStorageMutex.Lock()
			delete(c.pngStorage, sessionID)
			c.pngStorageMutex.Unlock()
		}()

		type PageLink struct {
			Page     int    `json:"page"`
			URL      string `json:"url"`
			Filename string `json:"filename"`
		}

		var pages []PageLink
		for i := 1; i <= len(pngs); i++ {
			if _, exists := pngs[i]; !exists {
				continue
			}
			downloadPath := fmt.Sprintf("/admin/export/png-page?session=%s&page=%d", sessionID, i)
			var filename string
			if len(pngs) == 1 {
				filename = fmt.Sprintf("sheet_%s.png", productKey)
			} else {
				filename = fmt.Sprintf("sheet_%s_page_%d.png", productKey, i)
			}
			pages = append(pages, PageLink{
				Page:     i,
				URL:      downloadPath,
				Filename: filename,
			})
		}

		response := map[string]interface{}{
			"sessionId":  sessionID,
			"totalPages": len(pngs),
			"product":    productKey,
			"pages":      pages,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("❌ GenerateSheet: Error encoding JSON response: %v", err)
		}
	}
}

// RenderSheet handles GET /admin/export/render?product=diver
// Returns the sheet HTML (loaded by headless Chrome for PDF/PNG capture)
func (c *ExportController) RenderSheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productKey := strings.TrimSpace(r.URL.Query().Get("product"))
	if productKey == "" {
		http.Error(w, "product parameter is required", http.StatusBadRequest)
		return
	}

	htmlContent, err := c.exportService.RenderSheetHTML(productKey)
	if err != nil {
		log.Printf("❌ RenderSheet: Error rendering HTML: %v", err)
		http.Error(w, fmt.Sprintf("Failed to render sheet: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(htmlContent)); err != nil {
		log.Printf("❌ RenderSheet: Error writing HTML response: %v", err)
	}
}

// DownloadPNGPage handles GET /admin/export/png-page?session=XXX&page=N
// Returns a specific PNG page from temporary storage
func (c *ExportController) DownloadPNGPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	pageStr := strings.TrimSpace(r.URL.Query().Get("page"))

	if sessionID == "" {
		http.Error(w, "session parameter is required", http.StatusBadRequest)
		return
	}

	pageNum, err := strconv.Atoi(pageStr)
	if err != nil || pageNum < 1 {
		http.Error(w, "Invalid page number", http.StatusBadRequest)
		return
	}

	c.pngStorageMutex.RLock()
	pngs, exists := c.pngStorage[sessionID]
	c.pngStorageMutex.RUnlock()

	if !exists {
		http.Error(w, "Session expired or not found", http.StatusNotFound)
		return
	}

	pngData, exists := pngs[pageNum]
	if !exists {
		http.Error(w, fmt.Sprintf("Page %d not found", pageNum), http.StatusNotFound)
		return
	}

	// Session ID format: PRODUCT_TIMESTAMP
	productKey := strings.SplitN(sessionID, "_", 2)[0]
	filename := fmt.Sprintf("sheet_%s_page_%d.png", productKey, pageNum)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pngData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(pngData); err != nil {
		log.Printf("❌ DownloadPNGPage: Error writing PNG response: %v", err)
	}
}
