package router

import (
	"net/http"
	"strings"

	"watch-configurator/app/controller"
)

type Controllers struct {
	Configurator *controller.ConfiguratorController
	Product      *controller.ProductController
	Category     *controller.CategoryController
	Asset        *controller.AssetController
	Export       *controller.ExportController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers) {
	// Ping endpoint
	http.HandleFunc("/ping", pingHandler)

	// Session routes
	http.HandleFunc("/sessions", controllers.Configurator.CreateSession)

	// Session actions - /sessions/{id}/{action}
	http.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/sessions/")

		switch {
		case strings.HasSuffix(path, "/views"):
			controllers.Configurator.GetViews(w, r)
		case strings.HasSuffix(path, "/modal"):
			controllers.Configurator.GetModal(w, r)
		case strings.HasSuffix(path, "/select"):
			controllers.Configurator.Select(w, r)
		case strings.HasSuffix(path, "/confirm"):
			controllers.Configurator.Confirm(w, r)
		case strings.HasSuffix(path, "/reset"):
			controllers.Configurator.Reset(w, r)
		case strings.HasSuffix(path, "/randomize"):
			controllers.Configurator.Randomize(w, r)
		case strings.HasSuffix(path, "/filter"):
			controllers.Configurator.SetFilter(w, r)
		case strings.HasSuffix(path, "/product"):
			controllers.Configurator.SwitchProduct(w, r)
		case strings.HasSuffix(path, "/preview"):
			controllers.Configurator.GetPreview(w, r)
		default:
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})

	// Catalog routes
	http.HandleFunc("/catalog/products", controllers.Product.ListProducts)
	http.HandleFunc("/catalog/categories", controllers.Category.ListCategories)
	http.HandleFunc("/catalog/reload", controllers.Product.ReloadCatalog)
	http.HandleFunc("/catalog/report", controllers.Product.GetReport)

	// Optimized asset images - GET /assets/{id}/image
	http.HandleFunc("/assets/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/image") {
			controllers.Asset.GetOptimizedImage(w, r)
			return
		}
		http.Error(w, "Not found", http.StatusNotFound)
	})

	// Product administration
	http.HandleFunc("/admin/products", controllers.Product.UpsertProduct)
	http.HandleFunc("/admin/products/", controllers.Product.DeleteProduct)

	// Category administration
	http.HandleFunc("/admin/categories", controllers.Category.UpsertCategory)
	http.HandleFunc("/admin/categories/reorder", controllers.Category.ReorderCategories)
	http.HandleFunc("/admin/categories/", controllers.Category.DeleteCategory)
	// Curated sub-category lists - handles both GET and POST
	http.HandleFunc("/admin/sub-categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			controllers.Category.GetSubCategories(w, r)
		} else if r.Method == http.MethodPost {
			controllers.Category.SaveSubCategories(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Asset administration
	http.HandleFunc("/admin/assets/upload", controllers.Asset.UploadAssets)
	http.HandleFunc("/admin/assets/reorder", controllers.Asset.ReorderAssets)

	// Asset by ID - handles both PUT (update) and DELETE
	http.HandleFunc("/admin/assets/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			controllers.Asset.UpdateAsset(w, r)
		} else if r.Method == http.MethodDelete {
			controllers.Asset.DeleteAsset(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Product sheet export
	http.HandleFunc("/admin/export", controllers.Export.GenerateSheet)
	http.HandleFunc("/admin/export/render", controllers.Export.RenderSheet)
	http.HandleFunc("/admin/export/png-page", controllers.Export.DownloadPNGPage)
}
