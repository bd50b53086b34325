package app

import (
	"context"
	"fmt"
	"log"
	"os"

	"watch-configurator/app/controller"
	"watch-configurator/app/router"
	"watch-configurator/db"
	"watch-configurator/repository"
	"watch-configurator/service"
)

// Initialize initializes the application
func Initialize() error {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize blob store (Google Drive)
	blobStore, err := service.GetDriveService()
	if err != nil {
		return err
	}

	// Redis is optional: enrichment and snapshots degrade gracefully without it
	var cache service.CacheServiceInterface
	if cacheService, err := service.NewCacheService(); err != nil {
		log.Printf("⚠️  Redis unavailable, running without cache: %v", err)
	} else {
		cache = cacheService
	}

	if err := service.EnsureCacheDir(); err != nil {
		return err
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository()
	assetRepo := repository.NewAssetRepository()
	categoryRepo := repository.NewCategoryRepository()

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, assetRepo, categoryRepo, cache)
	sessionService := service.NewSessionService(catalogService)

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	localAssetDir := os.Getenv("LOCAL_ASSET_DIR")
	if localAssetDir == "" {
		localAssetDir = "/static/assets"
	}
	compositor := service.NewCompositor(baseURL, localAssetDir)

	viewBuilder := service.NewViewBuilder(catalogService, sessionService, compositor, cache)
	imageService := service.NewAssetImageService(blobStore)
	adminService := service.NewAdminService(productRepo, assetRepo, categoryRepo, blobStore, cache, catalogService, sessionService)
	exportService := service.NewExportService(catalogService, compositor, baseURL)

	// First catalog build. A failed load degrades (cache snapshot or fallback
	// categories) instead of aborting startup.
	if _, err := catalogService.LoadCatalog(context.Background()); err != nil {
		log.Printf("⚠️  Initial catalog load failed, serving degraded catalog: %v", err)
	}

	// Create controllers
	controllers := &router.Controllers{
		Configurator: controller.NewConfiguratorController(sessionService, viewBuilder, compositor, catalogService),
		Product:      controller.NewProductController(productRepo, adminService, catalogService, sessionService),
		Category:     controller.NewCategoryController(adminService, catalogService),
		Asset:        controller.NewAssetController(assetRepo, adminService, imageService),
		Export:       controller.NewExportController(exportService),
	}

	// Setup routes using standard http router
	router.SetupRoutes(controllers)

	return nil
}
