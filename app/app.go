package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"layerlight-storefront/app/controller"
	"layerlight-storefront/app/router"
	"layerlight-storefront/config"
	"layerlight-storefront/db"
	"layerlight-storefront/gallery"
	"layerlight-storefront/repository"
	"layerlight-storefront/service"
)

// Initialize connects the database, wires services and controllers and returns the router
func Initialize(ctx context.Context, cfg config.Config, logger *zap.Logger) (http.Handler, error) {
	conn, err := db.InitDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(ctx, conn); err != nil {
		return nil, err
	}

	// Repositories
	productRepo := repository.NewProductRepository(conn, logger)
	meshRepo := repository.NewMeshAssetRepository(conn)

	// Services
	productService := service.NewProductService(productRepo, logger)
	galleryService := service.NewGalleryService(
		productService,
		cfg.Assets.TemplatesDir,
		cfg.Server.BaseURL,
		cfg.Assets.ChromePath,
		gallery.PolicySkipMissing,
		logger,
	)
	swatchService := service.NewSwatchService(cfg.Assets.CacheDir, logger)
	if err := swatchService.EnsureCacheDir(); err != nil {
		return nil, err
	}

	// Drive access is optional; without credentials the sync route reports an error
	var driveService service.DriveServiceInterface = unavailableDrive{}
	if cfg.Drive.CredentialsFile != "" {
		ds, err := service.NewDriveService(ctx, cfg.Drive.CredentialsFile, logger)
		if err != nil {
			return nil, err
		}
		driveService = ds
	} else {
		logger.Warn("GOOGLE_APPLICATION_CREDENTIALS is not set, mesh sync disabled")
	}
	meshSync := service.NewMeshSyncService(driveService, meshRepo, cfg.Assets.ModelsDir, logger)

	controllers := &router.Controllers{
		Product: controller.NewProductController(productService, logger),
		Gallery: controller.NewGalleryController(galleryService, logger),
		Swatch:  controller.NewSwatchController(swatchService, logger),
		Mesh:    controller.NewMeshController(meshSync, cfg.Drive.FolderID, logger),
	}

	return router.SetupRoutes(controllers, cfg.Assets.ModelsDir), nil
}
