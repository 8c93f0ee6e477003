// Command lampview renders a lamp in the terminal and lets the user browse its
// color variants from the storefront gallery.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"layerlight-storefront/config"
	"layerlight-storefront/logging"
	"layerlight-storefront/loop"
	"layerlight-storefront/models"
	"layerlight-storefront/storefront"
	"layerlight-storefront/surface"
	"layerlight-storefront/viewer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "lampview:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		handle     = flag.String("handle", "", "bind the view to this product handle")
		collection = flag.String("collection", "", "gallery collection handle")
		search     = flag.String("search", "", "gallery title search")
		selected   = flag.String("select", "", "initial configuration as a query string, e.g. color=Gold&size=S")
		mode       = flag.String("mode", "interactive", "presentation or interactive")
		meshDir    = flag.String("mesh-dir", "", "load meshes from this directory instead of the storefront")
		logPath    = flag.String("log", "lampview.log", "log file")
	)
	flag.Parse()

	logger, err := logging.NewFile(*logPath)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	query, err := url.ParseQuery(*selected)
	if err != nil {
		return fmt.Errorf("invalid -select: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := storefront.NewClient(cfg.Viewer.StorefrontURL, nil)

	var product *models.Product
	if *handle != "" {
		p, err := client.ProductByHandle(ctx, *handle)
		if err != nil {
			return fmt.Errorf("failed to load product %q: %w", *handle, err)
		}
		product = &p
	}

	var loader surface.Loader = surface.LoaderFunc(client.OpenMesh)
	if *meshDir != "" {
		loader = surface.DirLoader{Root: *meshDir}
	}
	mesh, err := surface.NewMeshCache(loader).Get(ctx, cfg.Viewer.MeshPath)
	if err != nil {
		return fmt.Errorf("failed to load mesh %s: %w", cfg.Viewer.MeshPath, err)
	}

	surfaceMode := surface.ModeFullInteraction
	if *mode == "presentation" {
		surfaceMode = surface.ModePresentation
	}
	opts := surface.DefaultOptions(surfaceMode)
	opts.FrameInterval = cfg.Viewer.FrameInterval

	l := loop.New(loop.WithFrameInterval(cfg.Viewer.FrameInterval), loop.WithLogger(logger))
	adapter := surface.NewAdapter(l, surface.NewTerminalBackend(), opts, logger)

	gallery := storefront.Query{Collection: *collection, Handle: *handle, Search: *search}
	// without a query the viewer runs without a gallery
	var fetcher viewer.Fetcher
	if !gallery.Empty() {
		fetcher = client
	}

	var chosen string
	session := viewer.NewSession(l, adapter, fetcher, viewer.Config{
		Product:       product,
		URLQuery:      query,
		Gallery:       gallery,
		CycleInterval: cfg.Viewer.CycleInterval,
		OnNavigate: func(link string) {
			chosen = link
			l.Stop()
		},
		OnQuit: l.Stop,
	}, logger)

	l.Post(func() { session.Mount(mesh) })
	logger.Info("viewer started", zap.String("storefront", cfg.Viewer.StorefrontURL), zap.String("mode", surfaceMode.String()))

	err = l.Run(ctx)
	// the loop has exited, so the session can be torn down from here
	session.Unmount()

	if chosen != "" {
		fmt.Println(cfg.Viewer.StorefrontURL + chosen)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

