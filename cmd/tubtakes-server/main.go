package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/poku-e/tubtakes/internal/catalog"
	"github.com/poku-e/tubtakes/internal/config"
	"github.com/poku-e/tubtakes/internal/httpapi"
	"github.com/poku-e/tubtakes/internal/observability"
	"github.com/poku-e/tubtakes/internal/ranking"
	"github.com/poku-e/tubtakes/internal/remapstore"
	"github.com/poku-e/tubtakes/internal/share"
	"github.com/poku-e/tubtakes/internal/shortcode"
)

func main() {
	var (
		configPath string
		addr       string
	)
	flag.StringVar(&configPath, "config", os.Getenv("TUBTAKES_CONFIG"), "Path to YAML config file")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	cat := catalog.LoadOrFallback(cfg.Catalog.Path, logger)
	logger.Info("catalog loaded", zap.Int("flavors", cat.Len()), zap.String("path", cfg.Catalog.Path))

	imagesDir := cfg.Catalog.ImagesDir
	if imagesDir != "" {
		rep, err := cat.CheckImages(imagesDir)
		switch {
		case err != nil:
			logger.Warn("images unavailable", zap.String("dir", imagesDir), zap.Error(err))
			imagesDir = ""
		case !rep.OK():
			logger.Warn("catalog and images disagree",
				zap.Int("missing", len(rep.Missing)), zap.Strings("extra", rep.Extra))
		}
	}

	store, err := remapstore.Open(cfg.Remap)
	if err != nil {
		return err
	}
	comp := shortcode.New(store, shortcode.WithLogger(logger.Named("shortcode")))
	svc := share.New(cat, comp,
		share.WithLogger(logger.Named("share")),
		share.WithPublicURL(cfg.Server.PublicURL))

	board := ranking.NewBoard(cfg.Rankings.Path, cfg.Rankings.FullWeight)
	if err := board.Load(); err != nil {
		return fmt.Errorf("load rankings: %w", err)
	}
	logger.Info("rankings loaded", zap.Int("submissions", board.Len()), zap.String("remap_backend", cfg.Remap.Backend))

	api := httpapi.New(svc, board,
		httpapi.WithLogger(logger),
		httpapi.WithImagesDir(imagesDir),
		httpapi.WithSecureCookies(strings.HasPrefix(cfg.Server.PublicURL, "https://")))
	srv := api.HTTPServer(cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server shut down")
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
