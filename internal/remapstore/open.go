package remapstore

import (
	"fmt"

	"github.com/poku-e/tubtakes/internal/config"
	"github.com/poku-e/tubtakes/internal/shortcode"
)

// Open builds the store selected by cfg.Backend.
func Open(cfg config.RemapConfig) (shortcode.RemapStore, error) {
	switch cfg.Backend {
	case config.RemapBackendMemory, "":
		return NewMemory(cfg.MaxSlots, cfg.TTL), nil
	case config.RemapBackendFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("remap store: file backend requires a path")
		}
		return NewFile(cfg.Path, cfg.TTL), nil
	case config.RemapBackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("remap store: unknown backend %q", cfg.Backend)
	}
}
