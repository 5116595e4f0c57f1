// Package config loads runtime settings from defaults, an optional YAML file
// and TUBTAKES_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddr         = ":8080"
	defaultCatalogPath  = "json/gfuel_flavors.json"
	defaultImagesDir    = "images"
	defaultRankingsPath = "data/rankings.json"
	defaultRemapPath    = "data/remap.json"
	defaultRemapTTL     = 24 * time.Hour
	defaultRemapSlots   = 10000
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	defaultLogLevel     = "info"
	defaultFullWeight   = 5
)

const (
	RemapBackendMemory = "memory"
	RemapBackendFile   = "file"
	RemapBackendNone   = "none"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Remap    RemapConfig    `yaml:"remap"`
	Rankings RankingsConfig `yaml:"rankings"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// PublicURL prefixes share links; empty means links are relative.
	PublicURL    string        `yaml:"public_url"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type CatalogConfig struct {
	Path      string `yaml:"path"`
	ImagesDir string `yaml:"images_dir"`
}

// RemapConfig selects the short-code side channel.
type RemapConfig struct {
	Backend  string        `yaml:"backend"`
	Path     string        `yaml:"path"`
	TTL      time.Duration `yaml:"ttl"`
	MaxSlots int           `yaml:"max_slots"`
}

type RankingsConfig struct {
	Path string `yaml:"path"`
	// FullWeight is the submission count at which a flavor score stops
	// being damped.
	FullWeight int `yaml:"full_weight"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         defaultAddr,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		Catalog: CatalogConfig{
			Path:      defaultCatalogPath,
			ImagesDir: defaultImagesDir,
		},
		Remap: RemapConfig{
			Backend:  RemapBackendMemory,
			Path:     defaultRemapPath,
			TTL:      defaultRemapTTL,
			MaxSlots: defaultRemapSlots,
		},
		Rankings: RankingsConfig{
			Path:       defaultRankingsPath,
			FullWeight: defaultFullWeight,
		},
		Log: LogConfig{Level: defaultLogLevel},
	}
}

// Load reads path (optional) over the defaults, then applies the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("TUBTAKES_ADDR", &c.Server.Addr)
	str("TUBTAKES_PUBLIC_URL", &c.Server.PublicURL)
	str("TUBTAKES_CATALOG", &c.Catalog.Path)
	str("TUBTAKES_IMAGES_DIR", &c.Catalog.ImagesDir)
	str("TUBTAKES_REMAP_BACKEND", &c.Remap.Backend)
	str("TUBTAKES_REMAP_PATH", &c.Remap.Path)
	str("TUBTAKES_RANKINGS", &c.Rankings.Path)
	str("LOG_LEVEL", &c.Log.Level)
	str("TUBTAKES_LOG_LEVEL", &c.Log.Level)

	return errors.Join(
		dur("TUBTAKES_REMAP_TTL", &c.Remap.TTL),
		num("TUBTAKES_REMAP_MAX_SLOTS", &c.Remap.MaxSlots),
		num("TUBTAKES_FULL_WEIGHT", &c.Rankings.FullWeight),
		dur("TUBTAKES_READ_TIMEOUT", &c.Server.ReadTimeout),
		dur("TUBTAKES_WRITE_TIMEOUT", &c.Server.WriteTimeout),
	)
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Remap.Backend {
	case RemapBackendMemory, RemapBackendNone:
	case RemapBackendFile:
		if c.Remap.Path == "" {
			errs = append(errs, errors.New("remap.path is required for the file backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("remap.backend %q is not one of memory|file|none", c.Remap.Backend))
	}
	if c.Remap.TTL < 0 {
		errs = append(errs, errors.New("remap.ttl must not be negative"))
	}
	if c.Remap.MaxSlots < 0 {
		errs = append(errs, errors.New("remap.max_slots must not be negative"))
	}
	if c.Rankings.FullWeight < 1 {
		errs = append(errs, errors.New("rankings.full_weight must be at least 1"))
	}
	return errors.Join(errs...)
}
