// Package config loads the sketchbook settings file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sketchbook/internal/domain"
	"sketchbook/internal/storage"
)

// StorageConfig selects the page backend. Backend is sqlite, postgres, mysql
// or mongodb; the endpoint is ignored for sqlite.
type StorageConfig struct {
	Backend string `json:"backend"`
	storage.Endpoint
}

// DeviceConfig describes the display pages are sized for.
type DeviceConfig struct {
	DevicePixelRatio float64 `json:"devicePixelRatio"`
	HeaderHeight     float64 `json:"headerHeight"`
}

// WindowConfig is the initial viewport of headless sessions.
type WindowConfig struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	MediaQueries bool    `json:"mediaQueries"`
}

// Config is the settings file.
type Config struct {
	DataDir  string             `json:"dataDir"`
	Listen   string             `json:"listen"`
	Server   string             `json:"server"` // REST base URL; empty uses the local store
	Notebook string             `json:"notebook"`
	Storage  StorageConfig      `json:"storage"`
	Device   DeviceConfig       `json:"device"`
	Window   WindowConfig       `json:"window"`
	Autosave string             `json:"autosave"` // cron spec, empty disables
	Toolbar  domain.StrokeStyle `json:"toolbar"`
}

// DefaultDataDir is ~/.local/share/sketchbook.
func DefaultDataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "sketchbook")
}

// DefaultPath is config.json inside the default data dir.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "config.json")
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:  DefaultDataDir(),
		Listen:   "127.0.0.1:8080",
		Notebook: "default",
		Storage:  StorageConfig{Backend: "sqlite"},
		Device: DeviceConfig{
			DevicePixelRatio: 1.325,
			HeaderHeight:     0,
		},
		Window: WindowConfig{
			Width:        603,
			Height:       796,
			MediaQueries: true,
		},
		Autosave: "@every 30s",
		Toolbar:  domain.DefaultStrokeStyle,
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Toolbar.Validate(); err != nil {
		return Default(), fmt.Errorf("parse config %s: toolbar: %w", path, err)
	}
	return cfg, nil
}

// Write stores cfg at path as indented JSON.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// DBPath is the SQLite file inside the data dir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "sketchbook.db")
}

func (c *Config) normalize() {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.Notebook == "" {
		c.Notebook = def.Notebook
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Device.DevicePixelRatio <= 0 {
		c.Device.DevicePixelRatio = def.Device.DevicePixelRatio
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window.Width, c.Window.Height = def.Window.Width, def.Window.Height
	}
	if c.Toolbar.Color == "" {
		c.Toolbar.Color = def.Toolbar.Color
	}
	if c.Toolbar.LineWidth <= 0 {
		c.Toolbar.LineWidth = def.Toolbar.LineWidth
	}
}
