package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"sketchbook/internal/domain"
	"sketchbook/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Settings Persistence
// ─────────────────────────────────────────────────────────────
//
// Restores the pen and the window size between sessions. Stored as JSON
// values in app_settings, created by the storage migration.

// WindowSize holds the saved viewport.
type WindowSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SettingsService persists toolbar and window settings.
type SettingsService struct {
	db *storage.DB
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(db *storage.DB) *SettingsService {
	return &SettingsService{db: db}
}

const (
	settingToolbar = "toolbar"
	settingWindow  = "window"
	minWindowSide  = 100
)

// LoadToolbar returns the saved pen, or fallback when none is stored.
func (s *SettingsService) LoadToolbar(fallback domain.StrokeStyle) domain.StrokeStyle {
	style := fallback
	if !s.load(settingToolbar, &style) {
		return fallback
	}
	if style.Color == "" || style.LineWidth <= 0 {
		return fallback
	}
	return style
}

// SaveToolbar persists the current pen.
func (s *SettingsService) SaveToolbar(style domain.StrokeStyle) error {
	return s.save(settingToolbar, style)
}

// LoadWindowSize returns the saved viewport, or fallback when missing or too small.
func (s *SettingsService) LoadWindowSize(fallback WindowSize) WindowSize {
	var w WindowSize
	if !s.load(settingWindow, &w) {
		return fallback
	}
	if w.Width < minWindowSide || w.Height < minWindowSide {
		return fallback
	}
	return w
}

// SaveWindowSize persists the viewport.
func (s *SettingsService) SaveWindowSize(width, height float64) error {
	return s.save(settingWindow, WindowSize{Width: width, Height: height})
}

func (s *SettingsService) load(name string, v any) bool {
	if s.db == nil {
		return false
	}
	raw, err := s.db.GetSetting(name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("settings: %v", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Printf("settings: decode %s: %v", name, err)
		return false
	}
	return true
}

func (s *SettingsService) save(name string, v any) error {
	if s.db == nil {
		return fmt.Errorf("settings: no db")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.db.PutSetting(name, string(raw))
}
