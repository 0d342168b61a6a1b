// Package server exposes notebook pages over REST.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sketchbook/internal/domain"
	"sketchbook/internal/export"
	"sketchbook/internal/raster"
	"sketchbook/internal/service"
	"sketchbook/internal/storage"
)

// maxBodyBytes bounds a page upload. Snapshots of large landscape pages at
// high pixel ratios run to a few megabytes.
const maxBodyBytes = 32 << 20

// Pages is the page backend served over HTTP. *service.PageService satisfies it.
type Pages interface {
	ListPages(ctx context.Context, notebookID string) ([]domain.PageRecord, error)
	GetPage(ctx context.Context, id int64) (*domain.PageRecord, error)
	CreatePage(ctx context.Context, notebookID string, page domain.PagePayload) (int64, error)
	UpdatePage(ctx context.Context, notebookID string, id int64, page domain.PagePayload) error
	DeletePage(ctx context.Context, id int64) error
}

type ServerConfig struct {
	Pages           Pages
	DefaultNotebook string
}

type Server struct {
	cfg ServerConfig
}

// PageRequest is the body of create and update calls.
type PageRequest struct {
	Data        string             `json:"data"`
	Orientation domain.Orientation `json:"orientation"`
	Notebook    string             `json:"notebook,omitempty"`
}

// CreatedResponse is returned by create.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Pages == nil {
		return nil, errors.New("server: missing page backend")
	}
	cfg.DefaultNotebook = strings.TrimSpace(cfg.DefaultNotebook)
	if cfg.DefaultNotebook == "" {
		cfg.DefaultNotebook = "default"
	}
	return &Server{cfg: cfg}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /data/canvas", s.handleList)
	mux.HandleFunc("POST /data/canvas", s.handleCreate)
	mux.HandleFunc("PUT /data/canvas/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /data/canvas/{id}", s.handleDelete)
	mux.HandleFunc("GET /data/canvas/{id}/image.png", s.handleImage)
	mux.HandleFunc("GET /data/notebook/{notebook}/export.pdf", s.handleExport)
	return withSecurityHeaders(mux)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server: shutdown: %v", err)
		}
	}()
	log.Printf("server: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	pages, err := s.cfg.Pages.ListPages(r.Context(), s.notebook(r.URL.Query().Get("notebook")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := decodePage(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := s.cfg.Pages.CreatePage(r.Context(), s.notebook(req.Notebook), req.payload())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pageID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := decodePage(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.cfg.Pages.UpdatePage(r.Context(), req.Notebook, id, req.payload()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pageID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.cfg.Pages.DeletePage(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	id, err := pageID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := s.cfg.Pages.GetPage(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if page.Data == "" {
		writeError(w, fmt.Errorf("page %d has no image: %w", id, storage.ErrNotFound))
		return
	}
	body, err := raster.PNGBytes(page.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	notebook := r.PathValue("notebook")
	pages, err := s.cfg.Pages.ListPages(r.Context(), notebook)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", notebook+".pdf"))
	if err := export.PDF(w, notebook, pages); err != nil {
		w.Header().Del("Content-Disposition")
		writeError(w, err)
	}
}

// ── Helpers ────────────────────────────────────────────────

var errBadRequest = errors.New("bad request")

func (s *Server) notebook(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return s.cfg.DefaultNotebook
}

func (p PageRequest) payload() domain.PagePayload {
	return domain.PagePayload{Data: p.Data, Orientation: p.Orientation}
}

func pageID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: page id %q", errBadRequest, r.PathValue("id"))
	}
	return id, nil
}

func decodePage(w http.ResponseWriter, r *http.Request) (PageRequest, error) {
	var req PageRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return req, fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	return req, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidOrientation),
		errors.Is(err, raster.ErrInvalidDataURL):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, export.ErrNoPages):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotebookMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.Printf("server: %v", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}
