package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"sketchbook/internal/export"
	"sketchbook/internal/script"
	"sketchbook/internal/server"
)

// ── serve ──────────────────────────────────────────────────

// Serve exposes the local page store over REST until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	if a.pages == nil {
		return errors.New("serve: pages are stored on a remote server; clear \"server\" in the settings to serve locally")
	}
	srv, err := server.NewServer(server.ServerConfig{
		Pages:           a.pages,
		DefaultNotebook: a.cfg.Notebook,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, a.cfg.Listen)
}

// ── replay ─────────────────────────────────────────────────

// Replay runs the script at path against the notebook and saves the result.
func (a *App) Replay(ctx context.Context, path string) (script.Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return script.Result{}, fmt.Errorf("read script: %w", err)
	}
	if err := a.Startup(ctx); err != nil {
		return script.Result{}, err
	}
	defer a.Shutdown(context.Background())

	res, err := script.Run(ctx, a.session, string(src))
	if err != nil {
		return res, err
	}
	for _, r := range a.session.SaveAndWait(ctx) {
		res.Saves = append(res.Saves, r)
		if r.Err != nil {
			res.Failed++
		}
	}
	if res.Failed > 0 {
		return res, fmt.Errorf("replay: %d pages failed to save", res.Failed)
	}
	return res, nil
}

// ── export ─────────────────────────────────────────────────

// Export writes every stored page of notebook to a PDF at out.
func (a *App) Export(ctx context.Context, notebook, out string) error {
	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	pages, err := a.ListPages(ctx, notebook)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.PDF(&buf, notebook, pages); err != nil {
		return err
	}
	if err := writeFile(out, &buf); err != nil {
		return err
	}
	log.Printf("app: exported %d pages of %s to %s", len(pages), notebook, out)
	return nil
}

func writeFile(path string, r io.Reader) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
