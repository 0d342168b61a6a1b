package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"sketchbook/internal/canvas"
	"sketchbook/internal/client"
	"sketchbook/internal/domain"
	"sketchbook/internal/raster"
	"sketchbook/internal/server"
	"sketchbook/internal/service"
	"sketchbook/internal/storage"
)

func newGateway(t *testing.T) *client.Gateway {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv, err := server.NewServer(server.ServerConfig{
		Pages: service.NewPageService(storage.NewCanvasStore(db), &service.MockEmitter{}),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	gw, err := client.New(ts.URL + "/")
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return gw
}

func TestGateway_CRUD(t *testing.T) {
	ctx := context.Background()
	gw := newGateway(t)

	id, err := gw.CreatePage(ctx, "nb", domain.PagePayload{Data: "a", Orientation: domain.OrientationLandscape})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if err := gw.UpdatePage(ctx, "nb", id, domain.PagePayload{Data: "b"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	pages, err := gw.ListPages(ctx, "nb")
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(pages) != 1 || pages[0].ID != id || pages[0].Data != "b" || pages[0].Orientation != domain.OrientationPortrait {
		t.Errorf("pages = %+v", pages)
	}
	if other, _ := gw.ListPages(ctx, "other"); len(other) != 0 {
		t.Errorf("other notebook = %+v", other)
	}
}

func TestGateway_StatusErrors(t *testing.T) {
	ctx := context.Background()
	gw := newGateway(t)

	err := gw.UpdatePage(ctx, "nb", 404, domain.PagePayload{})
	var se *client.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Errorf("err = %v, want a 404 StatusError", err)
	}

	_, err = gw.CreatePage(ctx, "nb", domain.PagePayload{Orientation: "sideways"})
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Errorf("err = %v, want a 400 StatusError", err)
	}
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"ftp://host", "::", "localhost:8080"} {
		if _, err := client.New(raw); err == nil {
			t.Errorf("New(%q) should fail", raw)
		}
	}
}

func TestGateway_DrivesSession(t *testing.T) {
	ctx := context.Background()
	gw := newGateway(t)

	s := canvas.NewSession(canvas.SessionConfig{
		NotebookID: "remote",
		Sizes:      canvas.SizeResolver{DevicePixelRatio: 0.1},
		Window:     canvas.NewWindow(603, 796, true),
		NewSurface: raster.NewSurface,
		Gateway:    gw,
	})
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Pointer(canvas.EventDown, 5, 5)
	s.Pointer(canvas.EventUp, 20, 20)
	s.Frame(16)

	results := s.SaveAndWait(ctx)
	if len(results) != 1 || results[0].Err != nil || !results[0].Created {
		t.Fatalf("results = %+v", results)
	}
	pages, err := gw.ListPages(ctx, "remote")
	if err != nil || len(pages) != 1 || pages[0].ID != results[0].ID {
		t.Errorf("pages = %+v, err = %v", pages, err)
	}
}
