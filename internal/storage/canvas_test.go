package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"sketchbook/internal/domain"
	"sketchbook/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "sketchbook.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─────────────────────────────────────────────────────────────
// CanvasStore (SQLite)
// ─────────────────────────────────────────────────────────────

func TestCanvasStore_CreateAndList(t *testing.T) {
	s := storage.NewCanvasStore(openTestDB(t))

	pages := []*domain.PageRecord{
		{NotebookID: "nb", Orientation: domain.OrientationPortrait, Data: "one"},
		{NotebookID: "other", Orientation: domain.OrientationPortrait, Data: "elsewhere"},
		{NotebookID: "nb", Orientation: domain.OrientationLandscape, Data: "two"},
	}
	for _, p := range pages {
		if err := s.CreatePage(p); err != nil {
			t.Fatalf("CreatePage: %v", err)
		}
		if p.ID == 0 || p.CreatedAt.IsZero() {
			t.Fatalf("CreatePage did not fill id/timestamps: %+v", p)
		}
	}
	if pages[0].ID >= pages[2].ID {
		t.Errorf("ids should increase: %d, %d", pages[0].ID, pages[2].ID)
	}

	got, err := s.ListPages("nb")
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	want := []domain.PageRecord{*pages[0], *pages[2]}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(domain.PageRecord{}, "CreatedAt", "UpdatedAt")); diff != "" {
		t.Errorf("ListPages (-want +got):\n%s", diff)
	}

	empty, err := s.ListPages("missing")
	if err != nil {
		t.Fatalf("ListPages(missing): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no pages, got %d", len(empty))
	}
}

func TestCanvasStore_UpdateAndGet(t *testing.T) {
	s := storage.NewCanvasStore(openTestDB(t))
	p := &domain.PageRecord{NotebookID: "nb", Orientation: domain.OrientationPortrait, Data: "before"}
	if err := s.CreatePage(p); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	p.Data = "after"
	p.Orientation = domain.OrientationLandscape
	if err := s.UpdatePage(p); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	got, err := s.GetPage(p.ID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got.Data != "after" || got.Orientation != domain.OrientationLandscape || got.NotebookID != "nb" {
		t.Errorf("unexpected page: %+v", got)
	}
}

func TestCanvasStore_NotFound(t *testing.T) {
	s := storage.NewCanvasStore(openTestDB(t))

	if _, err := s.GetPage(99); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetPage: err = %v, want ErrNotFound", err)
	}
	if err := s.UpdatePage(&domain.PageRecord{ID: 99, Data: "x"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdatePage: err = %v, want ErrNotFound", err)
	}
	if err := s.DeletePage(99); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeletePage: err = %v, want ErrNotFound", err)
	}
}

func TestCanvasStore_Delete(t *testing.T) {
	s := storage.NewCanvasStore(openTestDB(t))
	p := &domain.PageRecord{NotebookID: "nb", Orientation: domain.OrientationPortrait}
	if err := s.CreatePage(p); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if err := s.DeletePage(p.ID); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if _, err := s.GetPage(p.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("page should be gone, err = %v", err)
	}
}

func TestDB_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	db, err := storage.New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := storage.NewCanvasStore(db).CreatePage(&domain.PageRecord{NotebookID: "nb", Orientation: domain.OrientationPortrait}); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	db.Close()

	db, err = storage.New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	pages, err := storage.NewCanvasStore(db).ListPages("nb")
	if err != nil || len(pages) != 1 {
		t.Errorf("after reopen: pages=%d err=%v", len(pages), err)
	}
}

// ─────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────

func TestSettings_PutGet(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetSetting("toolbar"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetSetting on empty db: %v", err)
	}
	if err := db.PutSetting("toolbar", "a"); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}
	if err := db.PutSetting("toolbar", "b"); err != nil {
		t.Fatalf("PutSetting overwrite: %v", err)
	}
	got, err := db.GetSetting("toolbar")
	if err != nil || got != "b" {
		t.Errorf("GetSetting = %q, %v; want b", got, err)
	}
}
