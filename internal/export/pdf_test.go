package export_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"sketchbook/internal/domain"
	"sketchbook/internal/export"
	"sketchbook/internal/raster"
)

func snapshot(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	data, err := raster.EncodeDataURL(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

func TestPDF_WritesDocument(t *testing.T) {
	records := []domain.PageRecord{
		{ID: 1, Data: snapshot(t, 80, 106)},
		{ID: 2, Data: ""},
		{ID: 3, Data: snapshot(t, 106, 80)},
	}
	var buf bytes.Buffer
	if err := export.PDF(&buf, "nb", records); err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output is not a pdf: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestPDF_NoPages(t *testing.T) {
	var buf bytes.Buffer
	err := export.PDF(&buf, "nb", []domain.PageRecord{{ID: 1}})
	if !errors.Is(err, export.ErrNoPages) {
		t.Errorf("err = %v, want ErrNoPages", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes on failure", buf.Len())
	}
}

func TestPDF_InvalidData(t *testing.T) {
	err := export.PDF(&bytes.Buffer{}, "nb", []domain.PageRecord{{ID: 4, Data: "not an image"}})
	if !errors.Is(err, raster.ErrInvalidDataURL) {
		t.Errorf("err = %v, want ErrInvalidDataURL", err)
	}
}

func TestPixelsToMM(t *testing.T) {
	if got := export.PixelsToMM(96); got != 25.4 {
		t.Errorf("96px = %vmm, want 25.4", got)
	}
}
