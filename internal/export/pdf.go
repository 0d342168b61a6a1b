// Package export renders a notebook's stored pages into documents.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"sketchbook/internal/domain"
	"sketchbook/internal/raster"
)

// ScreenDPI maps raster pixels to physical page size.
const ScreenDPI = 96.0

const mmPerInch = 25.4

// ErrNoPages is returned when a notebook has nothing to export.
var ErrNoPages = errors.New("export: no pages")

// pageImage is a decoded page with its size in millimetres.
type pageImage struct {
	img    image.Image
	width  float64
	height float64
}

// PixelsToMM converts a pixel length at ScreenDPI into millimetres.
func PixelsToMM(px int) float64 {
	return float64(px) * mmPerInch / ScreenDPI
}

// PDF writes one PDF page per record, each sized to its raster.
func PDF(w io.Writer, title string, records []domain.PageRecord) error {
	pages, err := decodePages(records)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, pages[0].width, pages[0].height, nil)
	writer.SetInfo(title, "", "", "", "sketchbook")
	dpmm := ScreenDPI / mmPerInch
	for i, p := range pages {
		if i > 0 {
			writer.NewPage(p.width, p.height)
		}
		c := canvas.New(p.width, p.height)
		ctx := canvas.NewContext(c)
		ctx.DrawImage(0, 0, p.img, canvas.DPMM(dpmm))
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func decodePages(records []domain.PageRecord) ([]pageImage, error) {
	pages := make([]pageImage, 0, len(records))
	for _, rec := range records {
		if rec.Data == "" {
			continue
		}
		img, err := raster.DecodeDataURL(rec.Data)
		if err != nil {
			return nil, fmt.Errorf("export page %d: %w", rec.ID, err)
		}
		b := img.Bounds()
		if b.Dx() == 0 || b.Dy() == 0 {
			continue
		}
		pages = append(pages, pageImage{
			img:    img,
			width:  PixelsToMM(b.Dx()),
			height: PixelsToMM(b.Dy()),
		})
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return pages, nil
}
