package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// PNGPrefix starts every snapshot this package produces.
const PNGPrefix = "data:image/png;base64,"

// ErrInvalidDataURL is returned for snapshots that are not base64 image data URLs.
var ErrInvalidDataURL = errors.New("invalid image data url")

// EncodeDataURL serializes img as a PNG data URL.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return PNGPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURLBytes returns the raw image bytes and media type of a data URL.
func DecodeDataURLBytes(data string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(data, "data:")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}
	mediaType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || !strings.HasPrefix(mediaType, "image/") {
		return nil, "", fmt.Errorf("%w: unsupported header %q", ErrInvalidDataURL, meta)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return raw, mediaType, nil
}

// DecodeDataURL parses a PNG or JPEG data URL.
func DecodeDataURL(data string) (image.Image, error) {
	raw, _, err := DecodeDataURLBytes(data)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// PNGBytes converts a snapshot into a PNG file body.
func PNGBytes(data string) ([]byte, error) {
	raw, mediaType, err := DecodeDataURLBytes(data)
	if err != nil {
		return nil, err
	}
	if mediaType == "image/png" {
		return raw, nil
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit scales img to exactly width×height. Images already that size are
// returned unchanged.
func Fit(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
