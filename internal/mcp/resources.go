package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"sketchbook/internal/raster"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	pagesURI      = "sketchbook://pages"
	pageURIPrefix = "sketchbook://page/"
	pageURISuffix = "/png"
)

func (s *Server) registerResources() {
	// ── sketchbook://pages ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		pagesURI,
		"Pages of the open notebook",
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	// ── sketchbook://page/{index}/png ──────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageURIPrefix+"{index}"+pageURISuffix,
			"Raster of a page",
			mcp.WithTemplateMIMEType("image/png"),
		),
		s.handlePageImageResource,
	)
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.session.Pages(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal pages: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      pagesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageImageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	index, err := pageIndexFromURI(uri)
	if err != nil {
		return nil, err
	}
	data, err := s.session.PageData(index)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, fmt.Errorf("page %d has no raster yet", index)
	}
	body, err := raster.PNGBytes(data)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", index, err)
	}
	return []mcp.ResourceContents{
		mcp.BlobResourceContents{
			URI:      uri,
			MIMEType: "image/png",
			Blob:     base64.StdEncoding.EncodeToString(body),
		},
	}, nil
}

// pageIndexFromURI extracts the index from "sketchbook://page/{index}/png".
func pageIndexFromURI(uri string) (int, error) {
	rest, ok := strings.CutPrefix(uri, pageURIPrefix)
	if ok {
		rest, ok = strings.CutSuffix(rest, pageURISuffix)
	}
	if !ok {
		return 0, fmt.Errorf("could not extract page index from URI: %s", uri)
	}
	index, err := strconv.Atoi(rest)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid page index %q in URI: %s", rest, uri)
	}
	return index, nil
}
