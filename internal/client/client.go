// Package client persists pages through a remote sketchbook server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sketchbook/internal/canvas"
	"sketchbook/internal/domain"
)

// maxResponseBytes bounds a list response, which carries every page's raster.
const maxResponseBytes = 64 << 20

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, strings.TrimSpace(e.Body))
}

// Gateway talks to the REST routes under /data.
type Gateway struct {
	base *url.URL
	http *http.Client
}

// New returns a Gateway for the server at baseURL.
func New(baseURL string) (*Gateway, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	return &Gateway{base: u, http: &http.Client{Timeout: 30 * time.Second}}, nil
}

type pageRequest struct {
	Data        string             `json:"data"`
	Orientation domain.Orientation `json:"orientation"`
	Notebook    string             `json:"notebook,omitempty"`
}

func (g *Gateway) ListPages(ctx context.Context, notebookID string) ([]domain.PageRecord, error) {
	var pages []domain.PageRecord
	q := url.Values{"notebook": {notebookID}}
	if err := g.do(ctx, http.MethodGet, "/data/canvas?"+q.Encode(), nil, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (g *Gateway) CreatePage(ctx context.Context, notebookID string, page domain.PagePayload) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	body := pageRequest{Data: page.Data, Orientation: page.Orientation, Notebook: notebookID}
	if err := g.do(ctx, http.MethodPost, "/data/canvas", body, &out); err != nil {
		return 0, err
	}
	if out.ID <= 0 {
		return 0, errors.New("create page: server returned no id")
	}
	return out.ID, nil
}

func (g *Gateway) UpdatePage(ctx context.Context, notebookID string, id int64, page domain.PagePayload) error {
	body := pageRequest{Data: page.Data, Orientation: page.Orientation, Notebook: notebookID}
	return g.do(ctx, http.MethodPut, "/data/canvas/"+strconv.FormatInt(id, 10), body, nil)
}

func (g *Gateway) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ canvas.Gateway = (*Gateway)(nil)
