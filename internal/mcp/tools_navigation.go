package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerNavigationTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the pages of the open notebook with their state and size"),
	), s.handleListPages)

	// ── switch_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("switch_page",
		mcp.WithDescription("Show the page at index. Passing the page count appends a new page when the last one has been drawn on."),
		mcp.WithNumber("index",
			mcp.Description("Zero-based page index"),
			mcp.Required(),
		),
	), s.handleSwitchPage)

	// ── next_page / prev_page ──────────────────────────
	s.mcp.AddTool(mcp.NewTool("next_page",
		mcp.WithDescription("Show the next page, creating it if the last page has been drawn on"),
	), s.handleNextPage)

	s.mcp.AddTool(mcp.NewTool("prev_page",
		mcp.WithDescription("Show the previous page"),
	), s.handlePrevPage)
}

// switchResult reports whether the shown page changed and which one is shown now.
type switchResult struct {
	Changed bool `json:"changed"`
	Active  int  `json:"active"`
	Pages   int  `json:"pages"`
}

func (s *Server) switched(changed bool) (*mcp.CallToolResult, error) {
	st := s.session.Status()
	return jsonResult(switchResult{Changed: changed, Active: st.Active, Pages: len(st.Pages)})
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Pages())
}

func (s *Server) handleSwitchPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := requireFloat(req.GetArguments(), "index")
	if err != nil {
		return nil, err
	}
	if index != float64(int(index)) {
		return nil, fmt.Errorf("index must be an integer, got %v", index)
	}
	return s.switched(s.session.SwitchTo(ctx, int(index)))
}

func (s *Server) handleNextPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.switched(s.session.Next(ctx))
}

func (s *Server) handlePrevPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.switched(s.session.Prev(ctx))
}
