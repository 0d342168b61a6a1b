package mcpserver

import (
	"context"
	"fmt"

	"sketchbook/internal/canvas"
	"sketchbook/internal/script"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSessionTools() {
	s.mcp.AddTool(mcp.NewTool("render_frame",
		mcp.WithDescription("Draw every queued pointer sample onto its page"),
		mcp.WithNumber("time", mcp.Description("Frame time in ms (optional, defaults to one frame after the last)")),
	), s.handleRenderFrame)

	s.mcp.AddTool(mcp.NewTool("run_script",
		mcp.WithDescription("Run a pointer script. One command per line: down X Y, move X Y, up X Y, leave, next, prev, page N, color #hex, width N, resize W H, frame [MS], save"),
		mcp.WithString("script", mcp.Description("Script source"), mcp.Required()),
	), s.handleRunScript)

	s.mcp.AddTool(mcp.NewTool("save",
		mcp.WithDescription("Persist every page that has been drawn on and wait for the backend"),
	), s.handleSave)

	s.mcp.AddTool(mcp.NewTool("status",
		mcp.WithDescription("Show the session: pages, shown page, pen, frame rate and queued input"),
	), s.handleStatus)
}

func (s *Server) handleRenderFrame(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	at, _ := getFloat(req.GetArguments(), "time")
	stats := s.session.Frame(s.nextFrame(at))
	if stats.Drawn > 0 {
		s.emitPageChanged(ctx)
	}
	return jsonResult(stats)
}

func (s *Server) handleRunScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src := req.GetString("script", "")
	if src == "" {
		return nil, fmt.Errorf("script is required")
	}
	res, err := script.Run(ctx, s.session, src)
	if err != nil {
		return nil, fmt.Errorf("run script: %w", err)
	}
	if res.Drawn > 0 {
		s.emitPageChanged(ctx)
	}
	return jsonResult(res)
}

// saveSummary reports one page's save with the error flattened to text.
type saveSummary struct {
	canvas.SaveResult
	Error string `json:"error,omitempty"`
}

func (s *Server) handleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results := s.session.SaveAndWait(ctx)
	out := make([]saveSummary, len(results))
	for i, r := range results {
		out[i] = saveSummary{SaveResult: r}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return jsonResult(out)
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Status())
}
