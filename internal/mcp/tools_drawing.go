package mcpserver

import (
	"context"
	"fmt"

	"sketchbook/internal/canvas"
	"sketchbook/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDrawingTools() {
	s.mcp.AddTool(mcp.NewTool("pointer",
		mcp.WithDescription("Queue one pointer sample on the shown page. Samples are drawn by the next frame: the running frame loop or render_frame."),
		mcp.WithString("kind", mcp.Description("Pointer phase"), mcp.Enum("down", "move", "up"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("X in display pixels"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Y in display pixels"), mcp.Required()),
	), s.handlePointer)

	s.mcp.AddTool(mcp.NewTool("draw_stroke",
		mcp.WithDescription("Draw a whole stroke on the shown page and render it. The first point presses, the last lifts."),
		mcp.WithString("points", mcp.Description(`JSON array of [x, y] pairs in display pixels, e.g. [[10,10],[40,40]]`), mcp.Required()),
		mcp.WithString("color", mcp.Description("Optional hex color applied before drawing")),
		mcp.WithNumber("width", mcp.Description("Optional line width applied before drawing")),
	), s.handleDrawStroke)

	s.mcp.AddTool(mcp.NewTool("set_stroke_style",
		mcp.WithDescription("Change the pen. Applies to segments drawn from now on."),
		mcp.WithString("color", mcp.Description("Hex color such as #1e1e1e")),
		mcp.WithNumber("width", mcp.Description("Line width in page pixels")),
	), s.handleSetStrokeStyle)
}

// ── Handlers ────────────────────────────────────────────────

type pointerResult struct {
	Queued bool `json:"queued"`
	Down   bool `json:"pointerDown"`
}

func (s *Server) handlePointer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, err := canvas.ParseEventKind(req.GetString("kind", ""))
	if err != nil {
		return nil, err
	}
	x, err := requireFloat(args, "x")
	if err != nil {
		return nil, err
	}
	y, err := requireFloat(args, "y")
	if err != nil {
		return nil, err
	}
	queued := s.session.Pointer(kind, x, y)
	return jsonResult(pointerResult{Queued: queued, Down: s.session.Status().PointerDown})
}

func (s *Server) handleDrawStroke(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pts, err := parsePoints(args["points"])
	if err != nil {
		return nil, err
	}
	if err := s.applyStyle(args); err != nil {
		return nil, err
	}

	// end any stroke left open by the pointer tool
	s.session.Leave()
	first, last := pts[0], pts[len(pts)-1]
	s.session.Pointer(canvas.EventDown, first[0], first[1])
	for i := 1; i < len(pts)-1; i++ {
		s.session.Pointer(canvas.EventMove, pts[i][0], pts[i][1])
	}
	s.session.Pointer(canvas.EventUp, last[0], last[1])

	stats := s.session.Frame(s.nextFrame(0))
	s.emitPageChanged(ctx)
	return jsonResult(stats)
}

func (s *Server) handleSetStrokeStyle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	if _, ok := args["color"]; !ok {
		if _, ok := getFloat(args, "width"); !ok {
			return nil, fmt.Errorf("color or width is required")
		}
	}
	if err := s.applyStyle(args); err != nil {
		return nil, err
	}
	return jsonResult(s.session.Toolbar().Style())
}

// applyStyle sets the optional color and width arguments on the toolbar.
func (s *Server) applyStyle(args map[string]any) error {
	var color string
	if raw, ok := args["color"]; ok {
		c, _ := raw.(string)
		if !domain.ValidColor(c) {
			return fmt.Errorf("color must be a hex color, got %v", raw)
		}
		color = c
	}
	width, hasWidth := getFloat(args, "width")
	if hasWidth && width <= 0 {
		return fmt.Errorf("width must be positive, got %v", width)
	}

	tb := s.session.Toolbar()
	if color != "" {
		tb.SetColor(color)
	}
	if hasWidth {
		tb.SetLineWidth(width)
	}
	return nil
}
