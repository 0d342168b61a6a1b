package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"sketchbook/internal/canvas"
	"sketchbook/internal/script"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// EventEmitter receives notifications about changes made through MCP.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Session is the open notebook the tools act on. *canvas.Session satisfies it.
type Session interface {
	script.Session
	Pages() []canvas.PageInfo
	PageData(index int) (string, error)
}

// Server is the MCP server for a sketchbook session.
// It exposes tools, resources, and prompts so AI agents can draw on the pages.
type Server struct {
	mcp     *server.MCPServer
	emitter EventEmitter
	session Session

	// clock is the frame time (ms) handed to render_frame when none is given.
	// With a live frame loop it follows now.
	mu    sync.Mutex
	clock float64
	now   func() float64
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter EventEmitter
	Session Session
	// Clock is the frame clock (ms) of a running frame loop. Nil means frames
	// only happen on request and the clock steps at 60 Hz.
	Clock func() float64
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		emitter: deps.Emitter,
		session: deps.Session,
		now:     deps.Clock,
	}
	if s.emitter == nil {
		s.emitter = noopEmitter{}
	}

	s.mcp = server.NewMCPServer(
		"sketchbook-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerNavigationTools()
	s.registerDrawingTools()
	s.registerSessionTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, string, any) {}

// emitPageChanged notifies listeners that a page was drawn on through MCP.
func (s *Server) emitPageChanged(ctx context.Context) {
	st := s.session.Status()
	s.emitter.Emit(ctx, "mcp:page-changed", map[string]int{"index": st.Active})
}

// nextFrame jumps to at when positive. Otherwise it reads the live clock, or
// advances by one 60 Hz frame when there is none.
func (s *Server) nextFrame(at float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case at > 0:
		s.clock = at
	case s.now != nil:
		s.clock = s.now()
	default:
		s.clock += 1000.0 / 60
	}
	return s.clock
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}
