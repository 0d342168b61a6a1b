package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("sketch",
		mcp.WithPromptDescription("Guide through sketching a subject on a fresh page"),
		mcp.WithArgument("subject",
			mcp.ArgumentDescription("What to draw"),
			mcp.RequiredArgument(),
		),
	), s.handleSketchPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("review_notebook",
		mcp.WithPromptDescription("Look through every page of the notebook and describe it"),
	), s.handleReviewPrompt)
}

func (s *Server) handleSketchPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	subject := req.Params.Arguments["subject"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Sketch: %s", subject),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Sketch "%s" in the notebook. Follow these steps:

1. Call status to see the page size and the pen
2. If the shown page has been drawn on, call next_page to start a fresh one
3. Pick a pen with set_stroke_style
4. Draw the outline with draw_stroke, one call per continuous line, or batch many lines with run_script
5. Read sketchbook://page/{index}/png to check the result and correct it
6. Call save when done

Coordinates are display pixels from the top-left corner of the page.`, subject),
				},
			},
		},
	}, nil
}

func (s *Server) handleReviewPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	pages := s.session.Pages()
	return &mcp.GetPromptResult{
		Description: "Review the notebook",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`The notebook has %d pages. Read sketchbook://pages, then read sketchbook://page/{index}/png for each page that has data and describe what is drawn on it.`, len(pages)),
				},
			},
		},
	}, nil
}
