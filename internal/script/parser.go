// Package script replays line-oriented pointer scripts against a session.
//
//	# a short diagonal stroke on the second page
//	next
//	color #ff0000; width 5
//	down 10 10
//	move 40 40
//	up 80 80
//	frame
//	save
package script

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d*|\.\d+|\d+)`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `;`},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(scriptLexer),
		participle.Elide("Whitespace", "LineComment", "HashComment"),
	)
)

// Script is a parsed command list.
type Script struct {
	Commands []*Command `parser:"( Newline | ';' )* ( @@ ( Newline | ';' )* )*"`
}

// Command is one statement. Exactly one field is set.
type Command struct {
	Pos lexer.Position `parser:"" json:"-"`

	Pointer *PointerCommand `parser:"  @@"`
	Leave   bool            `parser:"| @'leave'"`
	Next    bool            `parser:"| @'next'"`
	Prev    bool            `parser:"| @'prev'"`
	Page    *int            `parser:"| 'page' @Number"`
	Color   *string         `parser:"| 'color' @Color"`
	Width   *float64        `parser:"| 'width' @Number"`
	Resize  *ResizeCommand  `parser:"| @@"`
	Frame   *FrameCommand   `parser:"| @@"`
	Save    bool            `parser:"| @'save'"`
}

// PointerCommand is a pointer sample in display pixels.
type PointerCommand struct {
	Kind string  `parser:"@( 'down' | 'move' | 'up' )"`
	X    float64 `parser:"@Number"`
	Y    float64 `parser:"@Number"`
}

// ResizeCommand changes the window size.
type ResizeCommand struct {
	Width  float64 `parser:"'resize' @Number"`
	Height float64 `parser:"@Number"`
}

// FrameCommand renders pending input, at At ms when given.
type FrameCommand struct {
	Keyword string   `parser:"@'frame'"`
	At      *float64 `parser:"@Number?"`
}

// Name returns the command keyword.
func (c *Command) Name() string {
	switch {
	case c.Pointer != nil:
		return c.Pointer.Kind
	case c.Leave:
		return "leave"
	case c.Next:
		return "next"
	case c.Prev:
		return "prev"
	case c.Page != nil:
		return "page"
	case c.Color != nil:
		return "color"
	case c.Width != nil:
		return "width"
	case c.Resize != nil:
		return "resize"
	case c.Frame != nil:
		return "frame"
	case c.Save:
		return "save"
	default:
		return "unknown"
	}
}

// Parse reads a script.
func Parse(r io.Reader) (*Script, error) {
	s, err := scriptParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return s, nil
}

// ParseString parses a script held in memory.
func ParseString(src string) (*Script, error) {
	s, err := scriptParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return s, nil
}
