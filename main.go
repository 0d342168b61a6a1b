package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	sketchApp "sketchbook/internal/app"
	"sketchbook/internal/config"
)

const usage = `usage: sketchbook [flags] <command> [args]

commands:
  serve                       serve the page store over HTTP
  mcp                         run an MCP server on stdin/stdout
  replay <script>             run a drawing script and save the pages
  export <notebook> <out.pdf> write a notebook to a PDF

flags:
`

func main() {
	configPath := flag.String("config", config.DefaultPath(), "settings file")
	notebook := flag.String("notebook", "", "notebook to open (overrides the settings file)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := sketchApp.New(sketchApp.Options{
		ConfigPath: *configPath,
		Notebook:   *notebook,
	})
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	if err := run(ctx, app, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Printf("Error: %v", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, app *sketchApp.App, cmd string, args []string) error {
	switch cmd {
	case "serve":
		return app.Serve(ctx)
	case "mcp":
		log.Println("[MCP] Starting standalone stdio server...")
		return app.ServeMCP(ctx)
	case "replay":
		if len(args) != 1 {
			return errors.New("replay takes one script path")
		}
		res, err := app.Replay(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%d commands, %d frames, %d points drawn, %d pages saved\n",
			res.Commands, res.Frames, res.Drawn, len(res.Saves))
		return nil
	case "export":
		if len(args) != 2 {
			return errors.New("export takes a notebook and an output path")
		}
		return app.Export(ctx, args[0], args[1])
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
