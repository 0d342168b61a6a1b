package app

import (
	"context"
	"errors"
	"log"

	"sketchbook/internal/canvas"
	mcpserver "sketchbook/internal/mcp"
)

// ServeMCP runs the session as an MCP server on stdin/stdout until the client
// disconnects or ctx is cancelled. Queued pointer samples are drawn by a 60 Hz
// frame loop. Pages are saved on the way out.
func (a *App) ServeMCP(ctx context.Context) error {
	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	ctx, stopFrames := context.WithCancel(ctx)
	defer stopFrames()
	sched := a.StartFrames(ctx)

	srv := mcpserver.New(mcpserver.Deps{
		Emitter: a.emitter,
		Session: a.session,
		Clock:   sched.Now,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case <-ctx.Done():
		log.Println("[MCP] Shutting down...")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// StartFrames drives the session's render loop from a ticker until ctx is done.
func (a *App) StartFrames(ctx context.Context) *canvas.TickerScheduler {
	sched := canvas.NewTickerScheduler(canvas.DefaultFrameInterval)
	a.session.Start(ctx, sched)
	go sched.Run(ctx)
	return sched
}
