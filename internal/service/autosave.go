package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"sketchbook/internal/canvas"
)

// ─────────────────────────────────────────────────────────────
// Autosaver: periodic and on-shutdown saves
// ─────────────────────────────────────────────────────────────

// Saver is the part of canvas.Session the autosaver drives.
type Saver interface {
	NotebookID() string
	SaveAndWait(ctx context.Context) []canvas.SaveResult
}

// Autosaver saves a session on a cron schedule and once more when stopped,
// the way a page unload would. Runs never overlap.
type Autosaver struct {
	saver   Saver
	spec    string
	emitter EventEmitter

	mu        sync.Mutex
	cronSched *cron.Cron
	running   runningGuard
}

// Event emitted after every autosave run.
const EventAutosaveCompleted = "autosave:completed"

// NewAutosaver creates an Autosaver; an empty spec only saves on Stop.
func NewAutosaver(saver Saver, spec string, emitter EventEmitter) *Autosaver {
	if emitter == nil {
		emitter = LogEmitter{}
	}
	return &Autosaver{saver: saver, spec: spec, emitter: emitter}
}

// Start schedules the periodic save.
func (a *Autosaver) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cronSched != nil || a.spec == "" {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(a.spec, func() { a.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("autosave: invalid schedule %q: %w", a.spec, err)
	}
	c.Start()
	a.cronSched = c
	log.Printf("autosave: notebook %s scheduled %q", a.saver.NotebookID(), a.spec)
	return nil
}

// RunOnce saves now unless a save is already running. It reports whether it
// ran and how many pages failed.
func (a *Autosaver) RunOnce(ctx context.Context) (ran bool, failed int) {
	key := a.saver.NotebookID()
	if !a.running.TryLock(key) {
		log.Printf("autosave: notebook %s still saving, skipped", key)
		return false, 0
	}
	defer a.running.Unlock(key)

	results := a.saver.SaveAndWait(ctx)
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if len(results) > 0 {
		log.Printf("autosave: notebook %s saved %d page(s), %d failed", key, len(results), failed)
	}
	a.emitter.Emit(ctx, EventAutosaveCompleted, map[string]any{
		"notebookId": key,
		"pages":      len(results),
		"failed":     failed,
	})
	return true, failed
}

// Stop cancels the schedule, waits for a running save and performs the final one.
func (a *Autosaver) Stop(ctx context.Context) {
	a.mu.Lock()
	c := a.cronSched
	a.cronSched = nil
	a.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	a.running.WaitAll(ctx)
	a.RunOnce(ctx)
}
