package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"sketchbook/internal/canvas"
	"sketchbook/internal/client"
	"sketchbook/internal/config"
	"sketchbook/internal/domain"
	"sketchbook/internal/raster"
	"sketchbook/internal/secret"
	"sketchbook/internal/service"
	"sketchbook/internal/storage"
)

// storagePasswordKey is the secret holding the password of a server backend.
const storagePasswordKey = "storage-password"

// App wires configuration, storage, services and the drawing session.
type App struct {
	cfgPath string
	cfg     config.Config
	secrets secret.SecretStore
	emitter service.EventEmitter

	// local holds device settings, and the pages too for the sqlite backend.
	local    *storage.DB
	remoteDB *storage.DB
	mongo    *storage.MongoCanvasStore

	pages    *service.PageService
	settings *service.SettingsService
	gateway  canvas.Gateway
	session  *canvas.Session
	autosave *service.Autosaver
	watcher  *config.Watcher

	mu      sync.Mutex
	started bool
}

// Options configures New. Zero fields use the defaults.
type Options struct {
	ConfigPath string
	Notebook   string
	Emitter    service.EventEmitter
	Secrets    secret.SecretStore
}

// New loads the settings file. Nothing is opened until Startup.
func New(opts Options) (*App, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath()
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Notebook != "" {
		cfg.Notebook = opts.Notebook
	}
	if opts.Emitter == nil {
		opts.Emitter = service.LogEmitter{}
	}
	if opts.Secrets == nil {
		opts.Secrets = secret.Default()
	}
	return &App{
		cfgPath: opts.ConfigPath,
		cfg:     cfg,
		secrets: opts.Secrets,
		emitter: opts.Emitter,
	}, nil
}

// Startup opens storage, loads the notebook and starts autosave and the
// settings watcher. A notebook that fails to load still opens with one blank
// page; the load error is logged.
func (a *App) Startup(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return nil
	}

	local, err := storage.New(a.cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open local database: %w", err)
	}
	a.local = local
	a.settings = service.NewSettingsService(local)

	if err := a.openPages(); err != nil {
		a.closeStores()
		return err
	}

	toolbar := canvas.NewToolbar(a.settings.LoadToolbar(a.cfg.Toolbar))
	win := a.settings.LoadWindowSize(service.WindowSize{Width: a.cfg.Window.Width, Height: a.cfg.Window.Height})
	a.session = canvas.NewSession(canvas.SessionConfig{
		NotebookID: a.cfg.Notebook,
		Sizes: canvas.SizeResolver{
			DevicePixelRatio: a.cfg.Device.DevicePixelRatio,
			HeaderHeight:     a.cfg.Device.HeaderHeight,
		},
		Window:     canvas.NewWindow(win.Width, win.Height, a.cfg.Window.MediaQueries),
		NewSurface: raster.NewSurface,
		Toolbar:    toolbar,
		Gateway:    a.gateway,
		Notifier:   a.emitter,
	})
	if err := a.session.Load(ctx); err != nil {
		log.Printf("app: %v", err)
	}

	a.autosave = service.NewAutosaver(a.session, a.cfg.Autosave, a.emitter)
	if err := a.autosave.Start(ctx); err != nil {
		log.Printf("app: %v", err)
	}

	watcher, err := config.Watch(a.cfgPath, a.applyConfig)
	if err != nil {
		log.Printf("app: settings will not reload: %v", err)
	} else {
		a.watcher = watcher
	}

	a.started = true
	log.Printf("app: notebook %s open (%s backend)", a.cfg.Notebook, a.backendName())
	return nil
}

// Shutdown saves every drawn-on page, remembers the pen and the window, and
// closes storage.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return
	}
	a.started = false

	if a.watcher != nil {
		a.watcher.Close()
	}
	a.autosave.Stop(ctx)
	a.session.WaitSaves()

	if err := a.settings.SaveToolbar(a.session.Toolbar().Style()); err != nil {
		log.Printf("app: save toolbar: %v", err)
	}
	if err := a.SaveWindowSize(); err != nil {
		log.Printf("app: save window size: %v", err)
	}
	a.closeStores()
}

// Session returns the open notebook.
func (a *App) Session() *canvas.Session { return a.session }

// Pages returns the local page service, or nil when pages live on a remote server.
func (a *App) Pages() *service.PageService { return a.pages }

// Config returns the settings in effect.
func (a *App) Config() config.Config { return a.cfg }

// SaveWindowSize persists the session's current viewport.
func (a *App) SaveWindowSize() error {
	w, h := a.session.WindowSize()
	return a.settings.SaveWindowSize(w, h)
}

// ListPages reads a notebook's stored pages through the active backend.
func (a *App) ListPages(ctx context.Context, notebookID string) ([]domain.PageRecord, error) {
	if a.gateway == nil {
		return nil, errors.New("app: not started")
	}
	return a.gateway.ListPages(ctx, notebookID)
}

// applyConfig picks up the settings that can change while running.
func (a *App) applyConfig(cfg config.Config) {
	if a.session == nil {
		return
	}
	if err := cfg.Toolbar.Validate(); err != nil {
		log.Printf("app: settings reload keeps the current pen: %v", err)
		return
	}
	a.session.Toolbar().Set(cfg.Toolbar)
	log.Printf("app: settings reloaded, pen %s/%v", cfg.Toolbar.Color, cfg.Toolbar.LineWidth)
	a.emitter.Emit(context.Background(), "settings:reloaded", cfg.Toolbar)
}

// ── Storage ────────────────────────────────────────────────

// openPages picks the page backend: a remote server, the local SQLite file,
// or a PostgreSQL, MySQL or MongoDB server.
func (a *App) openPages() error {
	if a.cfg.Server != "" {
		gw, err := client.New(a.cfg.Server)
		if err != nil {
			return err
		}
		a.gateway = gw
		return nil
	}

	var store domain.CanvasStore
	switch backend := a.cfg.Storage.Backend; backend {
	case "mongodb", "mongo":
		password, err := a.password()
		if err != nil {
			return err
		}
		m, err := storage.OpenMongo(storage.MongoURI(a.cfg.Storage.Endpoint, password), a.cfg.Storage.Database, password)
		if err != nil {
			return err
		}
		a.mongo = m
		store = m
	default:
		dialect, err := storage.ParseDialect(backend)
		if err != nil {
			return err
		}
		if dialect == storage.DialectSQLite {
			store = storage.NewCanvasStore(a.local)
			break
		}
		password, err := a.password()
		if err != nil {
			return err
		}
		dsn := storage.PostgresDSN(a.cfg.Storage.Endpoint, password)
		if dialect == storage.DialectMySQL {
			dsn = storage.MySQLDSN(a.cfg.Storage.Endpoint, password)
		}
		db, err := storage.Open(dialect, dsn)
		if err != nil {
			return err
		}
		a.remoteDB = db
		store = storage.NewCanvasStore(db)
	}

	a.pages = service.NewPageService(store, a.emitter)
	a.gateway = a.pages
	return nil
}

func (a *App) password() (string, error) {
	pw, err := a.secrets.Get(storagePasswordKey)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", storagePasswordKey, err)
	}
	return string(pw), nil
}

func (a *App) backendName() string {
	if a.cfg.Server != "" {
		return a.cfg.Server
	}
	return a.cfg.Storage.Backend
}

func (a *App) closeStores() {
	if a.mongo != nil {
		if err := a.mongo.Close(); err != nil {
			log.Printf("app: close mongo: %v", err)
		}
		a.mongo = nil
	}
	if a.remoteDB != nil {
		a.remoteDB.Close()
		a.remoteDB = nil
	}
	if a.local != nil {
		a.local.Close()
		a.local = nil
	}
}
