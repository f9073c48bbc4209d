package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/pathlink/pkg/config"
	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/finder"
	"github.com/ritzau/pathlink/pkg/loader"
	"github.com/ritzau/pathlink/pkg/logging"
	"github.com/ritzau/pathlink/pkg/output"
	"github.com/ritzau/pathlink/pkg/pathway"
	"github.com/ritzau/pathlink/pkg/store"
	"github.com/ritzau/pathlink/pkg/watcher"
	"github.com/ritzau/pathlink/pkg/web"
)

const (
	quietPeriod = 150 * time.Millisecond
	maxWait     = 2 * time.Second
)

func main() {
	// Parse command-line flags
	fs := pflag.NewFlagSet("pathlink", pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pathlink [flags] <document|directory>\n\n")
		fs.PrintDefaults()
	}
	fs.Bool("web", false, "Serve the document API instead of exiting after the report")
	fs.Int("port", 8080, "Port for web server (only used with --web)")
	fs.Bool("watch", false, "Reload the document when the file changes")
	fs.String("store", "", "Save the resolved document into this SQLite database")
	fs.String("format", "auto", "Document format: auto, json, yaml or msgpack")
	fs.String("save", "", "Export the resolved document; the format follows the extension")
	fs.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	fs.String("log-format", "text", "Log format: text or json")
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	path := fs.Arg(0)

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := logging.Configure(cfg.VerboseCnt, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, path); err != nil {
		logging.Error("pathlink failed", "error", err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	path   string
	db     *store.DB
	server *web.Server
}

func run(ctx context.Context, cfg *config.Config, path string) error {
	a := &app{cfg: cfg, path: path}

	if cfg.Store != "" {
		db, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer db.Close()
		a.db = db
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return a.loadAll(ctx)
	}

	doc, diags, err := a.load(ctx)
	if err != nil {
		return err
	}

	if cfg.WebMode {
		a.server = web.NewServer()
		defer a.server.Close()
		if err := a.server.SetDocument(doc, diags, "loaded"); err != nil {
			return err
		}

		var watch func(context.Context) error
		if cfg.Watch {
			watch = a.watch
		}
		return serveUntilDone(ctx, func() error { return a.server.Start(cfg.Port) }, watch)
	}

	if cfg.Watch {
		return a.watch(ctx)
	}
	return nil
}

// serveUntilDone runs serve and, when set, watch side by side. It returns
// the first error either reports, or nil once ctx is done.
func serveUntilDone(ctx context.Context, serve func() error, watch func(context.Context) error) error {
	errc := make(chan error, 2)
	go func() {
		errc <- serve()
	}()
	if watch != nil {
		go func() {
			if err := watch(ctx); err != nil {
				errc <- fmt.Errorf("watching: %w", err)
			}
		}()
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logging.Info("Shutting down")
		return nil
	}
}

// load reads the document, prints the report and writes the configured
// exports. Diagnostics never fail a load.
func (a *app) load(ctx context.Context) (*pathway.Document, diag.List, error) {
	doc, diags, err := loader.LoadFormat(a.path, a.cfg.Format, a.cfg.Options())
	if err != nil {
		return nil, nil, err
	}

	output.PrintReport(os.Stdout, doc, diags)

	if a.cfg.Output != "" {
		if err := loader.Save(a.cfg.Output, doc); err != nil {
			return nil, nil, fmt.Errorf("saving %s: %w", a.cfg.Output, err)
		}
		logging.Info("Saved document", "path", a.cfg.Output)
	}
	if a.db != nil {
		if err := a.db.SaveDocument(ctx, doc.Export(), diags); err != nil {
			return nil, nil, fmt.Errorf("storing %s: %w", doc.Name, err)
		}
		logging.Info("Stored document", "name", doc.Name, "db", a.db.Path())
	}
	return doc, diags, nil
}

// loadAll reports and stores every document under a directory. A hard
// error in one document does not stop the others.
func (a *app) loadAll(ctx context.Context) error {
	if a.cfg.WebMode || a.cfg.Watch || a.cfg.Output != "" {
		return fmt.Errorf("%s is a directory; serving, watching and saving take a single document", a.path)
	}

	paths, err := finder.FindDocuments(a.path)
	if err != nil {
		return err
	}
	logging.Info("Found documents", "root", a.path, "count", len(paths))

	failed := 0
	root := a.path
	for _, p := range paths {
		a.path = p
		if _, _, err := a.load(ctx); err != nil {
			logging.Error("Load failed", "path", p, "error", err)
			failed++
		}
		fmt.Println()
	}
	a.path = root

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to load", failed, len(paths))
	}
	return nil
}

// watch reloads the document after each burst of changes until ctx is
// done. A failed reload keeps the previous document.
func (a *app) watch(ctx context.Context) error {
	dw, err := watcher.NewDocumentWatcher(a.path)
	if err != nil {
		return err
	}
	defer dw.Stop()

	if err := dw.Start(ctx); err != nil {
		return err
	}
	debouncer := watcher.NewDebouncer(dw.Events(), quietPeriod, maxWait)
	debouncer.Start(ctx)

	for event := range debouncer.Output() {
		plan := watcher.PlanReload(event)
		if plan.Gone {
			logging.Warn("Document removed, keeping the loaded version", "path", dw.Path())
			continue
		}
		if !plan.Reload {
			continue
		}

		logging.Info("Document changed, reloading", "events", event.Count)
		doc, diags, err := a.load(ctx)
		if err != nil {
			logging.Error("Reload failed", "error", err)
			if a.server != nil {
				if perr := a.server.PublishDocumentError(err); perr != nil {
					logging.Warn("Failed to publish document error", "error", perr)
				}
			}
			continue
		}
		if a.server != nil {
			if err := a.server.SetDocument(doc, diags, "reloaded"); err != nil {
				logging.Warn("Failed to publish document", "error", err)
			}
		}
	}
	return nil
}
