package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/iroxusux/ladderview/pkg/cache"
	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
	"github.com/iroxusux/ladderview/pkg/render"
)

const previewPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta http-equiv="refresh" content="2">
  <title>%s - ladderview</title>
  <style>body { margin: 0; background: #f4f4f4; } svg { display: block; margin: 0 auto; }</style>
</head>
<body>
%s
</body>
</html>`

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	constants string
}

// newServeCmd creates the serve command: a live HTML preview of a routine
// file. The file is re-read on every request, so edits show up on the next
// browser refresh.
func newServeCmd() *cobra.Command {
	opts := serveOpts{addr: "localhost:8190"}

	cmd := &cobra.Command{
		Use:   "serve [routine.toml]",
		Short: "Serve a live HTML preview of a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.constants, "constants", "", "layout constants TOML file")

	return cmd
}

// previewServer renders a routine file on demand, memoizing artifacts by
// content hash so an unchanged file costs one cache lookup per request.
type previewServer struct {
	path  string
	cons  layout.Constants
	log   *log.Logger
	store *cache.MemoryCache
	keyer *cache.Keyer
}

func runServe(ctx context.Context, path string, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cons, err := loadConstants(opts.constants)
	if err != nil {
		return err
	}
	// Fail fast on an unreadable or malformed routine before binding.
	if _, err := ladder.ReadRoutineFile(path); err != nil {
		return fmt.Errorf("read routine: %w", err)
	}

	ps := &previewServer{
		path:  path,
		cons:  cons,
		log:   logger,
		store: cache.NewMemoryCache(),
		keyer: cache.NewKeyer(""),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", ps.handleIndex)
	r.Get("/svg", ps.handleArtifact(formatSVG, "image/svg+xml"))
	r.Get("/png", ps.handleArtifact(formatPNG, "image/png"))
	r.Get("/dot.svg", ps.handleDOT)

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	printSuccess("Serving %s", path)
	printDetail("http://%s", opts.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// load re-reads and lays out the routine.
func (ps *previewServer) load() (*ladder.Routine, *layout.Engine, error) {
	rt, err := ladder.ReadRoutineFile(ps.path)
	if err != nil {
		return nil, nil, fmt.Errorf("read routine: %w", err)
	}
	engine := layout.NewEngine(layout.WithConstants(ps.cons), layout.WithLogger(ps.log))
	if err := engine.LayoutRoutine(rt); err != nil {
		return nil, nil, fmt.Errorf("layout: %w", err)
	}
	return rt, engine, nil
}

func (ps *previewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, rt, err := ps.artifact(r.Context(), formatSVG)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, previewPage, rt.Name(), data)
}

func (ps *previewServer) handleArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, _, err := ps.artifact(r.Context(), format)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(data)
	}
}

func (ps *previewServer) handleDOT(w http.ResponseWriter, r *http.Request) {
	rt, _, err := ps.load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dot, err := render.ToDOT(rt, render.DOTOptions{Detailed: true})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	svg, err := render.DOTSVG(dot)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (ps *previewServer) artifact(ctx context.Context, format string) ([]byte, *ladder.Routine, error) {
	rt, engine, err := ps.load()
	if err != nil {
		return nil, nil, err
	}

	key := ps.keyer.ArtifactKey(cache.RoutineHash(rt, ps.cons), cache.ArtifactOpts{Format: format, Scale: rasterScale(format, 2)})
	if data, hit, _ := ps.store.Get(ctx, key); hit {
		return data, rt, nil
	}

	var data []byte
	switch format {
	case formatSVG:
		data, err = render.SVG(engine)
	case formatPNG:
		data, err = render.PNG(engine, render.WithScale(2))
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := ps.store.Set(ctx, key, data, time.Hour); err != nil {
		ps.log.Warn("cache write failed", "err", err)
	}
	return data, rt, nil
}
