package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iroxusux/ladderview/pkg/cache"
	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
	"github.com/iroxusux/ladderview/pkg/render"
)

const (
	formatSVG = "svg"
	formatPNG = "png"
	formatDOT = "dot"

	defaultCacheTTL = 7 * 24 * time.Hour
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path (or base path for multiple formats)
	formats   []string // output formats: "svg", "png", "dot"
	constants string   // layout constants TOML file
	theme     string   // render theme TOML file
	scale     float64  // raster scale for PNG output
	noCache   bool     // bypass the artifact cache
	detailed  bool     // detailed labels in DOT output
}

// newRenderCmd creates the render command for generating routine
// visualizations.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "render [routine.toml]",
		Short: "Render a ladder routine to SVG, PNG, or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.constants, "constants", "", "layout constants TOML file")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "render theme TOML file")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale for PNG output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "detailed labels in DOT output")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		switch f {
		case formatSVG, formatPNG, formatDOT:
		default:
			return fmt.Errorf("unknown format %q (want svg, png, or dot)", f)
		}
	}
	return nil
}

// loadConstants reads the constants file when set, defaults otherwise.
func loadConstants(path string) (layout.Constants, error) {
	if path == "" {
		return layout.DefaultConstants(), nil
	}
	return layout.LoadConstantsFile(path)
}

// loadTheme reads the theme file when set, defaults otherwise.
func loadTheme(path string) (render.Theme, error) {
	if path == "" {
		return render.DefaultTheme(), nil
	}
	return render.LoadThemeFile(path)
}

func runRender(ctx context.Context, path string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	rt, err := ladder.ReadRoutineFile(path)
	if err != nil {
		return fmt.Errorf("read routine: %w", err)
	}
	cons, err := loadConstants(opts.constants)
	if err != nil {
		return err
	}
	theme, err := loadTheme(opts.theme)
	if err != nil {
		return err
	}

	engine := layout.NewEngine(layout.WithConstants(cons), layout.WithLogger(logger))
	if err := engine.LayoutRoutine(rt); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	logger.Debug("routine laid out", "rungs", rt.Len(), "height", engine.TotalHeight())

	store, err := artifactCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()
	keyer := cache.NewKeyer("")
	routineHash := cache.RoutineHash(rt, cons)
	themeFP := themeFingerprint(opts.theme, theme)

	anyCached := false
	for _, format := range opts.formats {
		key := keyer.ArtifactKey(routineHash, cache.ArtifactOpts{
			Format: format,
			Scale:  rasterScale(format, opts.scale),
			Theme:  themeFP,
		})

		data, hit, err := store.Get(ctx, key)
		if err != nil {
			logger.Warn("cache read failed", "err", err)
		}
		if !hit {
			data, err = renderFormat(engine, rt, format, theme, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			if err := store.Set(ctx, key, data, defaultCacheTTL); err != nil {
				logger.Warn("cache write failed", "err", err)
			}
		} else {
			anyCached = true
		}

		out := outputPath(path, opts.output, format, len(opts.formats) > 1)
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		printFile(out)
	}

	prog.done(fmt.Sprintf("Rendered %d rungs", rt.Len()))
	printStats(rt.Len(), branchCount(rt), anyCached)
	return nil
}

func rasterScale(format string, scale float64) float64 {
	if format == formatPNG {
		return scale
	}
	return 0
}

// themeFingerprint keys the cache by theme content, so editing a theme file
// invalidates its artifacts. Default-theme renders keep an empty fingerprint.
func themeFingerprint(path string, theme render.Theme) string {
	if path == "" {
		return ""
	}
	data, _ := json.Marshal(theme)
	return cache.Hash(data)
}

func renderFormat(engine *layout.Engine, rt *ladder.Routine, format string, theme render.Theme, opts *renderOpts) ([]byte, error) {
	switch format {
	case formatSVG:
		return render.SVG(engine, render.WithTheme(theme))
	case formatPNG:
		return render.PNG(engine, render.WithScale(opts.scale), render.WithRasterTheme(theme))
	case formatDOT:
		dot, err := render.ToDOT(rt, render.DOTOptions{Detailed: opts.detailed})
		if err != nil {
			return nil, err
		}
		return []byte(dot), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// outputPath derives the output file name: an explicit --output wins for a
// single format and becomes a base path for several; otherwise the routine
// file's name with the format's extension.
func outputPath(routinePath, output, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := strings.TrimSuffix(routinePath, filepath.Ext(routinePath))
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	return base + "." + format
}

// branchCount totals branch brackets across all rungs. Rungs that fail to
// compile count zero; layout already rejected them if so.
func branchCount(rt *ladder.Routine) int {
	total := 0
	for _, r := range rt.Rungs() {
		seq, err := r.Sequence()
		if err != nil {
			continue
		}
		for _, el := range seq {
			if el.Kind == ladder.KindBranchStart {
				total++
			}
		}
	}
	return total
}
