// Package app wires loading, searching, tracing and rendering into one run.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/config"
	"github.com/pdrpinto/gridastar/grid"
	"github.com/pdrpinto/gridastar/render"
)

// Outcome is what a run produced. Grid is a copy of the searched map carrying
// the path marks when one was found.
type Outcome struct {
	Grid   *grid.Grid
	Result astar.Result
}

// Solve loads a map from r, searches it and marks the path on the loaded grid.
// A missing path is reported through Result.Found, not as an error.
func Solve(ctx context.Context, r io.Reader, options ...astar.Option) (Outcome, error) {
	g, err := grid.Load(r)
	if err != nil {
		return Outcome{}, err
	}
	return SolveGrid(ctx, g, options...)
}

// SolveGrid searches g and marks the path on a copy; g itself is left as loaded.
func SolveGrid(ctx context.Context, g *grid.Grid, options ...astar.Option) (Outcome, error) {
	res, err := astar.Search(ctx, g, options...)
	if err != nil {
		return Outcome{Grid: g, Result: res}, fmt.Errorf("search: %w", err)
	}
	outcome := Outcome{Grid: g.Clone(), Result: res}
	if res.Found {
		if err := render.TracePath(outcome.Grid, res); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// Runner executes a configured run.
type Runner struct {
	Config config.Config
	Stdout io.Writer
	Logger *log.Logger
	Debug  bool

	// NewScreen opens the terminal for tui output.
	NewScreen func() (tcell.Screen, error)
}

// NewRunner returns a runner writing to stdout and logging through logger.
func NewRunner(cfg config.Config, stdout io.Writer, logger *log.Logger) *Runner {
	return &Runner{
		Config:    cfg,
		Stdout:    stdout,
		Logger:    logger,
		NewScreen: tcell.NewScreen,
	}
}

// Run loads the configured map, searches it and renders the outcome.
func (runner *Runner) Run(ctx context.Context) (outcome Outcome, err error) {
	cfg := runner.Config
	if err = cfg.Validate(); err != nil {
		return
	}

	var g *grid.Grid
	if g, err = grid.LoadFile(cfg.MapFile); err != nil {
		return
	}
	runner.Logger.Printf("loaded %s: %d rows, start %v, destination %v", cfg.MapFile, g.Rows(), g.Start, g.Destination)

	searchCtx, cancel, err := cfg.WithSearchDeadline(ctx)
	if err != nil {
		return
	}
	defer cancel()

	options := []astar.Option{astar.WithMaxExpansions(cfg.MaxExpansions)}
	if runner.Debug {
		options = append(options, astar.WithObserver(func(r astar.Relaxation) {
			runner.Logger.Printf("relax %v -> %v f=%d %s", r.From, r.To, r.TotalCost, r.Outcome)
		}))
	}

	if outcome, err = SolveGrid(searchCtx, g, options...); err != nil {
		return
	}
	res := outcome.Result
	if res.Found {
		runner.Logger.Printf("path found: cost %d, %d steps, %d nodes expanded", res.TotalCost, len(res.Path)-1, res.ExpandedNodes)
	} else {
		runner.Logger.Printf("no path found after expanding %d nodes", res.ExpandedNodes)
	}

	err = runner.render(outcome)
	return
}

func (runner *Runner) render(outcome Outcome) error {
	cfg := runner.Config
	switch cfg.Output {
	case config.OutputPNG:
		return runner.writePNG(outcome.Grid)
	case config.OutputTUI:
		return runner.showTUI(outcome)
	default:
		style := render.Style{Color: cfg.Color, PathColor: cfg.PathColor}
		if err := render.Text(runner.Stdout, outcome.Grid, style); err != nil {
			return err
		}
		if !outcome.Result.Found {
			_, err := fmt.Fprintln(runner.Stdout, render.ErrNoPath)
			return err
		}
		_, err := fmt.Fprintf(runner.Stdout, "cost %d\n", outcome.Result.TotalCost)
		return err
	}
}

func (runner *Runner) writePNG(g *grid.Grid) (err error) {
	f, err := os.Create(runner.Config.PNGFile)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	if err = render.PNG(f, g, runner.Config.PNGScale); err != nil {
		return fmt.Errorf("png: %w", err)
	}
	runner.Logger.Printf("wrote %s", runner.Config.PNGFile)
	return nil
}

func (runner *Runner) showTUI(outcome Outcome) error {
	pathColor, err := render.ResolveColor(runner.Config.PathColor)
	if err != nil {
		return err
	}
	screen, err := runner.NewScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	viewer := render.NewViewer(screen, render.NewTheme(pathColor))
	if outcome.Result.Found {
		viewer.SetStatus(fmt.Sprintf("cost %d, %d expanded  [q] quit", outcome.Result.TotalCost, outcome.Result.ExpandedNodes))
	} else {
		viewer.SetStatus(fmt.Sprintf("%v  [q] quit", render.ErrNoPath))
	}
	viewer.Show(outcome.Grid)
	return nil
}
