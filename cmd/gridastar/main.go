/*
Gridastar finds the cheapest route between the S and E markers of a character map,
moving in eight directions (10 per straight step, 14 per diagonal), and prints the map
with the route drawn in dots. The same map can be shown in the terminal, written as a
PNG, or stepped one expansion at a time in a browser with -serve.

Exit status is 0 when a route was drawn, 2 when none exists and 1 on any error.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/pdrpinto/gridastar/app"
	"github.com/pdrpinto/gridastar/config"
	"github.com/pdrpinto/gridastar/grid"
	"github.com/pdrpinto/gridastar/server"
)

const exitNoPath = 2

var (
	configPath = flag.String("config", "", "YAML config file (kind: gridastar)")
	mapFile    = flag.String("map", "", "map file, overrides mapFile")
	output     = flag.String("output", "", "text, tui or png, overrides output")
	pngFile    = flag.String("png", "", "png destination, overrides pngFile")
	serve      = flag.Bool("serve", false, "serve the step-by-step visualiser instead of solving once")
	addr       = flag.String("addr", "", "visualiser listen address, overrides server.addr")
	dbg        = flag.Bool("debug", false, "log every neighbour relaxation")
)

func loadConfig() (cfg config.Config, err error) {
	cfg = config.Default()
	if *configPath != "" {
		if cfg, err = config.FromYaml(*configPath); err != nil {
			return
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "map":
			cfg.MapFile = *mapFile
		case "output":
			cfg.Output = *output
		case "png":
			cfg.PNGFile = *pngFile
		case "addr":
			cfg.Server.Addr = *addr
		}
	})
	err = cfg.Validate()
	return
}

func runServer(ctx context.Context, cfg config.Config, logger *log.Logger) (err error) {
	var g *grid.Grid
	if g, err = grid.LoadFile(cfg.MapFile); err != nil {
		return
	}
	interval, err := cfg.Server.Interval()
	if err != nil {
		return
	}

	var srv *server.Server
	if srv, err = server.New(ctx, cfg.Server.Addr, g, interval, logger); err != nil {
		return
	}
	err = srv.Serve()
	return
}

func runApp(logger *log.Logger) (found bool, err error) {
	var cfg config.Config
	if cfg, err = loadConfig(); err != nil {
		return
	}

	appCtx, appCancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer appCancel()

	if *serve {
		err = runServer(appCtx, cfg, logger)
		return
	}

	runner := app.NewRunner(cfg, os.Stdout, logger)
	runner.Debug = *dbg
	outcome, err := runner.Run(appCtx)
	found = outcome.Result.Found
	return
}

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "gridastar: ", log.LstdFlags)

	found, err := runApp(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !*serve && !found {
		os.Exit(exitNoPath)
	}
}
