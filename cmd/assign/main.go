package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"teams/config"
	"teams/roster"
	"teams/solver"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("assign", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: assign [flags] <input-file>\n")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "YAML file with search settings")
	timeout := fs.Duration("timeout", 0, "stop searching after this long (0 runs until interrupted)")
	seed := fs.Int64("seed", 0, "random seed (0 uses the default seed)")
	maxSteps := fs.Int("max-steps", 0, "stop after this many expansions (0 is unbounded)")
	verbose := fs.Bool("v", false, "log search progress to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "error: expected an input filename\n")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.Search.Timeout = *timeout
		case "seed":
			cfg.Search.Seed = *seed
		case "max-steps":
			cfg.Search.MaxSteps = *maxSteps
		}
	})

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	store, err := roster.ParseFile(fs.Arg(0))
	if err != nil {
		logger.Error("failed to read roster", zap.Error(err))
		return 1
	}
	logger.Info("roster loaded", zap.String("path", fs.Arg(0)), zap.Int("people", store.Len()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Search.Timeout)
		defer cancel()
	}

	opts := cfg.Search.Options()
	opts.Logger = logger.Named("solver")
	start := time.Now()
	var last solver.Snapshot
	for snap := range solver.Solve(ctx, store, opts) {
		last = snap
		printSnapshot(stdout, snap)
	}
	logger.Info("search finished", zap.Int("cost", last.TotalCost), zap.Duration("elapsed", time.Since(start)))
	return 0
}

func printSnapshot(w io.Writer, snap solver.Snapshot) {
	fmt.Fprintf(w, "----- Latest solution:\n%s\n", strings.Join(snap.AssignedGroups, "\n"))
	fmt.Fprintf(w, "\nAssignment cost: %d \n\n", snap.TotalCost)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
