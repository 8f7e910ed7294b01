package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/profile"

	"github.com/weirdgiraffe/brcstats/internal/input"
	"github.com/weirdgiraffe/brcstats/internal/logger"
	"github.com/weirdgiraffe/brcstats/internal/output"
	"github.com/weirdgiraffe/brcstats/internal/stats"
)

// Solve reads cfg.Input, aggregates it and writes the sorted rows to
// cfg.Output. On error no output file is left behind.
func Solve(ctx context.Context, cfg *Config) error {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	src, err := input.Open(cfg.Input, cfg.Mode)
	if err != nil {
		return err
	}
	defer src.Close()

	solver := stats.NewSolver(stats.Options{
		Workers:      cfg.Workers,
		MaxChunkSize: cfg.MaxChunkSize,
	})
	err = output.WriteFile(cfg.Output, func(w io.Writer) error {
		return solver.Solve(ctx, src, w)
	})
	if err != nil {
		return err
	}
	if err := src.Close(); err != nil {
		logger.Warnf("main", "failed to release %s: %v", cfg.Input, err)
	}
	return nil
}

func startProfile(kind string) interface{ Stop() } {
	opts := []func(*profile.Profile){profile.ProfilePath("."), profile.Quiet}
	switch kind {
	case "cpu":
		opts = append(opts, profile.CPUProfile)
	case "mem":
		opts = append(opts, profile.MemProfile)
	case "trace":
		opts = append(opts, profile.TraceProfile)
	default:
		return nopStopper{}
	}
	return profile.Start(opts...)
}

type nopStopper struct{}

func (nopStopper) Stop() {}

func run(args []string) error {
	logger.Init()
	cfg, err := LoadConfig(args, os.Getenv, os.Stderr)
	if err != nil {
		return err
	}
	defer startProfile(cfg.Profile).Stop()

	logger.Debugf("main", "input=%s output=%s mode=%s workers=%d", cfg.Input, cfg.Output, cfg.Mode, cfg.Workers)
	return Solve(context.Background(), cfg)
}

func main() {
	err := run(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to solve: %v\n", err)
		os.Exit(1)
	}
}
