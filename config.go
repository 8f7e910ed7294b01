package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/weirdgiraffe/brcstats/internal/input"
	"github.com/weirdgiraffe/brcstats/internal/stats"
)

type Config struct {
	Input        string
	Output       string
	Workers      int
	Mode         input.Mode
	Timeout      time.Duration
	MaxChunkSize int64
	Profile      string
}

// LoadConfig reads BRC_* environment variables as defaults and lets flags
// override them.
func LoadConfig(args []string, getenv func(string) string, stderr io.Writer) (*Config, error) {
	workers, err := parseInt(getenv("BRC_WORKERS"), 0)
	if err != nil {
		return nil, fmt.Errorf("invalid BRC_WORKERS: %w", err)
	}
	timeout, err := parseDuration(getenv("BRC_TIMEOUT"), 0)
	if err != nil {
		return nil, fmt.Errorf("invalid BRC_TIMEOUT: %w", err)
	}

	var mode string
	cfg := &Config{}
	fs := flag.NewFlagSet("brcstats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Input, "input", withDefault(getenv("BRC_INPUT"), "testcase.txt"), "measurements file to read")
	fs.StringVar(&cfg.Output, "output", withDefault(getenv("BRC_OUTPUT"), "output.txt"), "file to write results to, - for stdout")
	fs.IntVar(&cfg.Workers, "workers", workers, "parallel workers, 0 for GOMAXPROCS")
	fs.StringVar(&mode, "mode", withDefault(getenv("BRC_MODE"), string(input.ModeMapped)), "how to read the input: mmap or pread")
	fs.DurationVar(&cfg.Timeout, "timeout", timeout, "abort the run after this long, 0 for no limit")
	fs.Int64Var(&cfg.MaxChunkSize, "max-chunk", stats.DefaultMaxChunkSize, "largest byte range a worker reads at once")
	fs.StringVar(&cfg.Profile, "profile", "", "write a cpu, mem or trace profile to the working directory")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		// positional form kept from the original tool: [input [output]]
		cfg.Input = fs.Arg(0)
		if fs.NArg() > 1 {
			cfg.Output = fs.Arg(1)
		}
	}

	cfg.Mode, err = input.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("max-chunk must be positive, got %d", cfg.MaxChunkSize)
	}
	switch cfg.Profile {
	case "", "cpu", "mem", "trace":
	default:
		return nil, fmt.Errorf("unknown profile %q", cfg.Profile)
	}
	return cfg, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
