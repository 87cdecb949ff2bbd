package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/setanarut/kquant"
)

func main() {
	def := kquant.DefaultOptions(0)
	maxIter := flag.Int("iter", def.MaxIterations, "Maximum Lloyd iterations per attempt")
	eps := flag.Float64("eps", def.Epsilon, "Stop an attempt when the summed squared centroid shift drops below this")
	attempts := flag.Int("attempts", def.Attempts, "Random restarts; the most compact one is kept")
	seed := flag.Uint64("seed", 0, "Initialization seed (0 = random)")
	workers := flag.Int("workers", def.Workers, "Goroutines for the assignment step")
	jobs := flag.Int("j", 1, "Images processed in parallel")
	engine := flag.String("engine", def.Engine.String(), "Clustering engine: lloyd or muesli")
	layers := flag.Bool("layers", false, "Also write one PNG per color group")
	palette := flag.Bool("palette", false, "Also write a palette swatch PNG")
	blur := flag.Float64("blur", 0, "Gaussian pre-blur sigma (0 = off)")
	dominant := flag.Bool("seed-dominant", false, "Start the first attempt from the image's dominant colors")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logJSON := flag.Bool("log-json", false, "Write logs as JSON")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := kquant.NewTextLogger(level)
	if *logJSON {
		log = kquant.NewJSONLogger(level)
	}

	j, err := parseArgs(flag.Args(), os.Stdin, os.Stdout)
	if errors.Is(err, errUsage) {
		fmt.Println(usage)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	eng, err := kquant.ParseEngine(*engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if eng == kquant.EngineMuesli && *dominant {
		fmt.Fprintln(os.Stderr, "Error: -seed-dominant is not supported by the muesli engine")
		os.Exit(1)
	}

	opt := kquant.DefaultOptions(j.k)
	opt.MaxIterations = *maxIter
	opt.Epsilon = *eps
	opt.Attempts = *attempts
	opt.Seed = *seed
	opt.Workers = *workers
	opt.Engine = eng

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed := run(ctx, j.files, config{
		opt:      opt,
		jobs:     *jobs,
		layers:   *layers,
		palette:  *palette,
		dominant: *dominant,
		blur:     *blur,
	}, log)
	log.Info("done", "images", len(j.files), "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
