package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/VoidMesh/heightfield/internal/api"
	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/logging"
	"github.com/VoidMesh/heightfield/internal/pipeline"
)

type options struct {
	configPath string
	width      int
	length     int
	seed       int64
	out        string
	dumpConfig bool
	logLevel   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to a YAML generation preset (defaults built in)")
	flag.IntVar(&opts.width, "width", 0, "Override grid width")
	flag.IntVar(&opts.length, "length", 0, "Override grid length")
	flag.Int64Var(&opts.seed, "seed", 0, "Override seed")
	flag.StringVar(&opts.out, "out", "", "Write the result as JSON to this file (- for stdout)")
	flag.BoolVar(&opts.dumpConfig, "dump-config", false, "Print the effective preset as YAML and exit")
	flag.StringVar(&opts.logLevel, "log", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logging.InitLogger()
	logger := logging.GetLogger()
	logging.SetLevel(logger, logging.ParseLevel(opts.logLevel))

	seedSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	cfg, err := loadConfig(opts, seedSet)
	if err != nil {
		logger.Fatal("Failed to load generation preset", "error", err, "path", opts.configPath)
	}

	if opts.dumpConfig {
		if err := config.EncodeGeneration(os.Stdout, cfg); err != nil {
			logger.Fatal("Failed to write preset", "error", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := pipeline.NewGenerator(logging.NewWrapper(logger), nil, config.DefaultLimits())
	result, err := gen.Generate(ctx, cfg)
	if err != nil {
		if fields := config.Fields(err); len(fields) > 0 {
			logger.Fatal("Invalid generation preset", "fields", fields, "error", err)
		}
		logger.Fatal("Generation failed", "error", err)
	}

	printSummary(summaryWriter(opts.out), result)

	if opts.out != "" {
		if err := writeResult(opts.out, result); err != nil {
			logger.Fatal("Failed to write result", "error", err, "path", opts.out)
		}
		logger.Info("Result written", "path", opts.out)
	}
}

func loadConfig(opts options, seedSet bool) (config.GenerationConfig, error) {
	cfg, err := config.LoadGeneration(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.width > 0 {
		cfg.Width = opts.width
	}
	if opts.length > 0 {
		cfg.Length = opts.length
	}
	if seedSet {
		cfg.Seed = opts.seed
	}
	return cfg, nil
}

// summaryWriter keeps stdout clean when the JSON result goes there.
func summaryWriter(out string) io.Writer {
	if out == "-" {
		return os.Stderr
	}
	return os.Stdout
}

func printSummary(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "run       %s\n", res.RunID)
	fmt.Fprintf(w, "size      %dx%d\n", res.Width, res.Length)
	fmt.Fprintf(w, "seed      %d\n", res.Seed)
	fmt.Fprintf(w, "stages    %v\n", res.Stages)
	fmt.Fprintf(w, "duration  %s\n", res.Duration)
	fmt.Fprintf(w, "height    min=%.4f max=%.4f mean=%.4f\n", res.Stats.Min, res.Stats.Max, res.Stats.Mean)

	if res.Layers == nil {
		return
	}
	counts := res.Layers.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	total := float64(res.Width * res.Length)
	for _, name := range names {
		label := name
		if label == "" {
			label = "(none)"
		}
		fmt.Fprintf(w, "layer     %-10s %6.2f%%\n", label, 100*float64(counts[name])/total)
	}
}

func writeResult(path string, res *pipeline.Result) error {
	var out io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	if err := enc.Encode(api.NewHeightmapResponse(res, true)); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
