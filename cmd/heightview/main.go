package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/VoidMesh/heightfield/cmd/heightview/models"
	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/logging"
	"github.com/VoidMesh/heightfield/internal/pipeline"
)

func main() {
	presetPath := flag.String("config", "", "Path to a YAML generation preset")
	width := flag.Int("width", 160, "Preview grid width")
	length := flag.Int("length", 80, "Preview grid length")
	logLevel := flag.String("log", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// The terminal belongs to the UI; logs go to a file only when DEBUG is set.
	var out io.Writer = io.Discard
	if len(os.Getenv("DEBUG")) > 0 {
		f, err := tea.LogToFile("heightview.log", "heightview")
		if err != nil {
			fmt.Println("fatal:", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger := log.New(out)
	logging.SetLevel(logger, logging.ParseLevel(*logLevel))

	cfg, err := config.LoadGeneration(*presetPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	cfg.Width, cfg.Length = *width, *length

	appLogger := logging.NewWrapper(logger)
	gen := pipeline.NewGenerator(appLogger, nil, config.DefaultLimits())
	regen := pipeline.NewRegenerator(context.Background(), gen, appLogger, nil, nil)
	defer regen.Close()

	program := tea.NewProgram(models.NewViewerModel(regen, cfg), tea.WithAltScreen())

	logger.Info("Starting heightfield preview", "width", cfg.Width, "length", cfg.Length, "seed", cfg.Seed)
	if _, err := program.Run(); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}
