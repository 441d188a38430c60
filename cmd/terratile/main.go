// terratile converts elevation grids into 3D-printable terrain tile STLs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/terratile/internal/config"
	"github.com/Faultbox/terratile/internal/logger"
	"github.com/Faultbox/terratile/internal/pipeline"
	"github.com/Faultbox/terratile/internal/preview"
	"github.com/Faultbox/terratile/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "convert":
		cmdConvert(args)
	case "info":
		cmdInfo(args)
	case "preview":
		cmdPreview(args)
	case "init-config":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terratile - elevation grid to printable STL terrain tiles

Usage:
  terratile <command> [options]

Commands:
  convert <input.json> <output.stl>   Convert an elevation grid to a solid STL tile
  info <input.json>                   Show grid statistics without converting
  preview <input.json> <output.webp>  Render a hillshaded relief preview
  init-config [path]                  Write a config file with default settings

Examples:
  terratile convert tile.json tile.stl
  terratile convert -tile-size 100 -fast tile.json tile.stl
  terratile preview tile.json tile.webp`)
}

// loadConfig parses command flags and resolves the final configuration.
func loadConfig(name string, args []string, wantArgs int, usage string) (*config.Config, []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var flags config.Flags
	flags.Register(fs)
	fs.Parse(args)

	if fs.NArg() < wantArgs {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, fs.Args()
}

func cmdConvert(args []string) {
	cfg, rest := loadConfig("convert", args, 2,
		"Usage: terratile convert [options] <input.json> <output.stl>")

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	grid, err := formats.ParseGridFile(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// No external decimator is linked into this build; the pipeline falls
	// back to the internal strategy and logs the degradation.
	result, err := pipeline.Run(grid, rest[1], cfg, nil)
	if err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.Marshal(result)
	fmt.Println(string(out))
}

func cmdInfo(args []string) {
	_, rest := loadConfig("info", args, 1,
		"Usage: terratile info <input.json>")

	grid, err := formats.ParseGridFile(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sampleMin, sampleMax := grid.SampleRange()
	fmt.Printf("Grid:        %dx%d (%d samples)\n", grid.Width, grid.Height, len(grid.Elevations))
	fmt.Printf("Declared:    %.2f .. %.2f\n", grid.MinElevation, grid.MaxElevation)
	fmt.Printf("Samples:     %.2f .. %.2f\n", sampleMin, sampleMax)
	fmt.Printf("Dense mesh:  %d vertices, %d faces\n",
		grid.Width*grid.Height, 2*(grid.Width-1)*(grid.Height-1))
}

func cmdPreview(args []string) {
	cfg, rest := loadConfig("preview", args, 2,
		"Usage: terratile preview [options] <input.json> <output.webp>")

	grid, err := formats.ParseGridFile(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	img, err := preview.Render(grid, preview.Options{
		Size:        cfg.Preview.Size,
		AzimuthDeg:  cfg.Preview.AzimuthDeg,
		AltitudeDeg: cfg.Preview.AltitudeDeg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := preview.Save(rest[1], img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", rest[1])
}

func cmdInitConfig(args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	cfg := config.Default()
	var err error
	if path == "" {
		err = cfg.Save()
		path = "the user config directory"
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", path)
}
