package config

import "flag"

// Flags holds CLI overrides. Zero values mean "not set" and leave the
// corresponding config value alone.
type Flags struct {
	ConfigPath    string
	Debug         bool
	Exaggeration  float64
	TileSize      float64
	BaseThickness float64
	TargetFaces   int
	Fast          bool
	PreviewSize   int
	LogFile       string
}

// Register attaches the shared flags to a flag set so every subcommand gets
// the same overrides.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Float64Var(&f.Exaggeration, "exaggeration", 0, "Vertical exaggeration factor")
	fs.Float64Var(&f.TileSize, "tile-size", 0, "Target tile size in millimeters")
	fs.Float64Var(&f.BaseThickness, "base-thickness", 0, "Base thickness in millimeters")
	fs.IntVar(&f.TargetFaces, "target-faces", 0, "Target face count after simplification")
	fs.BoolVar(&f.Fast, "fast", false, "Skip the external decimator even when available")
	fs.IntVar(&f.PreviewSize, "preview-size", 0, "Preview image edge length in pixels")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file with rotation")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Exaggeration > 0 {
		cfg.Print.VerticalExaggeration = f.Exaggeration
	}
	if f.TileSize > 0 {
		cfg.Print.TileSizeMM = f.TileSize
	}
	if f.BaseThickness > 0 {
		cfg.Print.BaseThicknessMM = f.BaseThickness
	}
	if f.TargetFaces > 0 {
		cfg.Simplify.TargetFaces = f.TargetFaces
	}
	if f.Fast {
		cfg.Simplify.HighQuality = false
	}
	if f.PreviewSize > 0 {
		cfg.Preview.Size = f.PreviewSize
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
