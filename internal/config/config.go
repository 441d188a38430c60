// Package config handles terratile configuration loading and management.
package config

// Config holds all conversion settings.
type Config struct {
	Print    PrintConfig    `yaml:"print"`
	Simplify SimplifyConfig `yaml:"simplify"`
	Preview  PreviewConfig  `yaml:"preview"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PrintConfig holds physical print parameters.
type PrintConfig struct {
	VerticalExaggeration float64 `yaml:"vertical_exaggeration"`
	TileSizeMM           float64 `yaml:"tile_size_mm"`
	BaseThicknessMM      float64 `yaml:"base_thickness_mm"`
	// MeshSize is the model-space footprint used while building the surface,
	// before physical scaling.
	MeshSize float64 `yaml:"mesh_size"`
}

// SimplifyConfig holds mesh simplification settings.
type SimplifyConfig struct {
	// TargetFaces of zero derives max(1000, faceCount/10).
	TargetFaces      int     `yaml:"target_faces"`
	QualityThreshold float64 `yaml:"quality_threshold"`
	PreserveBoundary bool    `yaml:"preserve_boundary"`
	PreserveNormal   bool    `yaml:"preserve_normal"`
	PreserveTopology bool    `yaml:"preserve_topology"`
	// HighQuality prefers an external quadric decimator when one is present.
	HighQuality bool `yaml:"high_quality"`
}

// PreviewConfig holds hillshade preview settings.
type PreviewConfig struct {
	Size        int     `yaml:"size"`
	AzimuthDeg  float64 `yaml:"azimuth_deg"`
	AltitudeDeg float64 `yaml:"altitude_deg"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Print: PrintConfig{
			VerticalExaggeration: 1.5,
			TileSizeMM:           150,
			BaseThicknessMM:      5,
			MeshSize:             10,
		},
		Simplify: SimplifyConfig{
			TargetFaces:      0,
			QualityThreshold: 0.3,
			PreserveBoundary: true,
			PreserveNormal:   true,
			PreserveTopology: true,
			HighQuality:      true,
		},
		Preview: PreviewConfig{
			Size:        512,
			AzimuthDeg:  315,
			AltitudeDeg: 45,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
