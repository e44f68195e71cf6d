// Package config handles potreetool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Reader  ReaderConfig  `yaml:"reader"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig names the dataset to open. Explicit file paths take
// priority over files discovered in Dir.
type DataConfig struct {
	Dir       string `yaml:"dir"`       // Directory scanned for dataset files
	Hierarchy string `yaml:"hierarchy"` // hierarchy.bin override
	Octree    string `yaml:"octree"`    // octree.bin override
	Metadata  string `yaml:"metadata"`  // metadata.json override
}

// ReaderConfig holds point decoding settings.
type ReaderConfig struct {
	MaxLevel    int  `yaml:"max_level"`
	ReuseBuffer bool `yaml:"reuse_buffer"`
}

// ExportConfig holds LAS export settings.
type ExportConfig struct {
	Path  string `yaml:"path"`
	Color bool   `yaml:"color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir: ".",
		},
		Reader: ReaderConfig{
			MaxLevel:    100,
			ReuseBuffer: true,
		},
		Export: ExportConfig{
			Path:  "points.las",
			Color: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
