// Package config handles baker configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/bakemodel/pkg/encoding"
)

// Config holds all baker settings.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Textures TexturesConfig `yaml:"textures"`
	Import   ImportConfig   `yaml:"import"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// OutputConfig holds where bundles are written.
type OutputConfig struct {
	Root string `yaml:"root"` // Bundles go to <root>/<scene stem>/
}

// TexturesConfig holds texture emission settings.
type TexturesConfig struct {
	PlaceholderSize   int    `yaml:"placeholder_size"`
	PlaceholderFormat string `yaml:"placeholder_format"` // png or webp
	Strict            bool   `yaml:"strict"`             // Missing textures fail the bake
}

// ImportConfig holds scene import settings.
type ImportConfig struct {
	TextEncoding string `yaml:"text_encoding"` // OBJ/MTL text and RSM names; empty picks the format default
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// MaxPlaceholderSize bounds the synthesized texture edge length.
const MaxPlaceholderSize = 4096

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Root: ".",
		},
		Textures: TexturesConfig{
			PlaceholderSize:   16,
			PlaceholderFormat: "png",
			Strict:            false,
		},
		Import: ImportConfig{
			TextEncoding: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects settings the baker cannot honor.
func (c *Config) Validate() error {
	if c.Output.Root == "" {
		return fmt.Errorf("output.root must not be empty")
	}
	if c.Textures.PlaceholderSize < 1 || c.Textures.PlaceholderSize > MaxPlaceholderSize {
		return fmt.Errorf("textures.placeholder_size must be in [1, %d], got %d",
			MaxPlaceholderSize, c.Textures.PlaceholderSize)
	}
	switch c.Textures.PlaceholderFormat {
	case "png", "webp":
	default:
		return fmt.Errorf("textures.placeholder_format must be png or webp, got %q", c.Textures.PlaceholderFormat)
	}
	if _, err := encoding.Lookup(c.Import.TextEncoding); err != nil {
		return fmt.Errorf("import.text_encoding: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
