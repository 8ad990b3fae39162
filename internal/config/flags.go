package config

import "flag"

var (
	flagConfig            = flag.String("config", "", "Path to config file")
	flagDebug             = flag.Bool("debug", false, "Enable debug logging")
	flagOut               = flag.String("out", "", "Output root directory")
	flagStrictTextures    = flag.Bool("strict-textures", false, "Fail when a referenced texture is missing")
	flagPlaceholderFormat = flag.String("placeholder-format", "", "Placeholder image format (png or webp)")
	flagPlaceholderSize   = flag.Int("placeholder-size", 0, "Placeholder edge length in pixels")
	flagLogFile           = flag.String("log-file", "", "Also write logs to this file")
	flagSaveConfig        = flag.String("save-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveConfigPath returns the --save-config target, if any.
func SaveConfigPath() string {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOut != "" {
		cfg.Output.Root = *flagOut
	}
	if *flagStrictTextures {
		cfg.Textures.Strict = true
	}
	if *flagPlaceholderFormat != "" {
		cfg.Textures.PlaceholderFormat = *flagPlaceholderFormat
	}
	if *flagPlaceholderSize > 0 {
		cfg.Textures.PlaceholderSize = *flagPlaceholderSize
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
