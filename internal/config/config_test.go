package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output.Root != "." {
		t.Errorf("expected output root '.', got %s", cfg.Output.Root)
	}
	if cfg.Textures.PlaceholderSize != 16 {
		t.Errorf("expected placeholder size 16, got %d", cfg.Textures.PlaceholderSize)
	}
	if cfg.Textures.PlaceholderFormat != "png" {
		t.Errorf("expected png placeholders, got %s", cfg.Textures.PlaceholderFormat)
	}
	if cfg.Textures.Strict {
		t.Error("expected strict textures to be false by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
output:
  root: "/srv/bundles"

textures:
  placeholder_size: 32
  placeholder_format: "webp"
  strict: true

import:
  text_encoding: "euc-kr"

logging:
  level: "debug"
  log_file: "bake.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Output.Root != "/srv/bundles" {
		t.Errorf("expected root /srv/bundles, got %s", cfg.Output.Root)
	}
	if cfg.Textures.PlaceholderSize != 32 {
		t.Errorf("expected placeholder size 32, got %d", cfg.Textures.PlaceholderSize)
	}
	if cfg.Textures.PlaceholderFormat != "webp" {
		t.Errorf("expected webp, got %s", cfg.Textures.PlaceholderFormat)
	}
	if !cfg.Textures.Strict {
		t.Error("expected strict to be true")
	}
	if cfg.Import.TextEncoding != "euc-kr" {
		t.Errorf("expected euc-kr, got %s", cfg.Import.TextEncoding)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "bake.log" {
		t.Errorf("expected log file 'bake.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("textures:\n  strict: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Textures.PlaceholderSize != 16 {
		t.Errorf("unset keys must keep defaults, got size %d", cfg.Textures.PlaceholderSize)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad syntax", "textures:\n  placeholder_size: not a number\n  invalid syntax here\n"},
		{"unknown key", "textures:\n  placeholder_colour: red\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := loadFromFile(Default(), configPath); err != nil {
		t.Errorf("empty file must load: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty root", func(c *Config) { c.Output.Root = "" }, "output.root"},
		{"zero size", func(c *Config) { c.Textures.PlaceholderSize = 0 }, "placeholder_size"},
		{"huge size", func(c *Config) { c.Textures.PlaceholderSize = MaxPlaceholderSize + 1 }, "placeholder_size"},
		{"format", func(c *Config) { c.Textures.PlaceholderFormat = "gif" }, "placeholder_format"},
		{"encoding", func(c *Config) { c.Import.TextEncoding = "ebcdic" }, "text_encoding"},
		{"level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "bakemodel.yaml")
	if err := os.WriteFile(configPath, []byte("textures:\n  placeholder_size: 8\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find bakemodel.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "out flag",
			setup: func() { *flagOut = "/tmp/out" },
			verify: func(cfg *Config) {
				if cfg.Output.Root != "/tmp/out" {
					t.Errorf("expected root /tmp/out, got %s", cfg.Output.Root)
				}
			},
			teardown: func() { *flagOut = "" },
		},
		{
			name:  "strict textures flag",
			setup: func() { *flagStrictTextures = true },
			verify: func(cfg *Config) {
				if !cfg.Textures.Strict {
					t.Error("expected strict textures with flag")
				}
			},
			teardown: func() { *flagStrictTextures = false },
		},
		{
			name: "placeholder flags",
			setup: func() {
				*flagPlaceholderFormat = "webp"
				*flagPlaceholderSize = 64
			},
			verify: func(cfg *Config) {
				if cfg.Textures.PlaceholderFormat != "webp" {
					t.Errorf("expected webp, got %s", cfg.Textures.PlaceholderFormat)
				}
				if cfg.Textures.PlaceholderSize != 64 {
					t.Errorf("expected size 64, got %d", cfg.Textures.PlaceholderSize)
				}
			},
			teardown: func() {
				*flagPlaceholderFormat = ""
				*flagPlaceholderSize = 0
			},
		},
		{
			name:  "log file flag",
			setup: func() { *flagLogFile = "bake.log" },
			verify: func(cfg *Config) {
				if cfg.Logging.LogFile != "bake.log" {
					t.Errorf("expected bake.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
textures:
  placeholder_size: 32
  placeholder_format: webp
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagPlaceholderSize = 8
	defer func() {
		*flagConfig = ""
		*flagPlaceholderSize = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Size from flag, format from file
	if cfg.Textures.PlaceholderSize != 8 {
		t.Errorf("expected size 8 from flag, got %d", cfg.Textures.PlaceholderSize)
	}
	if cfg.Textures.PlaceholderFormat != "webp" {
		t.Errorf("expected webp from file, got %s", cfg.Textures.PlaceholderFormat)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	*flagPlaceholderFormat = "tiff"
	defer func() { *flagPlaceholderFormat = "" }()

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := Load(); err == nil {
		t.Error("expected invalid placeholder format to fail Load")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("config dir ignores XDG_CONFIG_HOME on this OS")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Textures.PlaceholderSize = 48
	cfg.Import.TextEncoding = "shift-jis"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, filepath.Join(ConfigDir(), "config.yaml")); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Textures.PlaceholderSize != 48 || loaded.Import.TextEncoding != "shift-jis" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
