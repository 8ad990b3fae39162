package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithFileConfig("info", FileConfig{}, &buf); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer func() { Log = zap.NewNop(); Sugar = Log.Sugar() }()

	Named("bake").Info("bundle written", zap.Int("meshes", 3))
	Debug("hidden")
	Sync()

	out := buf.String()
	for _, want := range []string{"INFO", "bake", "bundle written", "meshes", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in console output: %s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug entry logged at info level")
	}
	// Buffers are not terminals, so no color escapes.
	if strings.Contains(out, "\x1b[") {
		t.Error("unexpected color codes in non-terminal output")
	}
}

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{
			level:    "error",
			expected: []string{"ERROR"},
			excluded: []string{"WARN", "INFO", "DEBUG"},
		},
		{
			level:    "warn",
			expected: []string{"ERROR", "WARN"},
			excluded: []string{"INFO", "DEBUG"},
		},
		{
			level:    "info",
			expected: []string{"ERROR", "WARN", "INFO"},
			excluded: []string{"DEBUG"},
		},
		{
			level:    "debug",
			expected: []string{"ERROR", "WARN", "INFO", "DEBUG"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")
			cfg := FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}

			if err := InitWithFileConfig(tt.level, cfg, nil); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}

			levels := map[string]bool{}
			for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
				var entry struct {
					Level string `json:"level"`
				}
				if err := json.Unmarshal([]byte(line), &entry); err != nil {
					t.Fatalf("log line is not JSON: %q", line)
				}
				levels[entry.Level] = true
			}

			for _, exp := range tt.expected {
				if !levels[exp] {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if levels[exc] {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestLogRotation(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "bake.log")

	// 1MB is the smallest size lumberjack allows
	cfg := FileConfig{
		Path:       logFile,
		MaxSizeMB:  1,
		MaxBackups: 2,
		MaxAgeDays: 1,
		Compress:   false,
	}
	if err := InitWithFileConfig("debug", cfg, nil); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	longMessage := strings.Repeat("x", 200)
	for i := 0; i < 8000; i++ {
		Sugar.Infof("entry %d: %s", i, longMessage)
	}
	Sync()

	files, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("failed to read temp dir: %v", err)
	}
	rotated := 0
	for _, f := range files {
		if f.Name() != "bake.log" && strings.HasPrefix(f.Name(), "bake-") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Errorf("expected a rotated file, found %d files", len(files))
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/bake.log")

	if cfg.Path != "/tmp/bake.log" {
		t.Errorf("expected path /tmp/bake.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 {
		t.Errorf("expected MaxSizeMB 50, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 7 {
		t.Errorf("expected MaxAgeDays 7, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]string{
		"debug": "debug", "warning": "warn", "warn": "warn", "error": "error", "": "info", "bogus": "info",
	} {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
