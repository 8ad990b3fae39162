// Package main is the entry point for the scene baker.
//
// bakemodel imports a scene file and writes a runtime bundle: a packed
// vertex/index blob, a JSON manifest and one texture per mesh channel.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/bakemodel/internal/config"
	"github.com/Faultbox/bakemodel/internal/logger"
	"github.com/Faultbox/bakemodel/pkg/bake"
	"github.com/Faultbox/bakemodel/pkg/importer"
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1 // Import or bake failure
	exitUsage = 2 // Bad arguments or configuration
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()
	os.Exit(run())
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `bakemodel - bake a 3D scene into a runtime asset bundle

Usage:
  bakemodel [options] <scene-file>

Supported scenes: %s

Output goes to <out>/<scene name>/:
  <name>.bin   packed vertices and indices
  <name>.json  per-mesh manifest
  *.png/webp   copied textures and synthesized placeholders

Options:
`, strings.Join(importer.Extensions(), ", "))
	flag.PrintDefaults()
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return exitUsage
	}

	if path := config.SaveConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitFail
		}
		fmt.Fprintf(os.Stderr, "Config written to %s\n", path)
		return exitOK
	}

	args := config.Args()
	if len(args) != 1 {
		printUsage()
		return exitUsage
	}
	scenePath := args[0]

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return exitFail
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	s, err := importer.ReadFile(scenePath, importer.Options{
		TextEncoding: cfg.Import.TextEncoding,
		Logger:       logger.Named("import"),
	})
	if err != nil {
		err = bake.ImportError(scenePath, err)
		logger.Error("import failed", zap.Error(err))
		return exitCode(err)
	}

	res, err := bake.Bake(s, bake.Options{
		OutputRoot:        cfg.Output.Root,
		PlaceholderSize:   cfg.Textures.PlaceholderSize,
		PlaceholderFormat: cfg.Textures.PlaceholderFormat,
		StrictTextures:    cfg.Textures.Strict,
		Logger:            logger.Named("bake"),
	})
	if err != nil {
		logger.Error("bake failed", zap.String("scene", scenePath), zap.Error(err))
		return exitCode(err)
	}

	logger.Info("bake complete",
		zap.String("dir", res.Dir),
		zap.Int("meshes", res.Bundle.MeshCount))
	return exitOK
}

// exitCode maps a bake error class to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, bake.ErrInvalidArgument) {
		return exitUsage
	}
	return exitFail
}
