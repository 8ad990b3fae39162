// bundletool is a CLI utility for inspecting baked asset bundles.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/davecgh/go-spew/spew"

	"github.com/Faultbox/bakemodel/pkg/bake"
	"github.com/Faultbox/bakemodel/pkg/bundle"
	"github.com/Faultbox/bakemodel/pkg/imageenc"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "verify":
		cmdVerify(args)
	case "textures", "tex":
		cmdTextures(args)
	case "dump":
		cmdDump(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bundletool - baked asset bundle utility

Usage:
  bundletool <command> [options] <bundle>

<bundle> is a bundle directory or its .json manifest.

Commands:
  info <bundle>              Show bundle summary
  list [-n N] <bundle>       List meshes with counts, offsets and textures
  verify <bundle>            Check packing, index ranges and texture files
  textures <bundle>          Show format and size of every texture
  dump [-mesh N] <bundle>    Dump the manifest, or one mesh's decoded buffers

Examples:
  bundletool info out/Box
  bundletool list -n 10 out/Box/Box.json
  bundletool dump -mesh 0 out/Box`)
}

func openBundle(path string) *bundle.Bundle {
	b, err := bundle.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return b
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bundletool info <bundle>")
		os.Exit(1)
	}

	b := openBundle(args[0])
	defer b.Close()

	var vertices, indices int
	textures := make(map[string]bool)
	for _, a := range b.Manifest.MeshAttributes {
		vertices += a.VertexCount
		indices += a.IndexCount
		for c := bake.Channel(0); c < bake.ChannelCount; c++ {
			textures[a.Texture(c)] = true
		}
	}

	fmt.Printf("Bundle:    %s (%s)\n", b.Dir, b.Stem)
	fmt.Printf("Meshes:    %d\n", b.MeshCount())
	fmt.Printf("Vertices:  %d\n", vertices)
	fmt.Printf("Triangles: %d\n", indices/3)
	fmt.Printf("Blob:      %.2f KB\n", float64(b.BlobSize())/1024)
	fmt.Printf("Textures:  %d files\n", len(textures))
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N meshes (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bundletool list [-n N] <bundle>")
		os.Exit(1)
	}

	b := openBundle(fs.Arg(0))
	defer b.Close()

	fmt.Printf("%-5s %8s %10s %8s %10s  %s\n", "MESH", "VERTS", "V.OFFSET", "INDICES", "I.OFFSET", "TEXTURES")
	for i, a := range b.Manifest.MeshAttributes {
		if *limit > 0 && i >= *limit {
			fmt.Printf("... %d more\n", b.MeshCount()-i)
			break
		}
		fmt.Printf("%-5d %8d %10d %8d %10d  %s %s %s %s\n",
			i, a.VertexCount, a.VertexOffset, a.IndexCount, a.IndexOffset,
			a.BaseColorTexture, a.MetallicRoughnessTexture, a.NormalTexture, a.AOTexture)
	}
}

func cmdVerify(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bundletool verify <bundle>")
		os.Exit(1)
	}

	b := openBundle(args[0])
	defer b.Close()

	if err := b.Verify(); err != nil {
		fmt.Fprintf(os.Stderr, "Verification failed:\n  %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: %d meshes, %d bytes\n", b.MeshCount(), b.BlobSize())
}

func cmdTextures(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bundletool textures <bundle>")
		os.Exit(1)
	}

	b := openBundle(args[0])
	defer b.Close()

	seen := make(map[string]bool)
	var paths []string
	for i := 0; i < b.MeshCount(); i++ {
		for c := bake.Channel(0); c < bake.ChannelCount; c++ {
			path, _ := b.TexturePath(i, c)
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}
	sort.Strings(paths)

	failed := false
	for _, path := range paths {
		info, err := imageenc.Probe(path)
		if err != nil {
			fmt.Printf("  %-40s error: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("  %-40s %s\n", path, info)
	}
	if failed {
		os.Exit(1)
	}
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	mesh := fs.Int("mesh", -1, "Dump decoded vertices and indices of this mesh")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bundletool dump [-mesh N] <bundle>")
		os.Exit(1)
	}

	b := openBundle(fs.Arg(0))
	defer b.Close()

	cfg := spew.NewDefaultConfig()
	cfg.DisableCapacities = true
	cfg.DisablePointerAddresses = true
	cfg.Indent = "  "

	if *mesh < 0 {
		cfg.Fdump(os.Stdout, b.Manifest)
		return
	}

	vertices, err := b.Vertices(*mesh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	indices, err := b.Indices(*mesh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	attrs, _ := b.Mesh(*mesh)
	cfg.Fdump(os.Stdout, attrs, vertices, indices)
}
