package imageenc

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Info describes an image file without decoding its pixels.
type Info struct {
	Format string
	Width  int
	Height int
}

func (i Info) String() string {
	return fmt.Sprintf("%s %dx%d", i.Format, i.Width, i.Height)
}

type configDecoder func(io.Reader) (image.Config, error)

// Header decoders by file extension. TGA has no magic number, so probing
// dispatches on the extension instead of sniffing registered formats.
var probers = map[string]struct {
	format string
	decode configDecoder
}{
	".png":  {"png", png.DecodeConfig},
	".jpg":  {"jpeg", jpeg.DecodeConfig},
	".jpeg": {"jpeg", jpeg.DecodeConfig},
	".gif":  {"gif", gif.DecodeConfig},
	".bmp":  {"bmp", bmp.DecodeConfig},
	".tif":  {"tiff", tiff.DecodeConfig},
	".tiff": {"tiff", tiff.DecodeConfig},
	".webp": {"webp", webp.DecodeConfig},
	".tga":  {"tga", tga.DecodeConfig},
}

// Probe reads only the header of the image at path.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	p, ok := probers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Info{}, fmt.Errorf("probing %s: unknown image extension", path)
	}

	cfg, err := p.decode(f)
	if err != nil {
		return Info{}, fmt.Errorf("probing %s: %w", path, err)
	}
	return Info{Format: p.format, Width: cfg.Width, Height: cfg.Height}, nil
}
