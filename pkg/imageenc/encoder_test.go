package imageenc

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func solidRGB(w, h int, r, g, b byte) []byte {
	pix := make([]byte, w*h*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
	return pix
}

func TestPNGEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := (PNG{}).Encode(&buf, solidRGB(16, 16, 10, 20, 30), 16, 16, 3); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
	r, g, b, a := img.At(7, 9).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 || a>>8 != 255 {
		t.Errorf("unexpected pixel (%d, %d, %d, %d)", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestEncodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		pix      []byte
		w, h     int
		channels int
	}{
		{"zero size", nil, 0, 0, 3},
		{"bad channels", make([]byte, 16), 2, 2, 2},
		{"short buffer", make([]byte, 5), 2, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (PNG{}).Encode(&buf, tt.pix, tt.w, tt.h, tt.channels); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		ext     string
		wantErr bool
	}{
		{"png", ".png", false},
		{"", ".png", false},
		{"WEBP", ".webp", false},
		{"jpeg", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			enc, err := ForFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err == nil && enc.Ext() != tt.ext {
				t.Errorf("ext = %q, want %q", enc.Ext(), tt.ext)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")

	var buf bytes.Buffer
	if err := (PNG{}).Encode(&buf, solidRGB(8, 4, 1, 2, 3), 8, 4, 3); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if info.Format != "png" || info.Width != 8 || info.Height != 4 {
		t.Errorf("unexpected info %v", info)
	}

	garbage := filepath.Join(dir, "bad.png")
	os.WriteFile(garbage, []byte("not an image"), 0644)
	if _, err := Probe(garbage); err == nil {
		t.Error("expected error probing garbage")
	}

	unknown := filepath.Join(dir, "tex.dds")
	os.WriteFile(unknown, buf.Bytes(), 0644)
	if _, err := Probe(unknown); err == nil {
		t.Error("expected error probing unknown extension")
	}
}
