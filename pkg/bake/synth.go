package bake

import "math"

// PlaceholderSize is the default edge length of synthesized placeholders.
const PlaceholderSize = 16

// PlaceholderChannels is the number of bytes per placeholder pixel.
const PlaceholderChannels = 3

// quantScale maps [0,1] onto [0,256) so that 1.0 never reaches 256.
// The epsilon is float32 machine epsilon scaled to the 256 range.
const quantScale = 256 - 256*0x1p-23

// Pixels is a tightly packed RGB pixel buffer.
type Pixels struct {
	Width    int
	Height   int
	Channels int
	Data     []byte
}

// Quantize converts a component in [0,1] to a byte:
// clamp(round(f * (256 - eps)), 0, 255). NaN maps to 0.
func Quantize(f float32) uint8 {
	if f != f {
		return 0
	}
	v := math.Round(float64(f) * quantScale)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// PackFactor returns the RGB triple a constant factor bakes to.
//
//	BaseColor, Normal:    (x, y, z)
//	MetallicRoughness:    (metallic, roughness, 0)
//	AmbientOcclusion:     (ao, 255, 255)
func PackFactor(c Channel, f Factor) [3]byte {
	v := f.Values
	switch c {
	case MetallicRoughness:
		return [3]byte{Quantize(v[0]), Quantize(v[1]), 0}
	case AmbientOcclusion:
		return [3]byte{Quantize(v[0]), 255, 255}
	default:
		return [3]byte{Quantize(v[0]), Quantize(v[1]), Quantize(v[2])}
	}
}

// Synthesize builds a uniform size×size placeholder for a constant factor.
// The result depends only on its inputs. A non-positive size falls back to
// PlaceholderSize.
func Synthesize(c Channel, f Factor, size int) Pixels {
	if size <= 0 {
		size = PlaceholderSize
	}
	rgb := PackFactor(c, f)
	data := make([]byte, size*size*PlaceholderChannels)
	for i := 0; i < len(data); i += PlaceholderChannels {
		copy(data[i:], rgb[:])
	}
	return Pixels{
		Width:    size,
		Height:   size,
		Channels: PlaceholderChannels,
		Data:     data,
	}
}
