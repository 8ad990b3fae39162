// Package bake turns an imported scene into a runtime asset bundle:
// a packed vertex/index blob, a JSON manifest that slices it per mesh,
// and one texture image per mesh channel.
package bake

import "fmt"

// Channel is one of the four material aspects baked per mesh.
type Channel int

const (
	BaseColor Channel = iota
	MetallicRoughness
	Normal
	AmbientOcclusion

	ChannelCount = 4
)

// Name returns the channel name used in generated texture file names.
func (c Channel) Name() string {
	switch c {
	case BaseColor:
		return "BaseColor"
	case MetallicRoughness:
		return "MetallicRoughness"
	case Normal:
		return "Normal"
	case AmbientOcclusion:
		return "AO"
	default:
		return fmt.Sprintf("Channel%d", int(c))
	}
}

// String implements fmt.Stringer.
func (c Channel) String() string {
	return c.Name()
}

// Factor is a constant channel value with 1, 2 or 3 components.
type Factor struct {
	Values [3]float32
	Len    int
}

// Color returns a 3-component factor (BaseColor, Normal).
func Color(r, g, b float32) Factor {
	return Factor{Values: [3]float32{r, g, b}, Len: 3}
}

// Pair returns a 2-component factor (metallic, roughness).
func Pair(metallic, roughness float32) Factor {
	return Factor{Values: [3]float32{metallic, roughness, 0}, Len: 2}
}

// Scalar returns a 1-component factor (AmbientOcclusion).
func Scalar(v float32) Factor {
	return Factor{Values: [3]float32{v, 0, 0}, Len: 1}
}

func (f Factor) String() string {
	switch f.Len {
	case 1:
		return fmt.Sprintf("(%g)", f.Values[0])
	case 2:
		return fmt.Sprintf("(%g, %g)", f.Values[0], f.Values[1])
	default:
		return fmt.Sprintf("(%g, %g, %g)", f.Values[0], f.Values[1], f.Values[2])
	}
}

type source uint8

const (
	sourceUnset source = iota
	sourceFile
	sourceFactor
)

// TextureChannel is the resolved content of one channel: either an
// external texture reference or a constant factor, never both.
// The zero value is unresolved and rejected by the Writer.
type TextureChannel struct {
	src    source
	file   string
	factor Factor
}

// ExternalFile returns a channel backed by the texture reference name.
// An empty name yields an unresolved channel.
func ExternalFile(name string) TextureChannel {
	if name == "" {
		return TextureChannel{}
	}
	return TextureChannel{src: sourceFile, file: name}
}

// ConstantFactor returns a channel backed by a constant value.
func ConstantFactor(f Factor) TextureChannel {
	if f.Len < 1 || f.Len > 3 {
		return TextureChannel{}
	}
	return TextureChannel{src: sourceFactor, factor: f}
}

// File returns the texture reference if the channel is external.
func (c TextureChannel) File() (string, bool) {
	return c.file, c.src == sourceFile
}

// Factor returns the constant value if the channel is a factor.
func (c TextureChannel) Factor() (Factor, bool) {
	return c.factor, c.src == sourceFactor
}

// Resolved reports whether exactly one variant is populated.
func (c TextureChannel) Resolved() bool {
	return c.src != sourceUnset
}

func (c TextureChannel) String() string {
	switch c.src {
	case sourceFile:
		return "ExternalFile(" + c.file + ")"
	case sourceFactor:
		return "ConstantFactor" + c.factor.String()
	default:
		return "Unresolved"
	}
}

// Channels holds one resolved TextureChannel per Channel.
type Channels [ChannelCount]TextureChannel
