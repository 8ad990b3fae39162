package bake

import "github.com/Faultbox/bakemodel/pkg/scene"

// Hard defaults used when a material carries neither a texture nor a factor.
var (
	defaultBaseColor = Color(1, 1, 1)
	defaultNormal    = Color(0.5, 0.5, 1.0) // Flat tangent-space normal
	defaultAO        = Scalar(1.0)          // Fully lit
)

const defaultMetalRough = 1.0

// DefaultFactor returns the hard default value of channel c.
func DefaultFactor(c Channel) Factor {
	switch c {
	case BaseColor:
		return defaultBaseColor
	case MetallicRoughness:
		return Pair(defaultMetalRough, defaultMetalRough)
	case Normal:
		return defaultNormal
	default:
		return defaultAO
	}
}

// Resolve decides, per channel, between the material's bound texture and a
// constant factor. A bound texture always wins over a factor because
// importers often report library default factors the author never set.
// Resolve performs no I/O and never fails; a nil material resolves every
// channel to its hard default.
func Resolve(m *scene.Material) Channels {
	var ch Channels
	ch[BaseColor] = resolveBaseColor(m)
	ch[MetallicRoughness] = resolveMetallicRoughness(m)
	ch[Normal] = resolveTextureOnly(m, scene.TextureNormals, Normal)
	ch[AmbientOcclusion] = resolveTextureOnly(m, scene.TextureAmbientOcclusion, AmbientOcclusion)
	return ch
}

func resolveBaseColor(m *scene.Material) TextureChannel {
	if ref, ok := m.Texture(scene.TextureBaseColor); ok {
		return ExternalFile(ref)
	}
	if c, ok := m.BaseColorFactor(); ok {
		return ConstantFactor(Color(c[0], c[1], c[2]))
	}
	return ConstantFactor(defaultBaseColor)
}

func resolveMetallicRoughness(m *scene.Material) TextureChannel {
	if ref, ok := m.Texture(scene.TextureMetallicRoughness); ok {
		return ExternalFile(ref)
	}
	metallic, ok := m.MetallicFactor()
	if !ok {
		metallic = defaultMetalRough
	}
	roughness, ok := m.RoughnessFactor()
	if !ok {
		roughness = defaultMetalRough
	}
	return ConstantFactor(Pair(metallic, roughness))
}

func resolveTextureOnly(m *scene.Material, slot scene.TextureType, c Channel) TextureChannel {
	if ref, ok := m.Texture(slot); ok {
		return ExternalFile(ref)
	}
	return ConstantFactor(DefaultFactor(c))
}
