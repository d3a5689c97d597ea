package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glsandbox/internal/config"
	"github.com/Faultbox/glsandbox/internal/engine/scene"
)

// Effect is a post-processing effect applied when the off-screen image is
// resolved to the window.
type Effect int32

// Post-processing effects, in u_effect order.
const (
	EffectNone Effect = iota
	EffectInversion
	EffectGrayscale
	EffectSharpen
	EffectBlur
	EffectEdge
)

var effectNames = [...]string{"none", "inversion", "grayscale", "sharpen", "blur", "edge"}

// String returns the effect's config name.
func (e Effect) String() string {
	if e < 0 || int(e) >= len(effectNames) {
		return "unknown"
	}
	return effectNames[e]
}

// ParseEffect returns the effect with the given config name.
func ParseEffect(name string) (Effect, error) {
	for i, n := range effectNames {
		if n == name {
			return Effect(i), nil
		}
	}
	return EffectNone, fmt.Errorf("unknown post effect %q", name)
}

// Effects returns every effect in u_effect order.
func Effects() []Effect {
	out := make([]Effect, len(effectNames))
	for i := range out {
		out[i] = Effect(i)
	}
	return out
}

// OutlineStyle enlarges a selected entity's scale for its outline:
// scale*Factor + Offset on every axis.
type OutlineStyle struct {
	Factor float32
	Offset float32
}

// Apply returns the enlarged scale.
func (s OutlineStyle) Apply(scale mgl32.Vec3) mgl32.Vec3 {
	off := mgl32.Vec3{s.Offset, s.Offset, s.Offset}
	return scale.Mul(s.Factor).Add(off)
}

// Settings are the renderer options that can change between frames.
type Settings struct {
	ClearColor   mgl32.Vec4
	OutlineColor mgl32.Vec4
	Outlines     map[scene.Kind]OutlineStyle
	Effect       Effect
	LightMarkers bool
	MarkerSize   float32
}

// DefaultSettings returns settings matching config.Default.
func DefaultSettings() Settings {
	s, err := SettingsFrom(config.Default())
	if err != nil {
		panic(err)
	}
	return s
}

// SettingsFrom converts the render section of cfg.
func SettingsFrom(cfg *config.Config) (Settings, error) {
	effect, err := ParseEffect(cfg.Render.PostEffect)
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		ClearColor:   cfg.Render.ClearColor,
		OutlineColor: cfg.Render.Outline.Color,
		Outlines:     make(map[scene.Kind]OutlineStyle),
		Effect:       effect,
		LightMarkers: cfg.Render.ShowLightMarkers,
		MarkerSize:   cfg.Scene.PointLightSize,
	}

	kinds := make(map[string]scene.Kind)
	for k := scene.Triangle; k <= scene.Model; k++ {
		kinds[k.String()] = k
	}
	for name, style := range cfg.Render.Outline.Styles {
		kind, ok := kinds[name]
		if !ok {
			return Settings{}, fmt.Errorf("outline style for unknown entity kind %q", name)
		}
		s.Outlines[kind] = OutlineStyle{Factor: style.Factor, Offset: style.Offset}
	}
	return s, nil
}

// ApplyTo writes the settings back into the render section of cfg.
func (s *Settings) ApplyTo(cfg *config.Config) {
	cfg.Render.ClearColor = s.ClearColor
	cfg.Render.Outline.Color = s.OutlineColor
	cfg.Render.PostEffect = s.Effect.String()
	cfg.Render.ShowLightMarkers = s.LightMarkers
	cfg.Scene.PointLightSize = s.MarkerSize

	styles := make(map[string]config.OutlineStyle, len(s.Outlines))
	for kind, style := range s.Outlines {
		styles[kind.String()] = config.OutlineStyle{Factor: style.Factor, Offset: style.Offset}
	}
	cfg.Render.Outline.Styles = styles
}

// Outline returns the outline style for kind. Kinds without a style are
// enlarged by 2%.
func (s *Settings) Outline(kind scene.Kind) OutlineStyle {
	if style, ok := s.Outlines[kind]; ok {
		return style
	}
	return OutlineStyle{Factor: 1.02}
}
