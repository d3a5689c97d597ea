package renderer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/glsandbox/internal/config"
	"github.com/Faultbox/glsandbox/internal/engine/camera"
	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/gpu/gputest"
	"github.com/Faultbox/glsandbox/internal/engine/lighting"
	"github.com/Faultbox/glsandbox/internal/engine/mesh"
	"github.com/Faultbox/glsandbox/internal/engine/scene"
	"github.com/Faultbox/glsandbox/internal/engine/shader"
	"github.com/Faultbox/glsandbox/internal/engine/texture"
	"github.com/Faultbox/glsandbox/internal/logger"
)

type fixture struct {
	dev   *gputest.Recorder
	lib   *shader.Library
	r     *Renderer
	scene *scene.Scene
	frame FrameState
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := gputest.New()
	lib := shader.NewLibrary(dev, shader.Builtin())
	if err := lib.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := scene.New()
	return &fixture{
		dev:   dev,
		lib:   lib,
		r:     New(dev, lib, DefaultSettings(), 800, 600),
		scene: s,
		frame: FrameState{
			Camera: camera.NewDefault(mgl32.Vec3{0, 0, 3}),
			Scene:  s,
			Width:  800,
			Height: 600,
		},
	}
}

func (f *fixture) prog(name string) uint32 {
	return f.lib.Get(name).ID
}

func (f *fixture) cube(name string, kind scene.Kind) *scene.Entity {
	v, i := mesh.Cube()
	id := f.scene.AddEntity(scene.NewEntity(name, kind, scene.Primitive{Mesh: mesh.New(f.dev, v, i, nil)}))
	e, _ := f.scene.Entity(id)
	return e
}

// observe routes the global logger to an in-memory core for the test.
func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

func TestNewSetsGlobalState(t *testing.T) {
	f := newFixture(t)
	st := f.dev.State()

	if !st.DepthTest || !st.StencilTest || !st.CullFace || !st.Blend {
		t.Errorf("state = %+v, want depth, stencil, cull and blend enabled", st)
	}
	assertWriteStencil(t, "after New", st)
	if st.Framebuffer != 0 {
		t.Errorf("framebuffer %d left bound", st.Framebuffer)
	}
}

func TestStageOrder(t *testing.T) {
	f := newFixture(t)
	e := f.cube("box", scene.Cube)
	e.Selected = true
	f.scene.AddLight(scene.NewLight("lamp", lighting.NewPoint(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1})))

	v, i := mesh.Cube()
	rock := &mesh.Model{Meshes: []*mesh.Mesh{mesh.New(f.dev, v, i, nil)}}
	f.scene.Instances = scene.NewInstanceBatch(f.dev, rock, scene.AsteroidField(scene.FieldParams{Count: 5, Radius: 3, Seed: 1}))
	f.scene.Skybox = scene.NewSkybox(f.dev, &texture.Texture{ID: 50, Target: gpu.TextureCubeMap})

	f.dev.Reset()
	f.r.Render(f.frame)
	f.r.Resolve(f.frame)

	want := []uint32{
		f.prog(shader.Main),
		f.prog(shader.Outline),
		f.prog(shader.Unlit),
		f.prog(shader.Instance),
		f.prog(shader.Skybox),
		f.prog(shader.Screen),
	}
	if len(f.dev.Draws) != len(want) {
		t.Fatalf("got %d draws, want %d", len(f.dev.Draws), len(want))
	}
	for i, d := range f.dev.Draws {
		if d.State.Program != want[i] {
			t.Errorf("draw %d used program %d, want %d", i, d.State.Program, want[i])
		}
	}
	if d := f.dev.Draws[3]; d.Kind != gputest.DrawInstanced || d.Instances != 5 {
		t.Errorf("batch draw = %+v, want 5 instances", d)
	}

	// Lights are broadcast between the entity stage and the batch.
	markerDraw := callIndex(f.dev.Calls, "Draw(", 2)
	batchDraw := callIndex(f.dev.Calls, "Draw(", 3)
	broadcast := -1
	for i := markerDraw; i < batchDraw; i++ {
		if f.dev.Calls[i] == callUse(f.prog(shader.Main)) {
			broadcast = i
		}
	}
	if broadcast < 0 {
		t.Error("main program not used between entity and batch stages")
	}
	if v, _ := f.dev.Uniform(f.prog(shader.Instance), "u_point_light_count"); v != int32(1) {
		t.Errorf("instance u_point_light_count = %v, want 1", v)
	}
}

func TestCameraBroadcast(t *testing.T) {
	f := newFixture(t)
	f.r.Render(f.frame)

	cam := f.frame.Camera
	view := cam.ViewMatrix()
	proj := cam.Projection(800.0 / 600.0)
	for _, name := range []string{shader.Main, shader.Outline, shader.Unlit, shader.Instance} {
		id := f.prog(name)
		if v, _ := f.dev.Uniform(id, "u_view"); v != view {
			t.Errorf("%s u_view = %v, want %v", name, v, view)
		}
		if v, _ := f.dev.Uniform(id, "u_projection"); v != proj {
			t.Errorf("%s u_projection not set", name)
		}
		if v, _ := f.dev.Uniform(id, "u_view_pos"); v != cam.Position {
			t.Errorf("%s u_view_pos = %v, want %v", name, v, cam.Position)
		}
	}

	sky, _ := f.dev.Uniform(f.prog(shader.Skybox), "u_view")
	m := sky.(mgl32.Mat4)
	if m[12] != 0 || m[13] != 0 || m[14] != 0 {
		t.Errorf("skybox view keeps translation %v", m.Col(3))
	}
}

func TestOutlineStencilRestored(t *testing.T) {
	f := newFixture(t)
	f.r.Settings.LightMarkers = false
	sel := f.cube("selected", scene.Cube)
	sel.Selected = true
	f.cube("after", scene.MeshCube)

	f.dev.Reset()
	f.r.Render(f.frame)

	draws := f.dev.Draws
	if len(draws) != 3 {
		t.Fatalf("got %d draws, want entity, outline, entity", len(draws))
	}

	assertWriteStencil(t, "entity pass", draws[0].State)
	if !draws[0].State.DepthTest {
		t.Error("entity drawn without depth test")
	}

	out := draws[1].State
	if out.Program != f.prog(shader.Outline) {
		t.Errorf("outline drawn with program %d", out.Program)
	}
	if out.Stencil.Func != gpu.NotEqual || out.Stencil.Ref != 1 || out.Stencil.ReadMask != 0xFF || out.Stencil.WriteMask != 0x00 {
		t.Errorf("outline stencil = %+v, want NOTEQUAL 1 0xFF, mask 0x00", out.Stencil)
	}
	if out.DepthTest {
		t.Error("outline drawn with depth test enabled")
	}

	// The next entity sees the restored state.
	assertWriteStencil(t, "next entity", draws[2].State)
	if !draws[2].State.DepthTest {
		t.Error("depth test not restored after outline")
	}

	st := f.dev.State()
	assertWriteStencil(t, "end of frame", st)
	if !st.DepthTest || !st.CullFace || st.DepthFunc != gpu.Less {
		t.Errorf("end of frame state = %+v", st)
	}

	m, _ := f.dev.Uniform(f.prog(shader.Outline), "u_model")
	if got := m.(mgl32.Mat4)[0]; got != 1.02 {
		t.Errorf("outline scale = %f, want 1.02 for cubes", got)
	}
}

func TestOutlineStylePerKind(t *testing.T) {
	tests := []struct {
		kind scene.Kind
		want float32
	}{
		{scene.Triangle, 1.03},
		{scene.Quad, 1.03},
		{scene.Cube, 1.02},
		{scene.MeshCube, 1.02},
		{scene.MeshQuad, 1.03},
		{scene.Model, 1.01},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			f := newFixture(t)
			e := f.cube("e", tt.kind)
			e.Selected = true
			f.r.Render(f.frame)

			m, _ := f.dev.Uniform(f.prog(shader.Outline), "u_model")
			if got := m.(mgl32.Mat4)[0]; mgl32.Abs(got-tt.want) > 1e-6 {
				t.Errorf("outline scale = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestTwoSidedKinds(t *testing.T) {
	f := newFixture(t)
	f.r.Settings.LightMarkers = false
	f.cube("tri", scene.Triangle)
	f.cube("box", scene.Cube)

	f.dev.Reset()
	f.r.Render(f.frame)

	if f.dev.Draws[0].State.CullFace {
		t.Error("triangle drawn with face culling")
	}
	if !f.dev.Draws[1].State.CullFace {
		t.Error("culling not restored for the cube")
	}
}

func TestTransparentAfterOpaque(t *testing.T) {
	f := newFixture(t)
	f.r.Settings.LightMarkers = false

	near := f.cube("near-window", scene.MeshQuad)
	near.Transparent = true
	near.Position = mgl32.Vec3{0, 0, 1}
	far := f.cube("far-window", scene.MeshQuad)
	far.Transparent = true
	far.Position = mgl32.Vec3{0, 0, -4}
	f.cube("box", scene.MeshCube)

	vaos := map[uint32]string{}
	for _, e := range f.scene.Entities {
		vaos[e.Drawable.(scene.Primitive).Mesh.VAO] = e.Name
	}

	f.dev.Reset()
	f.r.Render(f.frame)

	var got []string
	for _, d := range f.dev.Draws {
		got = append(got, vaos[d.VAO])
		if !d.State.Blend {
			t.Errorf("%s drawn without blending", vaos[d.VAO])
		}
	}
	want := "box,far-window,near-window"
	if strings.Join(got, ",") != want {
		t.Errorf("draw order = %v, want %s", got, want)
	}
}

func TestLightMarkers(t *testing.T) {
	f := newFixture(t)
	f.scene.AddLight(scene.NewLight("sun", lighting.NewDirectional(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 1, 1})))
	f.scene.AddLight(scene.NewLight("red", lighting.NewPoint(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 0, 0})))
	f.scene.AddLight(scene.NewLight("spot", lighting.NewSpot(mgl32.Vec3{1, 1, 1})))

	f.dev.Reset()
	f.r.Render(f.frame)

	unlit := f.dev.DrawsWith(f.prog(shader.Unlit))
	if len(unlit) != 1 {
		t.Fatalf("got %d marker draws, want 1 (point lights only)", len(unlit))
	}
	if c, _ := f.dev.Uniform(f.prog(shader.Unlit), "u_entity_color"); c != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("marker color = %v, want red", c)
	}
	m, _ := f.dev.Uniform(f.prog(shader.Unlit), "u_model")
	mm := m.(mgl32.Mat4)
	if mm[0] != 0.2 || mm[12] != 1 || mm[13] != 2 || mm[14] != 3 {
		t.Errorf("marker model = %v", mm)
	}

	f.r.Settings.LightMarkers = false
	f.dev.Reset()
	f.r.Render(f.frame)
	if n := len(f.dev.DrawsWith(f.prog(shader.Unlit))); n != 0 {
		t.Errorf("markers drawn while disabled: %d", n)
	}
}

func TestSkyboxState(t *testing.T) {
	f := newFixture(t)
	f.scene.Skybox = scene.NewSkybox(f.dev, &texture.Texture{ID: 77, Target: gpu.TextureCubeMap})

	f.dev.Reset()
	f.r.Render(f.frame)

	sky := f.dev.DrawsWith(f.prog(shader.Skybox))
	if len(sky) != 1 {
		t.Fatalf("got %d skybox draws, want 1", len(sky))
	}
	st := sky[0].State
	if st.DepthFunc != gpu.LessEqual {
		t.Errorf("skybox depth func = %s, want LEQUAL", st.DepthFunc)
	}
	if st.CullFace {
		t.Error("skybox drawn with face culling")
	}
	if st.Stencil.Func != gpu.Equal || st.Stencil.Ref != 0 || st.Stencil.WriteMask != 0x00 {
		t.Errorf("skybox stencil = %+v, want EQUAL 0, mask 0x00", st.Stencil)
	}
	if sky[0].Textures[0] != 77 {
		t.Errorf("unit 0 holds texture %d, want cubemap 77", sky[0].Textures[0])
	}

	end := f.dev.State()
	if end.DepthFunc != gpu.Less || !end.CullFace {
		t.Errorf("state after skybox = %+v", end)
	}
	assertWriteStencil(t, "after skybox", end)
}

func TestPointLightCapacity(t *testing.T) {
	logs := observe(t)
	f := newFixture(t)
	for i := 0; i < 6; i++ {
		f.scene.AddLight(scene.NewLight("lamp", lighting.NewPoint(mgl32.Vec3{float32(i), 0, 0}, mgl32.Vec3{1, 1, 1})))
	}

	f.r.Render(f.frame)
	f.r.Render(f.frame)

	for _, name := range []string{shader.Main, shader.Instance} {
		id := f.prog(name)
		if v, _ := f.dev.Uniform(id, "u_point_light_count"); v != int32(4) {
			t.Errorf("%s u_point_light_count = %v, want 4", name, v)
		}
		if v, _ := f.dev.Uniform(id, "u_point_lights[3].position"); v != (mgl32.Vec3{3, 0, 0}) {
			t.Errorf("%s slot 3 = %v, want the fourth light", name, v)
		}
	}
	for _, l := range f.dev.Lookups {
		if strings.HasPrefix(l.Name, "u_point_lights[4]") || strings.HasPrefix(l.Name, "u_point_lights[5]") {
			t.Errorf("uniform %s looked up", l.Name)
		}
	}
	if n := logs.FilterMessageSnippet("point lights").Len(); n != 1 {
		t.Errorf("overflow logged %d times, want 1", n)
	}
}

func TestIncompleteFramebufferSkipsFrame(t *testing.T) {
	logs := observe(t)
	dev := gputest.New()
	dev.Incomplete = true
	lib := shader.NewLibrary(dev, shader.Builtin())
	if err := lib.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := New(dev, lib, DefaultSettings(), 800, 600)
	if r.Framebuffer().Complete() == nil {
		t.Fatal("framebuffer reported complete")
	}

	s := scene.New()
	v, i := mesh.Cube()
	s.AddEntity(scene.NewEntity("box", scene.Cube, scene.Primitive{Mesh: mesh.New(dev, v, i, nil)}))
	frame := FrameState{Camera: camera.NewDefault(mgl32.Vec3{}), Scene: s, Width: 800, Height: 600}

	dev.Reset()
	for n := 0; n < 3; n++ {
		r.Render(frame)
		r.Resolve(frame)
	}
	if len(dev.Draws) != 0 {
		t.Errorf("got %d draws with an incomplete framebuffer", len(dev.Draws))
	}
	for _, c := range dev.Calls {
		if strings.HasPrefix(c, "BindFramebuffer") {
			t.Errorf("unexpected %s", c)
		}
	}
	if n := logs.FilterMessageSnippet("incomplete").Len(); n != 1 {
		t.Errorf("incomplete framebuffer logged %d times, want 1", n)
	}
}

func TestMinimizedFrameSkipped(t *testing.T) {
	f := newFixture(t)
	f.cube("box", scene.Cube)

	for _, size := range [][2]int32{{0, 0}, {800, 0}, {0, 600}, {-1, -1}} {
		f.dev.Reset()
		frame := f.frame
		frame.Width, frame.Height = size[0], size[1]
		f.r.Render(frame)
		f.r.Resolve(frame)
		if len(f.dev.Calls) != 0 {
			t.Errorf("size %v: recorded %v", size, f.dev.Calls)
		}
	}
	if w, h := f.r.Framebuffer().Size(); w != 800 || h != 600 {
		t.Errorf("framebuffer resized to %dx%d while minimized", w, h)
	}
}

func TestRenderFollowsFramebufferSize(t *testing.T) {
	f := newFixture(t)
	frame := f.frame
	frame.Width, frame.Height = 1024, 768

	f.r.Render(frame)
	if w, h := f.r.Framebuffer().Size(); w != 1024 || h != 768 {
		t.Errorf("framebuffer = %dx%d, want 1024x768", w, h)
	}
	if vp := f.dev.State().Viewport; vp != [4]int32{0, 0, 1024, 768} {
		t.Errorf("viewport = %v", vp)
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	f.r.Settings.Effect = EffectGrayscale
	f.r.Render(f.frame)

	f.dev.Reset()
	f.r.Resolve(f.frame)

	if len(f.dev.Draws) != 1 {
		t.Fatalf("got %d draws, want 1", len(f.dev.Draws))
	}
	d := f.dev.Draws[0]
	if d.State.Framebuffer != 0 || d.State.DepthTest {
		t.Errorf("resolve state = %+v, want default framebuffer without depth test", d.State)
	}
	if d.Textures[0] != f.r.Framebuffer().ColorTexture() {
		t.Errorf("unit 0 = %d, want color attachment %d", d.Textures[0], f.r.Framebuffer().ColorTexture())
	}
	if d.State.Viewport != [4]int32{0, 0, 800, 600} {
		t.Errorf("viewport = %v", d.State.Viewport)
	}
	screen := f.prog(shader.Screen)
	if v, _ := f.dev.Uniform(screen, "u_effect"); v != int32(EffectGrayscale) {
		t.Errorf("u_effect = %v, want %d", v, EffectGrayscale)
	}
	if !f.dev.State().DepthTest {
		t.Error("depth test not re-enabled after resolve")
	}
}

func TestSettingsFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Render.PostEffect = "edge"
	s, err := SettingsFrom(cfg)
	if err != nil {
		t.Fatalf("SettingsFrom: %v", err)
	}
	if s.Effect != EffectEdge {
		t.Errorf("Effect = %s, want edge", s.Effect)
	}
	if got := s.Outline(scene.Model); got != (OutlineStyle{Factor: 1.0, Offset: 0.01}) {
		t.Errorf("model outline = %+v", got)
	}

	bad := config.Default()
	bad.Render.Outline.Styles = map[string]config.OutlineStyle{"sphere": {Factor: 1}}
	if _, err := SettingsFrom(bad); err == nil {
		t.Error("SettingsFrom accepted an outline style for an unknown kind")
	}

	bad = config.Default()
	bad.Render.PostEffect = "bloom"
	if _, err := SettingsFrom(bad); err == nil {
		t.Error("SettingsFrom accepted an unknown effect")
	}
}

func TestSettingsApplyTo(t *testing.T) {
	s := DefaultSettings()
	s.Effect = EffectGrayscale
	s.ClearColor = mgl32.Vec4{0.2, 0.3, 0.4, 1}
	s.LightMarkers = false
	s.MarkerSize = 0.5
	s.Outlines[scene.Cube] = OutlineStyle{Factor: 1.2, Offset: 0.05}

	cfg := config.Default()
	s.ApplyTo(cfg)

	if cfg.Render.PostEffect != "grayscale" {
		t.Errorf("PostEffect = %q, want grayscale", cfg.Render.PostEffect)
	}
	if got := cfg.Render.Outline.Styles["cube"]; got != (config.OutlineStyle{Factor: 1.2, Offset: 0.05}) {
		t.Errorf("cube style = %+v", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("applied config invalid: %v", err)
	}

	back, err := SettingsFrom(cfg)
	if err != nil {
		t.Fatalf("SettingsFrom: %v", err)
	}
	if back.Effect != s.Effect || back.ClearColor != s.ClearColor ||
		back.LightMarkers != s.LightMarkers || back.MarkerSize != s.MarkerSize {
		t.Errorf("settings did not survive the config: got %+v, want %+v", back, s)
	}
	for kind, style := range s.Outlines {
		if back.Outline(kind) != style {
			t.Errorf("%s outline = %+v, want %+v", kind, back.Outline(kind), style)
		}
	}
}

func TestEffectNames(t *testing.T) {
	for _, e := range Effects() {
		got, err := ParseEffect(e.String())
		if err != nil || got != e {
			t.Errorf("ParseEffect(%q) = %v, %v", e.String(), got, err)
		}
	}
	if len(Effects()) != len(config.PostEffects) {
		t.Errorf("%d effects, config accepts %d", len(Effects()), len(config.PostEffects))
	}
	for i, name := range config.PostEffects {
		if Effect(i).String() != name {
			t.Errorf("Effect(%d) = %s, config lists %s", i, Effect(i), name)
		}
	}
}

func TestOutlineStyleApply(t *testing.T) {
	got := OutlineStyle{Factor: 1.5, Offset: 0.25}.Apply(mgl32.Vec3{1, 2, 4})
	if want := (mgl32.Vec3{1.75, 3.25, 6.25}); got != want {
		t.Errorf("Apply = %v, want %v", got, want)
	}
}

func assertWriteStencil(t *testing.T, when string, st gputest.State) {
	t.Helper()
	want := gputest.StencilState{Func: gpu.Always, Ref: 1, ReadMask: 0xFF, WriteMask: 0xFF}
	if st.Stencil != want {
		t.Errorf("%s: stencil = %+v, want %+v", when, st.Stencil, want)
	}
}

// callIndex returns the index of the n-th call starting with prefix.
func callIndex(calls []string, prefix string, n int) int {
	for i, c := range calls {
		if strings.HasPrefix(c, prefix) {
			if n == 0 {
				return i
			}
			n--
		}
	}
	return -1
}

func callUse(program uint32) string {
	return fmt.Sprintf("UseProgram(%d)", program)
}
