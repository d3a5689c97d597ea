package app

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/glsandbox/internal/config"
	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/lighting"
	"github.com/Faultbox/glsandbox/internal/engine/mesh"
	"github.com/Faultbox/glsandbox/internal/engine/model"
	"github.com/Faultbox/glsandbox/internal/engine/scene"
	"github.com/Faultbox/glsandbox/internal/engine/texture"
	"github.com/Faultbox/glsandbox/internal/logger"
)

// Demo scene layout.
var (
	entityColor = mgl32.Vec4{1, 0.5, 0.31, 1}
	tilted      = [4]float32{0, 1, 0.3, 0.5}

	pointLightPositions = []mgl32.Vec3{
		{0.7, 0.2, 2},
		{2.3, -3.3, -4},
		{-4, 2, -12},
		{0, 0, -3},
	}

	vegetation = []mgl32.Vec3{
		{-1.5, 0, -0.48},
		{1.5, 0, 0.51},
		{0, 0, 0.7},
		{-0.3, 0, -2.3},
		{0.5, 0, -0.6},
	}

	windows = []mgl32.Vec3{
		{-1.5, 0, -1.48},
		{1.5, 0, -0.49},
		{0, 0, -0.3},
		{-0.3, 0, -3.3},
		{0.5, 0, -1.6},
	}
)

const modelScale = 0.4

// populator builds the demo scene, collecting every asset it had to skip.
type populator struct {
	dev    gpu.Device
	cache  *texture.Cache
	cfg    *config.Config
	scene  *scene.Scene
	models map[string]*mesh.Model
	errs   error
	log    *zap.Logger
}

// Populate builds the demo scene from cfg. Entities whose assets cannot be
// loaded are skipped; the returned error lists every skipped asset and the
// scene is usable either way.
func Populate(dev gpu.Device, cache *texture.Cache, cfg *config.Config) (*scene.Scene, error) {
	p := &populator{
		dev:    dev,
		cache:  cache,
		cfg:    cfg,
		scene:  scene.New(),
		models: make(map[string]*mesh.Model),
		log:    logger.Named("assets"),
	}

	tex := cfg.Assets.Textures
	p.texturedCube("Container", mgl32.Vec3{0, 0, 0},
		texRef{mesh.Diffuse, tex.ContainerDiffuse},
		texRef{mesh.Specular, tex.ContainerSpecular},
	)
	p.texturedCube("Rock", mgl32.Vec3{2, 0, 0},
		texRef{mesh.Diffuse, tex.RockDiffuse},
		texRef{mesh.Normal, tex.RockNormal},
	)

	if cfg.Scene.Primitives {
		p.primitives()
	}

	for i, name := range cfg.Assets.Models {
		p.model(name, mgl32.Vec3{4 + 2*float32(i), 0, 0})
	}
	if cfg.Scene.Asteroids.Count > 0 && cfg.Scene.Asteroids.Model != "" {
		p.asteroids()
	}

	if cfg.Scene.Vegetation {
		p.quads("Grass", tex.Grass, vegetation)
	}
	if cfg.Scene.Windows {
		p.quads("Window", tex.Window, windows)
	}

	p.lights()

	if len(cfg.Assets.Skybox) > 0 {
		p.skybox()
	}

	p.log.Info("Scene populated",
		zap.Int("entities", len(p.scene.Entities)),
		zap.Int("lights", len(p.scene.Lights)),
		zap.Int("textures", cache.Len()),
		zap.Int("skipped", len(multierr.Errors(p.errs))),
	)
	return p.scene, p.errs
}

type texRef struct {
	role mesh.Role
	path string
}

// textures loads every map or none.
func (p *populator) textures(owner string, refs ...texRef) ([]mesh.TextureRef, bool) {
	out := make([]mesh.TextureRef, 0, len(refs))
	ok := true
	for _, r := range refs {
		t, err := p.cache.Get(r.path)
		if err != nil {
			p.skip(owner, err)
			ok = false
			continue
		}
		out = append(out, mesh.TextureRef{Role: r.role, Texture: t})
	}
	return out, ok
}

func (p *populator) skip(owner string, err error) {
	p.errs = multierr.Append(p.errs, fmt.Errorf("%s: %w", owner, err))
	p.log.Warn("Skipping entity, asset unavailable", zap.String("entity", owner), zap.Error(err))
}

func (p *populator) texturedCube(name string, pos mgl32.Vec3, refs ...texRef) {
	textures, ok := p.textures(name, refs...)
	if !ok {
		return
	}
	v, i := mesh.Cube()
	mesh.ComputeTangents(v, i)
	e := scene.NewEntity(name, scene.MeshCube, scene.MeshDrawable{Mesh: mesh.New(p.dev, v, i, textures)})
	e.Position = pos
	e.Rotation = tilted
	e.Color = entityColor
	p.scene.AddEntity(e)
}

func (p *populator) primitives() {
	shapes := []struct {
		name  string
		kind  scene.Kind
		geom  func() ([]mesh.Vertex, []uint32)
		pos   mgl32.Vec3
		color mgl32.Vec4
	}{
		{"Triangle", scene.Triangle, mesh.Triangle, mgl32.Vec3{-2, 1, 0}, mgl32.Vec4{0.9, 0.3, 0.2, 1}},
		{"Quad", scene.Quad, mesh.Quad, mgl32.Vec3{-4, 1, 0}, mgl32.Vec4{0.2, 0.6, 0.9, 1}},
		{"Cube", scene.Cube, mesh.Cube, mgl32.Vec3{-2, -1, -2}, entityColor},
	}
	for _, s := range shapes {
		v, i := s.geom()
		e := scene.NewEntity(s.name, s.kind, scene.Primitive{Mesh: mesh.New(p.dev, v, i, nil)})
		e.Position = s.pos
		e.Color = s.color
		p.scene.AddEntity(e)
	}
}

// loadModel returns the model at path, sharing it between callers.
func (p *populator) loadModel(name string) (*mesh.Model, error) {
	if m, ok := p.models[name]; ok {
		return m, nil
	}
	m, err := model.Load(p.dev, name, p.cache)
	if err != nil {
		return nil, err
	}
	p.models[name] = m
	return m, nil
}

func (p *populator) model(name string, pos mgl32.Vec3) {
	m, err := p.loadModel(name)
	if err != nil {
		p.skip(name, err)
		return
	}
	e := scene.NewEntity(modelName(name), scene.Model, scene.ModelDrawable{Model: m})
	e.Position = pos
	e.Scale = mgl32.Vec3{modelScale, modelScale, modelScale}
	e.Rotation = tilted
	e.Color = entityColor
	p.scene.AddEntity(e)
}

func (p *populator) asteroids() {
	a := p.cfg.Scene.Asteroids
	m, err := p.loadModel(a.Model)
	if err != nil {
		p.skip("asteroids", err)
		return
	}
	field := scene.AsteroidField(scene.FieldParams{
		Count:  a.Count,
		Radius: a.Radius,
		Offset: a.Offset,
		Seed:   a.Seed,
	})
	p.scene.Instances = scene.NewInstanceBatch(p.dev, m, field)
	p.log.Debug("Asteroid field generated", zap.Int("count", len(field)), zap.Uint64("seed", a.Seed))
}

// quads adds one textured quad per position, all sharing a single mesh.
func (p *populator) quads(name, file string, positions []mgl32.Vec3) {
	textures, ok := p.textures(name, texRef{mesh.Diffuse, file})
	if !ok {
		return
	}
	v, i := mesh.Quad()
	d := scene.MeshDrawable{Mesh: mesh.New(p.dev, v, i, textures)}
	for n, pos := range positions {
		e := scene.NewEntity(fmt.Sprintf("%s %d", name, n+1), scene.MeshQuad, d)
		e.Position = pos
		p.scene.AddEntity(e)
	}
}

func (p *populator) lights() {
	for i, pos := range pointLightPositions {
		l := lighting.NewPoint(pos, mgl32.Vec3{0.8, 0.8, 0.8})
		p.scene.AddLight(scene.NewLight(fmt.Sprintf("Point %d", i+1), l))
	}
	p.scene.AddLight(scene.NewLight("Sun", lighting.NewDirectional(
		mgl32.Vec3{-0.2, -1, -0.3},
		mgl32.Vec3{0.4, 0.4, 0.4},
	)))
	p.scene.AddLight(scene.NewLight("Flashlight", lighting.NewSpot(mgl32.Vec3{1, 1, 1})))
}

func (p *populator) skybox() {
	cubemap, err := p.cache.Cubemap(p.cfg.Assets.Skybox)
	if err != nil {
		p.skip("skybox", err)
		return
	}
	p.scene.Skybox = scene.NewSkybox(p.dev, cubemap)
}

// modelName returns the file name without directory or extension.
func modelName(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
