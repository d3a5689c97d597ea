package model

import (
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/Faultbox/glsandbox/internal/assets"
	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/mesh"
	"github.com/Faultbox/glsandbox/internal/engine/texture"
	"github.com/Faultbox/glsandbox/internal/logger"
	"github.com/Faultbox/glsandbox/pkg/formats"
)

// Load reads an OBJ model and its material libraries through the texture
// cache's asset manager and uploads one mesh per material group.
// Textures are shared with every other user of cache. A missing material
// library or texture map is logged and the mesh is built without it.
func Load(dev gpu.Device, name string, cache *texture.Cache) (*mesh.Model, error) {
	log := logger.Named("assets")
	name = assets.Clean(name)

	data, err := cache.Assets().Load(name)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", name, err)
	}
	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", name, err)
	}

	dir := path.Dir(name)
	materials := make(map[string]*formats.MTLMaterial)
	for _, lib := range obj.MaterialLibs {
		libPath := path.Join(dir, lib)
		mtl, err := loadMTL(cache.Assets(), libPath)
		if err != nil {
			log.Warn("Material library unavailable",
				zap.String("model", name),
				zap.String("mtllib", libPath),
				zap.Error(err),
			)
			continue
		}
		for k, v := range mtl {
			materials[k] = v
		}
	}

	parts, bounds := Build(obj)
	if len(parts) == 0 {
		return nil, fmt.Errorf("model %s has no faces", name)
	}

	m := &mesh.Model{Path: name, Bounds: bounds}
	for _, p := range parts {
		refs, shininess := textures(cache, dir, materials[p.Material], log)
		msh := mesh.New(dev, p.Vertices, p.Indices, refs)
		if shininess > 0 {
			msh.Material.Shininess = shininess
		}
		m.Meshes = append(m.Meshes, msh)
	}

	log.Info("Loaded model",
		zap.String("path", name),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("faces", obj.FaceCount()),
		zap.Int("textures", cache.Len()),
	)
	return m, nil
}

func loadMTL(am *assets.Manager, name string) (map[string]*formats.MTLMaterial, error) {
	data, err := am.Load(name)
	if err != nil {
		return nil, err
	}
	return formats.ParseMTL(data)
}

// textures resolves a material's maps relative to the model directory.
func textures(cache *texture.Cache, dir string, mat *formats.MTLMaterial, log *zap.Logger) ([]mesh.TextureRef, float32) {
	if mat == nil {
		return nil, 0
	}

	maps := []struct {
		role mesh.Role
		file string
	}{
		{mesh.Diffuse, mat.DiffuseMap},
		{mesh.Specular, mat.SpecularMap},
		{mesh.Normal, mat.NormalMap},
		{mesh.Height, mat.HeightMap},
	}

	var refs []mesh.TextureRef
	for _, m := range maps {
		if m.file == "" {
			continue
		}
		p := path.Join(dir, m.file)
		tex, err := cache.Get(p)
		if err != nil {
			log.Warn("Texture unavailable",
				zap.String("material", mat.Name),
				zap.Stringer("role", m.role),
				zap.String("path", p),
				zap.Error(err),
			)
			continue
		}
		refs = append(refs, mesh.TextureRef{Role: m.role, Texture: tex})
	}
	return refs, mat.Shininess
}
